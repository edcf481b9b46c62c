package http

import (
	"github.com/gin-gonic/gin"

	"transfer-service/ddd/application/app"
	"transfer-service/ddd/application/cqe"
	"transfer-service/pkg/errno"
	"transfer-service/pkg/restapi"
)

// ShareLinkController 共享链接控制器
type ShareLinkController struct {
	transferApp app.TransferApp
}

// NewShareLinkController 创建共享链接控制器
func NewShareLinkController(transferApp app.TransferApp) *ShareLinkController {
	return &ShareLinkController{
		transferApp: transferApp,
	}
}

// CreateShareLink 创建公开直链
func (c *ShareLinkController) CreateShareLink(ctx *gin.Context) {
	var req cqe.ShareLinkReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, errno.ErrInvalidParam)
		return
	}

	link, err := c.transferApp.CreateShareLink(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}

	restapi.Success(ctx, link)
}

// RevokeShareLink 撤销公开链接
func (c *ShareLinkController) RevokeShareLink(ctx *gin.Context) {
	var req cqe.ShareLinkReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, errno.ErrInvalidParam)
		return
	}

	if err := c.transferApp.RevokeShareLink(ctx.Request.Context(), &req); err != nil {
		restapi.Failed(ctx, err)
		return
	}

	restapi.Success(ctx, nil)
}

// TemporaryShareLink 获取临时直链
func (c *ShareLinkController) TemporaryShareLink(ctx *gin.Context) {
	var req cqe.ShareLinkReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, errno.ErrInvalidParam)
		return
	}

	link, err := c.transferApp.TemporaryShareLink(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}

	restapi.Success(ctx, link)
}
