package http

import (
	"github.com/gin-gonic/gin"

	"transfer-service/ddd/application/app"
	"transfer-service/ddd/application/cqe"
	"transfer-service/ddd/domain/vo"
	"transfer-service/pkg/errno"
	"transfer-service/pkg/restapi"
)

// TransferController 转移任务控制器
type TransferController struct {
	transferApp app.TransferApp
}

// NewTransferController 创建转移任务控制器
func NewTransferController(transferApp app.TransferApp) *TransferController {
	return &TransferController{
		transferApp: transferApp,
	}
}

// CreateVideoTransfer 提交视频转移任务（API上传发布）
func (c *TransferController) CreateVideoTransfer(ctx *gin.Context) {
	c.submit(ctx, vo.DestinationYouTube)
}

// CreateEpisodeTransfer 提交音频转移任务（浏览器自动化发布）
func (c *TransferController) CreateEpisodeTransfer(ctx *gin.Context) {
	c.submit(ctx, vo.DestinationRedCircle)
}

// submit binds, validates synchronously and enqueues. The 202 means "queued",
// not "published"; the outcome arrives via the webhook.
func (c *TransferController) submit(ctx *gin.Context, destination vo.Destination) {
	var req cqe.CreateTransferReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, errno.ErrInvalidParam)
		return
	}
	req.Destination = destination.String()

	job, err := c.transferApp.SubmitTransfer(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}

	restapi.Accepted(ctx, job)
}
