package http

import (
	"github.com/gin-gonic/gin"

	"transfer-service/ddd/application/app"
	"transfer-service/pkg/middleware"
)

// Router 路由配置
type Router struct {
	transferApp app.TransferApp
}

// NewRouter 创建路由配置
func NewRouter(transferApp app.TransferApp) *Router {
	return &Router{
		transferApp: transferApp,
	}
}

// SetupRoutes 设置路由
func (r *Router) SetupRoutes(engine *gin.Engine) {
	transferController := NewTransferController(r.transferApp)
	shareLinkController := NewShareLinkController(r.transferApp)

	v1 := engine.Group("/api/v1")
	{
		// 视频转移任务入队后立刻202返回，结果只经webhook回报
		v1.POST("/transfers", transferController.CreateVideoTransfer)

		// 音频节目走浏览器自动化发布
		v1.POST("/episodes", transferController.CreateEpisodeTransfer)

		// 共享链接相关路由
		links := v1.Group("/links")
		{
			links.POST("/share", shareLinkController.CreateShareLink)        // 创建公开直链
			links.POST("/unshare", shareLinkController.RevokeShareLink)      // 撤销公开链接
			links.POST("/temporary", shareLinkController.TemporaryShareLink) // 获取临时直链
		}
	}

	// 健康检查路由
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "transfer-service",
			"version": "1.0.0",
		})
	})
}

// SetupMiddleware 设置中间件
func (r *Router) SetupMiddleware(engine *gin.Engine) {
	engine.Use(middleware.RequestContextMiddleware())
	engine.Use(gin.Logger())
	engine.Use(gin.Recovery())
}
