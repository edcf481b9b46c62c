package restapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"transfer-service/pkg/errno"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, Response{
		Code:    errno.OK.Code,
		Message: errno.OK.Message,
		Data:    data,
	})
}

// Accepted 已接收响应，流水线在后台继续执行
func Accepted(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusAccepted, Response{
		Code:    http.StatusAccepted,
		Message: "Signal received. Processing in background.",
		Data:    data,
	})
}

// Failed 失败响应，业务错误码映射到HTTP状态
func Failed(ctx *gin.Context, err error) {
	var e *errno.Errno
	if !errors.As(err, &e) {
		e = &errno.Errno{Code: errno.ErrInternalServer.Code, Message: err.Error()}
	}

	status := http.StatusInternalServerError
	switch {
	case e.Code >= 20000:
		status = http.StatusBadRequest
	case e.Code >= 400 && e.Code < 500:
		status = e.Code
	}
	if e == errno.ErrQueueFull {
		status = http.StatusServiceUnavailable
	}
	if e == errno.ErrNoSharedLink {
		status = http.StatusNotFound
	}

	ctx.JSON(status, Response{Code: e.Code, Message: e.Message})
}
