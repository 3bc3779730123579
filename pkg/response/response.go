package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/reading-tracker/pkg/errors"
)

// ErrorBody 错误响应结构
// 所有失败响应统一为 {"error": "<message>"}
type ErrorBody struct {
	Error string `json:"error" example:"Book not found."`
}

// MessageBody 仅包含提示信息的成功响应（如删除成功）
type MessageBody struct {
	Message string `json:"message" example:"Book listing with ID 1 deleted."`
}

// Success 200响应，data直接作为响应体（不包装）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 201响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Message 返回 {"message": msg}
func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, MessageBody{Message: msg})
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	result, err := uc.Execute(ctx, req)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)

	// 内部错误只写日志，不返回给客户端
	if appErr.Err != nil {
		zap.L().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString("request_id")),
			zap.Int("status", appErr.Status),
			zap.Error(appErr.Err),
		)
	}

	_ = c.Error(err)
	c.JSON(appErr.Status, ErrorBody{Error: appErr.Message})
}

// AbortWithError 中间件中使用：写错误响应并终止后续Handler
func AbortWithError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
