package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Status是返回给客户端的HTTP状态码
// 2. Message是直接写入响应体{error: ...}的提示信息
// 3. Err是内部错误，仅记录到日志，不返回给客户端
type AppError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Status, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建新的AppError
func New(status int, message string) *AppError {
	return &AppError{
		Status:  status,
		Message: message,
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
// 用途：将底层错误转换为500响应，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Status:  http.StatusInternalServerError,
		Message: message,
		Err:     err,
	}
}

// IsClientError 是否为4xx错误
func (e *AppError) IsClientError() bool {
	return e.Status >= 400 && e.Status < 500
}

// =========================================
// 预定义错误
// =========================================

var (
	ErrInternal    = New(http.StatusInternalServerError, "Internal server error.")
	ErrBadRequest  = New(http.StatusBadRequest, "Invalid request body.")
	ErrNotFound    = New(http.StatusNotFound, "Not found.")
	ErrRateLimited = New(http.StatusTooManyRequests, "Too many requests.")

	// 认证
	ErrInvalidToken = New(http.StatusUnauthorized, "Invalid session token.")
	ErrTokenExpired = New(http.StatusUnauthorized, "Session expired.")
	ErrTokenRevoked = New(http.StatusUnauthorized, "Session has been signed out.")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, ErrInternal.Message)
}
