// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"tigersai/internal/service"
	"tigersai/pkg/log"
)

const internalServerError = "Internal Server Error"

// errorStatus 把业务错误映射为状态码和可以返回给客户端的提示语。
// 存储和脚本的细节只写日志。
func errorStatus(err error) (int, string) {
	var ce *service.ClientError
	if errors.As(err, &ce) {
		return kindStatus(ce.Kind), ce.Message
	}

	switch {
	case errors.Is(err, service.ErrAuthenticationRequired):
		return http.StatusUnauthorized, "Unauthorized. Please log in."
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, service.ErrInvalidCredentials.Error()
	case errors.Is(err, service.ErrUnauthorizedRole):
		return http.StatusForbidden, "Unauthorized access."
	case errors.Is(err, service.ErrNoAuthorizedCourses):
		return http.StatusForbidden, service.ErrNoAuthorizedCourses.Error()
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "Unauthorized access."
	case errors.Is(err, service.ErrTargetRequired):
		return http.StatusBadRequest, "Admins must select a user."
	case errors.Is(err, service.ErrEmptyMessage):
		return http.StatusBadRequest, service.ErrEmptyMessage.Error()
	case errors.Is(err, service.ErrUsernameTaken):
		return http.StatusConflict, service.ErrUsernameTaken.Error()
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, service.ErrEmptyResponse):
		return http.StatusInternalServerError, service.ErrEmptyResponse.Error()
	case errors.Is(err, service.ErrUnavailable):
		return http.StatusServiceUnavailable, "Service Unavailable"
	default:
		return http.StatusInternalServerError, internalServerError
	}
}

func kindStatus(kind error) int {
	switch {
	case errors.Is(kind, service.ErrForbidden), errors.Is(kind, service.ErrUnauthorizedRole):
		return http.StatusForbidden
	case errors.Is(kind, service.ErrAuthenticationRequired):
		return http.StatusUnauthorized
	case errors.Is(kind, service.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError 写出统一的 {"error": ...} 响应。
func abortWithError(c *gin.Context, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.Errorw("请求处理失败", "path", c.Request.URL.Path, "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
