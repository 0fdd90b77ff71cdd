package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"tigersai/internal/model"
)

// RequireRole 检查会话角色，必须在 RequireSession 之后使用。
func RequireRole(role model.Role, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := CurrentSession(c)
		if s == nil {
			// 路由注册顺序错误
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		if s.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": message})
			return
		}
		c.Next()
	}
}
