package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"tigersai/internal/middleware"
	"tigersai/internal/model"
	"tigersai/internal/service"
)

// AdminHandler 处理管理员查看用户目录的请求。
type AdminHandler struct {
	adminService service.AdminService
}

// NewAdminHandler 创建一个新的 AdminHandler 实例。
func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// UserSummary 是 /admin/users 返回的用户信息。
type UserSummary struct {
	ID       uint       `json:"_id"`
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
}

// ListUsers 处理 GET /admin/users。
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminService.ListAllUsers(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, UserSummary{ID: u.ID, Username: u.Username, Role: u.Role})
	}
	c.JSON(http.StatusOK, out)
}
