package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"tigersai/internal/middleware"
	"tigersai/internal/service"
)

// UserHandler 处理教师查看学生列表的请求。
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler 创建一个新的 UserHandler 实例。
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// StudentSummary 只暴露 ID 与用户名。
type StudentSummary struct {
	ID       uint   `json:"_id"`
	Username string `json:"username"`
}

// ListStudents 处理 GET /teacher/students。
func (h *UserHandler) ListStudents(c *gin.Context) {
	students, err := h.userService.ListStudentsForTeacher(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	out := make([]StudentSummary, 0, len(students))
	for _, s := range students {
		out = append(out, StudentSummary{ID: s.ID, Username: s.Username})
	}
	c.JSON(http.StatusOK, out)
}
