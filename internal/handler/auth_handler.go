package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"tigersai/internal/middleware"
	"tigersai/internal/service"
	"tigersai/pkg/log"
	"tigersai/pkg/token"
)

const chatRedirect = "/chat"

// AuthHandler 负责登录与登出。
type AuthHandler struct {
	userService service.UserService
	auth        *middleware.SessionAuth
	jwtManager  *token.JWTManager
}

// NewAuthHandler 创建一个新的 AuthHandler 实例。jwtManager 为 nil 时登录响应不带 token。
func NewAuthHandler(userService service.UserService, auth *middleware.SessionAuth, jwtManager *token.JWTManager) *AuthHandler {
	return &AuthHandler{userService: userService, auth: auth, jwtManager: jwtManager}
}

// LoginRequest 定义了登录请求体，支持 JSON 与表单。
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Login 处理用户登录请求。凭证错误时仍返回 200，由前端根据 success 字段提示。
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": service.ErrInvalidCredentials.Error()})
		return
	}

	session, err := h.userService.Login(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		log.Warnw("登录失败", "username", req.Username)
		c.JSON(http.StatusOK, gin.H{"success": false, "message": service.ErrInvalidCredentials.Error()})
		return
	}
	if err != nil {
		status, msg := errorStatus(err)
		if status >= http.StatusInternalServerError {
			log.Error("登录失败", err)
		}
		c.JSON(status, gin.H{"success": false, "message": msg})
		return
	}

	if err := h.auth.Bind(c, session.ID); err != nil {
		log.Error("写入会话 cookie 失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": internalServerError})
		return
	}

	resp := gin.H{"success": true, "redirectUrl": chatRedirect}
	if h.jwtManager != nil {
		tok, err := h.jwtManager.GenerateToken(session.ID, session.UserID, session.Role.String())
		if err != nil {
			log.Error("签发 token 失败", err)
		} else {
			resp["token"] = tok
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Logout 销毁会话并重定向到首页。没有会话时同样重定向。
func (h *AuthHandler) Logout(c *gin.Context) {
	if sid := h.auth.SessionID(c.Request); sid != "" {
		if err := h.userService.Logout(c.Request.Context(), sid); err != nil {
			log.Error("登出失败", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error logging out"})
			return
		}
	}
	h.auth.Clear(c)
	c.Redirect(http.StatusFound, "/")
}
