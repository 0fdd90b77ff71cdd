package handler

import (
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// PageHandler 从 public 目录返回静态页面。
type PageHandler struct {
	publicDir string
}

// NewPageHandler 创建一个新的 PageHandler。
func NewPageHandler(publicDir string) *PageHandler {
	return &PageHandler{publicDir: publicDir}
}

// Serve 返回一个输出指定页面文件的处理函数。
func (h *PageHandler) Serve(page string) gin.HandlerFunc {
	path := filepath.Join(h.publicDir, page)
	return func(c *gin.Context) {
		c.File(path)
	}
}
