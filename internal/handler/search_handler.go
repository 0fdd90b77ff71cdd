package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"tigersai/internal/middleware"
	"tigersai/internal/service"
	"tigersai/pkg/log"
)

// SearchHandler 处理对话全文检索。
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler 创建一个新的 SearchHandler 实例。
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search 处理 GET /calendar/search?q=...，目标参数与日视图相同。
func (h *SearchHandler) Search(c *gin.Context) {
	caller := middleware.CurrentSession(c)
	target, ok := parseTarget(c, caller)
	if !ok {
		return
	}
	query := c.Query("q")
	hits, err := h.searchService.Search(c.Request.Context(), caller, query, target)
	if err != nil {
		abortWithError(c, err)
		return
	}
	log.Infow("对话检索", "username", caller.Username, "query", query, "hits", len(hits))
	c.JSON(http.StatusOK, hits)
}
