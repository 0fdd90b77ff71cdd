package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"tigersai/internal/middleware"
	"tigersai/internal/model"
	"tigersai/internal/policy"
	"tigersai/internal/service"
)

var (
	errMonthRequired = errors.New("Month is required")
	errDateRequired  = errors.New("Date is required")
)

// ConversationHandler 处理日历视图相关的请求。
type ConversationHandler struct {
	conversations service.ConversationService
	exports       service.ExportService
	loc           *time.Location
}

// NewConversationHandler 创建一个新的 ConversationHandler，日期参数按 loc 解析。
func NewConversationHandler(conversations service.ConversationService, exports service.ExportService, loc *time.Location) *ConversationHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ConversationHandler{conversations: conversations, exports: exports, loc: loc}
}

// ByMonth 处理 GET /calendar/conversationsByMonth?month=YYYY-MM。
func (h *ConversationHandler) ByMonth(c *gin.Context) {
	caller := middleware.CurrentSession(c)
	month, ok := h.parseMonth(c)
	if !ok {
		return
	}
	target, ok := parseTarget(c, caller)
	if !ok {
		return
	}
	entries, err := h.conversations.ConversationsByMonth(c.Request.Context(), caller, month, target)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ByDay 处理 GET /calendar/conversations?date=YYYY-MM-DD，教师用 student_id、管理员用 user_id 指定对象。
func (h *ConversationHandler) ByDay(c *gin.Context) {
	caller := middleware.CurrentSession(c)
	raw := strings.TrimSpace(c.Query("date"))
	if raw == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": errDateRequired.Error()})
		return
	}
	day, err := parseCalendarDate(raw, h.loc)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid date"})
		return
	}
	target, ok := parseTarget(c, caller)
	if !ok {
		return
	}
	entries, err := h.conversations.ConversationsByDay(c.Request.Context(), caller, day, target)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Export 处理 GET /calendar/export?month=YYYY-MM，返回导出文件的下载链接。
func (h *ConversationHandler) Export(c *gin.Context) {
	caller := middleware.CurrentSession(c)
	month, ok := h.parseMonth(c)
	if !ok {
		return
	}
	target, ok := parseTarget(c, caller)
	if !ok {
		return
	}
	url, err := h.exports.ExportMonth(c.Request.Context(), caller, month, target)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *ConversationHandler) parseMonth(c *gin.Context) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query("month"))
	if raw == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": errMonthRequired.Error()})
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation("2006-01", raw, h.loc); err == nil {
		return t, true
	}
	t, err := parseCalendarDate(raw, h.loc)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
		return time.Time{}, false
	}
	return t, true
}

// parseCalendarDate 接受 YYYY-MM-DD 或 RFC3339，结果换算到日历时区。
func parseCalendarDate(raw string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}

// parseTarget 按调用者角色读取目标参数。学生的目标参数被忽略。
func parseTarget(c *gin.Context, caller *model.SessionContext) (*uint, bool) {
	if caller == nil {
		return nil, true
	}
	name := policy.TargetParam(caller.Role)
	if name == "" {
		return nil, true
	}
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return nil, false
	}
	v := uint(id)
	return &v, true
}
