package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"tigersai/internal/middleware"
	"tigersai/internal/service"
	"tigersai/pkg/log"
)

// 保持默认的同源检查，会话依赖 cookie。
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// maxFrameSize WebSocket 单条消息的最大字节数。
const maxFrameSize = 64 << 10

// ChatHandler 负责处理聊天请求，包括普通 HTTP 与 WebSocket。
type ChatHandler struct {
	chatService service.ChatService
	sessions    service.SessionManager
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService, sessions service.SessionManager) *ChatHandler {
	return &ChatHandler{chatService: chatService, sessions: sessions}
}

// ChatRequest 是聊天请求体。
type ChatRequest struct {
	UserMessage string `json:"userMessage" form:"userMessage"`
}

// ChatReply 是一轮对话的响应。
type ChatReply struct {
	UserMessage string `json:"userMessage"`
	BotResponse string `json:"botResponse"`
}

// Ask 处理 POST /chat。
func (h *ChatHandler) Ask(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBind(&req); err != nil {
		abortWithError(c, service.ErrEmptyMessage)
		return
	}
	entry, err := h.chatService.Ask(c.Request.Context(), middleware.CurrentSession(c), req.UserMessage)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ChatReply{UserMessage: entry.UserMessage, BotResponse: entry.BotResponse})
}

// Stream 处理 GET /chat/ws。每条文本消息视为一次提问，可以是纯文本或 {"userMessage": "..."}。
func (h *ChatHandler) Stream(c *gin.Context) {
	caller := middleware.CurrentSession(c)
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxFrameSize)

	log.Infow("WebSocket 连接已建立", "username", caller.Username)
	ctx := c.Request.Context()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnw("从 WebSocket 读取消息失败", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		// 每条消息都重新校验会话，空闲过期后断开
		current, err := h.sessions.Get(ctx, caller.ID)
		if err != nil {
			_, msg := errorStatus(err)
			writeFrame(conn, gin.H{"error": msg})
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, msg))
			return
		}

		entry, err := h.chatService.Ask(ctx, current, frameMessage(data))
		if err != nil {
			_, msg := errorStatus(err)
			if errors.Is(err, service.ErrStorage) || errors.Is(err, service.ErrCollaboratorFailed) {
				log.Errorw("WebSocket 对话失败", "username", current.Username, "error", err)
			}
			writeFrame(conn, gin.H{"error": msg})
			continue
		}
		writeFrame(conn, ChatReply{UserMessage: entry.UserMessage, BotResponse: entry.BotResponse})
	}
}

func frameMessage(data []byte) string {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var req ChatRequest
		if err := json.Unmarshal(data, &req); err == nil {
			return req.UserMessage
		}
	}
	return string(data)
}

func writeFrame(conn *websocket.Conn, v interface{}) {
	if err := conn.WriteJSON(v); err != nil {
		log.Warnw("写入 WebSocket 消息失败", "error", err)
	}
}
