// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"tigersai/internal/model"
	"tigersai/internal/service"
	"tigersai/pkg/log"
	"tigersai/pkg/token"
)

const (
	// ContextSessionKey 是会话快照在 gin.Context 中的键。
	ContextSessionKey = "session"
	cookieSessionID   = "sid"
	bearerPrefix      = "Bearer "
)

// SessionAuth 从 cookie 或 Bearer token 中解析会话 ID，并通过 SessionManager 校验。
type SessionAuth struct {
	store      sessions.Store
	cookieName string
	manager    service.SessionManager
	jwtManager *token.JWTManager
}

// NewSessionAuth 创建一个新的 SessionAuth。jwtManager 为 nil 时只接受 cookie。
func NewSessionAuth(store sessions.Store, cookieName string, manager service.SessionManager, jwtManager *token.JWTManager) *SessionAuth {
	return &SessionAuth{store: store, cookieName: cookieName, manager: manager, jwtManager: jwtManager}
}

// NewCookieStore 创建签名 cookie 存储，cookie 只保存会话 ID。
func NewCookieStore(secret string, maxAge int, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// SessionID 返回请求携带的会话 ID。
// 优先级：Authorization 头、token 查询参数（WebSocket 握手无法设置请求头）、cookie。
// token 校验失败时回退到 cookie。
func (a *SessionAuth) SessionID(r *http.Request) string {
	id, _ := a.sessionID(r)
	return id
}

// sessionID 额外返回会话 ID 是否来自 cookie。
func (a *SessionAuth) sessionID(r *http.Request) (string, bool) {
	if a.jwtManager != nil {
		raw := ""
		if header := r.Header.Get("Authorization"); strings.HasPrefix(header, bearerPrefix) {
			raw = strings.TrimPrefix(header, bearerPrefix)
		} else if q := r.URL.Query().Get("token"); q != "" {
			raw = q
		}
		if raw != "" {
			claims, err := a.jwtManager.VerifyToken(raw)
			if err == nil {
				return claims.SessionID, false
			}
			log.Warnw("无效的 bearer token", "error", err)
		}
	}
	sess, err := a.store.Get(r, a.cookieName)
	if err != nil {
		// 签名校验失败时 gorilla 仍返回一个新会话
		return "", false
	}
	id, _ := sess.Values[cookieSessionID].(string)
	return id, id != ""
}

// Bind 把会话 ID 写入 cookie。
func (a *SessionAuth) Bind(c *gin.Context, sessionID string) error {
	sess, _ := a.store.Get(c.Request, a.cookieName)
	sess.Values[cookieSessionID] = sessionID
	return sess.Save(c.Request, c.Writer)
}

// Clear 让浏览器删除会话 cookie。
func (a *SessionAuth) Clear(c *gin.Context) {
	sess, _ := a.store.Get(c.Request, a.cookieName)
	delete(sess.Values, cookieSessionID)
	sess.Options.MaxAge = -1
	if err := sess.Save(c.Request, c.Writer); err != nil {
		log.Warnw("清除会话 cookie 失败", "error", err)
	}
}

// resolve 校验会话；会话来自 cookie 时重新写出 cookie，使浏览器端的过期时间随请求滑动。
func (a *SessionAuth) resolve(c *gin.Context) (*model.SessionContext, error) {
	id, fromCookie := a.sessionID(c.Request)
	s, err := a.manager.Get(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if fromCookie {
		if err := a.Bind(c, s.ID); err != nil {
			log.Warnw("刷新会话 cookie 失败", "error", err)
		}
	}
	return s, nil
}

// RequireSession 用于 API 路由：会话无效时返回 401 JSON。
func (a *SessionAuth) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := a.resolve(c)
		if err != nil {
			if errors.Is(err, service.ErrAuthenticationRequired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized. Please log in."})
				return
			}
			log.Error("读取会话失败", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		c.Set(ContextSessionKey, s)
		c.Next()
	}
}

// RequireSessionPage 用于页面路由：会话无效时重定向到首页。
func (a *SessionAuth) RequireSessionPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := a.resolve(c)
		if err != nil {
			if !errors.Is(err, service.ErrAuthenticationRequired) {
				log.Error("读取会话失败", err)
			}
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Set(ContextSessionKey, s)
		c.Next()
	}
}

// CurrentSession 返回由 RequireSession 存入的会话，没有时为 nil。
func CurrentSession(c *gin.Context) *model.SessionContext {
	v, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*model.SessionContext)
	return s
}
