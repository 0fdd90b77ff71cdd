// Package middleware 存放 Gin 框架的中间件。
package middleware

import (
	"bytes"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"tigersai/pkg/log"
)

// maxLoggedBody 请求/响应体在日志中保留的最大字节数。
const maxLoggedBody = 2048

const redacted = "[REDACTED]"

// bodyLogWriter 用于捕获响应体
type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write 实现了 io.Writer 接口，将响应写入 gin.ResponseWriter 和一个内部的 buffer
func (w bodyLogWriter) Write(b []byte) (int, error) {
	if room := maxLoggedBody - w.body.Len(); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		w.body.Write(b[:room])
	}
	return w.ResponseWriter.Write(b)
}

// RequestLogger 是一个 Gin 中间件，用于记录请求和响应日志。
// redactPaths 中的路径不记录请求体（例如登录密码）。
func RequestLogger(redactPaths ...string) gin.HandlerFunc {
	redact := make(map[string]struct{}, len(redactPaths))
	for _, p := range redactPaths {
		redact[p] = struct{}{}
	}
	return func(c *gin.Context) {
		startTime := time.Now()
		path := c.Request.URL.Path

		// 读取并重新缓存请求体
		var requestBody []byte
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))

		blw := &bodyLogWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		loggedBody := string(requestBody)
		if _, ok := redact[path]; ok && len(requestBody) > 0 {
			loggedBody = redacted
		} else if len(loggedBody) > maxLoggedBody {
			loggedBody = loggedBody[:maxLoggedBody]
		}

		log.Infow("HTTP Request Log",
			"statusCode", c.Writer.Status(),
			"latency", time.Since(startTime).String(),
			"clientIP", c.ClientIP(),
			"method", c.Request.Method,
			"path", path,
			"requestBody", loggedBody,
			"responseBody", blw.body.String(),
		)
	}
}
