package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"foodgram/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger writes one line per request, at a level picked by status.
func RequestLogger(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"query", c.Request.URL.RawQuery,
			"status", status,
			"client_ip", c.ClientIP(),
			"user_id", c.GetInt64("user_id"),
			"request_id", requestID(c),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		for _, err := range c.Errors {
			fields = append(fields, "error", err.Error())
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Errorw("HTTP request", fields...)
		case status >= http.StatusBadRequest:
			log.Warnw("HTTP request", fields...)
		default:
			log.Infow("HTTP request", fields...)
		}
	}
}

// Recovery turns a panic into a 500 envelope and logs the stack.
func Recovery(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				log.Errorw("panic recovered",
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"request_id", requestID(c),
					"error", fmt.Sprintf("%v", recovered),
					"stack", string(debug.Stack()),
				)
				response.Abort(c, http.StatusInternalServerError, response.CodeInternal, "Internal Server Error")
			}
		}()
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = c.GetHeader("X-Request-Id")
	}
	return requestID
}
