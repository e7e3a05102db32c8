package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/srgjo27/tripdesk/internal/platform/auth"
)

const (
	requestIDKey = "request_id"
	operatorKey  = "operator"
)

// RequestID makes sure every request carries an X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set("X-Request-ID", rid)
		c.Next()
	}
}

// RequestLogger logs one line per request, at error level for 5xx and for
// requests that recorded errors.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(requestIDKey),
		}
		if op := c.GetString(operatorKey); op != "" {
			attrs = append(attrs, "operator", op)
		}

		switch {
		case len(c.Errors) > 0:
			log.Error("request failed", append(attrs, "error", c.Errors.String())...)
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("request failed", attrs...)
		default:
			log.Info("request", attrs...)
		}
	}
}

// AdminAuth admits bearer tokens carrying the admin role.
func AdminAuth(tokens *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.Abort()
			failure(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")))
		if err != nil {
			c.Abort()
			failure(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
			return
		}
		if claims.Role != auth.RoleAdmin {
			c.Abort()
			failure(c, http.StatusForbidden, "FORBIDDEN", "admin role required")
			return
		}

		c.Set(operatorKey, claims.Subject)
		c.Next()
	}
}
