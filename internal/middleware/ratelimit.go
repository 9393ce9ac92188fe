package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Thecaracter/be-berita/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// KeyFunc derives the fixed-window key for a request.
type KeyFunc func(c *gin.Context) string

// ByClientIP keys the window on the caller's IP.
func ByClientIP(c *gin.Context) string {
	return c.ClientIP()
}

// ByBodyEmail keys the window on the request body's email field, falling back
// to the client IP when the body has none. The body is read and restored so
// the handler can still bind it.
func ByBodyEmail(c *gin.Context) string {
	var bodyBytes []byte
	if c.Request.Body != nil {
		bodyBytes, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	}

	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(bodyBytes, &body); err == nil {
		if email := strings.ToLower(strings.TrimSpace(body.Email)); email != "" {
			return email
		}
	}
	return c.ClientIP()
}

// RateLimit rejects requests over the fixed window with 429 and the seconds
// left until the window resets.
func RateLimit(rate limiter.Rate, key KeyFunc, msg string) gin.HandlerFunc {
	instance := limiter.New(memory.NewStore(), rate)
	return func(c *gin.Context) {
		lctx, err := instance.Get(c, key(c))
		if err != nil {
			util.Error(c, http.StatusInternalServerError, "Internal server error.")
			c.Abort()
			return
		}
		if lctx.Reached {
			remaining := int(time.Until(time.Unix(lctx.Reset, 0)).Seconds())
			if remaining < 0 {
				remaining = 0
			}
			util.ErrorRetryAfter(c, http.StatusTooManyRequests, msg, remaining)
			c.Abort()
			return
		}
		c.Next()
	}
}
