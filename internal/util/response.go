package util

import "github.com/gin-gonic/gin"

// Symbolic error codes surfaced to clients so they can react specifically
// instead of treating every 401 alike.
const (
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeSessionNotFound    = "SESSION_NOT_FOUND"
	CodeSessionInvalidated = "SESSION_INVALIDATED"
)

// Error writes the standard error envelope.
func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// ErrorCode writes the error envelope with a symbolic code.
func ErrorCode(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{"error": msg, "code": code})
}

// ErrorRetryAfter writes the rate-limit envelope with the remaining cooldown.
func ErrorRetryAfter(c *gin.Context, status int, msg string, remainingSeconds int) {
	c.JSON(status, gin.H{"error": msg, "remainingSeconds": remainingSeconds})
}
