package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Thecaracter/be-berita/internal/models"
	"github.com/Thecaracter/be-berita/internal/token"
	"github.com/Thecaracter/be-berita/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const ctxIdentityKey = "currentIdentity"

// AuthMiddleware authenticates the bearer token and cross-checks it against
// the user's single stored session. A cryptographically valid token is still
// rejected when its fingerprint no longer matches the session row: that means
// a later login replaced it (single-device enforcement).
func AuthMiddleware(tokens *token.Service, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = parts[1]
			}
		}
		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, "Missing or invalid authorization header.")
			c.Abort()
			return
		}

		identity, err := tokens.ParseIdentity(tokenStr)
		if err != nil {
			if errors.Is(err, token.ErrExpired) {
				util.ErrorCode(c, http.StatusUnauthorized, util.CodeTokenExpired, "Access token expired.")
			} else {
				util.Error(c, http.StatusUnauthorized, "Invalid access token.")
			}
			c.Abort()
			return
		}

		var session models.Session
		err = db.Where("user_id = ?", identity.UserID).First(&session).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.ErrorCode(c, http.StatusUnauthorized, util.CodeSessionNotFound, "Session not found. Please log in again.")
			c.Abort()
			return
		}
		if err != nil {
			util.Error(c, http.StatusInternalServerError, "Internal server error.")
			c.Abort()
			return
		}

		if session.TokenHash != token.Hash(tokenStr) {
			util.ErrorCode(c, http.StatusUnauthorized, util.CodeSessionInvalidated, "Session invalidated. Another device has logged in.")
			c.Abort()
			return
		}

		c.Set(ctxIdentityKey, identity)
		c.Next()
	}
}

// CurrentIdentity returns the identity attached by AuthMiddleware.
func CurrentIdentity(c *gin.Context) (token.Identity, bool) {
	v, ok := c.Get(ctxIdentityKey)
	if !ok {
		return token.Identity{}, false
	}
	id, ok := v.(token.Identity)
	return id, ok
}
