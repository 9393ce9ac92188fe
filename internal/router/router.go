package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Thecaracter/be-berita/internal/config"
	"github.com/Thecaracter/be-berita/internal/handler"
	"github.com/Thecaracter/be-berita/internal/mail"
	"github.com/Thecaracter/be-berita/internal/middleware"
	"github.com/Thecaracter/be-berita/internal/news"
	"github.com/Thecaracter/be-berita/internal/otp"
	"github.com/Thecaracter/be-berita/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps bundles the shared services the route handlers need.
type Deps struct {
	DB     *gorm.DB
	Tokens *token.Service
	OTP    *otp.Ledger
	Mailer mail.Mailer
	News   *news.Client
	Log    *zap.Logger
}

// SetupRouter configures the Gin engine with all API routes.
func SetupRouter(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"app":       "YB News API",
			"version":   "1.0.0",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("Route %s %s not found.", c.Request.Method, c.Request.URL.Path),
		})
	})

	api := r.Group("/api")

	authHandler := handler.NewAuthHandler(d.DB, d.Tokens, d.OTP, d.Mailer, cfg.Security.BcryptCost, d.Log)

	loginLimit := middleware.RateLimit(
		limiter.Rate{Period: 15 * time.Minute, Limit: 10},
		middleware.ByClientIP,
		"Too many login attempts. Try again later.",
	)
	forgotLimit := middleware.RateLimit(
		limiter.Rate{Period: 3 * time.Minute, Limit: 1},
		middleware.ByBodyEmail,
		"Please wait before requesting a new OTP.",
	)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", loginLimit, authHandler.Login)
	auth.POST("/verify-otp", authHandler.VerifyOTP)
	auth.POST("/resend-otp", authHandler.ResendOTP)
	auth.POST("/forgot-password", forgotLimit, authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)

	newsHandler := handler.NewNewsHandler(d.News)
	api.GET("/news", newsHandler.Browse)
	api.GET("/news/search", newsHandler.Search)
	api.GET("/news/categories", newsHandler.Categories)
	api.GET("/news/category/:category", newsHandler.Category)

	commentHandler := handler.NewCommentHandler(d.DB, d.Log)
	api.GET("/comments", commentHandler.List)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(d.Tokens, d.DB))

	protected.GET("/auth/me", authHandler.Me)
	protected.POST("/auth/logout", authHandler.Logout)
	protected.DELETE("/auth/account", authHandler.DeleteAccount)

	bookmarkHandler := handler.NewBookmarkHandler(d.DB, d.Log)
	protected.GET("/bookmarks", bookmarkHandler.List)
	protected.POST("/bookmarks", bookmarkHandler.Create)
	protected.GET("/bookmarks/export/csv", bookmarkHandler.ExportCSV)
	protected.GET("/bookmarks/export/xlsx", bookmarkHandler.ExportXLSX)
	// register before /:id so "by-url" is not matched as an id
	protected.DELETE("/bookmarks/by-url", bookmarkHandler.DeleteByURL)
	protected.DELETE("/bookmarks/:id", bookmarkHandler.Delete)

	likeHandler := handler.NewLikeHandler(d.DB, d.Log)
	protected.GET("/likes", likeHandler.Status)
	protected.POST("/likes", likeHandler.Toggle)

	protected.POST("/comments", commentHandler.Create)
	protected.PUT("/comments/:id", commentHandler.Update)
	protected.DELETE("/comments/:id", commentHandler.Delete)

	return r
}
