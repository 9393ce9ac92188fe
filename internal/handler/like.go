package handler

import (
	"errors"
	"net/http"

	"github.com/Thecaracter/be-berita/internal/middleware"
	"github.com/Thecaracter/be-berita/internal/models"
	"github.com/Thecaracter/be-berita/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LikeHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewLikeHandler(db *gorm.DB, log *zap.Logger) *LikeHandler {
	return &LikeHandler{DB: db, Log: log}
}

func (h *LikeHandler) countLikes(articleURL string) (int64, error) {
	var total int64
	err := h.DB.Model(&models.Like{}).Where("article_url = ?", articleURL).Count(&total).Error
	return total, err
}

// Status reports the article's like count and whether the caller liked it.
func (h *LikeHandler) Status(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	articleURL := c.Query("article_url")
	if articleURL == "" {
		util.Error(c, http.StatusBadRequest, "article_url wajib diisi.")
		return
	}

	total, err := h.countLikes(articleURL)
	if err != nil {
		h.Log.Error("count likes", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}

	var like models.Like
	err = h.DB.Where("user_id = ? AND article_url = ?", identity.UserID, articleURL).
		First(&like).Error
	isLiked := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		h.Log.Error("load like", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"article_url": articleURL,
		"total_likes": total,
		"is_liked":    isLiked,
	})
}

type toggleLikeReq struct {
	ArticleURL string `json:"article_url"`
}

// Toggle likes the article if the caller has not, unlikes it otherwise.
func (h *LikeHandler) Toggle(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	var req toggleLikeReq
	if err := c.ShouldBindJSON(&req); err != nil || req.ArticleURL == "" {
		util.Error(c, http.StatusBadRequest, "article_url wajib diisi.")
		return
	}

	var existing models.Like
	err := h.DB.Where("user_id = ? AND article_url = ?", identity.UserID, req.ArticleURL).
		First(&existing).Error

	switch {
	case err == nil:
		if err := h.DB.Delete(&existing).Error; err != nil {
			h.Log.Error("delete like", zap.Error(err))
			util.Error(c, http.StatusInternalServerError, "Internal server error.")
			return
		}
		total, _ := h.countLikes(req.ArticleURL)
		c.JSON(http.StatusOK, gin.H{
			"message":     "Like removed.",
			"is_liked":    false,
			"total_likes": total,
		})

	case errors.Is(err, gorm.ErrRecordNotFound):
		like := models.Like{UserID: identity.UserID, ArticleURL: req.ArticleURL}
		if err := h.DB.Create(&like).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			h.Log.Error("create like", zap.Error(err))
			util.Error(c, http.StatusInternalServerError, "Internal server error.")
			return
		}
		total, _ := h.countLikes(req.ArticleURL)
		c.JSON(http.StatusCreated, gin.H{
			"message":     "Liked.",
			"is_liked":    true,
			"total_likes": total,
		})

	default:
		h.Log.Error("load like", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
	}
}
