package handler

import (
	"net/http"
	"testing"

	"github.com/Thecaracter/be-berita/internal/models"

	"github.com/gin-gonic/gin"
)

func TestLikeToggle(t *testing.T) {
	e := newAuthEnv(t)
	e.registerVerified(t, "siti@example.com", "pass1234")
	tok := e.login(t, "siti@example.com", "pass1234")

	// someone else liked it already
	other := models.User{FullName: "Andi", Email: "andi@example.com", PasswordHash: "x"}
	if err := e.db.Create(&other).Error; err != nil {
		t.Fatalf("seed other: %v", err)
	}
	e.db.Create(&models.Like{UserID: other.ID, ArticleURL: "https://example.com/a"})

	payload := gin.H{"article_url": "https://example.com/a"}

	w, body := e.do(t, http.MethodPost, "/api/likes", payload, tok)
	if w.Code != http.StatusCreated || body["is_liked"] != true {
		t.Fatalf("first toggle: got %d %v", w.Code, body)
	}
	if body["total_likes"] != float64(2) {
		t.Fatalf("total_likes = %v, want 2", body["total_likes"])
	}

	w, body = e.do(t, http.MethodPost, "/api/likes", payload, tok)
	if w.Code != http.StatusOK || body["is_liked"] != false {
		t.Fatalf("second toggle: got %d %v", w.Code, body)
	}
	if body["total_likes"] != float64(1) {
		t.Fatalf("total_likes = %v, want 1", body["total_likes"])
	}
}

func TestLikeStatus(t *testing.T) {
	e := newAuthEnv(t)
	e.registerVerified(t, "siti@example.com", "pass1234")
	tok := e.login(t, "siti@example.com", "pass1234")

	w, body := e.do(t, http.MethodGet, "/api/likes", nil, tok)
	if w.Code != http.StatusBadRequest || body["error"] != "article_url wajib diisi." {
		t.Fatalf("missing article_url: got %d %v", w.Code, body["error"])
	}

	w, body = e.do(t, http.MethodGet, "/api/likes?article_url=https://example.com/a", nil, tok)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	if body["total_likes"] != float64(0) || body["is_liked"] != false {
		t.Fatalf("fresh article: %v", body)
	}

	e.do(t, http.MethodPost, "/api/likes", gin.H{"article_url": "https://example.com/a"}, tok)

	w, body = e.do(t, http.MethodGet, "/api/likes?article_url=https://example.com/a", nil, tok)
	if w.Code != http.StatusOK || body["is_liked"] != true || body["total_likes"] != float64(1) {
		t.Fatalf("after like: got %d %v", w.Code, body)
	}
}
