package news

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Thecaracter/be-berita/internal/config"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server, *clockwork.FakeClock) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	clock := clockwork.NewFakeClock()
	c := NewClient(config.NewsConfig{
		BaseURL:         srv.URL,
		APIKey:          "test-key",
		TimeoutSeconds:  5,
		CacheTTLSeconds: 300,
		CacheMaxEntries: 16,
	}, clock, zap.NewNop())
	return c, srv, clock
}

func upstreamOK(articles []Article) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(upstreamResponse{
			Status:       "ok",
			TotalResults: len(articles),
			Articles:     articles,
		})
	}
}

func article(title, image string) Article {
	a := Article{Title: title, URLToImage: image, URL: "https://example.com/" + title}
	a.Source.Name = "Test Source"
	return a
}

func TestSearchFiltersRemoved(t *testing.T) {
	c, _, _ := newTestClient(t, upstreamOK([]Article{
		article("kept", ""),
		article("[Removed]", "img"),
	}))

	data, nerr := c.Search(context.Background(), "golang", 1, 20, "publishedAt")
	if nerr != nil {
		t.Fatalf("Search: %v", nerr)
	}

	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(res.Articles) != 1 || res.Articles[0].Title != "kept" {
		t.Errorf("articles = %+v, want only 'kept'", res.Articles)
	}
	if res.Query != "golang" || res.Page != 1 {
		t.Errorf("result meta = %+v", res)
	}
}

func TestBrowseRequiresImage(t *testing.T) {
	c, _, _ := newTestClient(t, upstreamOK([]Article{
		article("with-image", "https://img.example.com/1.jpg"),
		article("no-image", ""),
	}))

	data, nerr := c.Browse(context.Background(), 1, 20, "publishedAt")
	if nerr != nil {
		t.Fatalf("Browse: %v", nerr)
	}

	var res Result
	json.Unmarshal(data, &res)
	if len(res.Articles) != 1 || res.Articles[0].Title != "with-image" {
		t.Errorf("articles = %+v, want only 'with-image'", res.Articles)
	}
}

func TestCacheSkipsUpstream(t *testing.T) {
	calls := 0
	c, _, clock := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		upstreamOK(nil)(w, r)
	})

	for i := 0; i < 3; i++ {
		if _, nerr := c.Search(context.Background(), "cached", 1, 20, "publishedAt"); nerr != nil {
			t.Fatalf("Search #%d: %v", i, nerr)
		}
	}
	if calls != 1 {
		t.Errorf("upstream calls = %d, want 1 (cache)", calls)
	}

	// distinct params are distinct cache keys
	c.Search(context.Background(), "cached", 2, 20, "publishedAt")
	if calls != 2 {
		t.Errorf("upstream calls = %d, want 2", calls)
	}

	// window expired: next request refetches
	clock.Advance(301 * time.Second)
	c.Search(context.Background(), "cached", 1, 20, "publishedAt")
	if calls != 3 {
		t.Errorf("upstream calls = %d, want 3 after TTL", calls)
	}
}

func TestUpstreamErrorMapping(t *testing.T) {
	tests := []struct {
		name         string
		upstreamCode int
		wantStatus   int
	}{
		{"bad key", http.StatusUnauthorized, http.StatusInternalServerError},
		{"rate limited", http.StatusTooManyRequests, http.StatusServiceUnavailable},
		{"other", http.StatusBadRequest, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.upstreamCode)
				json.NewEncoder(w).Encode(upstreamResponse{Status: "error", Message: "boom"})
			})

			_, nerr := c.Search(context.Background(), "q", 1, 20, "publishedAt")
			if nerr == nil {
				t.Fatal("Search err = nil, want mapped error")
			}
			if nerr.Status != tt.wantStatus {
				t.Errorf("status = %d, want %d", nerr.Status, tt.wantStatus)
			}
		})
	}
}

func TestUnknownCategory(t *testing.T) {
	c, _, _ := newTestClient(t, upstreamOK(nil))
	_, nerr := c.Category(context.Background(), "weather", 1, 20, "publishedAt")
	if nerr == nil || nerr.Status != http.StatusBadRequest {
		t.Errorf("Category(weather) = %v, want 400", nerr)
	}
}

func TestErrorsAreNotCached(t *testing.T) {
	calls := 0
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	})

	c.Search(context.Background(), "q", 1, 20, "publishedAt")
	c.Search(context.Background(), "q", 1, 20, "publishedAt")
	if calls != 2 {
		t.Errorf("upstream calls = %d, want 2 (errors must not cache)", calls)
	}
}
