// Package news proxies the upstream news search API with a short response
// cache in front, so bursts of identical queries cost one upstream call per
// cache window.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Thecaracter/be-berita/internal/cache"
	"github.com/Thecaracter/be-berita/internal/config"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// SupportedCategories lists the browsable category slugs.
var SupportedCategories = []string{"technology", "business", "health", "entertainment", "sports", "science"}

var categoryKeywords = map[string]string{
	"technology":    "technology OR tech OR AI OR software",
	"business":      "business OR economy OR market OR finance",
	"health":        "health OR medicine OR covid OR wellness",
	"entertainment": "entertainment OR movie OR music OR celebrity",
	"sports":        "sports OR football OR basketball OR soccer",
	"science":       "science OR space OR nasa OR research",
}

const browseQuery = "world OR global OR news OR breaking"

// Article mirrors the upstream article shape the frontend depends on.
type Article struct {
	Source struct {
		ID   *string `json:"id"`
		Name string  `json:"name"`
	} `json:"source"`
	Author      *string `json:"author"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	URLToImage  string  `json:"urlToImage"`
	PublishedAt string  `json:"publishedAt"`
	Content     string  `json:"content"`
}

type upstreamResponse struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
	Code         string    `json:"code"`
	Message      string    `json:"message"`
}

// Result is the proxy response body.
type Result struct {
	TotalResults int       `json:"totalResults"`
	Page         int       `json:"page"`
	PageSize     int       `json:"pageSize"`
	SortBy       string    `json:"sortBy,omitempty"`
	Query        string    `json:"query,omitempty"`
	Category     string    `json:"category,omitempty"`
	Articles     []Article `json:"articles"`
}

// Error carries the HTTP status the proxy should answer with.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// Client calls the upstream API and owns the response cache.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cache   *cache.Cache
	clock   clockwork.Clock
	log     *zap.Logger
}

func NewClient(cfg config.NewsConfig, clock clockwork.Clock, log *zap.Logger) *Client {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		cache:   cache.New(time.Duration(cfg.CacheTTLSeconds)*time.Second, cfg.CacheMaxEntries, clock),
		clock:   clock,
		log:     log,
	}
}

// Browse returns the curated world feed. Articles without an image are
// filtered out here, matching the original feed behavior.
func (c *Client) Browse(ctx context.Context, page, pageSize int, sortBy string) ([]byte, *Error) {
	key := fmt.Sprintf("everything-%d-%d-%s", page, pageSize, sortBy)
	return c.cached(ctx, key, browseQuery, page, pageSize, sortBy, true, func(r *Result) {
		r.SortBy = sortBy
	})
}

// Search runs a free-text query.
func (c *Client) Search(ctx context.Context, q string, page, pageSize int, sortBy string) ([]byte, *Error) {
	key := fmt.Sprintf("search-%s-%d-%d-%s", q, page, pageSize, sortBy)
	return c.cached(ctx, key, q, page, pageSize, sortBy, false, func(r *Result) {
		r.SortBy = sortBy
		r.Query = q
	})
}

// Category maps a category slug to its keyword query. Slugs outside
// SupportedCategories answer 400.
func (c *Client) Category(ctx context.Context, category string, page, pageSize int, sortBy string) ([]byte, *Error) {
	q, ok := categoryKeywords[category]
	if !ok {
		return nil, &Error{Status: http.StatusBadRequest, Message: "Kategori tidak valid."}
	}
	key := fmt.Sprintf("category-%s-%d-%d-%s", category, page, pageSize, sortBy)
	return c.cached(ctx, key, q, page, pageSize, sortBy, false, func(r *Result) {
		r.SortBy = sortBy
		r.Category = category
	})
}

func (c *Client) cached(ctx context.Context, key, q string, page, pageSize int, sortBy string, requireImage bool, decorate func(*Result)) ([]byte, *Error) {
	if data, ok := c.cache.Get(key); ok {
		return data, nil
	}

	up, nerr := c.fetch(ctx, q, page, pageSize, sortBy)
	if nerr != nil {
		return nil, nerr
	}

	articles := make([]Article, 0, len(up.Articles))
	for _, a := range up.Articles {
		if a.Title == "[Removed]" {
			continue
		}
		if requireImage && a.URLToImage == "" {
			continue
		}
		articles = append(articles, a)
	}

	result := &Result{
		TotalResults: up.TotalResults,
		Page:         page,
		PageSize:     pageSize,
		Articles:     articles,
	}
	decorate(result)

	data, err := json.Marshal(result)
	if err != nil {
		return nil, &Error{Status: http.StatusInternalServerError, Message: "Gagal mengambil berita."}
	}
	c.cache.Set(key, data)
	return data, nil
}

func (c *Client) fetch(ctx context.Context, q string, page, pageSize int, sortBy string) (*upstreamResponse, *Error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("from", c.clock.Now().AddDate(0, 0, -30).Format("2006-01-02"))
	params.Set("sortBy", sortBy)
	params.Set("language", "en")
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/everything?"+params.Encode(), nil)
	if err != nil {
		return nil, &Error{Status: http.StatusInternalServerError, Message: "Gagal mengambil berita."}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("news upstream unreachable", zap.Error(err))
		return nil, &Error{Status: http.StatusServiceUnavailable, Message: "Tidak bisa terhubung ke layanan berita. Periksa koneksi internet."}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return nil, &Error{Status: http.StatusInternalServerError, Message: "News API key tidak valid atau belum diset."}
	case http.StatusTooManyRequests:
		return nil, &Error{Status: http.StatusServiceUnavailable, Message: "News API rate limit. Coba beberapa saat lagi."}
	}

	var up upstreamResponse
	if err := json.NewDecoder(resp.Body).Decode(&up); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &Error{Status: resp.StatusCode, Message: "News API error."}
		}
		c.log.Warn("news upstream bad payload", zap.Error(err))
		return nil, &Error{Status: http.StatusServiceUnavailable, Message: "Tidak bisa terhubung ke layanan berita. Periksa koneksi internet."}
	}

	if resp.StatusCode != http.StatusOK {
		msg := up.Message
		if msg == "" {
			msg = "News API error."
		}
		return nil, &Error{Status: resp.StatusCode, Message: msg}
	}
	return &up, nil
}
