// Package naver wraps the Naver search API used to annotate screening
// candidates with their latest news headlines.
package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/wonny/avssa/pkg/config"
	"github.com/wonny/avssa/pkg/httputil"
	"github.com/wonny/avssa/pkg/logger"
)

const newsAPIURL = "https://openapi.naver.com/v1/search/news.json"

// 검색 API 호출 간격 (초당 10건)
const newsRequestsPerSecond = 10

// NewsItem is one news search hit with HTML stripped.
type NewsItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	PubDate     string `json:"pub_date"` // MM-DD HH:MM
}

// NewsClient calls the Naver news search API.
// ⭐ SSOT: 네이버 뉴스 검색 호출은 이 클라이언트에서만
type NewsClient struct {
	httpClient   *httputil.Client
	limiter      *rate.Limiter
	logger       *logger.Logger
	clientID     string
	clientSecret string
}

// NewNewsClient creates a news client from config. The client is usable
// regardless; IsConfigured gates actual calls.
func NewNewsClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *NewsClient {
	return &NewsClient{
		httpClient:   httpClient,
		limiter:      rate.NewLimiter(rate.Limit(newsRequestsPerSecond), 1),
		logger:       log,
		clientID:     cfg.Naver.ClientID,
		clientSecret: cfg.Naver.ClientSecret,
	}
}

// IsConfigured reports whether API credentials are present.
func (c *NewsClient) IsConfigured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// SearchNews fetches the latest news for a query (종목명), newest first.
func (c *NewsClient) SearchNews(ctx context.Context, query string, display int) ([]NewsItem, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("naver API credentials not configured")
	}
	if display <= 0 {
		display = 3
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("display", fmt.Sprintf("%d", display))
	params.Set("sort", "date")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, newsAPIURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create news request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", c.clientID)
	req.Header.Set("X-Naver-Client-Secret", c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Items []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Link        string `json:"link"`
			PubDate     string `json:"pubDate"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode news response: %w", err)
	}

	items := make([]NewsItem, 0, len(payload.Items))
	for _, it := range payload.Items {
		items = append(items, NewsItem{
			Title:       cleanHTML(it.Title),
			Description: cleanHTML(it.Description),
			Link:        it.Link,
			PubDate:     parseNewsDate(it.PubDate),
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"query": query,
		"count": len(items),
	}).Debug("Fetched news")

	return items, nil
}

// cleanHTML strips tags and entities from an API HTML fragment
// (제목/요약에 <b> 태그와 엔티티가 섞여 내려온다).
func cleanHTML(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// parseNewsDate converts "Mon, 02 Feb 2026 14:30:00 +0900" to "02-02 14:30".
func parseNewsDate(s string) string {
	t, err := time.Parse(time.RFC1123Z, s)
	if err != nil {
		if len(s) > 16 {
			return s[:16]
		}
		return s
	}
	return t.Format("01-02 15:04")
}
