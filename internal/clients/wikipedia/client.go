// Package wikipedia provides a MediaWiki client for company summaries
package wikipedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/eventstock/internal/common"
	"github.com/bobmcallan/eventstock/internal/interfaces"
)

const (
	DefaultBaseURL   = "https://en.wikipedia.org/w/api.php"
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 10 // requests per second
	userAgent        = "EventStock/1.0 (report generator)"
)

// Client implements interfaces.EncyclopediaClient
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

var _ interfaces.EncyclopediaClient = (*Client)(nil)

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the API endpoint
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new MediaWiki client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a non-200 response
type APIError struct {
	StatusCode int
	Message    string
	Title      string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wikipedia API error: %s (status: %d, title: %s)", e.Message, e.StatusCode, e.Title)
}

// Is reports the error as a source outage
func (e *APIError) Is(target error) bool {
	return target == common.ErrSourceUnavailable
}

type queryResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string  `json:"title"`
			Extract string  `json:"extract"`
			Missing *string `json:"missing"`
		} `json:"pages"`
	} `json:"query"`
}

// GetSummary returns the introduction of the page titled title as plain text.
// A missing page yields an empty string.
func (c *Client) GetSummary(ctx context.Context, title string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts")
	params.Set("exintro", "1")
	params.Set("redirects", "1")
	params.Set("format", "json")
	params.Set("titles", title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug().Str("title", title).Msg("Wikipedia API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Join(common.ErrSourceUnavailable, fmt.Errorf("failed to execute request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &APIError{StatusCode: resp.StatusCode, Message: string(body), Title: title}
	}

	var qr queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return "", errors.Join(common.ErrSourceUnavailable, fmt.Errorf("failed to decode response: %w", err))
	}

	for _, page := range qr.Query.Pages {
		if page.Missing != nil || page.Extract == "" {
			continue
		}
		return ExtractText(page.Extract)
	}
	return "", nil
}

// ExtractText converts an HTML extract into whitespace-normalised text,
// dropping reference markers and pronunciation spans.
func ExtractText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse extract: %w", err)
	}
	doc.Find("sup, style, script, .mw-empty-elt, .noexcerpt").Remove()

	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := strings.Join(strings.Fields(s.Text()), " "); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) == 0 {
		return strings.Join(strings.Fields(doc.Text()), " "), nil
	}
	return strings.Join(paragraphs, " "), nil
}
