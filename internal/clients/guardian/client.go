// Package guardian provides a client for the Guardian content search API
package guardian

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

	"golang.org/x/time/rate"

	"github.com/bobmcallan/eventstock/internal/common"
	"github.com/bobmcallan/eventstock/internal/interfaces"
	"github.com/bobmcallan/eventstock/internal/models"
)

const (
	DefaultBaseURL   = "https://content.guardianapis.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
	PageSize         = 100
)

// Client implements interfaces.NewsClient
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

var _ interfaces.NewsClient = (*Client)(nil)

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
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

// NewClient creates a new Guardian client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
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

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Guardian API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Is reports the error as a source outage
func (e *APIError) Is(target error) bool {
	return target == common.ErrSourceUnavailable
}

type searchResponse struct {
	Response struct {
		Status  string         `json:"status"`
		Message string         `json:"message"`
		Results []searchResult `json:"results"`
	} `json:"response"`
}

type searchResult struct {
	WebTitle           string `json:"webTitle"`
	WebURL             string `json:"webUrl"`
	WebPublicationDate string `json:"webPublicationDate"`
	Fields             struct {
		BodyText string `json:"bodyText"`
	} `json:"fields"`
	Blocks struct {
		Main *struct {
			CreatedDate string `json:"createdDate"`
		} `json:"main"`
	} `json:"blocks"`
}

// Search runs a keyword search; keywords are combined with AND
func (c *Client) Search(ctx context.Context, query models.NewsQuery) (*models.NewsCorpus, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("q", strings.Join(query.Keywords, " AND "))
	if !query.From.IsZero() {
		params.Set("from-date", query.From.Format(models.DateLayout))
	}
	if !query.To.IsZero() {
		params.Set("to-date", query.To.Format(models.DateLayout))
	}
	params.Set("page-size", fmt.Sprintf("%d", PageSize))
	params.Set("show-blocks", "main,body")
	params.Set("show-fields", "bodyText,thumbnail")
	params.Set("api-key", c.apiKey)

	path := "/search"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Strs("keywords", query.Keywords).Msg("Guardian API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(common.ErrSourceUnavailable, fmt.Errorf("failed to execute request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body), Endpoint: path}
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, errors.Join(common.ErrSourceUnavailable, fmt.Errorf("failed to decode response: %w", err))
	}
	if sr.Response.Status != "" && sr.Response.Status != "ok" {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: sr.Response.Message, Endpoint: path}
	}

	corpus := &models.NewsCorpus{Results: make([]models.Article, 0, len(sr.Response.Results))}
	for _, r := range sr.Response.Results {
		published, _ := time.Parse(time.RFC3339, r.WebPublicationDate)
		created := published
		if r.Blocks.Main != nil {
			if t, err := time.Parse(time.RFC3339, r.Blocks.Main.CreatedDate); err == nil {
				created = t
			}
		}
		corpus.Results = append(corpus.Results, models.Article{
			WebTitle:           r.WebTitle,
			WebURL:             r.WebURL,
			WebPublicationDate: published.UTC(),
			BodyText:           r.Fields.BodyText,
			MainCreatedDate:    created.UTC(),
		})
	}

	return corpus, nil
}
