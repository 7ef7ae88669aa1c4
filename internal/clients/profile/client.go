// Package profile provides a client for the company social-profile proxy
package profile

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
	DefaultBaseURL   = "https://unassigned-api.herokuapp.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second

	statisticsFields = "id,name,website,description,category,fan_count,posts{likes,comments,created_time}"
)

// Client implements interfaces.ProfileClient
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

var _ interfaces.ProfileClient = (*Client)(nil)

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

// NewClient creates a new profile client
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

// APIError represents a non-200 response from the proxy
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("profile API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Is reports the error as a source outage
func (e *APIError) Is(target error) bool {
	return target == common.ErrSourceUnavailable
}

type profileResponse struct {
	Data *profileData `json:"data"`
}

type profileData struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Website     string    `json:"website"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	FanCount    int64     `json:"fan_count"`
	Posts       postsList `json:"posts"`
}

type postData struct {
	CreatedTime string `json:"created_time"`
	Likes       int64  `json:"likes"`
	Comments    int64  `json:"comments"`
}

// postsList accepts either a bare array or a Graph-style {"data": [...]} edge
type postsList []postData

func (p *postsList) UnmarshalJSON(data []byte) error {
	var arr []postData
	if err := json.Unmarshal(data, &arr); err == nil {
		*p = arr
		return nil
	}
	var edge struct {
		Data []postData `json:"data"`
	}
	if err := json.Unmarshal(data, &edge); err != nil {
		return fmt.Errorf("cannot unmarshal posts: %w", err)
	}
	*p = edge.Data
	return nil
}

// GetProfile retrieves a company profile with posts created between from and to.
func (c *Client) GetProfile(ctx context.Context, code string, from, to time.Time) (*models.CompanyProfile, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("statistics", statisticsFields)
	if !from.IsZero() {
		params.Set("start_date", from.Format(models.DateLayout))
	}
	if !to.IsZero() {
		params.Set("end_date", to.Format(models.DateLayout))
	}
	params.Set("workaround", "true")

	path := "/" + url.PathEscape(code)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("code", code).Msg("Profile API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(common.ErrSourceUnavailable, fmt.Errorf("failed to execute request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	var pr profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, errors.Join(common.ErrSourceUnavailable, fmt.Errorf("failed to decode response: %w", err))
	}
	if pr.Data == nil {
		return nil, errors.Join(common.ErrSourceUnavailable, fmt.Errorf("profile for %s has no data", code))
	}

	profile := &models.CompanyProfile{
		Name:        pr.Data.Name,
		Code:        code,
		Website:     pr.Data.Website,
		Description: pr.Data.Description,
		Category:    pr.Data.Category,
		FanCount:    pr.Data.FanCount,
		Posts:       make([]models.Post, 0, len(pr.Data.Posts)),
	}
	for _, p := range pr.Data.Posts {
		created, err := parseCreatedTime(p.CreatedTime)
		if err != nil {
			c.logger.Debug().Str("code", code).Str("created_time", p.CreatedTime).Msg("Skipping post with unparseable time")
			continue
		}
		profile.Posts = append(profile.Posts, models.Post{
			CreatedTime: created,
			Likes:       p.Likes,
			Comments:    p.Comments,
		})
	}

	return profile, nil
}

// parseCreatedTime handles Graph API timestamps ("+0000" offsets) and RFC3339
func parseCreatedTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04:05-0700", time.RFC3339, models.DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised created_time %q", s)
}
