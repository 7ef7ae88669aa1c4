// Package alphavantage provides a client for the Alpha Vantage daily series API
package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/eventstock/internal/common"
	"github.com/bobmcallan/eventstock/internal/interfaces"
	"github.com/bobmcallan/eventstock/internal/models"
)

const (
	DefaultBaseURL   = "https://www.alphavantage.co/query"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 1 // requests per second
)

// Client implements interfaces.StockClient
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

var _ interfaces.StockClient = (*Client)(nil)

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
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

// NewClient creates a new Alpha Vantage client
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

// APIError represents an API error. Alpha Vantage reports quota and symbol
// errors in a 200 body, so StatusCode may be 200.
type APIError struct {
	StatusCode int
	Message    string
	Symbol     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Alpha Vantage API error: %s (status: %d, symbol: %s)", e.Message, e.StatusCode, e.Symbol)
}

// Is reports the error as a source outage
func (e *APIError) Is(target error) bool {
	return target == common.ErrSourceUnavailable
}

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("cannot unmarshal %s into float64", string(data))
	}
	num, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat64(num)
	return nil
}

type dailyBar struct {
	Open   flexFloat64 `json:"1. open"`
	High   flexFloat64 `json:"2. high"`
	Low    flexFloat64 `json:"3. low"`
	Close  flexFloat64 `json:"4. close"`
	Volume flexFloat64 `json:"5. volume"`
}

type dailyResponse struct {
	TimeSeries   map[string]dailyBar `json:"Time Series (Daily)"`
	ErrorMessage string              `json:"Error Message"`
	Note         string              `json:"Note"`
	Information  string              `json:"Information"`
}

// GetDailySeries retrieves the full daily history for symbol, ascending by date
func (c *Client) GetDailySeries(ctx context.Context, symbol string) (models.StockSeries, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("outputsize", "full")
	params.Set("symbol", symbol)
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("symbol", symbol).Msg("Alpha Vantage API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(common.ErrSourceUnavailable, fmt.Errorf("failed to execute request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body), Symbol: symbol}
	}

	var dr dailyResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, errors.Join(common.ErrSourceUnavailable, fmt.Errorf("failed to decode response: %w", err))
	}

	if dr.TimeSeries == nil {
		msg := dr.ErrorMessage
		if msg == "" {
			msg = dr.Note
		}
		if msg == "" {
			msg = dr.Information
		}
		if msg == "" {
			msg = "response has no daily series"
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg, Symbol: symbol}
	}

	bars := make([]models.StockBar, 0, len(dr.TimeSeries))
	for day, b := range dr.TimeSeries {
		date, err := time.Parse(models.DateLayout, day)
		if err != nil {
			c.logger.Debug().Str("symbol", symbol).Str("date", day).Msg("Skipping bar with unparseable date")
			continue
		}
		bars = append(bars, models.StockBar{
			Date:   date,
			Open:   float64(b.Open),
			High:   float64(b.High),
			Low:    float64(b.Low),
			Close:  float64(b.Close),
			Value:  float64(b.Close),
			Volume: float64(b.Volume),
		})
	}

	return models.NormalizeSeries(bars), nil
}
