// Package common provides shared test infrastructure
package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bobmcallan/eventstock/internal/common"
	"github.com/bobmcallan/eventstock/internal/models"
)

// Source names used by Upstream.Count
const (
	SourceProfile      = "profile"
	SourceWikipedia    = "wikipedia"
	SourceAlphaVantage = "alphavantage"
	SourceGuardian     = "guardian"
)

// Upstream is a single httptest server answering for every external source
// with canned data around SampleEvent.
type Upstream struct {
	Server *httptest.Server

	mu       sync.Mutex
	requests map[string]int
}

// NewUpstream starts a fake upstream that is closed when the test ends
func NewUpstream(t *testing.T) *Upstream {
	t.Helper()
	u := &Upstream{requests: make(map[string]int)}

	mux := http.NewServeMux()
	mux.HandleFunc("/profile/", u.handleProfile)
	mux.HandleFunc("/wikipedia", u.handleWikipedia)
	mux.HandleFunc("/alphavantage", u.handleAlphaVantage)
	mux.HandleFunc("/guardian/search", u.handleGuardian)

	u.Server = httptest.NewServer(mux)
	t.Cleanup(u.Server.Close)
	return u
}

// Configure points every client in cfg at the fake upstream
func (u *Upstream) Configure(cfg *common.Config) {
	cfg.Clients.Profile.BaseURL = u.Server.URL + "/profile"
	cfg.Clients.Wikipedia.BaseURL = u.Server.URL + "/wikipedia"
	cfg.Clients.AlphaVantage.BaseURL = u.Server.URL + "/alphavantage"
	cfg.Clients.AlphaVantage.APIKey = "test-av-key"
	cfg.Clients.Guardian.BaseURL = u.Server.URL + "/guardian"
	cfg.Clients.Guardian.APIKey = "test-guardian-key"
	for _, c := range []*common.SourceConfig{
		&cfg.Clients.Profile, &cfg.Clients.Wikipedia, &cfg.Clients.AlphaVantage, &cfg.Clients.Guardian,
	} {
		c.RateLimit = 100
		c.Timeout = "5s"
	}
}

// Count returns how many requests a source has served
func (u *Upstream) Count(source string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.requests[source]
}

func (u *Upstream) hit(source string) {
	u.mu.Lock()
	u.requests[source]++
	u.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (u *Upstream) handleProfile(w http.ResponseWriter, r *http.Request) {
	u.hit(SourceProfile)
	code := strings.TrimPrefix(r.URL.Path, "/profile/")
	if code == "MISSING" {
		http.Error(w, "unknown page", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]interface{}{
		"data": map[string]interface{}{
			"id":          code,
			"name":        code,
			"website":     "Visit www." + strings.ToLower(code) + ".com for more",
			"description": "Short.",
			"category":    "Oil & Gas",
			"fan_count":   12000,
			"posts": map[string]interface{}{
				"data": []map[string]interface{}{
					{"created_time": "2020-01-02T10:00:00+0000", "likes": 10, "comments": 3},
					{"created_time": "2020-01-04T10:00:00+0000", "likes": 20, "comments": 4},
					{"created_time": "2020-01-08T10:00:00+0000", "likes": 31, "comments": 0},
				},
			},
		},
	})
}

func (u *Upstream) handleWikipedia(w http.ResponseWriter, r *http.Request) {
	u.hit(SourceWikipedia)
	title := r.URL.Query().Get("titles")
	writeJSON(w, map[string]interface{}{
		"query": map[string]interface{}{
			"pages": map[string]interface{}{
				"1": map[string]interface{}{
					"title":   title,
					"extract": "<p>" + title + " is a multinational oil and gas company headquartered in London.</p>",
				},
			},
		},
	})
}

func (u *Upstream) handleAlphaVantage(w http.ResponseWriter, r *http.Request) {
	u.hit(SourceAlphaVantage)
	series := map[string]interface{}{}
	for i, close := range []float64{5.0, 5.5, 6.0, 4.5, 5.2, 5.8} {
		date := time.Date(2020, 1, 1+2*i, 0, 0, 0, 0, time.UTC).Format(models.DateLayout)
		series[date] = map[string]string{
			"1. open":   fmt.Sprintf("%.2f", close),
			"2. high":   fmt.Sprintf("%.2f", close+0.5),
			"3. low":    fmt.Sprintf("%.2f", close-0.5),
			"4. close":  fmt.Sprintf("%.2f", close),
			"5. volume": "1000",
		}
	}
	writeJSON(w, map[string]interface{}{
		"Meta Data":           map[string]string{"2. Symbol": r.URL.Query().Get("symbol")},
		"Time Series (Daily)": series,
	})
}

func (u *Upstream) handleGuardian(w http.ResponseWriter, r *http.Request) {
	u.hit(SourceGuardian)
	var results []map[string]interface{}
	for i := 0; i < 6; i++ {
		published := time.Date(2020, 1, 2+i, 9, 0, 0, 0, time.UTC).Format(time.RFC3339)
		results = append(results, map[string]interface{}{
			"webTitle":           fmt.Sprintf("Spill update %d", i+1),
			"webUrl":             fmt.Sprintf("https://example.com/news/%d", i+1),
			"webPublicationDate": published,
			"fields":             map[string]string{"bodyText": fmt.Sprintf("BP crews worked on the oil spill for day %d.", i+1)},
			"blocks":             map[string]interface{}{"main": map[string]string{"createdDate": published}},
		})
	}
	writeJSON(w, map[string]interface{}{
		"response": map[string]interface{}{
			"status":  "ok",
			"results": results,
		},
	})
}

// SampleEvent is the event the canned upstream data is built around
func SampleEvent() *models.EventRecord {
	end := time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC)
	return &models.EventRecord{
		Name:        "Gulf Oil Spill",
		Description: "Crude oil leaked from an offshore platform into the gulf.",
		StartDate:   time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     &end,
		Keywords:    []string{"oil", "spill", "gulf"},
		RelatedCompanies: models.RelatedCompanies{
			{Name: "BP", Code: "BP"},
			{Name: "Local Fishery"},
		},
		Category: "Environmental",
	}
}

// SampleEventJSON is SampleEvent in its wire form
func SampleEventJSON(t *testing.T) []byte {
	t.Helper()
	data, err := json.Marshal(SampleEvent())
	if err != nil {
		t.Fatalf("failed to marshal sample event: %v", err)
	}
	return data
}

// TestPNG encodes a small w×h PNG
func TestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}
