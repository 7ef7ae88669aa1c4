package models

import (
	"sort"
	"time"
)

// DateLayout is the calendar date format used across sources
const DateLayout = "2006-01-02"

// StockBar represents a single day's price data
type StockBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Value  float64   `json:"value"` // closing value used for start/end prices
	Volume float64   `json:"volume"`
}

// DateKey returns the bar date as YYYY-MM-DD
func (b StockBar) DateKey() string {
	return b.Date.Format(DateLayout)
}

// StockSeries is a daily series, ascending by date and unique by date
type StockSeries []StockBar

// NormalizeSeries sorts bars ascending and keeps the last bar seen for a date
func NormalizeSeries(bars []StockBar) StockSeries {
	byDate := make(map[string]int, len(bars))
	out := make(StockSeries, 0, len(bars))
	for _, b := range bars {
		key := b.DateKey()
		if i, ok := byDate[key]; ok {
			out[i] = b
			continue
		}
		byDate[key] = len(out)
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Between returns the bars dated within [from, to], both inclusive
func (s StockSeries) Between(from, to time.Time) StockSeries {
	w := NewWindow(from, to)
	var out StockSeries
	for _, b := range s {
		if w.Contains(b.Date) {
			out = append(out, b)
		}
	}
	return out
}

// CachedSeries is a stock series stored in the source cache
type CachedSeries struct {
	Code      string      `json:"code" badgerhold:"key"`
	Series    StockSeries `json:"series"`
	FetchedAt time.Time   `json:"fetched_at"`
}
