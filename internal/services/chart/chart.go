// Package chart renders stock series into PNG images
package chart

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/eventstock/internal/common"
	"github.com/bobmcallan/eventstock/internal/interfaces"
	"github.com/bobmcallan/eventstock/internal/models"
)

const (
	DefaultWidth  = 900
	DefaultHeight = 450
)

// NoDataMessage annotates the chart drawn when no stock series is available
const NoDataMessage = "No stock data available"

var palette = []string{
	"2563eb", // blue-600
	"dc2626", // red-600
	"16a34a", // green-600
	"d97706", // amber-600
	"7c3aed", // violet-600
	"0891b2", // cyan-600
}

// Renderer draws stock series as a line chart
type Renderer struct {
	width  int
	height int
	logger *common.Logger
}

var _ interfaces.ChartRenderer = (*Renderer)(nil)

// NewRenderer creates a renderer with the default image size
func NewRenderer(logger *common.Logger) *Renderer {
	return &Renderer{width: DefaultWidth, height: DefaultHeight, logger: logger}
}

// RenderStockChart draws one closing-value line per company and marks the
// event window with dashed verticals. Companies are drawn in name order.
func (r *Renderer) RenderStockChart(series map[string]models.StockSeries, window models.Window) (*models.Image, error) {
	names := make([]string, 0, len(series))
	for name, s := range series {
		if len(s) >= 2 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return r.renderEmpty(window)
	}
	sort.Strings(names)

	lo, hi := math.Inf(1), math.Inf(-1)
	var lines []chart.Series
	for i, name := range names {
		s := series[name]
		xs := make([]time.Time, len(s))
		ys := make([]float64, len(s))
		for j, bar := range s {
			xs[j] = bar.Date
			ys[j] = bar.Value
			lo = math.Min(lo, bar.Value)
			hi = math.Max(hi, bar.Value)
		}
		lines = append(lines, chart.TimeSeries{
			Name: name,
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex(palette[i%len(palette)]),
				StrokeWidth: 2,
			},
			XValues: xs,
			YValues: ys,
		})
	}

	marker := chart.Style{
		StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
		StrokeWidth:     1,
		StrokeDashArray: []float64{4.0, 3.0},
	}
	for _, t := range []time.Time{window.Start, window.End} {
		lines = append(lines, chart.TimeSeries{
			Style:   marker,
			XValues: []time.Time{t, t},
			YValues: []float64{lo, hi},
		})
	}

	graph := chart.Chart{
		Width:  r.width,
		Height: r.height,
		Background: chart.Style{
			Padding: chart.Box{Top: 20, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("02 Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.2f", f)
				}
				return ""
			},
		},
		Series: lines,
	}
	if len(names) > 1 {
		graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}
	}

	return r.render(graph, len(names))
}

// renderEmpty draws the event window axes with a NoDataMessage annotation,
// used when no company has a series worth plotting.
func (r *Renderer) renderEmpty(window models.Window) (*models.Image, error) {
	start, end := window.Start, window.End
	if start.IsZero() {
		start = time.Now().UTC().Truncate(24 * time.Hour)
	}
	if !end.After(start) {
		end = start.Add(24 * time.Hour)
	}
	mid := start.Add(end.Sub(start) / 2)

	graph := chart.Chart{
		Width:  r.width,
		Height: r.height,
		Background: chart.Style{
			Padding: chart.Box{Top: 20, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("02 Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
			ValueFormatter: func(v interface{}) string {
				return ""
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex("d1d5db"), // gray-300
					StrokeWidth: 1,
				},
				XValues: []time.Time{start, end},
				YValues: []float64{0, 0},
			},
			chart.AnnotationSeries{
				Annotations: []chart.Value2{
					{XValue: chart.TimeToFloat64(mid), YValue: 0.5, Label: NoDataMessage},
				},
			},
		},
	}
	return r.render(graph, 0)
}

func (r *Renderer) render(graph chart.Chart, series int) (*models.Image, error) {
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	r.logger.Debug().Int("series", series).Int("bytes", buf.Len()).Msg("Stock chart rendered")
	return models.NewImage(buf.Bytes())
}
