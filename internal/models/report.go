package models

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"time"
)

// DrawKind identifies a drawing primitive on a report page
type DrawKind string

const (
	DrawText     DrawKind = "text"
	DrawLine     DrawKind = "line"
	DrawImage    DrawKind = "image"
	DrawTriangle DrawKind = "triangle"
	DrawLink     DrawKind = "link"
)

// Image keys referenced by DrawImage commands
const (
	ImageHeatMap    = "heat_map"
	ImageStockChart = "stock_chart"
)

// Text alignments
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// Color is an RGB colour
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

var (
	ColorBlack = Color{0, 0, 0}
	ColorBlue  = Color{0, 0, 153}
)

// TextStyle describes how a text or line command is drawn
type TextStyle struct {
	FontSize float64 `json:"font_size,omitempty"`
	Bold     bool    `json:"bold,omitempty"`
	Color    Color   `json:"color"`
	Align    string  `json:"align,omitempty"`
}

// Point is a position on the page in millimetres
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DrawCommand is a single primitive placed on a page. Coordinates are in
// millimetres from the top-left corner. Lines run from (X, Y) to (X2, Y2).
type DrawCommand struct {
	Kind   DrawKind  `json:"kind"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	X2     float64   `json:"x2,omitempty"`
	Y2     float64   `json:"y2,omitempty"`
	W      float64   `json:"w,omitempty"`
	H      float64   `json:"h,omitempty"`
	Text   string    `json:"text,omitempty"`
	URL    string    `json:"url,omitempty"`
	Image  string    `json:"image,omitempty"`
	Points []Point   `json:"points,omitempty"`
	Style  TextStyle `json:"style"`
}

// Page is one page of a planned report
type Page struct {
	Number   int           `json:"number"`
	Cursor   float64       `json:"cursor"` // vertical cursor after the last block
	Commands []DrawCommand `json:"commands"`
}

// Texts returns the text of every text command on the page, in draw order
func (p *Page) Texts() []string {
	var out []string
	for _, c := range p.Commands {
		if c.Kind == DrawText {
			out = append(out, c.Text)
		}
	}
	return out
}

// DocumentProperties are the metadata written into the encoded document
type DocumentProperties struct {
	Title     string    `json:"title"`
	Subject   string    `json:"subject"`
	Author    string    `json:"author"`
	Keywords  string    `json:"keywords"`
	Creator   string    `json:"creator"`
	CreatedAt time.Time `json:"created_at"`
}

// ReportDocument is an ordered list of pages plus document properties
type ReportDocument struct {
	ID         string             `json:"id"`
	Properties DocumentProperties `json:"properties"`
	Pages      []Page             `json:"pages"`
	Images     ReportImages       `json:"-"`
}

// Image is an encoded raster image with its pixel dimensions
type Image struct {
	Data     []byte `json:"-"`
	Format   string `json:"format"`
	WidthPx  int    `json:"width_px"`
	HeightPx int    `json:"height_px"`
}

// NewImage reads the format and dimensions from encoded PNG or JPEG data
func NewImage(data []byte) (*Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image header: %w", err)
	}
	return &Image{Data: data, Format: format, WidthPx: cfg.Width, HeightPx: cfg.Height}, nil
}

// ReportImages holds the pre-rendered visualisations placed in a report
type ReportImages struct {
	HeatMap    *Image `json:"heat_map"`
	StockChart *Image `json:"stock_chart"`
}

// Complete reports whether both images are present
func (r ReportImages) Complete() bool {
	return r.HeatMap != nil && r.StockChart != nil
}
