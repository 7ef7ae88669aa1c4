package report

import (
	"sync"

	"github.com/go-pdf/fpdf"
)

// PDFMeasurer measures text with the core Helvetica metrics used when
// rendering, so planned line breaks match the encoded document.
type PDFMeasurer struct {
	mu  sync.Mutex
	pdf *fpdf.Fpdf
	tr  func(string) string
}

var _ TextMeasurer = (*PDFMeasurer)(nil)

// NewPDFMeasurer creates a measurer backed by an unused fpdf document
func NewPDFMeasurer() *PDFMeasurer {
	pdf := fpdf.New("P", "mm", "A4", "")
	return &PDFMeasurer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

// StringWidth returns the width of text in millimetres
func (m *PDFMeasurer) StringWidth(text string, fontSize float64, bold bool) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pdf.SetFont(fontFamily, fontStyle(bold), fontSize)
	return m.pdf.GetStringWidth(m.tr(text))
}
