package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Summary describes an encoded report read back from its bytes
type Summary struct {
	Pages     int
	PageTexts []string
}

// Contains reports whether any page's text contains s
func (s *Summary) Contains(text string) bool {
	for _, t := range s.PageTexts {
		if strings.Contains(t, text) {
			return true
		}
	}
	return false
}

// Inspect reads an encoded PDF and extracts the plain text of every page
func Inspect(data []byte) (*Summary, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	out := &Summary{Pages: r.NumPage()}
	for i := 1; i <= out.Pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			out.PageTexts = append(out.PageTexts, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", i, err)
		}
		out.PageTexts = append(out.PageTexts, text)
	}
	return out, nil
}
