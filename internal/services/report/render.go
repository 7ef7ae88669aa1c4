package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/bobmcallan/eventstock/internal/models"
)

const fontFamily = "Helvetica"

func fontStyle(bold bool) string {
	if bold {
		return "B"
	}
	return ""
}

// renderPDF encodes planned pages. It only draws; every position was
// decided by Plan.
func renderPDF(doc *models.ReportDocument) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	props := doc.Properties
	pdf.SetTitle(props.Title, true)
	pdf.SetSubject(props.Subject, true)
	pdf.SetAuthor(props.Author, true)
	pdf.SetKeywords(props.Keywords, true)
	pdf.SetCreator(props.Creator, true)
	if !props.CreatedAt.IsZero() {
		pdf.SetCreationDate(props.CreatedAt)
	}

	images := map[string]*models.Image{
		models.ImageHeatMap:    doc.Images.HeatMap,
		models.ImageStockChart: doc.Images.StockChart,
	}
	for key, img := range images {
		if img == nil {
			continue
		}
		pdf.RegisterImageOptionsReader(key, imageOptions(img), bytes.NewReader(img.Data))
	}

	for _, page := range doc.Pages {
		pdf.AddPage()
		for _, cmd := range page.Commands {
			drawCommand(pdf, tr, cmd, images)
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}
	return buf.Bytes(), nil
}

func imageOptions(img *models.Image) fpdf.ImageOptions {
	return fpdf.ImageOptions{ImageType: strings.ToUpper(img.Format)}
}

func drawCommand(pdf *fpdf.Fpdf, tr func(string) string, cmd models.DrawCommand, images map[string]*models.Image) {
	c := cmd.Style.Color
	switch cmd.Kind {
	case models.DrawText:
		size := cmd.Style.FontSize
		if size == 0 {
			size = sizeBody
		}
		pdf.SetFont(fontFamily, fontStyle(cmd.Style.Bold), size)
		pdf.SetTextColor(c.R, c.G, c.B)
		text := tr(cmd.Text)
		x := cmd.X
		switch cmd.Style.Align {
		case models.AlignCenter:
			x -= pdf.GetStringWidth(text) / 2
		case models.AlignRight:
			x -= pdf.GetStringWidth(text)
		}
		pdf.Text(x, cmd.Y, text)

	case models.DrawLine:
		pdf.SetDrawColor(c.R, c.G, c.B)
		pdf.SetLineWidth(0.1)
		pdf.Line(cmd.X, cmd.Y, cmd.X2, cmd.Y2)

	case models.DrawTriangle:
		pdf.SetDrawColor(c.R, c.G, c.B)
		pdf.SetFillColor(c.R, c.G, c.B)
		points := make([]fpdf.PointType, len(cmd.Points))
		for i, p := range cmd.Points {
			points[i] = fpdf.PointType{X: p.X, Y: p.Y}
		}
		pdf.Polygon(points, "FD")

	case models.DrawImage:
		img := images[cmd.Image]
		if img == nil {
			return
		}
		pdf.ImageOptions(cmd.Image, cmd.X, cmd.Y, cmd.W, cmd.H, false, imageOptions(img), 0, "")

	case models.DrawLink:
		pdf.LinkString(cmd.X, cmd.Y, cmd.W, cmd.H, cmd.URL)
	}
}
