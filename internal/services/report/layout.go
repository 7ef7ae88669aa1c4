package report

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/bobmcallan/eventstock/internal/models"
)

// Page geometry in millimetres (A4 portrait)
const (
	PageWidth    = 210.0
	PageHeight   = 297.0
	Margin       = 10.0
	TopMargin    = 20.0
	UsableBottom = PageHeight - Margin
	HeaderY      = 8.0
	HalfWay      = PageWidth/2 - 8

	CompaniesPerPage   = 4
	CompanyBlockHeight = 51.0
	HeadlinesMinRoom   = 90.0
	TimelineX          = 54.25

	HeaderTitle = "EventStock Event Report"
)

// Font sizes in points
const (
	sizeHeader   = 10.0
	sizeTitle    = 20.0
	sizeHeading  = 15.0
	sizeBody     = 10.0
	sizeDate     = 8.0
	sizeHeadline = 12.0
)

// State is a step of the layout state machine
type State int

const (
	StateSummary State = iota
	StateCompanyStats
	StateHeatMap
	StateStockChart
	StateHeadlines
	StateDone
)

func (s State) String() string {
	switch s {
	case StateSummary:
		return "summary"
	case StateCompanyStats:
		return "company_stats"
	case StateHeatMap:
		return "heat_map"
	case StateStockChart:
		return "stock_chart"
	case StateHeadlines:
		return "headlines"
	default:
		return "done"
	}
}

// TextMeasurer reports the printed width of text in millimetres
type TextMeasurer interface {
	StringWidth(text string, fontSize float64, bold bool) float64
}

// Content is everything the planner places, already formatted
type Content struct {
	Header          string // page header title; HeaderTitle when empty
	Title           string
	Description     string
	DateLabel       string // e.g. "Date: 01 Jan 20 - 31 Jan 20"
	PeriodLabel     string // e.g. "01 Jan 20 - 31 Jan 20"
	GeneratedAt     time.Time
	Companies       []CompanyEntry
	HeatMap         *models.Image
	StockChart      *models.Image
	StockChartTitle string
	Headlines       []Headline
}

// CompanyEntry is one company block of the statistics section
type CompanyEntry struct {
	Name        string
	Code        string
	DisplayName string // shortened name used in the mention bullet
	Category    string
	Followers   int64
	Website     string
	Description string
	Stats       models.DerivedStats
}

// Headline is one entry of the news timeline
type Headline struct {
	Date  time.Time
	Title string
	Body  string
	URL   string
}

// Plan lays content out into pages. It is pure: drawing happens later in a
// separate pass over the returned pages.
func Plan(content *Content, m TextMeasurer) []models.Page {
	p := &planner{content: content, m: m}
	p.newPage()
	for p.state != StateDone {
		switch p.state {
		case StateSummary:
			p.writeSummary()
			p.state = StateCompanyStats
		case StateCompanyStats:
			p.writeCompanies()
			p.state = StateHeatMap
		case StateHeatMap:
			p.writeImage("Global Impact Heat Map", models.ImageHeatMap, content.HeatMap, 1.5)
			p.state = StateStockChart
		case StateStockChart:
			p.writeImage(content.StockChartTitle, models.ImageStockChart, content.StockChart, 1)
			p.state = StateHeadlines
		case StateHeadlines:
			p.writeHeadlines()
			p.state = StateDone
		}
	}
	p.page().Cursor = p.y
	return p.pages
}

type planner struct {
	content *Content
	m       TextMeasurer
	pages   []models.Page
	y       float64
	state   State

	companiesOnPage int
}

func (p *planner) page() *models.Page {
	return &p.pages[len(p.pages)-1]
}

// newPage closes the current page, starts the next one with its header and
// resets the cursor to the top margin.
func (p *planner) newPage() {
	if len(p.pages) > 0 {
		p.page().Cursor = p.y
	}
	n := len(p.pages) + 1
	p.pages = append(p.pages, models.Page{Number: n})
	p.y = TopMargin
	p.companiesOnPage = 0

	header := models.TextStyle{FontSize: sizeHeader}
	title := p.content.Header
	if title == "" {
		title = HeaderTitle
	}
	p.text(Margin, HeaderY, title, header)
	centre := header
	centre.Align = models.AlignCenter
	p.text(PageWidth/2, HeaderY, p.content.GeneratedAt.Format("02/01/2006"), centre)
	right := header
	right.Align = models.AlignRight
	p.text(PageWidth-Margin, HeaderY, fmt.Sprintf("Page %d", n), right)
}

// ensure starts a new page when a block of height h does not fit
func (p *planner) ensure(h float64) {
	if p.y+h > UsableBottom {
		p.newPage()
	}
}

func (p *planner) add(c models.DrawCommand) {
	pg := p.page()
	pg.Commands = append(pg.Commands, c)
}

func (p *planner) text(x, y float64, s string, style models.TextStyle) {
	p.add(models.DrawCommand{Kind: models.DrawText, X: x, Y: y, Text: s, Style: style})
}

func (p *planner) line(x1, y1, x2, y2 float64) {
	p.add(models.DrawCommand{Kind: models.DrawLine, X: x1, Y: y1, X2: x2, Y2: y2, Style: models.TextStyle{Color: models.ColorBlue}})
}

func (p *planner) split(s string, size float64, bold bool, width float64) []string {
	return SplitText(p.m, s, size, bold, width)
}

func (p *planner) writeSummary() {
	title := p.split(p.content.Title, sizeTitle, true, PageWidth-2*Margin)
	p.ensure(float64(len(title)) * 10)
	for i, l := range title {
		p.text(Margin, p.y+float64(i)*10, l, models.TextStyle{FontSize: sizeTitle, Bold: true})
	}
	p.y += float64(len(title)) * 10

	// Description lines are placed one at a time so a long description
	// flows onto the next page.
	for _, l := range p.split(p.content.Description, sizeBody, false, PageWidth-2*Margin) {
		p.ensure(5)
		p.text(Margin, p.y, l, models.TextStyle{FontSize: sizeBody})
		p.y += 5
	}
	p.y += 3

	p.ensure(12)
	p.text(Margin, p.y, p.content.DateLabel, models.TextStyle{FontSize: sizeBody, Bold: true})
	p.y += 12
}

func (p *planner) writeCompanies() {
	heading := 16.0
	if len(p.content.Companies) > 0 {
		// the heading stays with the first company block
		_, _, h := p.companyLayout(p.content.Companies[0])
		p.ensure(heading + h)
	} else {
		p.ensure(heading)
	}

	p.text(Margin, p.y, "Company Statistics", models.TextStyle{FontSize: sizeHeading, Bold: true})
	p.y += 8
	bold := models.TextStyle{FontSize: sizeBody, Bold: true}
	p.text(Margin, p.y, "Companies affected:", bold)
	p.text(HalfWay, p.y, "During the period "+p.content.PeriodLabel+":", bold)
	p.line(Margin, p.y+2, PageWidth-Margin, p.y+2)
	p.y += 8

	if len(p.content.Companies) == 0 {
		p.ensure(12)
		p.text(Margin, p.y, "No company profiles were available for this event.", models.TextStyle{FontSize: sizeBody})
		p.y += 12
	}

	for _, c := range p.content.Companies {
		desc, rule, h := p.companyLayout(c)
		if p.companiesOnPage == CompaniesPerPage {
			p.newPage()
		}
		p.ensure(h)
		p.writeCompany(c, desc, rule)
		p.y += h
		p.companiesOnPage++
	}
	p.y += 7
}

// companyLayout measures a company block: its description lines, the height
// of the separating rule and the full block height. Blocks are never shorter
// than CompanyBlockHeight.
func (p *planner) companyLayout(c CompanyEntry) ([]string, float64, float64) {
	desc := p.split(c.Description, sizeBody, false, HalfWay-20)
	rule := 25 + 5*float64(len(desc)-1) + 4
	if rule < CompanyBlockHeight-7 {
		rule = CompanyBlockHeight - 7
	}
	return desc, rule, rule + 7
}

func (p *planner) writeCompany(c CompanyEntry, desc []string, rule float64) {
	y := p.y
	bold := models.TextStyle{FontSize: sizeBody, Bold: true}
	normal := models.TextStyle{FontSize: sizeBody}

	p.text(Margin, y, c.Name+" - "+c.Code, bold)
	p.text(Margin, y+5, "Operations: ", bold)
	p.text(35, y+5, c.Category, normal)
	p.text(Margin, y+10, "Followers: ", bold)
	p.text(35, y+10, FormatCount(c.Followers), normal)
	p.text(Margin, y+15, "Website: ", bold)

	site := truncateRunes(c.Website, 33)
	if strings.HasPrefix(c.Website, "http") {
		link := normal
		link.Color = models.ColorBlue
		p.text(35, y+15, site, link)
		w := p.m.StringWidth(site, sizeBody, false)
		p.line(35, y+16, 35+w, y+16)
		p.add(models.DrawCommand{Kind: models.DrawLink, X: 35, Y: y + 11.5, W: w, H: 5, URL: c.Website})
	} else {
		p.text(35, y+15, site, normal)
	}

	p.text(Margin, y+20, "Description:", bold)
	for i, l := range desc {
		p.text(Margin, y+25+float64(i)*5, l, normal)
	}

	s := c.Stats
	right := []string{
		fmt.Sprintf("• %d articles mentioning %s were published", s.MentionCount, c.DisplayName),
		priceBullet("Maximum", s.MaxPrice, s.HasPriceData),
		priceBullet("Minimum", s.MinPrice, s.HasPriceData),
		priceBullet("Initial", s.StartPrice, s.HasPriceData),
		priceBullet("Final", s.EndPrice, s.HasPriceData),
		"• On average:",
		"   • " + postsPhrase(s.AvgPostsPerDay),
		"   • " + perPostPhrase(s.AvgLikesPerPost, "like"),
		"   • " + perPostPhrase(s.AvgCommentsPerPost, "comment"),
	}
	for i, l := range right {
		p.text(HalfWay, y+float64(i)*5, l, normal)
	}

	p.line(HalfWay-3, y-11, HalfWay-3, y+rule)
	p.line(Margin, y+rule, PageWidth-Margin, y+rule)
}

// imageSize converts pixel dimensions to millimetres at the report scale,
// shrinking to fit the printable area.
func imageSize(img *models.Image, scale float64) (float64, float64) {
	w := float64(img.WidthPx) / 5 * scale
	h := float64(img.HeightPx) / 4.5 * scale
	maxW := PageWidth - 2*Margin
	maxH := UsableBottom - TopMargin - 8
	if w > maxW {
		h *= maxW / w
		w = maxW
	}
	if h > maxH {
		w *= maxH / h
		h = maxH
	}
	return w, h
}

func (p *planner) writeImage(title, key string, img *models.Image, scale float64) {
	if img == nil {
		return
	}
	w, h := imageSize(img, scale)
	p.ensure(8 + h)
	p.text(Margin, p.y, title, models.TextStyle{FontSize: sizeHeading, Bold: true})
	p.add(models.DrawCommand{Kind: models.DrawImage, X: Margin, Y: p.y + 8, W: w, H: h, Image: key})
	p.y += 8 + h + 12
}

func (p *planner) writeHeadlines() {
	p.ensure(HeadlinesMinRoom)
	p.text(Margin, p.y, "Top News Headlines", models.TextStyle{FontSize: sizeHeading, Bold: true})
	p.y += 10

	if len(p.content.Headlines) == 0 {
		p.text(Margin, p.y, "No news articles were found for this event.", models.TextStyle{FontSize: sizeBody})
		p.y += 5
		return
	}

	top := p.y
	width := PageWidth - 85
	for _, hl := range p.content.Headlines {
		title := p.split(hl.Title, sizeHeadline, true, width)
		body := p.split(hl.Body, sizeBody, false, width)
		h := float64(len(title))*5 + 5 + float64(len(body))*5

		if p.y+h > UsableBottom {
			p.newPage()
			top = p.y
		}

		y := p.y
		datePos := y + 4
		p.text(25, y+5, hl.Date.Format("Mon 2 Jan 06"), models.TextStyle{FontSize: sizeDate})
		for i, l := range title {
			p.text(65, y+float64(i)*5, l, models.TextStyle{FontSize: sizeHeadline, Bold: true})
		}
		if hl.URL != "" {
			p.add(models.DrawCommand{Kind: models.DrawLink, X: 65, Y: y - 4, W: width, H: float64(len(title)) * 5, URL: hl.URL})
		}
		y += float64(len(title)) * 5
		for i, l := range body {
			p.text(65, y+float64(i)*5, l, models.TextStyle{FontSize: sizeBody})
		}
		y += 5 + float64(len(body))*5

		p.line(TimelineX, top-5, TimelineX, y-5)
		blue := models.TextStyle{Color: models.ColorBlue}
		p.add(models.DrawCommand{Kind: models.DrawTriangle, Style: blue, Points: []models.Point{
			{X: TimelineX, Y: datePos - 3.5}, {X: TimelineX, Y: datePos + 3.5}, {X: TimelineX + 4, Y: datePos},
		}})
		p.add(models.DrawCommand{Kind: models.DrawTriangle, Style: blue, Points: []models.Point{
			{X: TimelineX, Y: datePos - 3.5}, {X: TimelineX, Y: datePos + 3.5}, {X: TimelineX - 4, Y: datePos},
		}})
		p.y = y
		top = y
	}
}

// SplitText wraps text into lines no wider than width, breaking on spaces
// and on explicit newlines. Words wider than a line are broken by rune.
func SplitText(m TextMeasurer, text string, size float64, bold bool, width float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		cur := ""
		for _, w := range words {
			candidate := w
			if cur != "" {
				candidate = cur + " " + w
			}
			if m.StringWidth(candidate, size, bold) <= width {
				cur = candidate
				continue
			}
			if cur != "" {
				lines = append(lines, cur)
			}
			cur = w
			for m.StringWidth(cur, size, bold) > width && utf8.RuneCountInString(cur) > 1 {
				head := fitRunes(m, cur, size, bold, width)
				lines = append(lines, head)
				cur = cur[len(head):]
			}
		}
		if cur != "" {
			lines = append(lines, cur)
		}
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

// fitRunes returns the longest prefix of s, at least one rune, that fits width
func fitRunes(m TextMeasurer, s string, size float64, bold bool, width float64) string {
	end := 0
	for i, r := range s {
		next := i + utf8.RuneLen(r)
		if end > 0 && m.StringWidth(s[:next], size, bold) > width {
			break
		}
		end = next
	}
	return s[:end]
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func priceBullet(label string, v float64, ok bool) string {
	if !ok {
		return fmt.Sprintf("• %s stock price was unavailable", label)
	}
	return fmt.Sprintf("• %s stock price was $%.2f", label, v)
}

func postsPhrase(n int) string {
	if n == 1 {
		return "1 post was made per day"
	}
	return FormatCount(int64(n)) + " posts were made per day"
}

func perPostPhrase(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("there was 1 %s per post", noun)
	}
	return fmt.Sprintf("there were %s %ss per post", FormatCount(int64(n)), noun)
}

// FormatCount writes n with thousands separators
func FormatCount(n int64) string {
	return humanize.Comma(n)
}
