package report

import (
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bobmcallan/eventstock/internal/models"
)

const (
	// MaxHeadlines is the number of articles shown on the timeline
	MaxHeadlines = 5
	// HeadlinePool is how many leading search results headlines are chosen from
	HeadlinePool = 20

	headlineBodyLength   = 150
	descriptionLength    = 220
	maxDisplayNameLength = 20
	placeholderPrefix    = "This company has not provided a description"
	singleCompanyTitle   = "Company Stock Graph"
	comparisonChartTitle = "Comparison of Company Stock"
)

var (
	trailingPartialWord = regexp.MustCompile(`\s\S*$`)
	trailingNonLetters  = regexp.MustCompile(`(?i)\s*[^a-z]+$`)
)

// DateRange formats the event span as "02 Jan 06 - 02 Jan 06", with
// "ongoing" for an open end.
func DateRange(event *models.EventRecord) string {
	end := models.OngoingEndDate
	if event.EndDate != nil {
		end = event.EndDate.Format("02 Jan 06")
	}
	return event.StartDate.Format("02 Jan 06") + " - " + end
}

// Excerpt cuts text to n runes without splitting a word, drops trailing
// punctuation and appends an ellipsis.
func Excerpt(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) > n {
		text = string([]rune(text)[:n])
		text = trailingPartialWord.ReplaceAllString(text, "")
	}
	text = trailingNonLetters.ReplaceAllString(text, "")
	return text + " ... "
}

// FormatDescription shortens a company description for the statistics block.
// Placeholder descriptions are kept whole.
func FormatDescription(desc string) string {
	if strings.HasPrefix(desc, placeholderPrefix) {
		return desc
	}
	return Excerpt(desc, descriptionLength)
}

// DisplayName picks the name used in the mention bullet: the company name,
// or its code when the name is too long.
func DisplayName(name, code string) string {
	if utf8.RuneCountInString(name) > maxDisplayNameLength && code != "" {
		return code
	}
	return name
}

// SelectHeadlines picks the most recent articles among the leading search
// results and returns them oldest first.
func SelectHeadlines(news models.NewsCorpus) []Headline {
	pool := news.Results
	if len(pool) > HeadlinePool {
		pool = pool[:HeadlinePool]
	}
	picked := make([]models.Article, len(pool))
	copy(picked, pool)
	sort.SliceStable(picked, func(i, j int) bool {
		return picked[i].MainCreatedDate.After(picked[j].MainCreatedDate)
	})
	if len(picked) > MaxHeadlines {
		picked = picked[:MaxHeadlines]
	}

	out := make([]Headline, len(picked))
	for i, a := range picked {
		out[len(picked)-1-i] = Headline{
			Date:  a.MainCreatedDate,
			Title: a.WebTitle,
			Body:  Excerpt(a.BodyText, headlineBodyLength),
			URL:   a.WebURL,
		}
	}
	return out
}

// StockChartTitle names the chart section by the number of related companies
func StockChartTitle(event *models.EventRecord) string {
	if len(event.RelatedCompanies) == 1 {
		return singleCompanyTitle
	}
	return comparisonChartTitle
}

// buildContent assembles the formatted content of a report
func buildContent(event *models.EventRecord, agg *models.Aggregate, images models.ReportImages, stats []models.DerivedStats, now time.Time) *Content {
	byCompany := make(map[string]models.DerivedStats, len(stats))
	for _, s := range stats {
		byCompany[s.Company] = s
	}

	content := &Content{
		Title:           event.Name,
		Description:     event.Description,
		DateLabel:       "Date: " + DateRange(event),
		PeriodLabel:     DateRange(event),
		GeneratedAt:     now,
		HeatMap:         images.HeatMap,
		StockChart:      images.StockChart,
		StockChartTitle: StockChartTitle(event),
		Headlines:       SelectHeadlines(agg.News),
	}

	for _, c := range event.RelatedCompanies {
		profile, ok := agg.Profiles[c.Name]
		if !ok {
			continue
		}
		name := profile.Name
		if name == "" {
			name = c.Name
		}
		content.Companies = append(content.Companies, CompanyEntry{
			Name:        name,
			Code:        c.Code,
			DisplayName: DisplayName(c.Name, c.Code),
			Category:    profile.Category,
			Followers:   profile.FanCount,
			Website:     profile.Website,
			Description: FormatDescription(profile.Description),
			Stats:       byCompany[c.Name],
		})
	}
	return content
}
