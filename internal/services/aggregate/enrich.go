package aggregate

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bobmcallan/eventstock/internal/common"
	"github.com/bobmcallan/eventstock/internal/interfaces"
	"github.com/bobmcallan/eventstock/internal/models"
)

const (
	// MinDescriptionLength is the shortest description kept as-is
	MinDescriptionLength = 40
	// MaxSummaryLength bounds descriptions taken from the encyclopedia
	MaxSummaryLength = 450

	WebsiteNotProvided = "Not provided"
)

var websiteToken = regexp.MustCompile(`www\.[^\s]+`)

// Enricher fills in missing profile descriptions and normalises websites
type Enricher struct {
	encyclopedia interfaces.EncyclopediaClient
	logger       *common.Logger
}

// NewEnricher creates a new enricher
func NewEnricher(encyclopedia interfaces.EncyclopediaClient, logger *common.Logger) *Enricher {
	return &Enricher{encyclopedia: encyclopedia, logger: logger}
}

// Enrich returns a copy of profile with a usable description and website.
// It never fails: a missing summary falls back to a placeholder.
func (e *Enricher) Enrich(ctx context.Context, company string, profile *models.CompanyProfile) *models.CompanyProfile {
	out := *profile
	out.Website = NormalizeWebsite(profile.Website)

	if utf8.RuneCountInString(strings.TrimSpace(profile.Description)) >= MinDescriptionLength {
		return &out
	}

	summary := ""
	if e.encyclopedia != nil {
		text, err := e.encyclopedia.GetSummary(ctx, company)
		if err != nil {
			e.logger.Warn().Str("company", company).Err(err).Msg("Encyclopedia lookup failed")
		} else {
			summary = Summarize(text, MaxSummaryLength)
		}
	}

	if summary == "" {
		out.Description = PlaceholderDescription(company)
		return &out
	}
	if !strings.HasPrefix(summary, company) {
		summary = company + " " + summary
	}
	out.Description = summary
	return &out
}

// NormalizeWebsite keeps the first www. address, adds a scheme when it is
// missing, and reports an empty value as WebsiteNotProvided.
func NormalizeWebsite(raw string) string {
	site := strings.TrimSpace(raw)
	if m := websiteToken.FindString(site); m != "" {
		site = m
	}
	if site == "" {
		return WebsiteNotProvided
	}
	if !strings.HasPrefix(site, "http") {
		site = "http://" + site
	}
	return site
}

// PlaceholderDescription is used when no description can be found
func PlaceholderDescription(company string) string {
	return "This company has not provided a description of their operations. " +
		"Please visit the " + company + " website for more information."
}

// Summarize cuts text to at most max runes, ending on a sentence when one
// finishes in the second half of the cut and on a word otherwise.
func Summarize(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= max {
		return text
	}

	cut := string([]rune(text)[:max])
	if i := strings.LastIndex(cut, ". "); i >= len(cut)/2 {
		return cut[:i+1]
	}
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:") + "..."
}
