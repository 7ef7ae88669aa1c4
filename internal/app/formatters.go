package app

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/eventstock/internal/models"
)

// formatEventStats formats per-company statistics as markdown
func formatEventStats(event *models.EventRecord, window models.Window, stats []models.DerivedStats) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Event Statistics: %s\n\n", event.Name))
	sb.WriteString(fmt.Sprintf("**Window:** %s (%d days)\n\n", window.String(), window.Days()))

	if len(stats) == 0 {
		sb.WriteString("No company profiles were available for this event.\n")
		return sb.String()
	}

	sb.WriteString("| Company | Mentions | Min | Max | Start | End | Posts/Day | Likes/Post | Comments/Post |\n")
	sb.WriteString("|---------|----------|-----|-----|-------|-----|-----------|------------|---------------|\n")
	for _, s := range stats {
		sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s | %s | %d | %d | %d |\n",
			s.Company,
			s.MentionCount,
			formatPrice(s.MinPrice, s.HasPriceData),
			formatPrice(s.MaxPrice, s.HasPriceData),
			formatPrice(s.StartPrice, s.HasPriceData),
			formatPrice(s.EndPrice, s.HasPriceData),
			s.AvgPostsPerDay,
			s.AvgLikesPerPost,
			s.AvgCommentsPerPost,
		))
	}
	return sb.String()
}

func formatPrice(v float64, ok bool) string {
	if !ok {
		return "-"
	}
	return fmt.Sprintf("$%.2f", v)
}
