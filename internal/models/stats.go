package models

import "time"

// Window is an inclusive calendar-day range in UTC
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewWindow builds a window from two instants, truncated to their dates
func NewWindow(start, end time.Time) Window {
	return Window{Start: DateOf(start), End: DateOf(end)}
}

// DateOf truncates t to midnight UTC of its calendar date
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Contains reports whether t falls on a date inside the window
func (w Window) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Days returns the whole days between start and end, never less than one
func (w Window) Days() int {
	days := int(w.End.Sub(w.Start).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// String formats the window as "DD MMM YY - DD MMM YY"
func (w Window) String() string {
	return w.Start.Format("02 Jan 06") + " - " + w.End.Format("02 Jan 06")
}

// DerivedStats are per-company metrics computed from the aggregate
type DerivedStats struct {
	Company            string  `json:"company"`
	MentionCount       int     `json:"mention_count"`
	MinPrice           float64 `json:"min_price"`
	MaxPrice           float64 `json:"max_price"`
	StartPrice         float64 `json:"start_price"`
	EndPrice           float64 `json:"end_price"`
	HasPriceData       bool    `json:"has_price_data"`
	PostCount          int     `json:"post_count"`
	AvgPostsPerDay     int     `json:"avg_posts_per_day"`
	AvgLikesPerPost    int     `json:"avg_likes_per_post"`
	AvgCommentsPerPost int     `json:"avg_comments_per_post"`
}
