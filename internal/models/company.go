package models

import "time"

// CompanyProfile holds the social profile of a related company.
// It is never mutated after it enters an Aggregate.
type CompanyProfile struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Website     string `json:"website"`
	Description string `json:"description"`
	Category    string `json:"category"`
	FanCount    int64  `json:"fan_count"`
	Posts       []Post `json:"posts"`
}

// Post is a single social post with its engagement counts
type Post struct {
	CreatedTime time.Time `json:"created_time"`
	Likes       int64     `json:"likes"`
	Comments    int64     `json:"comments"`
}

// CachedProfile is a profile stored in the source cache
type CachedProfile struct {
	Key       string          `json:"key" badgerhold:"key"`
	Profile   *CompanyProfile `json:"profile"`
	FetchedAt time.Time       `json:"fetched_at"`
}
