package models

import "time"

// Article is a single news search result
type Article struct {
	WebTitle           string    `json:"web_title"`
	WebURL             string    `json:"web_url"`
	WebPublicationDate time.Time `json:"web_publication_date"`
	BodyText           string    `json:"body_text"`
	MainCreatedDate    time.Time `json:"main_created_date"`
}

// NewsCorpus is the article set shared by every company of one event
type NewsCorpus struct {
	Results []Article `json:"results"`
}

// Empty reports whether the corpus has no articles
func (n NewsCorpus) Empty() bool {
	return len(n.Results) == 0
}

// NewsQuery is a keyword search over a publication window.
// A zero To leaves the window open-ended.
type NewsQuery struct {
	Keywords []string
	From     time.Time
	To       time.Time
}
