package models

// Category identifies one source category of the aggregate
type Category string

const (
	CategoryProfiles Category = "profiles"
	CategorySeries   Category = "series"
	CategoryNews     Category = "news"
)

// Readiness holds the per-category loaded flags
type Readiness struct {
	Profiles bool `json:"profiles"`
	Series   bool `json:"series"`
	News     bool `json:"news"`
}

// All reports whether every category has loaded
func (r Readiness) All() bool {
	return r.Profiles && r.Series && r.News
}

// Set marks a category as loaded
func (r *Readiness) Set(c Category) {
	switch c {
	case CategoryProfiles:
		r.Profiles = true
	case CategorySeries:
		r.Series = true
	case CategoryNews:
		r.News = true
	}
}

// Aggregate is the consolidated view of all source data for one event
type Aggregate struct {
	Event    string                     `json:"event"`
	Profiles map[string]*CompanyProfile `json:"profiles"`
	Series   map[string]StockSeries     `json:"series"`
	News     NewsCorpus                 `json:"news"`
	Ready    Readiness                  `json:"ready"`
}

// NewAggregate returns an empty aggregate for the named event
func NewAggregate(event string) *Aggregate {
	return &Aggregate{
		Event:    event,
		Profiles: make(map[string]*CompanyProfile),
		Series:   make(map[string]StockSeries),
	}
}

// Complete reports whether every category has loaded
func (a *Aggregate) Complete() bool {
	return a.Ready.All()
}

// Clone copies the maps so the result can be read while the original keeps
// growing. Profiles and series are shared; they are immutable once inserted.
func (a *Aggregate) Clone() *Aggregate {
	out := &Aggregate{
		Event:    a.Event,
		Profiles: make(map[string]*CompanyProfile, len(a.Profiles)),
		Series:   make(map[string]StockSeries, len(a.Series)),
		News:     a.News,
		Ready:    a.Ready,
	}
	for k, v := range a.Profiles {
		out.Profiles[k] = v
	}
	for k, v := range a.Series {
		out.Series[k] = v
	}
	return out
}

// Snapshot is emitted each time a category becomes ready
type Snapshot struct {
	Category  Category   `json:"category"`
	Aggregate *Aggregate `json:"aggregate"`
}
