// Package models defines data structures for EventStock
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxKeywords is the largest keyword set an event may carry
const MaxKeywords = 4

// OngoingEndDate is the wire value for an event without an end date
const OngoingEndDate = "ongoing"

// EventRecord is a named, date-bounded occurrence linked to companies.
// It is owned by the persistence layer and treated as immutable here.
type EventRecord struct {
	Name             string
	Description      string
	StartDate        time.Time
	EndDate          *time.Time // nil when the event is ongoing
	Keywords         []string
	RelatedCompanies RelatedCompanies
	Category         string
	Country          string
}

// RelatedCompany maps a company name to its stock code. Code is empty when
// the company has no listed stock.
type RelatedCompany struct {
	Name string
	Code string
}

// HasCode reports whether the company has a stock code
func (c RelatedCompany) HasCode() bool {
	return c.Code != ""
}

// RelatedCompanies is an ordered name→code mapping
type RelatedCompanies []RelatedCompany

// Ongoing reports whether the event has no end date
func (e *EventRecord) Ongoing() bool {
	return e.EndDate == nil
}

// EffectiveEnd returns the end date, or now when the event is ongoing
func (e *EventRecord) EffectiveEnd(now time.Time) time.Time {
	if e.EndDate == nil {
		return now
	}
	return *e.EndDate
}

// Window returns the statistics window spanning the event
func (e *EventRecord) Window(now time.Time) Window {
	return NewWindow(e.StartDate, e.EffectiveEnd(now))
}

// CompaniesWithCode returns the related companies that have a stock code
func (e *EventRecord) CompaniesWithCode() []RelatedCompany {
	var out []RelatedCompany
	for _, c := range e.RelatedCompanies {
		if c.HasCode() {
			out = append(out, c)
		}
	}
	return out
}

// Validate checks the record invariants
func (e *EventRecord) Validate() error {
	var errs []error
	if strings.TrimSpace(e.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if e.StartDate.IsZero() {
		errs = append(errs, errors.New("start_date is required"))
	}
	if e.EndDate != nil && e.EndDate.Before(e.StartDate) {
		errs = append(errs, errors.New("end_date is before start_date"))
	}
	if len(e.Keywords) > MaxKeywords {
		errs = append(errs, fmt.Errorf("at most %d keywords are allowed, got %d", MaxKeywords, len(e.Keywords)))
	}
	seen := make(map[string]bool, len(e.RelatedCompanies))
	for _, c := range e.RelatedCompanies {
		if seen[c.Name] {
			errs = append(errs, fmt.Errorf("duplicate related company %q", c.Name))
		}
		seen[c.Name] = true
	}
	return errors.Join(errs...)
}

// eventRecordWire is the JSON shape of an EventRecord
type eventRecordWire struct {
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	StartDate        json.RawMessage  `json:"start_date"`
	EndDate          json.RawMessage  `json:"end_date"`
	Keywords         []string         `json:"keywords"`
	RelatedCompanies RelatedCompanies `json:"related_companies"`
	Category         string           `json:"category"`
	Country          string           `json:"country,omitempty"`
}

// UnmarshalJSON accepts unix seconds or date strings for start/end dates and
// "ongoing" for the end date.
func (e *EventRecord) UnmarshalJSON(data []byte) error {
	var w eventRecordWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	start, _, err := parseRawDate(w.StartDate)
	if err != nil {
		return fmt.Errorf("start_date: %w", err)
	}
	end, ongoing, err := parseRawDate(w.EndDate)
	if err != nil {
		return fmt.Errorf("end_date: %w", err)
	}

	*e = EventRecord{
		Name:             w.Name,
		Description:      w.Description,
		StartDate:        start,
		Keywords:         w.Keywords,
		RelatedCompanies: w.RelatedCompanies,
		Category:         w.Category,
		Country:          w.Country,
	}
	if !ongoing && !end.IsZero() {
		e.EndDate = &end
	}
	return nil
}

// MarshalJSON writes dates as YYYY-MM-DD and an open end as "ongoing"
func (e EventRecord) MarshalJSON() ([]byte, error) {
	end := OngoingEndDate
	if e.EndDate != nil {
		end = e.EndDate.Format(DateLayout)
	}
	startRaw, _ := json.Marshal(e.StartDate.Format(DateLayout))
	endRaw, _ := json.Marshal(end)
	return json.Marshal(eventRecordWire{
		Name:             e.Name,
		Description:      e.Description,
		StartDate:        startRaw,
		EndDate:          endRaw,
		Keywords:         e.Keywords,
		RelatedCompanies: e.RelatedCompanies,
		Category:         e.Category,
		Country:          e.Country,
	})
}

// UnmarshalYAML decodes the same shape as the JSON form
func (e *EventRecord) UnmarshalYAML(node *yaml.Node) error {
	var w struct {
		Name             string           `yaml:"name"`
		Description      string           `yaml:"description"`
		StartDate        yaml.Node        `yaml:"start_date"`
		EndDate          yaml.Node        `yaml:"end_date"`
		Keywords         []string         `yaml:"keywords"`
		RelatedCompanies RelatedCompanies `yaml:"related_companies"`
		Category         string           `yaml:"category"`
		Country          string           `yaml:"country"`
	}
	if err := node.Decode(&w); err != nil {
		return err
	}

	start, _, err := parseDateString(w.StartDate.Value)
	if err != nil {
		return fmt.Errorf("start_date: %w", err)
	}
	end, ongoing, err := parseDateString(w.EndDate.Value)
	if err != nil {
		return fmt.Errorf("end_date: %w", err)
	}

	*e = EventRecord{
		Name:             w.Name,
		Description:      w.Description,
		StartDate:        start,
		Keywords:         w.Keywords,
		RelatedCompanies: w.RelatedCompanies,
		Category:         w.Category,
		Country:          w.Country,
	}
	if !ongoing && !end.IsZero() {
		e.EndDate = &end
	}
	return nil
}

// LoadEventFile reads and validates an event record. Files ending in .json
// are decoded as JSON and everything else as YAML.
func LoadEventFile(path string) (*EventRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event file %s: %w", path, err)
	}

	var event EventRecord
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &event)
	} else {
		err = yaml.Unmarshal(data, &event)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse event file %s: %w", path, err)
	}
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("invalid event in %s: %w", path, err)
	}
	return &event, nil
}

func parseRawDate(raw json.RawMessage) (time.Time, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, false, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, false, err
		}
		return parseDateString(s)
	}
	return parseDateString(string(raw))
}

// parseDateString parses unix seconds, YYYY-MM-DD, RFC3339 or "ongoing"
func parseDateString(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return time.Time{}, false, nil
	case strings.EqualFold(s, OngoingEndDate):
		return time.Time{}, true, nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), false, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, false, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, nil
	}
	return time.Time{}, false, fmt.Errorf("unrecognised date %q", s)
}

// UnmarshalJSON decodes an object while keeping its key order.
// A null value means the company has no stock code.
func (rc *RelatedCompanies) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*rc = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("related_companies must be an object")
	}

	var out RelatedCompanies
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := keyTok.(string)

		var code *string
		if err := dec.Decode(&code); err != nil {
			return fmt.Errorf("related_companies[%q]: %w", name, err)
		}
		c := RelatedCompany{Name: name}
		if code != nil {
			c.Code = strings.TrimSpace(*code)
		}
		out = append(out, c)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*rc = out
	return nil
}

// MarshalJSON writes an ordered object with null for missing codes
func (rc RelatedCompanies) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range rc {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if c.HasCode() {
			val, err := json.Marshal(c.Code)
			if err != nil {
				return nil, err
			}
			buf.Write(val)
		} else {
			buf.WriteString("null")
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalYAML decodes a mapping node while keeping its key order
func (rc *RelatedCompanies) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("related_companies must be a mapping, got line %d", node.Line)
	}
	out := make(RelatedCompanies, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		c := RelatedCompany{Name: key.Value}
		if val.Tag != "!!null" {
			c.Code = strings.TrimSpace(val.Value)
		}
		out = append(out, c)
	}
	*rc = out
	return nil
}
