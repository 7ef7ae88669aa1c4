package models

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestEventRecord_UnmarshalJSON_PreservesCompanyOrder(t *testing.T) {
	data := []byte(`{
		"name": "Oil Spill",
		"start_date": "2020-01-01",
		"end_date": "2020-01-31",
		"keywords": ["oil", "spill", "gulf"],
		"related_companies": {"Zeta Corp": "ZET", "Alpha Ltd": null, "Mid Co": "MID"}
	}`)

	var ev EventRecord
	require.NoError(t, json.Unmarshal(data, &ev))

	require.Len(t, ev.RelatedCompanies, 3)
	assert.Equal(t, "Zeta Corp", ev.RelatedCompanies[0].Name)
	assert.Equal(t, "Alpha Ltd", ev.RelatedCompanies[1].Name)
	assert.False(t, ev.RelatedCompanies[1].HasCode())
	assert.Equal(t, "MID", ev.RelatedCompanies[2].Code)
	assert.Len(t, ev.CompaniesWithCode(), 2)
	require.NotNil(t, ev.EndDate)
	assert.Equal(t, time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC), *ev.EndDate)
	assert.NoError(t, ev.Validate())
}

func TestEventRecord_UnmarshalJSON_UnixAndOngoing(t *testing.T) {
	data := []byte(`{"name":"Launch","start_date":1577836800,"end_date":"ongoing","related_companies":{}}`)

	var ev EventRecord
	require.NoError(t, json.Unmarshal(data, &ev))

	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), ev.StartDate)
	assert.True(t, ev.Ongoing())
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now, ev.EffectiveEnd(now))
}

func TestEventRecord_UnmarshalJSON_BadDate(t *testing.T) {
	var ev EventRecord
	err := json.Unmarshal([]byte(`{"name":"x","start_date":"yesterday"}`), &ev)
	assert.Error(t, err)
}

func TestEventRecord_MarshalJSON_RoundTripKeepsOrder(t *testing.T) {
	ev := EventRecord{
		Name:      "Recall",
		StartDate: time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC),
		RelatedCompanies: RelatedCompanies{
			{Name: "B", Code: "BBB"},
			{Name: "A"},
		},
	}
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"related_companies":{"B":"BBB","A":null}`)
	assert.Contains(t, string(data), `"end_date":"ongoing"`)

	var back EventRecord
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, ev.RelatedCompanies, back.RelatedCompanies)
	assert.True(t, back.Ongoing())
}

func TestEventRecord_UnmarshalYAML(t *testing.T) {
	data := []byte(`
name: Factory Fire
start_date: 2019-06-01
end_date: ongoing
keywords: [fire, factory]
related_companies:
  Second Co: SEC
  First Co: ~
`)
	var ev EventRecord
	require.NoError(t, yaml.Unmarshal(data, &ev))

	assert.Equal(t, "Factory Fire", ev.Name)
	assert.Equal(t, time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC), ev.StartDate)
	assert.True(t, ev.Ongoing())
	require.Len(t, ev.RelatedCompanies, 2)
	assert.Equal(t, RelatedCompany{Name: "Second Co", Code: "SEC"}, ev.RelatedCompanies[0])
	assert.Equal(t, RelatedCompany{Name: "First Co"}, ev.RelatedCompanies[1])
}

func TestLoadEventFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "spill.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
name: Oil Spill
start_date: 2020-01-01
end_date: ongoing
keywords: [oil]
related_companies:
  BP: BP
  Local Fishery: null
`), 0644))
	ev, err := LoadEventFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "Oil Spill", ev.Name)
	assert.True(t, ev.Ongoing())
	require.Len(t, ev.RelatedCompanies, 2)
	assert.False(t, ev.RelatedCompanies[1].HasCode())

	jsonPath := filepath.Join(dir, "spill.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"name":"Oil Spill","start_date":1577836800,"related_companies":{"BP":"BP"}}`), 0644))
	ev, err = LoadEventFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), ev.StartDate)

	badPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte(`{"name":""}`), 0644))
	_, err = LoadEventFile(badPath)
	assert.ErrorContains(t, err, "name is required")

	_, err = LoadEventFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestEventRecord_Validate(t *testing.T) {
	start := time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC)
	before := start.AddDate(0, 0, -1)

	ev := EventRecord{
		StartDate:        start,
		EndDate:          &before,
		Keywords:         []string{"a", "b", "c", "d", "e"},
		RelatedCompanies: RelatedCompanies{{Name: "A"}, {Name: "A"}},
	}
	err := ev.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "end_date is before start_date")
	assert.Contains(t, err.Error(), "at most 4 keywords")
	assert.Contains(t, err.Error(), `duplicate related company "A"`)
}

func TestWindow_DaysAndContains(t *testing.T) {
	w := NewWindow(
		time.Date(2020, 1, 1, 15, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 31, 1, 0, 0, 0, time.UTC),
	)
	assert.Equal(t, 30, w.Days())
	assert.True(t, w.Contains(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, w.Contains(time.Date(2020, 1, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)))

	same := NewWindow(w.Start, w.Start)
	assert.Equal(t, 1, same.Days())
}

func TestNormalizeSeries_SortsAndDeduplicates(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2020, 1, day, 0, 0, 0, 0, time.UTC) }
	series := NormalizeSeries([]StockBar{
		{Date: d(3), Close: 3},
		{Date: d(1), Close: 1},
		{Date: d(3), Close: 33},
		{Date: d(2), Close: 2},
	})

	require.Len(t, series, 3)
	assert.Equal(t, d(1), series[0].Date)
	assert.Equal(t, d(2), series[1].Date)
	assert.Equal(t, 33.0, series[2].Close)
	assert.Len(t, series.Between(d(2), d(3)), 2)
}

func TestAggregate_CloneIsIndependent(t *testing.T) {
	agg := NewAggregate("ev")
	agg.Profiles["A"] = &CompanyProfile{Name: "A"}
	agg.Ready.Set(CategoryProfiles)

	snap := agg.Clone()
	agg.Profiles["B"] = &CompanyProfile{Name: "B"}
	agg.Ready.Set(CategorySeries)

	assert.Len(t, snap.Profiles, 1)
	assert.True(t, snap.Ready.Profiles)
	assert.False(t, snap.Ready.Series)
	assert.False(t, snap.Complete())

	agg.Ready.Set(CategoryNews)
	assert.True(t, agg.Complete())
}
