package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/eventstock/internal/common"
	"github.com/bobmcallan/eventstock/internal/models"
)

func day(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func fixtureSeries() models.StockSeries {
	return models.StockSeries{
		{Date: day("2020-01-01"), Value: 10, High: 12, Low: 9},
		{Date: day("2020-01-05"), Value: 14, High: 15, Low: 13},
	}
}

func TestCompute_PriceFixture(t *testing.T) {
	window := models.NewWindow(day("2020-01-01"), day("2020-01-05"))

	got := Compute("Acme Corp", window, nil, fixtureSeries(), models.NewsCorpus{})

	assert.Equal(t, 9.0, got.MinPrice)
	assert.Equal(t, 15.0, got.MaxPrice)
	assert.Equal(t, 10.0, got.StartPrice)
	assert.Equal(t, 14.0, got.EndPrice)
	assert.True(t, got.HasPriceData)
}

func TestCompute_StartEndFallBackToMaxMin(t *testing.T) {
	window := models.NewWindow(day("2019-12-31"), day("2020-01-06"))

	got := Compute("Acme", window, nil, fixtureSeries(), models.NewsCorpus{})

	assert.Equal(t, got.MaxPrice, got.StartPrice)
	assert.Equal(t, got.MinPrice, got.EndPrice)
}

func TestCompute_EmptyWindowNeverLeavesSentinels(t *testing.T) {
	window := models.NewWindow(day("2021-06-01"), day("2021-06-30"))

	got := Compute("Acme", window, nil, fixtureSeries(), models.NewsCorpus{})

	assert.Equal(t, got.MinPrice, got.MaxPrice)
	assert.Equal(t, 0.0, got.MinPrice)
	assert.False(t, got.HasPriceData)
	assert.NotEqual(t, 9999.0, got.MinPrice)
}

func TestCompute_SingleBarWindowUsesItsOwnRange(t *testing.T) {
	window := models.NewWindow(day("2020-01-05"), day("2020-01-05"))

	got := Compute("Acme", window, nil, fixtureSeries(), models.NewsCorpus{})

	assert.Equal(t, 13.0, got.MinPrice)
	assert.Equal(t, 15.0, got.MaxPrice)
	assert.Equal(t, 14.0, got.StartPrice)
	assert.Equal(t, 14.0, got.EndPrice)
}

func TestMentionCount_FirstTokenCaseSensitive(t *testing.T) {
	news := models.NewsCorpus{Results: []models.Article{
		{BodyText: "Shares in Acme fell sharply."},
		{BodyText: "acme is lower case here."},
		{BodyText: "Nothing about the company."},
		{BodyText: "Acme Corp and Acme Ltd."},
	}}

	assert.Equal(t, 2, MentionCount("Acme Corporation", news))
	assert.Equal(t, 0, MentionCount("  ", news))
}

func TestCompute_SocialAveragesRoundUp(t *testing.T) {
	window := models.NewWindow(day("2020-01-01"), day("2020-01-11")) // 10 days
	profile := &models.CompanyProfile{Posts: []models.Post{
		{CreatedTime: day("2020-01-02").Add(3 * time.Hour), Likes: 10, Comments: 1},
		{CreatedTime: day("2020-01-03"), Likes: 5, Comments: 0},
		{CreatedTime: day("2020-01-11").Add(23 * time.Hour), Likes: 1, Comments: 2},
		{CreatedTime: day("2020-02-01"), Likes: 1000, Comments: 1000}, // outside
	}}

	got := Compute("Acme", window, profile, nil, models.NewsCorpus{})

	assert.Equal(t, 3, got.PostCount)
	assert.Equal(t, 1, got.AvgPostsPerDay)     // ceil(3/10)
	assert.Equal(t, 6, got.AvgLikesPerPost)    // ceil(16/3)
	assert.Equal(t, 1, got.AvgCommentsPerPost) // ceil(3/3)
}

func TestCompute_NoPostsNoDivision(t *testing.T) {
	window := models.NewWindow(day("2020-01-01"), day("2020-01-01"))
	profile := &models.CompanyProfile{Posts: []models.Post{{CreatedTime: day("2019-01-01"), Likes: 5}}}

	got := Compute("Acme", window, profile, nil, models.NewsCorpus{})

	assert.Equal(t, 0, got.PostCount)
	assert.Equal(t, 0, got.AvgPostsPerDay)
	assert.Equal(t, 0, got.AvgLikesPerPost)
	assert.Equal(t, 0, got.AvgCommentsPerPost)
}

func TestCompute_IsPure(t *testing.T) {
	window := models.NewWindow(day("2020-01-01"), day("2020-01-05"))
	profile := &models.CompanyProfile{Posts: []models.Post{{CreatedTime: day("2020-01-02"), Likes: 3}}}
	news := models.NewsCorpus{Results: []models.Article{{BodyText: "Acme news"}}}
	series := fixtureSeries()

	first := Compute("Acme", window, profile, series, news)
	second := Compute("Acme", window, profile, series, news)

	assert.Equal(t, first, second)
	assert.Equal(t, fixtureSeries(), series)
}

func TestService_ComputeAllFollowsEventOrder(t *testing.T) {
	svc := NewService(common.NewSilentLogger())
	event := &models.EventRecord{RelatedCompanies: models.RelatedCompanies{
		{Name: "Zeta", Code: "Z"},
		{Name: "Unlisted"},
		{Name: "Alpha", Code: "A"},
	}}
	agg := models.NewAggregate("ev")
	agg.Profiles["Alpha"] = &models.CompanyProfile{Name: "Alpha"}
	agg.Profiles["Zeta"] = &models.CompanyProfile{Name: "Zeta"}
	agg.Series["Alpha"] = fixtureSeries()

	window := models.NewWindow(day("2020-01-01"), day("2020-01-05"))
	all := svc.ComputeAll(event, window, agg)

	require.Len(t, all, 2)
	assert.Equal(t, "Zeta", all[0].Company)
	assert.False(t, all[0].HasPriceData)
	assert.Equal(t, "Alpha", all[1].Company)
	assert.Equal(t, 9.0, all[1].MinPrice)
}
