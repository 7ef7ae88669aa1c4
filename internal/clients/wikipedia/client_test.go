package wikipedia

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/eventstock/internal/common"
)

func TestGetSummary_ExtractsText(t *testing.T) {
	var gotTitle, gotProp string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.URL.Query().Get("titles")
		gotProp = r.URL.Query().Get("prop")
		w.Write([]byte(`{"query":{"pages":{"123":{"title":"Acme Corporation",
			"extract":"<p class=\"mw-empty-elt\"></p><p><b>Acme Corporation</b> is a   fictional company<sup>[1]</sup>.</p>\n<p>It sells anvils.</p>"}}}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	text, err := client.GetSummary(context.Background(), "Acme Corporation")
	require.NoError(t, err)

	assert.Equal(t, "Acme Corporation", gotTitle)
	assert.Equal(t, "extracts", gotProp)
	assert.Equal(t, "Acme Corporation is a fictional company. It sells anvils.", text)
}

func TestGetSummary_MissingPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query":{"pages":{"-1":{"title":"Nope","missing":""}}}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	text, err := client.GetSummary(context.Background(), "Nope")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestGetSummary_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.GetSummary(context.Background(), "Acme")
	assert.True(t, errors.Is(err, common.ErrSourceUnavailable))
}

func TestExtractText_PlainFallback(t *testing.T) {
	text, err := ExtractText("Just   some\ntext")
	require.NoError(t, err)
	assert.Equal(t, "Just some text", text)
}
