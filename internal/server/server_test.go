package server

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/eventstock/internal/app"
	"github.com/bobmcallan/eventstock/internal/common"
	"github.com/bobmcallan/eventstock/internal/models"
	"github.com/bobmcallan/eventstock/internal/services/report"
	testcommon "github.com/bobmcallan/eventstock/test/common"
)

type testServer struct {
	*Server
	upstream *testcommon.Upstream
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	upstream := testcommon.NewUpstream(t)
	cfg := common.NewDefaultConfig()
	upstream.Configure(cfg)

	a, err := app.NewAppWithConfig(cfg, common.NewSilentLogger())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	return &testServer{Server: NewServer(a), upstream: upstream}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func eventBody(t *testing.T, extra map[string]interface{}) map[string]interface{} {
	body := map[string]interface{}{"event": json.RawMessage(testcommon.SampleEventJSON(t))}
	for k, v := range extra {
		body[k] = v
	}
	return body
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Correlation-ID"))

	rr = srv.do(t, http.MethodPost, "/api/health", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "GET, HEAD", rr.Header().Get("Allow"))
}

func TestVersion(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.do(t, http.MethodGet, "/api/version", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var info common.VersionInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, common.GetVersion(), info.Version)
}

func TestConfig_DoesNotExposeKeys(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.do(t, http.MethodGet, "/api/config", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "test-av-key")
	assert.Contains(t, rr.Body.String(), `"alphavantage_configured":true`)
	assert.Contains(t, rr.Body.String(), `"source_cache":"in-memory"`)
}

func TestCorrelationIDEchoed(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	assert.Equal(t, "req-42", rr.Header().Get("X-Correlation-ID"))
}

func TestEventAggregate_StreamsOneSnapshotPerCategory(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.do(t, http.MethodPost, "/api/events/aggregate", eventBody(t, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/x-ndjson", rr.Header().Get("Content-Type"))

	var snaps []models.Snapshot
	scanner := bufio.NewScanner(rr.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for scanner.Scan() {
		var snap models.Snapshot
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &snap))
		snaps = append(snaps, snap)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, snaps, 3)

	seen := map[models.Category]bool{}
	for _, s := range snaps {
		seen[s.Category] = true
	}
	assert.Len(t, seen, 3)

	final := snaps[2].Aggregate
	assert.True(t, final.Complete())
	require.Contains(t, final.Profiles, "BP")
	assert.Equal(t, "http://www.bp.com", final.Profiles["BP"].Website)
	assert.Len(t, final.News.Results, 6)
}

func TestEventAggregate_InvalidEvent(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.do(t, http.MethodPost, "/api/events/aggregate", map[string]interface{}{
		"event": map[string]interface{}{"name": "", "start_date": "2020-01-01"},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "name is required")

	rr = srv.do(t, http.MethodPost, "/api/events/aggregate", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "event is required")
}

func TestEventStats(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.do(t, http.MethodPost, "/api/events/stats", eventBody(t, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Event string                `json:"event"`
		Days  int                   `json:"days"`
		Stats []models.DerivedStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Gulf Oil Spill", resp.Event)
	assert.Equal(t, 9, resp.Days)
	require.Len(t, resp.Stats, 1)
	assert.Equal(t, "BP", resp.Stats[0].Company)
	assert.Equal(t, 6, resp.Stats[0].MentionCount)
	assert.True(t, resp.Stats[0].HasPriceData)
}

func TestEventReport_WithoutHeatMapIsConflict(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.do(t, http.MethodPost, "/api/events/report", eventBody(t, nil))
	require.Equal(t, http.StatusConflict, rr.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, common.PreconditionMessage, resp.Error)
	assert.Equal(t, "precondition_not_met", resp.Code)
}

func TestEventReport_InvalidHeatMap(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.do(t, http.MethodPost, "/api/events/report", eventBody(t, map[string]interface{}{"heat_map": "%%%"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid heat_map")
}

func TestEventReport_PDF(t *testing.T) {
	srv := newTestServer(t)
	heatMap := "data:image/png;base64," + base64.StdEncoding.EncodeToString(testcommon.TestPNG(t, 400, 250))

	rr := srv.do(t, http.MethodPost, "/api/events/report", eventBody(t, map[string]interface{}{"heat_map": heatMap}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.NotEmpty(t, rr.Header().Get("X-Report-ID"))
	assert.Equal(t, `attachment; filename="Gulf Oil Spill report.pdf"`, rr.Header().Get("Content-Disposition"))

	summary, err := report.Inspect(rr.Body.Bytes())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, summary.Pages, 2)
	assert.True(t, summary.Contains("Company Statistics"))
}

func TestEventReport_JSON(t *testing.T) {
	srv := newTestServer(t)
	heatMap := base64.StdEncoding.EncodeToString(testcommon.TestPNG(t, 400, 250))

	rr := srv.do(t, http.MethodPost, "/api/events/report?format=json", eventBody(t, map[string]interface{}{"heat_map": heatMap}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var doc models.ReportDocument
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc))
	assert.Equal(t, rr.Header().Get("X-Report-ID"), doc.ID)
	require.NotEmpty(t, doc.Pages)
	assert.Equal(t, 1, doc.Pages[0].Number)
}

func TestCachePurge(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.do(t, http.MethodPost, "/api/events/stats", eventBody(t, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = srv.do(t, http.MethodPost, "/api/cache/purge", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"purged":2}`, rr.Body.String())
}

func TestShutdown_DisabledInProduction(t *testing.T) {
	srv := newTestServer(t)
	srv.app.Config.Environment = "production"

	rr := srv.do(t, http.MethodPost, "/api/shutdown", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestDecodeImage(t *testing.T) {
	raw := testcommon.TestPNG(t, 20, 10)

	img, err := decodeImage("data:image/png;base64," + base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, 20, img.WidthPx)
	assert.Equal(t, 10, img.HeightPx)

	_, err = decodeImage(base64.StdEncoding.EncodeToString([]byte("not an image")))
	assert.Error(t, err)
}

func TestContentDispositionName(t *testing.T) {
	assert.Equal(t, "a_b_c", contentDispositionName(`a"b/c`))
	assert.Equal(t, "report", contentDispositionName("  "))
}

func TestNewServer_TimeoutsFromConfig(t *testing.T) {
	srv := newTestServer(t)
	assert.Equal(t, srv.app.Config.Server.Addr(), srv.server.Addr)
	assert.Equal(t, 30*time.Second, srv.server.ReadTimeout)
	assert.Equal(t, 300*time.Second, srv.server.WriteTimeout)
}

func TestWriteTimeout_CoversReportLoadTimeout(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Server.WriteTimeout = "10s"
	cfg.Report.LoadTimeout = "90s"
	assert.Equal(t, 90*time.Second+streamGrace, writeTimeout(cfg))

	cfg.Server.WriteTimeout = "10m"
	assert.Equal(t, 10*time.Minute, writeTimeout(cfg))
}
