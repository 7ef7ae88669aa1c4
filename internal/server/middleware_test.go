package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/eventstock/internal/common"
)

func TestLoggingMiddleware_4xxUsesInfoLevel(t *testing.T) {
	// At WARN level, Info() events are filtered out.
	var buf bytes.Buffer
	logger := common.NewLoggerWithOutput("warn", &buf)

	handler := loggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/missing", nil))
	assert.NotContains(t, buf.String(), "HTTP request")
}

func TestLoggingMiddleware_5xxUsesErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := common.NewLoggerWithOutput("warn", &buf)

	handler := loggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/broken", nil))
	assert.Contains(t, buf.String(), "HTTP request")
	assert.Contains(t, buf.String(), `"status":500`)
}

func TestLoggingMiddleware_2xxUsesTraceLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := common.NewLoggerWithOutput("info", &buf)

	handler := loggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.NotContains(t, buf.String(), "HTTP request")
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	called := false
	handler := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/api/events/report", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(rr.Header().Get("Access-Control-Expose-Headers"), "X-Report-ID"))
}

func TestCorrelationIDMiddleware_StoresRequestContext(t *testing.T) {
	var got string
	handler := correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = common.ResolveCorrelationID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Correlation-ID", "corr-1")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, "corr-1", got)
	assert.Equal(t, "corr-1", rr.Header().Get("X-Correlation-ID"))
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := recoveryMiddleware(common.NewSilentLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestResponseWriter_Flushes(t *testing.T) {
	rr := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rr, statusCode: http.StatusOK}

	var f http.Flusher = rw
	f.Flush()
	assert.True(t, rr.Flushed)
}
