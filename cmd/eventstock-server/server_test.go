package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bobmcallan/eventstock/internal/app"
	"github.com/bobmcallan/eventstock/internal/server"
)

// testServer creates an httptest.Server with the full eventstock-server handler for testing.
func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	configPath := writeTestConfig(t)
	a, err := app.NewApp(configPath)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })

	srv := server.NewServer(a)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// TestHealthEndpoint verifies GET /api/health returns 200 with {"status":"ok"}.
func TestHealthEndpoint(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if body["status"] != "ok" {
		t.Errorf("Expected status=ok, got %q", body["status"])
	}
}

// TestVersionEndpoint verifies GET /api/version returns version info.
func TestVersionEndpoint(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/version")
	if err != nil {
		t.Fatalf("GET /api/version failed: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if body["version"] == "" {
		t.Error("Expected non-empty version field")
	}
}

// TestConfigEndpoint verifies GET /api/config reports the file-backed cache.
func TestConfigEndpoint(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/config")
	if err != nil {
		t.Fatalf("GET /api/config failed: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	cache, _ := body["source_cache"].(string)
	if !strings.HasSuffix(cache, "cache") {
		t.Errorf("Expected source_cache to be the configured path, got %q", cache)
	}
}

// TestEventReportEndpoint_RejectsEmptyBody verifies the report endpoint needs an event.
func TestEventReportEndpoint_RejectsEmptyBody(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Post(ts.URL+"/api/events/report", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("POST /api/events/report failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for an empty event, got %d", resp.StatusCode)
	}
}

// TestMCPEndpoint_Initialize verifies the streamable HTTP MCP endpoint answers initialize.
func TestMCPEndpoint_Initialize(t *testing.T) {
	ts := testServer(t)

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0.0"}}}`
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/mcp", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /mcp failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), `"eventstock"`) {
		t.Errorf("Expected server name in initialize result, got %s", data)
	}
}

// --- test helpers ---

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	os.MkdirAll(filepath.Join(dir, "logs"), 0755)

	config := `
[storage]
path = "` + filepath.Join(dir, "cache") + `"

[logging]
level = "error"
outputs = ["file"]
file_path = "` + filepath.Join(dir, "logs", "eventstock.log") + `"
`
	configPath := filepath.Join(dir, "eventstock.toml")
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}
