package server

import (
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/eventstock/internal/common"
)

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)
	mux.HandleFunc("/api/cache/purge", s.handleCachePurge)

	// Events
	mux.HandleFunc("/api/events/aggregate", s.handleEventAggregate)
	mux.HandleFunc("/api/events/stats", s.handleEventStats)
	mux.HandleFunc("/api/events/report", s.handleEventReport)

	// MCP over Streamable HTTP
	mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(s.app.MCPServer,
		mcpserver.WithStateLess(true),
	))
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.GetVersionInfo())
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	cfg := s.app.Config

	cache := cfg.Storage.Path
	if cache == "" {
		cache = "in-memory"
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":             cfg.Environment,
		"logging_level":           cfg.Logging.Level,
		"source_cache":            cache,
		"cache_purge_interval":    cfg.Storage.GetPurgeInterval().String(),
		"report_load_timeout":     cfg.Report.GetLoadTimeout().String(),
		"profile_url":             cfg.Clients.Profile.BaseURL,
		"wikipedia_url":           cfg.Clients.Wikipedia.BaseURL,
		"alphavantage_configured": cfg.Clients.AlphaVantage.APIKey != "",
		"guardian_configured":     cfg.Clients.Guardian.APIKey != "",
		"uptime":                  time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

func (s *Server) handleCachePurge(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Cache purge endpoint disabled in production")
		return
	}
	n, err := s.app.Cache.Purge(r.Context())
	if err != nil {
		s.logger.ForContext(r.Context()).Error().Err(err).Msg("Cache purge failed")
		WriteError(w, http.StatusInternalServerError, "Cache purge failed")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"purged": n})
}
