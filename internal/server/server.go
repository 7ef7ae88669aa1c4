package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bobmcallan/eventstock/internal/app"
	"github.com/bobmcallan/eventstock/internal/common"
)

// streamGrace is the time left for writing a response once every source of
// an event has loaded.
const streamGrace = 30 * time.Second

// Server serves the REST event endpoints and MCP over HTTP for one App.
type Server struct {
	app          *app.App
	server       *http.Server
	logger       *common.Logger
	shutdownChan chan struct{}
}

// SetShutdownChannel sets the channel signalled by POST /api/shutdown.
func (s *Server) SetShutdownChannel(ch chan struct{}) {
	s.shutdownChan = ch
}

// NewServer builds the HTTP server from the app's server and report config.
func NewServer(a *app.App) *Server {
	s := &Server{
		app:    a,
		logger: a.Logger,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.server = &http.Server{
		Addr:         a.Config.Server.Addr(),
		Handler:      applyMiddleware(mux, a.Logger),
		ReadTimeout:  a.Config.Server.GetReadTimeout(),
		WriteTimeout: writeTimeout(a.Config),
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// writeTimeout never cuts off a report or aggregate stream that is still
// within its load timeout.
func writeTimeout(cfg *common.Config) time.Duration {
	d := cfg.Server.GetWriteTimeout()
	if floor := cfg.Report.GetLoadTimeout() + streamGrace; d < floor {
		return floor
	}
	return d
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.server.Addr).
		Dur("write_timeout", s.server.WriteTimeout).
		Msg("Starting EventStock server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
