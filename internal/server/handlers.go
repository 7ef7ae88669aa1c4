package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bobmcallan/eventstock/internal/common"
	"github.com/bobmcallan/eventstock/internal/models"
)

// eventRequest is the body shared by the event endpoints
type eventRequest struct {
	Event *models.EventRecord `json:"event"`
	// HeatMap is a base64 PNG or JPEG, optionally as a data URL. Only the
	// report endpoint reads it.
	HeatMap string `json:"heat_map,omitempty"`
}

// decodeEvent decodes and validates the request event, writing a 400 on failure
func decodeEvent(w http.ResponseWriter, r *http.Request) (*eventRequest, bool) {
	var req eventRequest
	if !DecodeJSON(w, r, &req) {
		return nil, false
	}
	if req.Event == nil {
		WriteError(w, http.StatusBadRequest, "event is required")
		return nil, false
	}
	if err := req.Event.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid event: "+err.Error())
		return nil, false
	}
	return &req, true
}

// handleEventAggregate handles POST /api/events/aggregate. Each snapshot is
// written as one JSON line as soon as its category is ready.
func (s *Server) handleEventAggregate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	req, ok := decodeEvent(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.app.Config.Report.GetLoadTimeout())
	defer cancel()

	snapshots, err := s.app.AggregateService.LoadAggregate(ctx, req.Event)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	for snap := range snapshots {
		if err := enc.Encode(snap); err != nil {
			s.logger.ForContext(r.Context()).Warn().Err(err).Msg("Client went away during aggregate stream")
			cancel()
			continue
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// handleEventStats handles POST /api/events/stats
func (s *Server) handleEventStats(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	req, ok := decodeEvent(w, r)
	if !ok {
		return
	}

	window, stats, err := s.app.EventStats(r.Context(), req.Event)
	if err != nil {
		s.logger.ForContext(r.Context()).Warn().Err(err).Str("event", req.Event.Name).Msg("Event sources did not finish loading")
		WriteError(w, http.StatusGatewayTimeout, "Event sources did not finish loading")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"event":  req.Event.Name,
		"window": window,
		"days":   window.Days(),
		"stats":  stats,
	})
}

// handleEventReport handles POST /api/events/report. The PDF is returned
// unless ?format=json asks for the planned pages instead.
func (s *Server) handleEventReport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	req, ok := decodeEvent(w, r)
	if !ok {
		return
	}
	logger := s.logger.ForContext(r.Context())

	var heatMap *models.Image
	if req.HeatMap != "" {
		img, err := decodeImage(req.HeatMap)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid heat_map: "+err.Error())
			return
		}
		heatMap = img
	}

	doc, err := s.app.GenerateReport(r.Context(), req.Event, heatMap)
	if err != nil {
		if errors.Is(err, common.ErrPreconditionNotMet) {
			logger.Info().Err(err).Str("event", req.Event.Name).Msg("Report requested before inputs were ready")
			WriteErrorWithCode(w, http.StatusConflict, common.PreconditionMessage, "precondition_not_met")
			return
		}
		logger.Error().Err(err).Str("event", req.Event.Name).Msg("Report generation failed")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Report generation error: %v", err))
		return
	}

	w.Header().Set("X-Report-ID", doc.ID)
	if r.URL.Query().Get("format") == "json" {
		WriteJSON(w, http.StatusOK, doc)
		return
	}

	data, err := s.app.ReportService.RenderPDF(doc)
	if err != nil {
		logger.Error().Err(err).Str("report_id", doc.ID).Msg("Report rendering failed")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Report rendering error: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, contentDispositionName(doc.Properties.Title)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// decodeImage decodes a base64 image, accepting a data URL prefix
func decodeImage(s string) (*models.Image, error) {
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("not valid base64: %w", err)
	}
	return models.NewImage(data)
}
