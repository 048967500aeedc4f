package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/capture"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/routing"
)

// Handler holds API route handlers.
type Handler struct {
	svc   *capture.Service
	rules *routing.Snapshot
}

// NewHandler creates a new Handler.
func NewHandler(svc *capture.Service, rules *routing.Snapshot) *Handler {
	return &Handler{svc: svc, rules: rules}
}

func decodeItem(content, contentType, source string) *models.CaptureItem {
	item := &models.CaptureItem{
		Content:     content,
		ContentType: models.ContentUnknown,
		Source:      models.SourceManual,
	}
	if contentType != "" {
		item.ContentType = models.ContentType(contentType)
	}
	if source != "" {
		item.Source = models.Source(source)
	}
	return item
}

// Capture handles POST /api/capture.
//
//	@Summary		Process a capture through the pipeline
//	@Tags			capture
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CaptureRequest	true	"Capture"
//	@Success		201		{object}	CaptureResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/capture [post]
func (h *Handler) Capture(w http.ResponseWriter, r *http.Request) {
	var req CaptureRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	res, err := h.svc.ProcessCapture(r.Context(), decodeItem(req.Content, req.Type, req.Source))
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrEmptyCapture):
			writeJSON(w, http.StatusBadRequest, errorBody("capture is empty"))
		case errors.Is(err, apperr.ErrNoDailyNote):
			writeJSON(w, http.StatusUnprocessableEntity, errorBody("no daily note could be resolved for this capture"))
		default:
			slog.Error("capture failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// Route handles POST /api/route. It previews a routing decision without
// writing anything.
//
//	@Summary		Preview the routing decision for content
//	@Tags			capture
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RouteRequest	true	"Content to route"
//	@Success		200		{object}	RouteResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/route [post]
func (h *Handler) Route(w http.ResponseWriter, r *http.Request) {
	var req RouteRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}

	item := decodeItem(req.Content, req.Type, "")
	var decision *models.RouteDecision
	if req.Full {
		decision = h.svc.RouteFull(r.Context(), item)
	} else {
		decision = h.svc.RouteDeterministic(item)
	}
	writeJSON(w, http.StatusOK, RouteResponse{Decision: decision})
}

// Rules handles GET /api/rules.
//
//	@Summary		List the loaded routing rules
//	@Tags			capture
//	@Produce		json
//	@Success		200	{object}	RulesResponse
//	@Security		BearerAuth
//	@Router			/rules [get]
func (h *Handler) Rules(w http.ResponseWriter, r *http.Request) {
	rules := h.rules.Load()
	if rules == nil {
		rules = []routing.Rule{}
	}
	writeJSON(w, http.StatusOK, RulesResponse{Rules: rules})
}

// Health handles GET /api/health.
//
//	@Summary		Liveness check
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
