// Package httphandler is the JSON API driving adapter.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ericfisherdev/rfdpanel/internal/application"
	"github.com/ericfisherdev/rfdpanel/internal/domain/model"
	"github.com/ericfisherdev/rfdpanel/internal/domain/port/driven"
)

// Limits on an anchor match request.
const (
	maxMatchCandidates = 10000
	maxMatchBodyBytes  = 1 << 20
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	discussions *application.DiscussionService
	pollSvc     *application.PollService
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. pollSvc may be
// nil, in which case refreshes run on the request goroutine.
func NewHandler(
	discussions *application.DiscussionService,
	pollSvc *application.PollService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		discussions: discussions,
		pollSvc:     pollSvc,
		logger:      logger,
	}
}

// RegisterRoutes adds the API routes to mux without middleware, so the web
// adapter can share one mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/rfds", h.ListRFDs)
	mux.HandleFunc("GET /api/v1/rfds/{number}/discussion", h.GetDiscussion)
	mux.HandleFunc("POST /api/v1/rfds/{number}/refresh", h.RefreshRFD)
	mux.HandleFunc("POST /api/v1/anchors/match", h.MatchAnchor)
}

// NewServeMux creates an http.Handler with all API routes registered and
// wrapped with request id, logging, and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return Wrap(mux, logger)
}

// Wrap applies the standard middleware chain to next.
func Wrap(next http.Handler, logger *slog.Logger) http.Handler {
	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, next)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = requestIDMiddleware(wrapped)

	return wrapped
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// ListRFDs returns the RFD index.
func (h *Handler) ListRFDs(w http.ResponseWriter, r *http.Request) {
	rfds, err := h.discussions.ListRFDs(r.Context())
	if err != nil {
		h.logger.Error("failed to list rfds", "error", err, "request_id", RequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]RFDSummaryResponse, 0, len(rfds))
	for _, rfd := range rfds {
		resp = append(resp, toRFDSummaryResponse(rfd))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetDiscussion returns an RFD with its ordered discussion timeline and the
// document anchors of its inline threads.
func (h *Handler) GetDiscussion(w http.ResponseWriter, r *http.Request) {
	number, ok := parseRFDNumber(w, r)
	if !ok {
		return
	}

	page, err := h.discussions.GetRFDDiscussion(r.Context(), number)
	if err != nil {
		h.writeServiceError(w, r, "failed to load rfd discussion", number, err)
		return
	}

	writeJSON(w, http.StatusOK, NewDiscussionPageResponse(page))
}

// RefreshRFD forces a re-fetch of an RFD's GitHub discussion.
func (h *Handler) RefreshRFD(w http.ResponseWriter, r *http.Request) {
	number, ok := parseRFDNumber(w, r)
	if !ok {
		return
	}

	var err error
	if h.pollSvc != nil {
		err = h.pollSvc.RefreshRFD(r.Context(), number)
	} else {
		err = h.discussions.RefreshRFD(r.Context(), number)
	}
	if err != nil {
		h.writeServiceError(w, r, "failed to refresh rfd", number, err)
		return
	}

	writeJSON(w, http.StatusAccepted, RefreshResponse{RFD: number, Status: "refreshed"})
}

// MatchAnchor picks the block a comment on the given source line attaches to.
func (h *Handler) MatchAnchor(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMatchBodyBytes)

	var req AnchorMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Candidates) > maxMatchCandidates {
		writeError(w, http.StatusBadRequest, "too many candidates")
		return
	}

	candidates := make([]model.AnchorCandidate, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		candidates = append(candidates, model.AnchorCandidate{Ref: c.Ref, Line: string(c.Line)})
	}

	resp := AnchorMatchResponse{}
	if match, ok := application.MatchAnchor(req.Line, candidates); ok {
		resp.Match = &AnchorCandidateJSON{Ref: match.Ref, Line: CandidateLine(match.Line)}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, msg string, number int, err error) {
	if errors.Is(err, driven.ErrRFDNotFound) {
		writeError(w, http.StatusNotFound, "rfd not found")
		return
	}
	h.logger.Error(msg, "rfd", number, "error", err, "request_id", RequestID(r.Context()))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func parseRFDNumber(w http.ResponseWriter, r *http.Request) (int, bool) {
	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil || number <= 0 {
		writeError(w, http.StatusBadRequest, "invalid RFD number")
		return 0, false
	}
	return number, true
}
