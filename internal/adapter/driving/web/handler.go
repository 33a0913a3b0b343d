// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/rfdpanel/internal/application"
	"github.com/ericfisherdev/rfdpanel/internal/domain/port/driven"
)

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	discussions *application.DiscussionService
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(discussions *application.DiscussionService, logger *slog.Logger) *Handler {
	return &Handler{
		discussions: discussions,
		logger:      logger,
	}
}

// Index renders the RFD index page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	rfds, err := h.discussions.ListRFDs(r.Context())
	if err != nil {
		h.logger.Error("failed to list rfds", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.render(w, r, Layout("RFDs", IndexPage(toIndexRows(rfds))))
}

// RFD renders one RFD with its discussion sidebar.
func (h *Handler) RFD(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil || number <= 0 {
		http.Error(w, "invalid RFD number", http.StatusBadRequest)
		return
	}

	page, err := h.discussions.GetRFDDiscussion(r.Context(), number)
	if errors.Is(err, driven.ErrRFDNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Error("failed to load rfd discussion", "rfd", number, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	view, err := toRFDPageView(page)
	if err != nil {
		h.logger.Error("failed to build rfd page", "rfd", number, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.render(w, r, Layout(view.Label+": "+view.Title, RFDPage(view)))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", "path", r.URL.Path, "error", err)
	}
}
