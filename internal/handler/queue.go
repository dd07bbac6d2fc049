package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/brewline/queue-api/internal/service"
)

// recentDisplayLimit trims recent completions at the boundary; the aggregator
// retains more.
const recentDisplayLimit = 5

// QueueReader defines the read-only projections the queue handlers need.
// Satisfied by *service.QueueService.
type QueueReader interface {
	QueueStatus(limit int) service.QueueStatus
	Analytics() service.AnalyticsSnapshot
}

// QueueHandler serves the queue status and analytics projections.
type QueueHandler struct {
	svc QueueReader
}

// NewQueueHandler creates a new QueueHandler.
func NewQueueHandler(svc QueueReader) *QueueHandler {
	return &QueueHandler{svc: svc}
}

// RegisterRoutes registers read endpoints on the given Chi router.
// Expected to be mounted under /api.
func (h *QueueHandler) RegisterRoutes(r chi.Router) {
	r.Get("/queue/status", h.Status)
	r.Get("/analytics", h.Analytics)
}

// Status handles GET /api/queue/status. An optional ?limit trims the queue
// listing.
func (h *QueueHandler) Status(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	writeJSON(w, http.StatusOK, h.svc.QueueStatus(limit))
}

// Analytics handles GET /api/analytics.
func (h *QueueHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	snap := h.svc.Analytics()
	if len(snap.RecentCompletions) > recentDisplayLimit {
		snap.RecentCompletions = snap.RecentCompletions[:recentDisplayLimit]
	}
	if snap.RecentCompletions == nil {
		snap.RecentCompletions = []service.OrderView{}
	}
	writeJSON(w, http.StatusOK, snap)
}
