// Package handler wires the dashboard endpoints. It delegates to the
// stats service and the audit read side; no derivation happens here.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"comptrack/internal/audit"
	"comptrack/internal/stats"
	"comptrack/pkg/platform/httputil"
)

const activityLimit = 10

// Service is the aggregate surface consumed by the dashboard.
type Service interface {
	Stats(ctx context.Context) (stats.GlobalCounts, error)
	ComplianceByAgency(ctx context.Context) ([]stats.AgencyRow, error)
	Calendar(ctx context.Context) (map[string][]stats.CalendarEntry, error)
}

// ActivitySource serves the recent-activity feed.
type ActivitySource interface {
	Recent(ctx context.Context, limit int) ([]audit.Event, error)
}

type Handler struct {
	service  Service
	activity ActivitySource
	logger   *slog.Logger
}

func New(service Service, activity ActivitySource, logger *slog.Logger) *Handler {
	return &Handler{service: service, activity: activity, logger: logger}
}

// Register mounts the dashboard endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/dashboard/stats", h.HandleStats)
	r.Get("/dashboard/compliance-by-agency", h.HandleComplianceByAgency)
	r.Get("/dashboard/calendar", h.HandleCalendar)
	r.Get("/dashboard/activity", h.HandleActivity)
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	counts, err := h.service.Stats(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "stats aggregation failed", "error", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "stats served",
		"total_requirements", counts.TotalRequirements,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, counts)
}

func (h *Handler) HandleComplianceByAgency(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ComplianceByAgency(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "agency breakdown failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rows)
}

// calendarEntry is the wire shape: PIC names join into one display string.
type calendarEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	PIC    string `json:"pic"`
}

func (h *Handler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	index, err := h.service.Calendar(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "calendar aggregation failed", "error", err)
		httputil.WriteError(w, err)
		return
	}

	out := make(map[string][]calendarEntry, len(index))
	for day, entries := range index {
		converted := make([]calendarEntry, len(entries))
		for i, e := range entries {
			converted[i] = calendarEntry{
				ID:     e.ID.String(),
				Name:   e.Name,
				Status: string(e.Status),
				PIC:    strings.Join(e.PICs, ", "),
			}
		}
		out[day] = converted
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleActivity(w http.ResponseWriter, r *http.Request) {
	events, err := h.activity.Recent(r.Context(), activityLimit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "activity feed failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, events)
}
