package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/reports"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/repository"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/utils"
)

type ReportsHTTP struct {
	repo repository.TicketRepository
}

func NewReportsHTTP(r repository.TicketRepository) *ReportsHTTP { return &ReportsHTTP{repo: r} }

// Optional repo capability: SQL counters instead of a full scan.
type counters interface {
	CountByStatus(ctx context.Context, statuses []string, inclusive bool) (int, error)
	CountResolvedSince(ctx context.Context, since time.Time) (int, error)
	CountOpenByPriorities(ctx context.Context, prios []string) (int, error)
}

// GET /api/reports/summary
// Returns: { open, resolved7d, highCriticalOpen }
func (h *ReportsHTTP) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rr, ok := h.repo.(counters); ok {
			open, err := rr.CountByStatus(r.Context(), []string{"Resolved", "Closed"}, false)
			if err != nil {
				utils.Error(w, http.StatusInternalServerError, err.Error())
				return
			}
			resolved7d, err := rr.CountResolvedSince(r.Context(), time.Now().Add(-7*24*time.Hour))
			if err != nil {
				utils.Error(w, http.StatusInternalServerError, err.Error())
				return
			}
			highCritOpen, err := rr.CountOpenByPriorities(r.Context(), []string{"High", "Critical"})
			if err != nil {
				utils.Error(w, http.StatusInternalServerError, err.Error())
				return
			}
			utils.JSON(w, http.StatusOK, reports.Summary{
				Open:             open,
				Resolved7d:       resolved7d,
				HighCriticalOpen: highCritOpen,
			})
			return
		}

		// Fallback: list and reduce in memory.
		items, err := h.repo.ListBetween(r.Context(), time.Time{}, time.Time{})
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, reports.Summarize(items, time.Now()))
	}
}

// GET /api/reports/metrics?from=2025-01-01&to=2025-02-01
// Full aggregation snapshot: tallies, resolution time, SLA compliance and
// the per-technician breakdown.
func (h *ReportsHTTP) Metrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, ok := parseDay(r.URL.Query().Get("from"))
		if !ok {
			utils.Error(w, http.StatusBadRequest, "invalid 'from' date")
			return
		}
		to, ok := parseDay(r.URL.Query().Get("to"))
		if !ok {
			utils.Error(w, http.StatusBadRequest, "invalid 'to' date")
			return
		}

		items, err := h.repo.ListBetween(r.Context(), from, to)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, reports.Compute(items))
	}
}

// parseDay accepts an empty value (open bound) or a YYYY-MM-DD day.
func parseDay(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, true
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
