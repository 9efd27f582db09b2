package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/teambition/rrule-go"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/middleware"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/models"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/realtime"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/repository"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/utils"
)

type ScheduleHTTP struct {
	repo repository.ScheduleRepository
	hub  *realtime.Hub
}

func NewScheduleHTTP(repo repository.ScheduleRepository, hub *realtime.Hub) *ScheduleHTTP {
	return &ScheduleHTTP{repo: repo, hub: hub}
}

type eventDTO struct {
	Title       string    `json:"title" validate:"required,min=3"`
	Description string    `json:"description"`
	Type        string    `json:"type" validate:"omitempty,oneof=maintenance meeting onsite task"`
	StartAt     time.Time `json:"startAt" validate:"required"`
	EndAt       time.Time `json:"endAt" validate:"required,gtfield=StartAt"`
	AssigneeID  string    `json:"assigneeId"`
	Recurrence  string    `json:"recurrence"`
}

// GET /api/schedule/events?from=&to=&assignee=
func (h *ScheduleHTTP) ListEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qv := r.URL.Query()
		from, ok := parseDay(qv.Get("from"))
		if !ok {
			utils.Error(w, http.StatusBadRequest, "invalid 'from' date")
			return
		}
		to, ok := parseDay(qv.Get("to"))
		if !ok {
			utils.Error(w, http.StatusBadRequest, "invalid 'to' date")
			return
		}
		items, err := h.repo.ListEvents(r.Context(), from, to, qv.Get("assignee"))
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": items})
	}
}

// POST /api/schedule/events
func (h *ScheduleHTTP) CreateEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in eventDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		in.Title = strings.TrimSpace(in.Title)
		if err := validate.Struct(in); err != nil {
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		if in.Recurrence != "" {
			if _, err := rrule.StrToRRule(in.Recurrence); err != nil {
				utils.Error(w, http.StatusBadRequest, "invalid recurrence rule")
				return
			}
		}
		if in.Type == "" {
			in.Type = "task"
		}

		e := &models.ScheduleEvent{
			Title:       in.Title,
			Description: strings.TrimSpace(in.Description),
			Type:        in.Type,
			StartAt:     in.StartAt,
			EndAt:       in.EndAt,
			AssigneeID:  strings.TrimSpace(in.AssigneeID),
			Status:      "scheduled",
			Recurrence:  in.Recurrence,
		}
		if err := h.repo.CreateEvent(r.Context(), e); err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.hub.Publish("schedule_events", realtime.ActionInsert, e)
		utils.JSON(w, http.StatusCreated, e)
	}
}

// PATCH /api/schedule/events/{id}
func (h *ScheduleHTTP) UpdateEvent() http.HandlerFunc {
	type inDTO struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Type        *string    `json:"type"`
		StartAt     *time.Time `json:"startAt"`
		EndAt       *time.Time `json:"endAt"`
		AssigneeID  *string    `json:"assigneeId"`
		Status      *string    `json:"status"`
		Recurrence  *string    `json:"recurrence"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		e, err := h.repo.GetEvent(r.Context(), id)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if e == nil {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}

		if in.Title != nil {
			e.Title = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			e.Description = strings.TrimSpace(*in.Description)
		}
		if in.Type != nil {
			e.Type = *in.Type
		}
		if in.StartAt != nil {
			e.StartAt = *in.StartAt
		}
		if in.EndAt != nil {
			e.EndAt = *in.EndAt
		}
		if in.AssigneeID != nil {
			e.AssigneeID = strings.TrimSpace(*in.AssigneeID)
		}
		if in.Status != nil {
			e.Status = *in.Status
		}
		if in.Recurrence != nil {
			if *in.Recurrence != "" {
				if _, err := rrule.StrToRRule(*in.Recurrence); err != nil {
					utils.Error(w, http.StatusBadRequest, "invalid recurrence rule")
					return
				}
			}
			e.Recurrence = *in.Recurrence
		}
		if !e.EndAt.After(e.StartAt) {
			utils.Error(w, http.StatusBadRequest, "endAt must be after startAt")
			return
		}

		if err := h.repo.UpdateEvent(r.Context(), e); err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.hub.Publish("schedule_events", realtime.ActionUpdate, e)
		utils.JSON(w, http.StatusOK, e)
	}
}

// DELETE /api/schedule/events/{id}
func (h *ScheduleHTTP) DeleteEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := h.repo.DeleteEvent(r.Context(), id); err != nil {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}
		h.hub.Publish("schedule_events", realtime.ActionDelete, map[string]string{"id": id})
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /api/schedule/events/{id}/occurrences?from=&to=
// Expands a recurring event into concrete occurrences in the window. A
// non-recurring event yields its single window when it overlaps.
func (h *ScheduleHTTP) EventOccurrences() http.HandlerFunc {
	type occurrence struct {
		StartAt time.Time `json:"startAt"`
		EndAt   time.Time `json:"endAt"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := h.repo.GetEvent(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if e == nil {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}

		qv := r.URL.Query()
		from, ok := parseDay(qv.Get("from"))
		if !ok {
			utils.Error(w, http.StatusBadRequest, "invalid 'from' date")
			return
		}
		to, ok := parseDay(qv.Get("to"))
		if !ok {
			utils.Error(w, http.StatusBadRequest, "invalid 'to' date")
			return
		}
		if from.IsZero() {
			from = e.StartAt
		}
		if to.IsZero() {
			to = from.AddDate(0, 3, 0)
		}

		duration := e.EndAt.Sub(e.StartAt)
		var out []occurrence

		if e.Recurrence == "" {
			if e.StartAt.Before(to) && !e.EndAt.Before(from) {
				out = append(out, occurrence{StartAt: e.StartAt, EndAt: e.EndAt})
			}
			utils.JSON(w, http.StatusOK, map[string]any{"items": out})
			return
		}

		rule, err := rrule.StrToRRule(e.Recurrence)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "stored recurrence rule is invalid")
			return
		}
		rule.DTStart(e.StartAt)
		for _, start := range rule.Between(from, to, true) {
			out = append(out, occurrence{StartAt: start, EndAt: start.Add(duration)})
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": out})
	}
}

// -----------------------------------------------------------------------------
// Reminders
// -----------------------------------------------------------------------------

// GET /api/schedule/reminders?all=
// Lists the caller's reminders, pending-only by default.
func (h *ScheduleHTTP) ListReminders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		items, err := h.repo.ListReminders(r.Context(), uid, r.URL.Query().Get("all") == "true")
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": items})
	}
}

// POST /api/schedule/reminders
func (h *ScheduleHTTP) CreateReminder() http.HandlerFunc {
	type inDTO struct {
		Title    string    `json:"title" validate:"required"`
		RemindAt time.Time `json:"remindAt" validate:"required"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		in.Title = strings.TrimSpace(in.Title)
		if err := validate.Struct(in); err != nil {
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		m := &models.Reminder{Title: in.Title, RemindAt: in.RemindAt, AssigneeID: uid}
		if err := h.repo.CreateReminder(r.Context(), m); err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.hub.Publish("reminders", realtime.ActionInsert, m)
		utils.JSON(w, http.StatusCreated, m)
	}
}

// PATCH /api/schedule/reminders/{id}/done
func (h *ScheduleHTTP) SetReminderDone() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var in struct {
			Done bool `json:"done"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		m, err := h.repo.SetReminderDone(r.Context(), id, in.Done)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if m == nil {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}
		h.hub.Publish("reminders", realtime.ActionUpdate, m)
		utils.JSON(w, http.StatusOK, m)
	}
}

// DELETE /api/schedule/reminders/{id}
func (h *ScheduleHTTP) DeleteReminder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := h.repo.DeleteReminder(r.Context(), id); err != nil {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}
		h.hub.Publish("reminders", realtime.ActionDelete, map[string]string{"id": id})
		w.WriteHeader(http.StatusNoContent)
	}
}
