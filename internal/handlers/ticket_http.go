package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/middleware"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/models"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/realtime"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/repository"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/utils"
)

// TicketHTTP wires HTTP endpoints to repositories. Mutations publish on the
// realtime hub and leave notification rows for the affected users; those are
// independent follow-up writes, not a transaction.
type TicketHTTP struct {
	tickets       repository.TicketRepository
	users         repository.UserRepository
	notifications repository.NotificationRepository
	hub           *realtime.Hub
}

func NewTicketHTTP(tickets repository.TicketRepository, users repository.UserRepository,
	notifications repository.NotificationRepository, hub *realtime.Hub) *TicketHTTP {
	return &TicketHTTP{tickets: tickets, users: users, notifications: notifications, hub: hub}
}

// slaWindow maps priority to the deadline offset applied at creation.
func slaWindow(priority string) time.Duration {
	switch priority {
	case "Critical":
		return 4 * time.Hour
	case "High":
		return 8 * time.Hour
	case "Medium":
		return 24 * time.Hour
	default:
		return 72 * time.Hour
	}
}

// pickAssignee prefers the least-loaded available technician, falling back to
// the first active admin.
func (h *TicketHTTP) pickAssignee(ctx context.Context) string {
	if id, err := h.users.LeastLoadedTechnicianID(ctx); err == nil && id != "" {
		return id
	}
	if id, err := h.users.FirstActiveAdminID(ctx); err == nil && id != "" {
		return id
	}
	return ""
}

// validAssignee rejects values the schema's uuid cast would choke on: the
// column is text, but every read path casts it, so one bad write would
// poison all ticket reads.
func validAssignee(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func (h *TicketHTTP) notify(ctx context.Context, recipientID, message, kind string) {
	if recipientID == "" {
		return
	}
	n := &models.Notification{RecipientID: recipientID, Message: message, Type: kind}
	if err := h.notifications.Create(ctx, n); err == nil {
		h.hub.Publish("notifications", realtime.ActionInsert, n)
	}
}

// GET /api/tickets
func (h *TicketHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qv := r.URL.Query()
		f := repository.TicketFilter{
			Q:        strings.TrimSpace(qv.Get("q")),
			Status:   strings.TrimSpace(qv.Get("status")),
			Priority: strings.TrimSpace(qv.Get("priority")),
			Category: strings.TrimSpace(qv.Get("category")),
			Type:     strings.TrimSpace(qv.Get("type")),
			Assignee: strings.TrimSpace(qv.Get("assignee")),
			Limit:    utils.QueryInt(qv, "limit", 20),
			Offset:   utils.QueryInt(qv, "offset", 0),
			Sort:     qv.Get("sort"),
			Order:    qv.Get("order"),
		}

		// End users only ever see their own tickets.
		role, _ := utils.GetString(r.Context(), middleware.CtxRole)
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		if role == "end_user" {
			f.Requester = uid
		}

		items, total, err := h.tickets.List(r.Context(), f)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
	}
}

// GET /api/tickets/{id}
func (h *TicketHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		t, err := h.tickets.Get(r.Context(), id)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if t == nil {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}
		role, _ := utils.GetString(r.Context(), middleware.CtxRole)
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		if role == "end_user" && t.Requester != uid {
			utils.Error(w, http.StatusForbidden, "forbidden")
			return
		}
		utils.JSON(w, http.StatusOK, t)
	}
}

// POST /api/tickets
func (h *TicketHTTP) Create() http.HandlerFunc {
	type inDTO struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Type        string `json:"type"`
		Category    string `json:"category"`
		Priority    string `json:"priority"`
		Assignee    string `json:"assignee"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		in.Title = strings.TrimSpace(in.Title)
		if in.Title == "" {
			utils.Error(w, http.StatusBadRequest, "title is required")
			return
		}

		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		if uid == "" {
			utils.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		role, _ := utils.GetString(r.Context(), middleware.CtxRole)

		priority := strings.TrimSpace(in.Priority)
		if priority == "" {
			priority = "Medium"
		}
		kind := strings.TrimSpace(in.Type)
		if kind == "" {
			kind = "incident"
		}

		assignee := strings.TrimSpace(in.Assignee)
		// End users never choose the assignee.
		if role == "end_user" || assignee == "" {
			assignee = h.pickAssignee(r.Context())
		} else if !validAssignee(assignee) {
			utils.Error(w, http.StatusBadRequest, "assignee must be a user id")
			return
		}

		due := time.Now().Add(slaWindow(priority))
		t := &models.Ticket{
			Title:       in.Title,
			Description: strings.TrimSpace(in.Description),
			Type:        kind,
			Category:    strings.TrimSpace(in.Category),
			Priority:    priority,
			Status:      "New",
			Requester:   uid,
			Assignee:    assignee,
			SLADueAt:    &due,
		}

		if err := h.tickets.Create(r.Context(), t); err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}

		if t.Assignee != "" {
			_ = h.users.AdjustWorkload(r.Context(), t.Assignee, +1)
			h.notify(r.Context(), t.Assignee, "New ticket "+t.Number+" assigned to you: "+t.Title, "ticket")
		}
		h.hub.Publish("tickets", realtime.ActionInsert, t)
		utils.JSON(w, http.StatusCreated, t)
	}
}

// PATCH /api/tickets/{id}
func (h *TicketHTTP) Update() http.HandlerFunc {
	type inDTO struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Type        *string `json:"type"`
		Category    *string `json:"category"`
		Priority    *string `json:"priority"`
		Status      *string `json:"status"`
		Assignee    *string `json:"assignee"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		t, err := h.tickets.Get(r.Context(), id)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if t == nil {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}

		prevAssignee := t.Assignee
		wasClosed := t.Closed()

		if in.Title != nil {
			t.Title = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			t.Description = strings.TrimSpace(*in.Description)
		}
		if in.Type != nil {
			t.Type = strings.TrimSpace(*in.Type)
		}
		if in.Category != nil {
			t.Category = strings.TrimSpace(*in.Category)
		}
		if in.Priority != nil {
			t.Priority = strings.TrimSpace(*in.Priority)
		}
		if in.Status != nil {
			t.Status = strings.TrimSpace(*in.Status)
		}
		if in.Assignee != nil {
			a := strings.TrimSpace(*in.Assignee)
			if a != "" && !validAssignee(a) {
				utils.Error(w, http.StatusBadRequest, "assignee must be a user id")
				return
			}
			t.Assignee = a
		}

		// Closing stamps the closure time once; reopening clears it.
		if t.Closed() && !wasClosed {
			now := time.Now()
			t.ClosedAt = &now
		} else if !t.Closed() && wasClosed {
			t.ClosedAt = nil
		}

		if err := h.tickets.Update(r.Context(), t); err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}

		// Workload counts open assigned tickets. Compare who held the slot
		// before and after so reassignment, closing and reopening all keep
		// the counters honest.
		prevHolder, newHolder := "", ""
		if !wasClosed {
			prevHolder = prevAssignee
		}
		if !t.Closed() {
			newHolder = t.Assignee
		}
		if prevHolder != newHolder {
			if prevHolder != "" {
				_ = h.users.AdjustWorkload(r.Context(), prevHolder, -1)
			}
			if newHolder != "" {
				_ = h.users.AdjustWorkload(r.Context(), newHolder, +1)
			}
		}
		if t.Assignee != prevAssignee && t.Assignee != "" {
			h.notify(r.Context(), t.Assignee, "Ticket "+t.Number+" reassigned to you", "ticket")
		}
		if t.Closed() && !wasClosed {
			h.notify(r.Context(), t.Requester, "Your ticket "+t.Number+" was "+strings.ToLower(t.Status), "ticket")
		}

		updated, err := h.tickets.Get(r.Context(), t.ID)
		if err != nil || updated == nil {
			utils.Error(w, http.StatusInternalServerError, "ticket not found after update")
			return
		}
		h.hub.Publish("tickets", realtime.ActionUpdate, updated)
		utils.JSON(w, http.StatusOK, updated)
	}
}

// DELETE /api/tickets/{id}
func (h *TicketHTTP) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		t, err := h.tickets.Get(r.Context(), id)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if t == nil {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}
		if err := h.tickets.Delete(r.Context(), id); err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if t.Assignee != "" && !t.Closed() {
			_ = h.users.AdjustWorkload(r.Context(), t.Assignee, -1)
		}
		h.hub.Publish("tickets", realtime.ActionDelete, map[string]string{"id": id})
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /api/tickets/{id}/assign
func (h *TicketHTTP) Assign() http.HandlerFunc {
	type inDTO struct {
		Assignee string `json:"assignee"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		t, err := h.tickets.Get(r.Context(), id)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if t == nil {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}

		assignee := strings.TrimSpace(in.Assignee)
		if assignee == "" {
			assignee = h.pickAssignee(r.Context())
			if assignee == "" {
				utils.Error(w, http.StatusConflict, "no technician available")
				return
			}
		} else if !validAssignee(assignee) {
			utils.Error(w, http.StatusBadRequest, "assignee must be a user id")
			return
		}

		prev := t.Assignee
		t.Assignee = assignee
		if t.Status == "New" {
			t.Status = "Open"
		}
		if err := h.tickets.Update(r.Context(), t); err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if prev != "" && prev != assignee {
			_ = h.users.AdjustWorkload(r.Context(), prev, -1)
		}
		if assignee != prev {
			_ = h.users.AdjustWorkload(r.Context(), assignee, +1)
			h.notify(r.Context(), assignee, "Ticket "+t.Number+" assigned to you", "ticket")
		}

		updated, err := h.tickets.Get(r.Context(), id)
		if err != nil || updated == nil {
			utils.Error(w, http.StatusInternalServerError, "ticket not found after update")
			return
		}
		h.hub.Publish("tickets", realtime.ActionUpdate, updated)
		utils.JSON(w, http.StatusOK, updated)
	}
}

// POST /api/tickets/{id}/comments
func (h *TicketHTTP) AddComment() http.HandlerFunc {
	type inDTO struct {
		Text string `json:"text"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		in.Text = strings.TrimSpace(in.Text)
		if in.Text == "" {
			utils.Error(w, http.StatusBadRequest, "text is required")
			return
		}

		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		if _, err := h.tickets.AddComment(r.Context(), id, uid, in.Text); err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		t, err := h.tickets.Get(r.Context(), id)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if t == nil {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}
		// Tell the other side of the conversation.
		if uid == t.Requester {
			h.notify(r.Context(), t.Assignee, "New comment on ticket "+t.Number, "ticket")
		} else {
			h.notify(r.Context(), t.Requester, "New comment on your ticket "+t.Number, "ticket")
		}
		h.hub.Publish("tickets", realtime.ActionUpdate, t)
		utils.JSON(w, http.StatusOK, t)
	}
}
