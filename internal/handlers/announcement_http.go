package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/middleware"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/models"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/realtime"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/repository"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/utils"
)

var validate = validator.New()

type AnnouncementHTTP struct {
	repo repository.AnnouncementRepository
	hub  *realtime.Hub
}

func NewAnnouncementHTTP(repo repository.AnnouncementRepository, hub *realtime.Hub) *AnnouncementHTTP {
	return &AnnouncementHTTP{repo: repo, hub: hub}
}

// GET /api/announcements?all=&audience=&limit=&offset=
// The default view shows only active rows; ?all=true is the archive.
func (h *AnnouncementHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qv := r.URL.Query()
		onlyActive := qv.Get("all") != "true"
		items, total, err := h.repo.List(r.Context(), onlyActive, qv.Get("audience"),
			utils.QueryInt(qv, "limit", 20), utils.QueryInt(qv, "offset", 0))
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
	}
}

// POST /api/announcements
func (h *AnnouncementHTTP) Create() http.HandlerFunc {
	type inDTO struct {
		Title    string `json:"title" validate:"required,min=3"`
		Content  string `json:"content" validate:"required"`
		Category string `json:"category"`
		Priority string `json:"priority" validate:"omitempty,oneof=low normal high"`
		Audience string `json:"audience" validate:"omitempty,oneof=all technicians end_users"`
		Pinned   bool   `json:"pinned"`
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
		if in.Priority == "" {
			in.Priority = "normal"
		}
		if in.Audience == "" {
			in.Audience = "all"
		}

		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		a := &models.Announcement{
			Title:    in.Title,
			Content:  in.Content,
			Category: strings.TrimSpace(in.Category),
			Priority: in.Priority,
			Audience: in.Audience,
			AuthorID: uid,
			Pinned:   in.Pinned,
		}
		if err := h.repo.Create(r.Context(), a); err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.hub.Publish("announcements", realtime.ActionInsert, a)
		utils.JSON(w, http.StatusCreated, a)
	}
}

// PATCH /api/announcements/{id}
func (h *AnnouncementHTTP) Update() http.HandlerFunc {
	type inDTO struct {
		Title    *string `json:"title"`
		Content  *string `json:"content"`
		Category *string `json:"category"`
		Priority *string `json:"priority"`
		Audience *string `json:"audience"`
		Pinned   *bool   `json:"pinned"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		a, err := h.repo.Get(r.Context(), id)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if a == nil {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}

		if in.Title != nil {
			a.Title = strings.TrimSpace(*in.Title)
		}
		if in.Content != nil {
			a.Content = *in.Content
		}
		if in.Category != nil {
			a.Category = strings.TrimSpace(*in.Category)
		}
		if in.Priority != nil {
			a.Priority = *in.Priority
		}
		if in.Audience != nil {
			a.Audience = *in.Audience
		}
		if in.Pinned != nil {
			a.Pinned = *in.Pinned
		}

		if err := h.repo.Update(r.Context(), a); err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.hub.Publish("announcements", realtime.ActionUpdate, a)
		utils.JSON(w, http.StatusOK, a)
	}
}

// PATCH /api/announcements/{id}/active — archive or restore (soft delete).
func (h *AnnouncementHTTP) SetActive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var in struct {
			Active bool `json:"active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		a, err := h.repo.SetActive(r.Context(), id, in.Active)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if a == nil {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}
		h.hub.Publish("announcements", realtime.ActionUpdate, a)
		utils.JSON(w, http.StatusOK, a)
	}
}

// DELETE /api/announcements/{id} — permanent purge, admin only (routed so).
func (h *AnnouncementHTTP) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := h.repo.Delete(r.Context(), id); err != nil {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}
		h.hub.Publish("announcements", realtime.ActionDelete, map[string]string{"id": id})
		w.WriteHeader(http.StatusNoContent)
	}
}
