package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/middleware"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/repository"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/utils"
)

type NotificationHTTP struct {
	repo repository.NotificationRepository
}

func NewNotificationHTTP(repo repository.NotificationRepository) *NotificationHTTP {
	return &NotificationHTTP{repo: repo}
}

// GET /api/notifications?unread=&limit=
func (h *NotificationHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		qv := r.URL.Query()
		items, err := h.repo.ListForRecipient(r.Context(), uid,
			qv.Get("unread") == "true", utils.QueryInt(qv, "limit", 50))
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": items})
	}
}

// PATCH /api/notifications/{id}/read
func (h *NotificationHTTP) MarkRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		if err := h.repo.MarkRead(r.Context(), chi.URLParam(r, "id"), uid); err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// POST /api/notifications/read-all
func (h *NotificationHTTP) MarkAllRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		n, err := h.repo.MarkAllRead(r.Context(), uid)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, map[string]int{"updated": n})
	}
}
