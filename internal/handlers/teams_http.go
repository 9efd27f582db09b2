package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/middleware"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/models"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/repository"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/teams"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/utils"
)

type TeamsHTTP struct {
	connector *teams.Connector
	repo      repository.IntegrationRepository
	log       zerolog.Logger
}

func NewTeamsHTTP(connector *teams.Connector, repo repository.IntegrationRepository, log zerolog.Logger) *TeamsHTTP {
	return &TeamsHTTP{connector: connector, repo: repo, log: log}
}

func (h *TeamsHTTP) requireEnabled(w http.ResponseWriter) bool {
	if !h.connector.Enabled() {
		utils.Error(w, http.StatusNotImplemented, "teams integration is not configured")
		return false
	}
	return true
}

// POST /api/integrations/teams/connect
// Starts the PKCE flow and hands the authorization URL back to the browser.
func (h *TeamsHTTP) Connect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.requireEnabled(w) {
			return
		}
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		authURL, err := h.connector.Begin(uid)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, map[string]string{"authorizationUrl": authURL})
	}
}

// GET /api/integrations/teams/callback?state=&code=&error=
// The redirect target. Provider errors and stale state both land on the
// error answer with a retry affordance; nothing partial is saved.
func (h *TeamsHTTP) Callback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.requireEnabled(w) {
			return
		}
		qv := r.URL.Query()
		if pErr := qv.Get("error"); pErr != "" {
			h.log.Warn().Str("provider_error", pErr).Msg("teams authorization declined")
			utils.JSON(w, http.StatusBadRequest, map[string]any{
				"error": "authorization declined: " + pErr,
				"retry": true,
			})
			return
		}

		in, err := h.connector.Complete(r.Context(), qv.Get("state"), qv.Get("code"))
		if err != nil {
			status := http.StatusBadGateway
			if errors.Is(err, teams.ErrStateNotFound) {
				status = http.StatusBadRequest
			}
			h.log.Error().Err(err).Msg("teams token exchange failed")
			utils.JSON(w, status, map[string]any{"error": err.Error(), "retry": true})
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{
			"connected":   true,
			"teamsUserId": in.TeamsUserID,
			"connectedAt": in.ConnectedAt,
		})
	}
}

// GET /api/integrations/teams
func (h *TeamsHTTP) Status() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		in, err := h.connector.Status(r.Context(), uid)
		if errors.Is(err, teams.ErrNotConnected) {
			utils.JSON(w, http.StatusOK, map[string]bool{"connected": false})
			return
		}
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{
			"connected":   true,
			"teamsUserId": in.TeamsUserID,
			"connectedAt": in.ConnectedAt,
			"expiresAt":   in.ExpiresAt,
		})
	}
}

// DELETE /api/integrations/teams
func (h *TeamsHTTP) Disconnect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		if err := h.connector.Disconnect(r.Context(), uid); err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /api/integrations/teams/messages {"chatId": "...", "text": "..."}
func (h *TeamsHTTP) SendMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.requireEnabled(w) {
			return
		}
		var in struct {
			ChatID string `json:"chatId"`
			Text   string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil ||
			strings.TrimSpace(in.ChatID) == "" || strings.TrimSpace(in.Text) == "" {
			utils.Error(w, http.StatusBadRequest, "chatId and text are required")
			return
		}

		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		err := h.connector.SendMessage(r.Context(), uid, in.ChatID, in.Text)
		if errors.Is(err, teams.ErrNotConnected) {
			utils.Error(w, http.StatusConflict, "teams is not connected")
			return
		}
		if err != nil {
			utils.Error(w, http.StatusBadGateway, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, map[string]string{"status": "sent"})
	}
}

// GET /api/integrations/preferences
func (h *TeamsHTTP) GetPreferences() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		p, err := h.repo.GetPreferences(r.Context(), uid)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, p)
	}
}

// PUT /api/integrations/preferences
// Both toggle groups travel together; the row is replaced wholesale.
func (h *TeamsHTTP) UpdatePreferences() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		var p models.NotificationPreferences
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		p.UserID = uid
		if err := h.repo.UpsertPreferences(r.Context(), &p); err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, p)
	}
}
