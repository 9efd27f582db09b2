package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/assistant"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/models"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/repository"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/utils"
)

// repoDataSource adapts the repositories to what the assistant router needs.
type repoDataSource struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
}

func (d *repoDataSource) RecentTickets(ctx context.Context, q string, limit int) ([]models.Ticket, error) {
	// Strip chat filler so the ILIKE search has something to bite on.
	q = strings.NewReplacer("how do i", "", "how to", "", "search", "", "find", "", "look up", "").
		Replace(strings.ToLower(q))
	items, _, err := d.tickets.List(ctx, repository.TicketFilter{
		Q: strings.TrimSpace(q), Limit: limit, Sort: "updated_at", Order: "desc",
	})
	return items, err
}

func (d *repoDataSource) AvailableTechnicians(ctx context.Context) ([]models.User, error) {
	active := true
	items, _, err := d.users.List(ctx, repository.UserFilter{
		Role: "technician", Status: "available", Active: &active, Limit: 20,
	})
	return items, err
}

func (d *repoDataSource) AllTickets(ctx context.Context) ([]models.Ticket, error) {
	return d.tickets.ListBetween(ctx, time.Time{}, time.Time{})
}

type AssistantHTTP struct {
	router *assistant.Router
}

func NewAssistantHTTP(tickets repository.TicketRepository, users repository.UserRepository) *AssistantHTTP {
	return &AssistantHTTP{
		router: assistant.NewRouter(&repoDataSource{tickets: tickets, users: users}),
	}
}

// POST /api/assistant/query {"query": "..."}
func (h *AssistantHTTP) Query() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.Query) == "" {
			utils.Error(w, http.StatusBadRequest, "query is required")
			return
		}
		utils.JSON(w, http.StatusOK, h.router.Answer(r.Context(), in.Query))
	}
}
