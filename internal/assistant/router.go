// Package assistant implements the rule-based query router behind the
// dashboard helper. Classification is ordered keyword matching; there is no
// model call anywhere in this path.
package assistant

import (
	"context"
	"strings"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/models"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/reports"
)

type Intent string

const (
	IntentCreateTicket    Intent = "create_ticket"
	IntentUpdateStatus    Intent = "update_status"
	IntentAssignTech      Intent = "assign_technician"
	IntentSearchKnowledge Intent = "search_knowledge_base"
	IntentDashboard       Intent = "dashboard_summary"
	IntentFallback        Intent = "fallback"
)

// Reply is what the dashboard helper renders: a canned message, optional
// follow-up actions, and optional inline rows.
type Reply struct {
	Intent      Intent           `json:"intent"`
	Message     string           `json:"message"`
	Suggestions []string         `json:"suggestions,omitempty"`
	Tickets     []models.Ticket  `json:"tickets,omitempty"`
	Technicians []models.User    `json:"technicians,omitempty"`
	Metrics     *reports.Metrics `json:"metrics,omitempty"`
}

// DataSource is the slice of the repositories the router needs. Lookups may
// fail; the router answers with an apology instead of propagating the error.
type DataSource interface {
	RecentTickets(ctx context.Context, q string, limit int) ([]models.Ticket, error)
	AvailableTechnicians(ctx context.Context) ([]models.User, error)
	AllTickets(ctx context.Context) ([]models.Ticket, error)
}

type Router struct {
	data DataSource
}

func NewRouter(data DataSource) *Router { return &Router{data: data} }

// Intent keyword sets, checked in this order. First match wins.
var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentCreateTicket, []string{"create ticket", "new ticket", "open a ticket", "raise", "report an issue", "report a problem"}},
	{IntentUpdateStatus, []string{"update status", "change status", "mark as", "close ticket", "resolve"}},
	{IntentAssignTech, []string{"assign", "technician", "who is available", "who can take"}},
	{IntentSearchKnowledge, []string{"search", "find", "look up", "knowledge", "how do i", "how to"}},
	{IntentDashboard, []string{"summary", "overview", "dashboard", "how many", "report", "stats"}},
}

// Classify maps a free-text query to an intent by case-insensitive substring
// containment. Anything unmatched is the fallback.
func Classify(query string) Intent {
	q := strings.ToLower(query)
	for _, ik := range intentKeywords {
		for _, kw := range ik.keywords {
			if strings.Contains(q, kw) {
				return ik.intent
			}
		}
	}
	return IntentFallback
}

const apology = "Sorry, I couldn't look that up right now. Please try again in a moment."

var genericSuggestions = []string{
	"Create a new ticket",
	"Show dashboard summary",
	"Search the knowledge base",
}

// Answer classifies the query and builds the reply, pulling inline data for
// the intents that carry some.
func (r *Router) Answer(ctx context.Context, query string) Reply {
	switch Classify(query) {
	case IntentCreateTicket:
		return Reply{
			Intent:  IntentCreateTicket,
			Message: "Let's get a ticket raised. What's the issue, and how urgent is it?",
			Suggestions: []string{
				"Create a high-priority incident",
				"Create a service request",
			},
		}

	case IntentUpdateStatus:
		return Reply{
			Intent:  IntentUpdateStatus,
			Message: "Which ticket should I update, and to what status?",
			Suggestions: []string{
				"Mark as In Progress",
				"Mark as Resolved",
			},
		}

	case IntentAssignTech:
		techs, err := r.data.AvailableTechnicians(ctx)
		if err != nil {
			return Reply{Intent: IntentAssignTech, Message: apology, Suggestions: genericSuggestions}
		}
		return Reply{
			Intent:      IntentAssignTech,
			Message:     "Here are the technicians currently available.",
			Technicians: techs,
			Suggestions: []string{"Assign to the least-loaded technician"},
		}

	case IntentSearchKnowledge:
		matches, err := r.data.RecentTickets(ctx, query, 5)
		if err != nil {
			return Reply{Intent: IntentSearchKnowledge, Message: apology, Suggestions: genericSuggestions}
		}
		return Reply{
			Intent:      IntentSearchKnowledge,
			Message:     "These recent tickets look related.",
			Tickets:     matches,
			Suggestions: []string{"Open a new ticket if none of these match"},
		}

	case IntentDashboard:
		tickets, err := r.data.AllTickets(ctx)
		if err != nil {
			return Reply{Intent: IntentDashboard, Message: apology, Suggestions: genericSuggestions}
		}
		m := reports.Compute(tickets)
		return Reply{
			Intent:  IntentDashboard,
			Message: "Here's the current ticket picture.",
			Metrics: &m,
		}
	}

	return Reply{
		Intent:      IntentFallback,
		Message:     "I'm not sure what you're after. Here are some things I can help with.",
		Suggestions: genericSuggestions,
	}
}
