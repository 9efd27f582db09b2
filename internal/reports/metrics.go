// Package reports computes display-ready aggregates over ticket lists.
// Every function here is a pure reduction of its input; all database access
// stays in the repositories.
package reports

import (
	"sort"
	"time"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/models"
)

// AgentStats is one row of the per-technician breakdown.
type AgentStats struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	TicketsHandled    int     `json:"ticketsHandled"`
	AvgResolutionDays float64 `json:"avgResolutionDays"`
	SLAComplianceRate float64 `json:"slaComplianceRate"`
}

// Metrics is the full reporting snapshot for one ticket list.
type Metrics struct {
	Total             int            `json:"total"`
	ByStatus          map[string]int `json:"byStatus"`
	ByPriority        map[string]int `json:"byPriority"`
	ByCategory        map[string]int `json:"byCategory"`
	AvgResolutionDays float64        `json:"avgResolutionDays"`
	SLAComplianceRate float64        `json:"slaComplianceRate"`
	Agents            []AgentStats   `json:"agents"`
}

// resolution returns the ticket's resolution duration and whether it counts.
// A ticket counts only when both timestamps are set and ordered; a closure
// recorded before creation is treated as malformed and excluded.
func resolution(t models.Ticket) (time.Duration, bool) {
	if t.ClosedAt == nil || t.ClosedAt.IsZero() || t.CreatedAt.IsZero() {
		return 0, false
	}
	if t.ClosedAt.Before(t.CreatedAt) {
		return 0, false
	}
	return t.ClosedAt.Sub(t.CreatedAt), true
}

// slaOutcome reports whether the ticket is eligible for SLA measurement and,
// if so, whether it met its deadline.
func slaOutcome(t models.Ticket) (met, eligible bool) {
	if t.SLADueAt == nil || t.SLADueAt.IsZero() || t.ClosedAt == nil || t.ClosedAt.IsZero() {
		return false, false
	}
	return !t.ClosedAt.After(*t.SLADueAt), true
}

// Compute reduces tickets into the reporting snapshot. Unknown status,
// priority or category values become new bucket keys. Tickets without an
// assignee contribute to the overall tallies but not to the agent breakdown.
func Compute(tickets []models.Ticket) Metrics {
	m := Metrics{
		Total:      len(tickets),
		ByStatus:   map[string]int{},
		ByPriority: map[string]int{},
		ByCategory: map[string]int{},
		Agents:     []AgentStats{},
	}

	var resolvedDays float64
	var resolvedCount int
	var slaMet, slaEligible int

	type bucket struct {
		name         string
		count        int
		resolvedDays float64
		resolvedN    int
		slaMet       int
		slaEligible  int
	}
	byAgent := map[string]*bucket{}
	var agentOrder []string

	for _, t := range tickets {
		m.ByStatus[t.Status]++
		m.ByPriority[t.Priority]++
		m.ByCategory[t.Category]++

		d, ok := resolution(t)
		if ok {
			resolvedDays += d.Hours() / 24
			resolvedCount++
		}
		met, eligible := slaOutcome(t)
		if eligible {
			slaEligible++
			if met {
				slaMet++
			}
		}

		if t.Assignee == "" {
			continue
		}
		b := byAgent[t.Assignee]
		if b == nil {
			b = &bucket{name: t.AssigneeName}
			byAgent[t.Assignee] = b
			agentOrder = append(agentOrder, t.Assignee)
		}
		b.count++
		if ok {
			b.resolvedDays += d.Hours() / 24
			b.resolvedN++
		}
		if eligible {
			b.slaEligible++
			if met {
				b.slaMet++
			}
		}
	}

	if resolvedCount > 0 {
		m.AvgResolutionDays = resolvedDays / float64(resolvedCount)
	}
	if slaEligible > 0 {
		m.SLAComplianceRate = 100 * float64(slaMet) / float64(slaEligible)
	}

	for _, id := range agentOrder {
		b := byAgent[id]
		a := AgentStats{ID: id, Name: b.name, TicketsHandled: b.count}
		if b.resolvedN > 0 {
			a.AvgResolutionDays = b.resolvedDays / float64(b.resolvedN)
		}
		if b.slaEligible > 0 {
			a.SLAComplianceRate = 100 * float64(b.slaMet) / float64(b.slaEligible)
		}
		m.Agents = append(m.Agents, a)
	}

	// Ties keep first-encounter order.
	sort.SliceStable(m.Agents, func(i, j int) bool {
		return m.Agents[i].TicketsHandled > m.Agents[j].TicketsHandled
	})

	return m
}

// Summary is the small dashboard counter set the overview screen shows.
type Summary struct {
	Open             int `json:"open"`
	Resolved7d       int `json:"resolved7d"`
	HighCriticalOpen int `json:"highCriticalOpen"`
}

// Summarize computes the dashboard counters from an already-fetched list.
// The repository offers SQL fast paths for the same numbers; this is the
// fallback used when a date-filtered list is already in hand.
func Summarize(tickets []models.Ticket, now time.Time) Summary {
	var s Summary
	for _, t := range tickets {
		closed := t.Closed()
		if !closed {
			s.Open++
			if t.Priority == "High" || t.Priority == "Critical" {
				s.HighCriticalOpen++
			}
			continue
		}
		when := t.UpdatedAt
		if t.ClosedAt != nil && !t.ClosedAt.IsZero() {
			when = *t.ClosedAt
		}
		if now.Sub(when) <= 7*24*time.Hour {
			s.Resolved7d++
		}
	}
	return s
}
