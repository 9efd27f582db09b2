package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/models"
)

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func closedTicket(created time.Time, days float64, assignee string) models.Ticket {
	closed := created.Add(time.Duration(days * 24 * float64(time.Hour)))
	return models.Ticket{
		Status:    "Closed",
		CreatedAt: created,
		ClosedAt:  ptr(closed),
		Assignee:  assignee,
	}
}

func TestComputeEmptyList(t *testing.T) {
	m := Compute(nil)

	assert.Equal(t, 0, m.Total)
	assert.Empty(t, m.ByStatus)
	assert.Zero(t, m.AvgResolutionDays)
	assert.Zero(t, m.SLAComplianceRate)
	assert.Empty(t, m.Agents)
	assert.False(t, m.AvgResolutionDays != m.AvgResolutionDays, "must not be NaN")
}

func TestComputeStatusCountsSumToTotal(t *testing.T) {
	tickets := []models.Ticket{
		{Status: "Open"}, {Status: "Open"}, {Status: "Closed"},
		{Status: "weird-status"}, {Status: ""},
	}
	m := Compute(tickets)

	sum := 0
	for _, n := range m.ByStatus {
		sum += n
	}
	assert.Equal(t, len(tickets), sum)
	assert.Equal(t, 2, m.ByStatus["Open"])
	assert.Equal(t, 1, m.ByStatus["weird-status"], "unknown values become new buckets")
}

func TestComputeResolutionTime(t *testing.T) {
	t.Run("no closed tickets", func(t *testing.T) {
		m := Compute([]models.Ticket{{Status: "Open", CreatedAt: base}})
		assert.Zero(t, m.AvgResolutionDays)
	})

	t.Run("single closed ticket", func(t *testing.T) {
		m := Compute([]models.Ticket{closedTicket(base, 2, "")})
		assert.InDelta(t, 2.0, m.AvgResolutionDays, 1e-9)
	})

	t.Run("malformed closure excluded", func(t *testing.T) {
		bad := models.Ticket{Status: "Closed", CreatedAt: base, ClosedAt: ptr(base.Add(-time.Hour))}
		m := Compute([]models.Ticket{bad, closedTicket(base, 3, "")})
		assert.InDelta(t, 3.0, m.AvgResolutionDays, 1e-9)
	})
}

func TestComputeSLACompliance(t *testing.T) {
	t.Run("no eligible tickets is zero not NaN", func(t *testing.T) {
		m := Compute([]models.Ticket{
			{Status: "Open", CreatedAt: base, SLADueAt: ptr(base.Add(time.Hour))},
			closedTicket(base, 1, ""),
		})
		assert.Zero(t, m.SLAComplianceRate)
	})

	t.Run("all met is exactly 100", func(t *testing.T) {
		a := closedTicket(base, 1, "")
		a.SLADueAt = ptr(base.Add(48 * time.Hour))
		b := closedTicket(base, 2, "")
		b.SLADueAt = ptr(*b.ClosedAt) // closing exactly on the deadline counts
		m := Compute([]models.Ticket{a, b})
		assert.Equal(t, 100.0, m.SLAComplianceRate)
	})

	t.Run("half met", func(t *testing.T) {
		a := closedTicket(base, 1, "")
		a.SLADueAt = ptr(base.Add(48 * time.Hour))
		b := closedTicket(base, 4, "")
		b.SLADueAt = ptr(base.Add(24 * time.Hour))
		m := Compute([]models.Ticket{a, b})
		assert.InDelta(t, 50.0, m.SLAComplianceRate, 1e-9)
	})
}

func TestComputeAgentBreakdown(t *testing.T) {
	tickets := []models.Ticket{
		closedTicket(base, 1, "bob"),
		{Status: "Open", Assignee: "ann"},
		{Status: "Open", Assignee: ""},
		{Status: "Open", Assignee: "bob"},
		{Status: "Open", Assignee: "cat"},
	}
	m := Compute(tickets)

	require.Len(t, m.Agents, 3, "one row per distinct non-empty assignee")

	handled := 0
	for _, a := range m.Agents {
		handled += a.TicketsHandled
	}
	assert.Equal(t, 4, handled, "sums to assigned-ticket count")

	assert.Equal(t, "bob", m.Agents[0].ID)
	// ann and cat tie at one ticket each: first encountered stays first.
	assert.Equal(t, "ann", m.Agents[1].ID)
	assert.Equal(t, "cat", m.Agents[2].ID)
}

func TestComputeAgentSortIsStable(t *testing.T) {
	var tickets []models.Ticket
	for _, id := range []string{"z", "y", "x", "w"} {
		tickets = append(tickets, models.Ticket{Status: "Open", Assignee: id})
	}
	m := Compute(tickets)

	require.Len(t, m.Agents, 4)
	for i, want := range []string{"z", "y", "x", "w"} {
		assert.Equal(t, want, m.Agents[i].ID)
	}
}

func TestComputeEndToEnd(t *testing.T) {
	tickets := []models.Ticket{
		{Status: "open"},
		{Status: "open"},
		closedTicketWithStatus(base, 2, "closed"),
	}
	m := Compute(tickets)

	assert.Equal(t, 2, m.ByStatus["open"])
	assert.Equal(t, 1, m.ByStatus["closed"])
	assert.InDelta(t, 2.0, m.AvgResolutionDays, 1e-9)
}

func closedTicketWithStatus(created time.Time, days float64, status string) models.Ticket {
	tk := closedTicket(created, days, "")
	tk.Status = status
	return tk
}

func TestSummarize(t *testing.T) {
	now := base.Add(30 * 24 * time.Hour)
	old := closedTicket(base, 1, "")
	recent := closedTicket(now.Add(-3*24*time.Hour), 1, "")
	tickets := []models.Ticket{
		{Status: "Open", Priority: "Critical"},
		{Status: "In Progress", Priority: "Low"},
		old,
		recent,
	}
	s := Summarize(tickets, now)

	assert.Equal(t, 2, s.Open)
	assert.Equal(t, 1, s.HighCriticalOpen)
	assert.Equal(t, 1, s.Resolved7d)
}
