package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/models"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/realtime"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/repository"
)

type stubTicketRepo struct {
	repository.TicketRepository

	tickets map[string]*models.Ticket
	creates int
	updates int
}

func newStubTicketRepo() *stubTicketRepo {
	return &stubTicketRepo{tickets: map[string]*models.Ticket{}}
}

func (s *stubTicketRepo) Get(_ context.Context, id string) (*models.Ticket, error) {
	if t, ok := s.tickets[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (s *stubTicketRepo) Create(_ context.Context, t *models.Ticket) error {
	s.creates++
	t.ID = uuid.NewString()
	t.Number = "TK-0000" + strconv.Itoa(s.creates)
	cp := *t
	s.tickets[t.ID] = &cp
	return nil
}

func (s *stubTicketRepo) Update(_ context.Context, t *models.Ticket) error {
	s.updates++
	cp := *t
	s.tickets[t.ID] = &cp
	return nil
}

type stubWorkloadRepo struct {
	repository.UserRepository

	techID string
	deltas map[string]int
}

func newStubWorkloadRepo(techID string) *stubWorkloadRepo {
	return &stubWorkloadRepo{techID: techID, deltas: map[string]int{}}
}

func (s *stubWorkloadRepo) LeastLoadedTechnicianID(_ context.Context) (string, error) {
	return s.techID, nil
}

func (s *stubWorkloadRepo) FirstActiveAdminID(_ context.Context) (string, error) {
	return "", nil
}

func (s *stubWorkloadRepo) AdjustWorkload(_ context.Context, id string, delta int) error {
	s.deltas[id] += delta
	return nil
}

type stubNotificationRepo struct {
	repository.NotificationRepository
}

func (s *stubNotificationRepo) Create(_ context.Context, _ *models.Notification) error {
	return nil
}

func ticketRouter(h *TicketHTTP) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/tickets", h.Create())
	r.Patch("/api/tickets/{id}", h.Update())
	r.Post("/api/tickets/{id}/assign", h.Assign())
	return r
}

func newTicketFixture(techID string) (*stubTicketRepo, *stubWorkloadRepo, http.Handler) {
	tickets := newStubTicketRepo()
	users := newStubWorkloadRepo(techID)
	h := NewTicketHTTP(tickets, users, &stubNotificationRepo{}, realtime.NewHub())
	return tickets, users, ticketRouter(h)
}

func TestCreateRejectsNonUUIDAssignee(t *testing.T) {
	tickets, _, srv := newTicketFixture(uuid.NewString())

	req := httptest.NewRequest(http.MethodPost, "/api/tickets",
		strings.NewReader(`{"title":"printer on fire","assignee":"bob"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, asUser(req, uuid.NewString(), "technician"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, tickets.creates, "nothing may be written for a malformed assignee")
}

func TestCreateAcceptsUUIDAssignee(t *testing.T) {
	tickets, _, srv := newTicketFixture(uuid.NewString())
	assignee := uuid.NewString()

	req := httptest.NewRequest(http.MethodPost, "/api/tickets",
		strings.NewReader(`{"title":"printer on fire","assignee":"`+assignee+`"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, asUser(req, uuid.NewString(), "technician"))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 1, tickets.creates)
	for _, saved := range tickets.tickets {
		assert.Equal(t, assignee, saved.Assignee)
	}
}

func TestUpdateRejectsNonUUIDAssignee(t *testing.T) {
	tickets, _, srv := newTicketFixture(uuid.NewString())
	id := uuid.NewString()
	tickets.tickets[id] = &models.Ticket{ID: id, Number: "TK-00001", Status: "Open"}

	req := httptest.NewRequest(http.MethodPatch, "/api/tickets/"+id,
		strings.NewReader(`{"assignee":"bob"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, asUser(req, uuid.NewString(), "technician"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, tickets.updates)
	assert.Empty(t, tickets.tickets[id].Assignee)
}

func TestAssignRejectsNonUUIDAssignee(t *testing.T) {
	tickets, _, srv := newTicketFixture(uuid.NewString())
	id := uuid.NewString()
	tickets.tickets[id] = &models.Ticket{ID: id, Number: "TK-00001", Status: "New"}

	req := httptest.NewRequest(http.MethodPost, "/api/tickets/"+id+"/assign",
		strings.NewReader(`{"assignee":"bob"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, asUser(req, uuid.NewString(), "technician"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, tickets.updates)
}

func TestWorkloadSurvivesReopenCycle(t *testing.T) {
	tech := uuid.NewString()
	tickets, users, srv := newTicketFixture(tech)
	id := uuid.NewString()
	tickets.tickets[id] = &models.Ticket{ID: id, Number: "TK-00001", Status: "Open", Assignee: tech, Requester: uuid.NewString()}

	resolve := httptest.NewRequest(http.MethodPatch, "/api/tickets/"+id,
		strings.NewReader(`{"status":"Resolved"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, asUser(resolve, uuid.NewString(), "technician"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, -1, users.deltas[tech], "closing releases the slot")

	reopen := httptest.NewRequest(http.MethodPatch, "/api/tickets/"+id,
		strings.NewReader(`{"status":"Open"}`))
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, asUser(reopen, uuid.NewString(), "technician"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, users.deltas[tech], "reopening takes the slot back")
}

func TestReassignWhileClosedKeepsCountersBalanced(t *testing.T) {
	oldTech := uuid.NewString()
	newTech := uuid.NewString()
	tickets, users, srv := newTicketFixture(oldTech)
	id := uuid.NewString()
	tickets.tickets[id] = &models.Ticket{ID: id, Number: "TK-00001", Status: "Closed", Assignee: oldTech, Requester: uuid.NewString()}

	req := httptest.NewRequest(http.MethodPatch, "/api/tickets/"+id,
		strings.NewReader(`{"assignee":"`+newTech+`"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, asUser(req, uuid.NewString(), "technician"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, users.deltas[oldTech], "a closed ticket holds no slot to release")
	assert.Zero(t, users.deltas[newTech], "assignee of a still-closed ticket gains no slot")
}
