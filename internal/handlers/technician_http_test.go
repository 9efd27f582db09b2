package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/middleware"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/models"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/repository"
)

type stubUserRepo struct {
	repository.UserRepository

	users       map[string]*models.User
	updated     *models.User
	roleChanges []string
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[string]*models.User{}}
}

func (s *stubUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *stubUserRepo) Update(_ context.Context, u *models.User) error {
	s.updated = u
	s.users[u.ID] = u
	return nil
}

func (s *stubUserRepo) UpdateRole(_ context.Context, id, role string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	s.roleChanges = append(s.roleChanges, id+":"+role)
	u.Role = role
	cp := *u
	return &cp, nil
}

func (s *stubUserRepo) SetActive(_ context.Context, id string, active bool) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	u.Active = active
	cp := *u
	return &cp, nil
}

// technicianRouter mounts the handler behind the same middleware the real
// router uses for these routes.
func technicianRouter(h *TechnicianHTTP) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/technicians/{id}", func(r chi.Router) {
		r.With(middleware.RequireSelfOrRoles("admin")).Patch("/", h.Update())
		r.With(middleware.RequireRoles("admin")).Patch("/role", h.UpdateRole())
		r.With(middleware.RequireRoles("admin")).Patch("/active", h.SetActive())
	})
	return r
}

func asUser(r *http.Request, uid, role string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.CtxUserID, uid)
	ctx = context.WithValue(ctx, middleware.CtxRole, role)
	return r.WithContext(ctx)
}

func TestSelfUpdateCannotChangeRole(t *testing.T) {
	repo := newStubUserRepo()
	repo.users["u1"] = &models.User{ID: "u1", Name: "Eve", Role: "end_user", Active: true}
	srv := technicianRouter(NewTechnicianHTTP(repo))

	req := httptest.NewRequest(http.MethodPatch, "/api/technicians/u1",
		strings.NewReader(`{"name":"Eve Adams","role":"admin"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, asUser(req, "u1", "end_user"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, repo.updated)
	assert.Equal(t, "Eve Adams", repo.updated.Name)
	assert.Equal(t, "end_user", repo.updated.Role, "self-service update must not touch role")
	assert.Empty(t, repo.roleChanges)
}

func TestUpdateRoleRequiresAdmin(t *testing.T) {
	repo := newStubUserRepo()
	repo.users["u1"] = &models.User{ID: "u1", Role: "end_user", Active: true}
	srv := technicianRouter(NewTechnicianHTTP(repo))

	req := httptest.NewRequest(http.MethodPatch, "/api/technicians/u1/role",
		strings.NewReader(`{"role":"admin"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, asUser(req, "u1", "end_user"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, repo.roleChanges)
	assert.Equal(t, "end_user", repo.users["u1"].Role)
}

func TestUpdateRoleAsAdmin(t *testing.T) {
	repo := newStubUserRepo()
	repo.users["u1"] = &models.User{ID: "u1", Role: "end_user", Active: true}
	srv := technicianRouter(NewTechnicianHTTP(repo))

	req := httptest.NewRequest(http.MethodPatch, "/api/technicians/u1/role",
		strings.NewReader(`{"role":"technician"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, asUser(req, "admin-1", "admin"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"u1:technician"}, repo.roleChanges)
}

func TestUpdateRoleRejectsUnknownRole(t *testing.T) {
	repo := newStubUserRepo()
	repo.users["u1"] = &models.User{ID: "u1", Role: "end_user", Active: true}
	srv := technicianRouter(NewTechnicianHTTP(repo))

	req := httptest.NewRequest(http.MethodPatch, "/api/technicians/u1/role",
		strings.NewReader(`{"role":"superuser"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, asUser(req, "admin-1", "admin"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, repo.roleChanges)
}

func TestSetActiveUnknownIDIs404(t *testing.T) {
	repo := newStubUserRepo()
	srv := technicianRouter(NewTechnicianHTTP(repo))

	req := httptest.NewRequest(http.MethodPatch, "/api/technicians/ghost/active",
		strings.NewReader(`{"active":false}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, asUser(req, "admin-1", "admin"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
