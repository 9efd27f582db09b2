package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/models"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/repository"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/utils"
)

// TechnicianHTTP covers the people directory: technicians and end users
// share the users table, so this handler is the admin surface for both.
type TechnicianHTTP struct {
	repo repository.UserRepository
}

func NewTechnicianHTTP(r repository.UserRepository) *TechnicianHTTP {
	return &TechnicianHTTP{repo: r}
}

// GET /api/technicians?q=&role=&department=&status=&active=&limit=&offset=
func (h *TechnicianHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qv := r.URL.Query()
		f := repository.UserFilter{
			Q:          qv.Get("q"),
			Role:       qv.Get("role"),
			Department: qv.Get("department"),
			Status:     qv.Get("status"),
			Limit:      utils.QueryInt(qv, "limit", 20),
			Offset:     utils.QueryInt(qv, "offset", 0),
		}
		if s := qv.Get("active"); s != "" {
			v, _ := strconv.ParseBool(s)
			f.Active = &v
		}

		users, total, err := h.repo.List(r.Context(), f)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": users, "total": total})
	}
}

// GET /api/technicians/{id}
func (h *TechnicianHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if u == nil {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}
		utils.JSON(w, http.StatusOK, u)
	}
}

// POST /api/technicians — admin creates technician accounts directly.
func (h *TechnicianHTTP) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Email      string `json:"email"`
			Name       string `json:"name"`
			Department string `json:"department"`
			Password   string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		in.Email = strings.TrimSpace(in.Email)
		in.Name = strings.TrimSpace(in.Name)
		if in.Email == "" || in.Name == "" || len(in.Password) < 6 {
			utils.Error(w, http.StatusBadRequest, "email, name and a 6+ char password are required")
			return
		}

		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		u := &models.User{
			Email:      in.Email,
			Name:       in.Name,
			Role:       "technician",
			Department: strings.TrimSpace(in.Department),
		}
		if err := h.repo.Create(r.Context(), u, hash); err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusCreated, u)
	}
}

// PATCH /api/technicians/{id}
// Reachable by the user themselves, so the DTO carries only fields a user
// may change about their own record. Role changes go through UpdateRole.
func (h *TechnicianHTTP) Update() http.HandlerFunc {
	type inDTO struct {
		Name       *string `json:"name"`
		Department *string `json:"department"`
		Status     *string `json:"status"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		u, err := h.repo.GetByID(r.Context(), id)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if u == nil {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}

		if in.Name != nil {
			u.Name = strings.TrimSpace(*in.Name)
		}
		if in.Department != nil {
			u.Department = strings.TrimSpace(*in.Department)
		}
		if in.Status != nil {
			u.Status = strings.TrimSpace(*in.Status)
		}

		if err := h.repo.Update(r.Context(), u); err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, u)
	}
}

// PATCH /api/technicians/{id}/role — admin only.
func (h *TechnicianHTTP) UpdateRole() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var in struct {
			Role string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		switch in.Role {
		case "admin", "technician", "end_user":
		default:
			utils.Error(w, http.StatusBadRequest, "role must be admin, technician or end_user")
			return
		}
		u, err := h.repo.UpdateRole(r.Context(), id, in.Role)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if u == nil {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}
		utils.JSON(w, http.StatusOK, u)
	}
}

// PATCH /api/technicians/{id}/active
func (h *TechnicianHTTP) SetActive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var in struct {
			Active bool `json:"active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		u, err := h.repo.SetActive(r.Context(), id, in.Active)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if u == nil {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}
		utils.JSON(w, http.StatusOK, u)
	}
}
