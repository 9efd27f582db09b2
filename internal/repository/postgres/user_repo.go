package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/models"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepo struct{ db *pgxpool.Pool }

func NewUserRepo(db *pgxpool.Pool) repository.UserRepository { return &UserRepo{db: db} }

const userColumns = `id, email, name, role, COALESCE(department,''), status, workload, active, created_at, updated_at`

func scanUser(row pgx.Row, u *models.User) error {
	return row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Department,
		&u.Status, &u.Workload, &u.Active, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepo) Create(ctx context.Context, u *models.User, passwordHash string) error {
	return scanUser(r.db.QueryRow(ctx, `
		INSERT INTO users (email, name, role, department, status, password_h)
		VALUES ($1,$2,$3,$4,COALESCE(NULLIF($5,''),'available'),$6)
		RETURNING `+userColumns,
		u.Email, u.Name, u.Role, u.Department, u.Status, passwordHash), u)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, string, error) {
	var u models.User
	var ph string
	err := r.db.QueryRow(ctx, `
		SELECT id, email, name, role, COALESCE(department,''), status, workload, active, password_h, created_at, updated_at
		FROM users WHERE email=$1`, email).
		Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Department, &u.Status,
			&u.Workload, &u.Active, &ph, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", nil
		}
		return nil, "", err
	}
	return &u, ph, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id), &u)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// List returns a filtered, paginated page of users and the total count.
func (r *UserRepo) List(ctx context.Context, f repository.UserFilter) ([]models.User, int, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	clauses := []string{"1=1"}
	args := []any{}

	if s := strings.TrimSpace(f.Q); s != "" {
		p := "%" + s + "%"
		args = append(args, p, p)
		clauses = append(clauses, "(email ILIKE $"+itoa(len(args)-1)+" OR name ILIKE $"+itoa(len(args))+")")
	}
	if s := strings.TrimSpace(f.Role); s != "" {
		args = append(args, s)
		clauses = append(clauses, "role = $"+itoa(len(args)))
	}
	if s := strings.TrimSpace(f.Department); s != "" {
		args = append(args, s)
		clauses = append(clauses, "department = $"+itoa(len(args)))
	}
	if s := strings.TrimSpace(f.Status); s != "" {
		args = append(args, s)
		clauses = append(clauses, "status = $"+itoa(len(args)))
	}
	if f.Active != nil {
		args = append(args, *f.Active)
		clauses = append(clauses, "active = $"+itoa(len(args)))
	}

	countSQL := `SELECT COUNT(*) FROM users WHERE ` + strings.Join(clauses, " AND ")
	var total int
	if err := r.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset)
	listSQL := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY name ASC
		LIMIT $%d OFFSET $%d
	`, userColumns, strings.Join(clauses, " AND "), len(args)-1, len(args))
	rows, err := r.db.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

// Update never touches role; that column changes only through UpdateRole.
func (r *UserRepo) Update(ctx context.Context, u *models.User) error {
	return scanUser(r.db.QueryRow(ctx, `
		UPDATE users
		SET name=$1, department=$2, status=$3, updated_at=now()
		WHERE id=$4
		RETURNING `+userColumns,
		u.Name, u.Department, u.Status, u.ID), u)
}

func (r *UserRepo) UpdateRole(ctx context.Context, id, role string) (*models.User, error) {
	var u models.User
	err := scanUser(r.db.QueryRow(ctx, `
		UPDATE users
		SET role=$1, updated_at=now()
		WHERE id=$2
		RETURNING `+userColumns, role, id), &u)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) SetActive(ctx context.Context, id string, active bool) (*models.User, error) {
	var u models.User
	err := scanUser(r.db.QueryRow(ctx, `
		UPDATE users
		SET active=$1, updated_at=now()
		WHERE id=$2
		RETURNING `+userColumns, active, id), &u)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET password_h=$1, updated_at=now()
		WHERE id=$2
	`, passwordHash, id)
	return err
}

// FirstActiveAdminID backs the auto-assignment fallback for end-user tickets.
func (r *UserRepo) FirstActiveAdminID(ctx context.Context) (string, error) {
	var id string
	err := r.db.QueryRow(ctx, `
		SELECT id FROM users
		WHERE role='admin' AND active
		ORDER BY created_at ASC
		LIMIT 1`).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return id, nil
}

// LeastLoadedTechnicianID picks the available technician with the smallest
// workload, oldest account on ties.
func (r *UserRepo) LeastLoadedTechnicianID(ctx context.Context) (string, error) {
	var id string
	err := r.db.QueryRow(ctx, `
		SELECT id FROM users
		WHERE role='technician' AND active AND status='available'
		ORDER BY workload ASC, created_at ASC
		LIMIT 1`).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return id, nil
}

// AdjustWorkload shifts the open-ticket counter, clamped at zero.
func (r *UserRepo) AdjustWorkload(ctx context.Context, id string, delta int) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET workload = GREATEST(workload + $1, 0), updated_at=now()
		WHERE id=$2
	`, delta, id)
	return err
}
