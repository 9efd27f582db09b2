package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AnnouncementRepo struct{ db *pgxpool.Pool }

func NewAnnouncementRepo(db *pgxpool.Pool) *AnnouncementRepo { return &AnnouncementRepo{db: db} }

const announcementColumns = `
	a.id, a.title, a.content, a.category, a.priority, a.audience, a.author_id,
	COALESCE(u.name, ''), a.pinned, a.active, a.created_at, a.updated_at`

const announcementJoins = `
	FROM announcements a
	LEFT JOIN users u ON u.id = a.author_id`

func scanAnnouncement(row pgx.Row, a *models.Announcement) error {
	return row.Scan(&a.ID, &a.Title, &a.Content, &a.Category, &a.Priority, &a.Audience,
		&a.AuthorID, &a.Author, &a.Pinned, &a.Active, &a.CreatedAt, &a.UpdatedAt)
}

// List returns announcements newest-first, pinned ones on top. The audience
// filter also matches "all"-audience rows so broadcast announcements reach
// every role.
func (r *AnnouncementRepo) List(ctx context.Context, onlyActive bool, audience string, limit, offset int) ([]models.Announcement, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	clauses := []string{"1=1"}
	args := []any{}
	if onlyActive {
		clauses = append(clauses, "a.active")
	}
	if s := strings.TrimSpace(audience); s != "" {
		args = append(args, s)
		clauses = append(clauses, "(a.audience = $"+itoa(len(args))+" OR a.audience = 'all')")
	}
	whereSQL := "WHERE " + strings.Join(clauses, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM announcements a `+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sql := fmt.Sprintf(`SELECT %s %s %s ORDER BY a.pinned DESC, a.created_at DESC LIMIT $%d OFFSET $%d`,
		announcementColumns, announcementJoins, whereSQL, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Announcement
	for rows.Next() {
		var a models.Announcement
		if err := scanAnnouncement(rows, &a); err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func (r *AnnouncementRepo) Get(ctx context.Context, id string) (*models.Announcement, error) {
	var a models.Announcement
	err := scanAnnouncement(r.db.QueryRow(ctx,
		`SELECT `+announcementColumns+announcementJoins+` WHERE a.id = $1`, id), &a)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AnnouncementRepo) Create(ctx context.Context, a *models.Announcement) error {
	now := time.Now()
	err := r.db.QueryRow(ctx, `
		INSERT INTO announcements (title, content, category, priority, audience, author_id, pinned, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,true,$8,$8)
		RETURNING id, created_at, updated_at
	`, a.Title, a.Content, a.Category, a.Priority, a.Audience, a.AuthorID, a.Pinned, now).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return err
	}
	a.Active = true
	return nil
}

func (r *AnnouncementRepo) Update(ctx context.Context, a *models.Announcement) error {
	a.UpdatedAt = time.Now()
	ct, err := r.db.Exec(ctx, `
		UPDATE announcements SET
			title=$1, content=$2, category=$3, priority=$4, audience=$5, pinned=$6, updated_at=$7
		WHERE id=$8
	`, a.Title, a.Content, a.Category, a.Priority, a.Audience, a.Pinned, a.UpdatedAt, a.ID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SetActive is the soft-delete path: inactive announcements stay queryable
// for the archive view.
func (r *AnnouncementRepo) SetActive(ctx context.Context, id string, active bool) (*models.Announcement, error) {
	var a models.Announcement
	err := r.db.QueryRow(ctx, `
		UPDATE announcements SET active=$1, updated_at=now()
		WHERE id=$2
		RETURNING id, title, content, category, priority, audience, author_id, '', pinned, active, created_at, updated_at
	`, active, id).Scan(&a.ID, &a.Title, &a.Content, &a.Category, &a.Priority, &a.Audience,
		&a.AuthorID, &a.Author, &a.Pinned, &a.Active, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// Delete removes the row permanently (admin-only purge).
func (r *AnnouncementRepo) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM announcements WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
