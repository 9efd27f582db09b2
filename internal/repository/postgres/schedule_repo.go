package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ScheduleRepo struct{ db *pgxpool.Pool }

func NewScheduleRepo(db *pgxpool.Pool) *ScheduleRepo { return &ScheduleRepo{db: db} }

const eventColumns = `id, title, description, type, start_at, end_at, COALESCE(assignee_id,''), status, COALESCE(recurrence,''), created_at, updated_at`

func scanEvent(row pgx.Row, e *models.ScheduleEvent) error {
	return row.Scan(&e.ID, &e.Title, &e.Description, &e.Type, &e.StartAt, &e.EndAt,
		&e.AssigneeID, &e.Status, &e.Recurrence, &e.CreatedAt, &e.UpdatedAt)
}

// ListEvents returns events overlapping [from, to), optionally restricted to
// one assignee. Recurring events match on their first occurrence window; the
// handler expands the rule.
func (r *ScheduleRepo) ListEvents(ctx context.Context, from, to time.Time, assignee string) ([]models.ScheduleEvent, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if !from.IsZero() {
		args = append(args, from)
		clauses = append(clauses, "(end_at >= $"+itoa(len(args))+" OR recurrence IS NOT NULL)")
	}
	if !to.IsZero() {
		args = append(args, to)
		clauses = append(clauses, "start_at < $"+itoa(len(args)))
	}
	if a := strings.TrimSpace(assignee); a != "" {
		args = append(args, a)
		clauses = append(clauses, "assignee_id = $"+itoa(len(args)))
	}

	sql := `SELECT ` + eventColumns + ` FROM schedule_events WHERE ` +
		strings.Join(clauses, " AND ") + ` ORDER BY start_at ASC`
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ScheduleEvent
	for rows.Next() {
		var e models.ScheduleEvent
		if err := scanEvent(rows, &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *ScheduleRepo) GetEvent(ctx context.Context, id string) (*models.ScheduleEvent, error) {
	var e models.ScheduleEvent
	err := scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM schedule_events WHERE id=$1`, id), &e)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *ScheduleRepo) CreateEvent(ctx context.Context, e *models.ScheduleEvent) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO schedule_events (title, description, type, start_at, end_at, assignee_id, status, recurrence)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NULLIF($8,''))
		RETURNING id, created_at, updated_at
	`, e.Title, e.Description, e.Type, e.StartAt, e.EndAt, nullIfEmpty(e.AssigneeID), e.Status, e.Recurrence).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (r *ScheduleRepo) UpdateEvent(ctx context.Context, e *models.ScheduleEvent) error {
	e.UpdatedAt = time.Now()
	ct, err := r.db.Exec(ctx, `
		UPDATE schedule_events SET
			title=$1, description=$2, type=$3, start_at=$4, end_at=$5,
			assignee_id=$6, status=$7, recurrence=NULLIF($8,''), updated_at=$9
		WHERE id=$10
	`, e.Title, e.Description, e.Type, e.StartAt, e.EndAt,
		nullIfEmpty(e.AssigneeID), e.Status, e.Recurrence, e.UpdatedAt, e.ID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ScheduleRepo) DeleteEvent(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM schedule_events WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// -----------------------------------------------------------------------------
// Reminders
// -----------------------------------------------------------------------------

func (r *ScheduleRepo) ListReminders(ctx context.Context, assignee string, includeDone bool) ([]models.Reminder, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if a := strings.TrimSpace(assignee); a != "" {
		args = append(args, a)
		clauses = append(clauses, "assignee_id = $"+itoa(len(args)))
	}
	if !includeDone {
		clauses = append(clauses, "NOT done")
	}

	sql := `SELECT id, title, remind_at, assignee_id, done, created_at
		FROM reminders WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY remind_at ASC`
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Reminder
	for rows.Next() {
		var m models.Reminder
		if err := rows.Scan(&m.ID, &m.Title, &m.RemindAt, &m.AssigneeID, &m.Done, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *ScheduleRepo) CreateReminder(ctx context.Context, m *models.Reminder) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO reminders (title, remind_at, assignee_id)
		VALUES ($1,$2,$3)
		RETURNING id, done, created_at
	`, m.Title, m.RemindAt, m.AssigneeID).Scan(&m.ID, &m.Done, &m.CreatedAt)
}

func (r *ScheduleRepo) SetReminderDone(ctx context.Context, id string, done bool) (*models.Reminder, error) {
	var m models.Reminder
	err := r.db.QueryRow(ctx, `
		UPDATE reminders SET done=$1
		WHERE id=$2
		RETURNING id, title, remind_at, assignee_id, done, created_at
	`, done, id).Scan(&m.ID, &m.Title, &m.RemindAt, &m.AssigneeID, &m.Done, &m.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *ScheduleRepo) DeleteReminder(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM reminders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
