package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/models"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepo struct{ db *pgxpool.Pool }

func NewTicketRepo(db *pgxpool.Pool) *TicketRepo { return &TicketRepo{db: db} }

const ticketColumns = `
	t.id, t.number, t.title, t.description, t.type, t.category, t.priority, t.status,
	t.requester, COALESCE(t.assignee, ''), t.created_at, t.updated_at, t.sla_due_at, t.closed_at,
	COALESCE(req.name, ''), COALESCE(asg.name, ''), COALESCE(asg.email, '')`

const ticketJoins = `
	FROM tickets t
	LEFT JOIN users req ON req.id = t.requester
	LEFT JOIN users asg ON asg.id = NULLIF(t.assignee, '')::uuid`

func scanTicket(row pgx.Row, t *models.Ticket) error {
	return row.Scan(
		&t.ID, &t.Number, &t.Title, &t.Description, &t.Type, &t.Category, &t.Priority,
		&t.Status, &t.Requester, &t.Assignee, &t.CreatedAt, &t.UpdatedAt, &t.SLADueAt,
		&t.ClosedAt, &t.RequesterName, &t.AssigneeName, &t.AssigneeEmail,
	)
}

// List returns a page of tickets plus the total for the same filter set.
func (r *TicketRepo) List(ctx context.Context, f repository.TicketFilter) ([]models.Ticket, int, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	whereSQL, args := buildTicketWhere(f)

	countSQL := `SELECT COUNT(*) FROM tickets t ` + whereSQL
	var total int
	if err := r.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortCol := sanitizeSort(f.Sort, "updated_at")
	sortOrd := sanitizeOrder(f.Order, "desc")

	sql := fmt.Sprintf(`SELECT %s %s %s ORDER BY t.%s %s LIMIT $%d OFFSET $%d`,
		ticketColumns, ticketJoins, whereSQL, sortCol, sortOrd, len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Ticket
	for rows.Next() {
		var t models.Ticket
		if err := scanTicket(rows, &t); err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

// ListBetween feeds the reporting aggregation: every ticket created inside
// the window, unpaginated. Zero bounds widen the window on that side.
func (r *TicketRepo) ListBetween(ctx context.Context, from, to time.Time) ([]models.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if !from.IsZero() {
		args = append(args, from)
		clauses = append(clauses, "t.created_at >= $"+itoa(len(args)))
	}
	if !to.IsZero() {
		args = append(args, to)
		clauses = append(clauses, "t.created_at < $"+itoa(len(args)))
	}

	sql := `SELECT ` + ticketColumns + ticketJoins +
		` WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY t.created_at ASC`

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Ticket
	for rows.Next() {
		var t models.Ticket
		if err := scanTicket(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TicketRepo) Get(ctx context.Context, id string) (*models.Ticket, error) {
	var t models.Ticket
	err := scanTicket(r.db.QueryRow(ctx,
		`SELECT `+ticketColumns+ticketJoins+` WHERE t.id = $1`, id), &t)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, ticket_id, author_id, text, created_at
		FROM comments
		WHERE ticket_id = $1
		ORDER BY created_at ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.TicketID, &c.AuthorID, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		t.Comments = append(t.Comments, c)
	}
	return &t, rows.Err()
}

// Create inserts the ticket; id, number and timestamps come back from the
// database ("TK-" prefix over a sequence).
func (r *TicketRepo) Create(ctx context.Context, t *models.Ticket) error {
	now := time.Now()
	return r.db.QueryRow(ctx, `
		INSERT INTO tickets (title, description, type, category, priority, status, requester, assignee, sla_due_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id, number, created_at, updated_at
	`,
		t.Title, t.Description, t.Type, t.Category, t.Priority, t.Status,
		t.Requester, nullIfEmpty(t.Assignee), t.SLADueAt, now, now,
	).Scan(&t.ID, &t.Number, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TicketRepo) Update(ctx context.Context, t *models.Ticket) error {
	t.UpdatedAt = time.Now()
	ct, err := r.db.Exec(ctx, `
		UPDATE tickets SET
			title=$1, description=$2, type=$3, category=$4, priority=$5, status=$6,
			assignee=$7, sla_due_at=$8, closed_at=$9, updated_at=$10
		WHERE id=$11
	`,
		t.Title, t.Description, t.Type, t.Category, t.Priority, t.Status,
		nullIfEmpty(t.Assignee), t.SLADueAt, t.ClosedAt, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *TicketRepo) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *TicketRepo) AddComment(ctx context.Context, ticketID, authorID, text string) (*models.Comment, error) {
	var c models.Comment
	err := r.db.QueryRow(ctx, `
		INSERT INTO comments (ticket_id, author_id, text)
		VALUES ($1,$2,$3)
		RETURNING id, ticket_id, author_id, text, created_at
	`, ticketID, authorID, text).Scan(&c.ID, &c.TicketID, &c.AuthorID, &c.Text, &c.CreatedAt)
	return &c, err
}

// -----------------------------------------------------------------------------
// Reporting fast paths, used by /api/reports/summary
// -----------------------------------------------------------------------------

func (r *TicketRepo) CountByStatus(ctx context.Context, statuses []string, inclusive bool) (int, error) {
	op := "NOT IN"
	if inclusive {
		op = "IN"
	}
	sql := `SELECT COUNT(*) FROM tickets WHERE status ` + op + ` (SELECT UNNEST($1::text[]))`
	var n int
	if err := r.db.QueryRow(ctx, sql, statuses).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *TicketRepo) CountResolvedSince(ctx context.Context, since time.Time) (int, error) {
	sql := `SELECT COUNT(*) FROM tickets WHERE status IN ('Resolved','Closed') AND COALESCE(closed_at, updated_at) >= $1`
	var n int
	if err := r.db.QueryRow(ctx, sql, since).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *TicketRepo) CountOpenByPriorities(ctx context.Context, prios []string) (int, error) {
	sql := `SELECT COUNT(*) FROM tickets WHERE status NOT IN ('Resolved','Closed') AND priority = ANY($1)`
	var n int
	if err := r.db.QueryRow(ctx, sql, prios).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func buildTicketWhere(f repository.TicketFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if s := strings.TrimSpace(f.Q); s != "" {
		p := "%" + s + "%"
		args = append(args, p, p)
		clauses = append(clauses, "(t.title ILIKE $"+itoa(len(args)-1)+" OR t.description ILIKE $"+itoa(len(args))+")")
	}
	if s := strings.TrimSpace(f.Status); s != "" {
		args = append(args, s)
		clauses = append(clauses, "t.status = $"+itoa(len(args)))
	}
	if p := strings.TrimSpace(f.Priority); p != "" {
		args = append(args, p)
		clauses = append(clauses, "t.priority = $"+itoa(len(args)))
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		args = append(args, c)
		clauses = append(clauses, "t.category = $"+itoa(len(args)))
	}
	if ty := strings.TrimSpace(f.Type); ty != "" {
		args = append(args, ty)
		clauses = append(clauses, "t.type = $"+itoa(len(args)))
	}
	if a := strings.TrimSpace(f.Assignee); a != "" {
		args = append(args, a)
		clauses = append(clauses, "(NULLIF(t.assignee,'')::uuid = $"+itoa(len(args))+"::uuid)")
	}
	if q := strings.TrimSpace(f.Requester); q != "" {
		args = append(args, q)
		clauses = append(clauses, "t.requester = $"+itoa(len(args)))
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

func sanitizeSort(s, def string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "created_at", "updated_at", "priority":
		return strings.ToLower(strings.TrimSpace(s))
	default:
		return def
	}
}

func sanitizeOrder(o, def string) string {
	switch strings.ToLower(strings.TrimSpace(o)) {
	case "asc", "desc":
		return strings.ToLower(strings.TrimSpace(o))
	default:
		return def
	}
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func itoa(i int) string { return strconv.Itoa(i) }
