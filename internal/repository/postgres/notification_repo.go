package postgres

import (
	"context"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepo struct{ db *pgxpool.Pool }

func NewNotificationRepo(db *pgxpool.Pool) *NotificationRepo { return &NotificationRepo{db: db} }

func (r *NotificationRepo) ListForRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	sql := `
		SELECT id, recipient_id, message, type, read, created_at
		FROM notifications
		WHERE recipient_id = $1`
	if unreadOnly {
		sql += ` AND NOT read`
	}
	sql += ` ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.Query(ctx, sql, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Message, &n.Type, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO notifications (recipient_id, message, type)
		VALUES ($1,$2,$3)
		RETURNING id, read, created_at
	`, n.RecipientID, n.Message, n.Type).Scan(&n.ID, &n.Read, &n.CreatedAt)
}

// MarkRead only flips rows owned by the recipient; a foreign id is a no-op.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, recipientID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE notifications SET read=true
		WHERE id=$1 AND recipient_id=$2
	`, id, recipientID)
	return err
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	ct, err := r.db.Exec(ctx, `
		UPDATE notifications SET read=true
		WHERE recipient_id=$1 AND NOT read
	`, recipientID)
	if err != nil {
		return 0, err
	}
	return int(ct.RowsAffected()), nil
}
