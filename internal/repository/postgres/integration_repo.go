package postgres

import (
	"context"
	"time"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type IntegrationRepo struct{ db *pgxpool.Pool }

func NewIntegrationRepo(db *pgxpool.Pool) *IntegrationRepo { return &IntegrationRepo{db: db} }

func (r *IntegrationRepo) Get(ctx context.Context, userID string) (*models.TeamsIntegration, error) {
	var in models.TeamsIntegration
	err := r.db.QueryRow(ctx, `
		SELECT user_id, teams_user_id, access_token, refresh_token, expires_at, connected_at
		FROM teams_integrations WHERE user_id=$1`, userID).
		Scan(&in.UserID, &in.TeamsUserID, &in.AccessToken, &in.RefreshToken, &in.ExpiresAt, &in.ConnectedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &in, nil
}

// Upsert writes the whole token pair in one statement. A reconnect replaces
// the previous row.
func (r *IntegrationRepo) Upsert(ctx context.Context, in *models.TeamsIntegration) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO teams_integrations (user_id, teams_user_id, access_token, refresh_token, expires_at, connected_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (user_id) DO UPDATE SET
			teams_user_id=EXCLUDED.teams_user_id,
			access_token=EXCLUDED.access_token,
			refresh_token=EXCLUDED.refresh_token,
			expires_at=EXCLUDED.expires_at,
			connected_at=EXCLUDED.connected_at
	`, in.UserID, in.TeamsUserID, in.AccessToken, in.RefreshToken, in.ExpiresAt, in.ConnectedAt)
	return err
}

func (r *IntegrationRepo) Delete(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM teams_integrations WHERE user_id=$1`, userID)
	return err
}

// GetPreferences returns the stored toggles, or the defaults when the user
// has never saved any.
func (r *IntegrationRepo) GetPreferences(ctx context.Context, userID string) (*models.NotificationPreferences, error) {
	var p models.NotificationPreferences
	err := r.db.QueryRow(ctx, `
		SELECT user_id, notify_on_assignment, notify_on_comment, notify_on_sla_breach,
		       assist_suggestions, assist_auto_triage, updated_at
		FROM notification_preferences WHERE user_id=$1`, userID).
		Scan(&p.UserID, &p.NotifyOnAssignment, &p.NotifyOnComment, &p.NotifyOnSLABreach,
			&p.AssistSuggestions, &p.AssistAutoTriage, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return &models.NotificationPreferences{
				UserID:             userID,
				NotifyOnAssignment: true,
				NotifyOnComment:    true,
				NotifyOnSLABreach:  true,
				AssistSuggestions:  true,
				UpdatedAt:          time.Time{},
			}, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *IntegrationRepo) UpsertPreferences(ctx context.Context, p *models.NotificationPreferences) error {
	p.UpdatedAt = time.Now()
	_, err := r.db.Exec(ctx, `
		INSERT INTO notification_preferences (user_id, notify_on_assignment, notify_on_comment, notify_on_sla_breach, assist_suggestions, assist_auto_triage, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (user_id) DO UPDATE SET
			notify_on_assignment=EXCLUDED.notify_on_assignment,
			notify_on_comment=EXCLUDED.notify_on_comment,
			notify_on_sla_breach=EXCLUDED.notify_on_sla_breach,
			assist_suggestions=EXCLUDED.assist_suggestions,
			assist_auto_triage=EXCLUDED.assist_auto_triage,
			updated_at=EXCLUDED.updated_at
	`, p.UserID, p.NotifyOnAssignment, p.NotifyOnComment, p.NotifyOnSLABreach,
		p.AssistSuggestions, p.AssistAutoTriage, p.UpdatedAt)
	return err
}
