package repository

import (
	"context"
	"time"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/models"
)

type TicketRepository interface {
	List(ctx context.Context, f TicketFilter) ([]models.Ticket, int, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Ticket, error)
	Get(ctx context.Context, id string) (*models.Ticket, error)
	Create(ctx context.Context, t *models.Ticket) error
	Update(ctx context.Context, t *models.Ticket) error
	Delete(ctx context.Context, id string) error
	AddComment(ctx context.Context, ticketID, authorID, text string) (*models.Comment, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (*models.User, string /*passwordHash*/, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, f UserFilter) ([]models.User, int, error)
	Update(ctx context.Context, u *models.User) error
	UpdateRole(ctx context.Context, id, role string) (*models.User, error)
	SetActive(ctx context.Context, id string, active bool) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	FirstActiveAdminID(ctx context.Context) (string, error)
	LeastLoadedTechnicianID(ctx context.Context) (string, error)
	AdjustWorkload(ctx context.Context, id string, delta int) error
}

type AnnouncementRepository interface {
	List(ctx context.Context, onlyActive bool, audience string, limit, offset int) ([]models.Announcement, int, error)
	Get(ctx context.Context, id string) (*models.Announcement, error)
	Create(ctx context.Context, a *models.Announcement) error
	Update(ctx context.Context, a *models.Announcement) error
	SetActive(ctx context.Context, id string, active bool) (*models.Announcement, error)
	Delete(ctx context.Context, id string) error
}

type ScheduleRepository interface {
	ListEvents(ctx context.Context, from, to time.Time, assignee string) ([]models.ScheduleEvent, error)
	GetEvent(ctx context.Context, id string) (*models.ScheduleEvent, error)
	CreateEvent(ctx context.Context, e *models.ScheduleEvent) error
	UpdateEvent(ctx context.Context, e *models.ScheduleEvent) error
	DeleteEvent(ctx context.Context, id string) error

	ListReminders(ctx context.Context, assignee string, includeDone bool) ([]models.Reminder, error)
	CreateReminder(ctx context.Context, r *models.Reminder) error
	SetReminderDone(ctx context.Context, id string, done bool) (*models.Reminder, error)
	DeleteReminder(ctx context.Context, id string) error
}

type NotificationRepository interface {
	ListForRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]models.Notification, error)
	Create(ctx context.Context, n *models.Notification) error
	MarkRead(ctx context.Context, id, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) (int, error)
}

type IntegrationRepository interface {
	Get(ctx context.Context, userID string) (*models.TeamsIntegration, error)
	Upsert(ctx context.Context, in *models.TeamsIntegration) error
	Delete(ctx context.Context, userID string) error

	GetPreferences(ctx context.Context, userID string) (*models.NotificationPreferences, error)
	UpsertPreferences(ctx context.Context, p *models.NotificationPreferences) error
}
