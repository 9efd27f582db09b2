package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/config"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/handlers"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/middleware"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/realtime"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/repository/postgres"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/service"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/teams"
)

func New(log zerolog.Logger, db *pgxpool.Pool, cfg config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(httprate.LimitByIP(200, time.Minute))
	r.Use(middleware.WithAuth(log, cfg))

	// Health
	r.Get("/healthz", handlers.Health(db))

	// Shared infrastructure
	hub := realtime.NewHub()

	// Repos
	ticketRepo := postgres.NewTicketRepo(db)
	userRepo := postgres.NewUserRepo(db)
	announcementRepo := postgres.NewAnnouncementRepo(db)
	scheduleRepo := postgres.NewScheduleRepo(db)
	notificationRepo := postgres.NewNotificationRepo(db)
	integrationRepo := postgres.NewIntegrationRepo(db)

	// Services + handlers
	authSvc := service.NewAuthService(userRepo, cfg.SessionSecret)
	ah := handlers.NewAuthHTTP(authSvc, userRepo)
	th := handlers.NewTicketHTTP(ticketRepo, userRepo, notificationRepo, hub)
	uh := handlers.NewTechnicianHTTP(userRepo)
	anh := handlers.NewAnnouncementHTTP(announcementRepo, hub)
	sh := handlers.NewScheduleHTTP(scheduleRepo, hub)
	nh := handlers.NewNotificationHTTP(notificationRepo)
	rh := handlers.NewReportsHTTP(ticketRepo)
	qh := handlers.NewAssistantHTTP(ticketRepo, userRepo)
	tmh := handlers.NewTeamsHTTP(teams.NewConnector(cfg.Teams, integrationRepo), integrationRepo, log)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", ah.Register())
		r.Post("/login", ah.Login())
		r.Post("/logout", ah.Logout())
		r.Post("/resend-confirmation", ah.ResendConfirmation())
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/me", ah.Me())
			r.Patch("/password", ah.UpdatePassword())
		})
	})

	r.Route("/api/tickets", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", th.List())
		r.Post("/", th.Create())
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", th.Get())
			r.Post("/comments", th.AddComment())
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles("admin", "technician"))
				r.Patch("/", th.Update())
				r.Post("/assign", th.Assign())
			})
			r.With(middleware.RequireRoles("admin")).Delete("/", th.Delete())
		})
	})

	r.Route("/api/technicians", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", uh.List())
		r.With(middleware.RequireRoles("admin")).Post("/", uh.Create())
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", uh.Get())
			r.With(middleware.RequireSelfOrRoles("admin")).Patch("/", uh.Update())
			r.With(middleware.RequireRoles("admin")).Patch("/role", uh.UpdateRole())
			r.With(middleware.RequireRoles("admin")).Patch("/active", uh.SetActive())
		})
	})

	r.Route("/api/announcements", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", anh.List())
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRoles("admin", "technician"))
			r.Post("/", anh.Create())
			r.Patch("/{id}", anh.Update())
			r.Patch("/{id}/active", anh.SetActive())
		})
		r.With(middleware.RequireRoles("admin")).Delete("/{id}", anh.Delete())
	})

	r.Route("/api/schedule", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/events", sh.ListEvents())
		r.Get("/events/{id}/occurrences", sh.EventOccurrences())
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRoles("admin", "technician"))
			r.Post("/events", sh.CreateEvent())
			r.Patch("/events/{id}", sh.UpdateEvent())
			r.Delete("/events/{id}", sh.DeleteEvent())
		})
		r.Get("/reminders", sh.ListReminders())
		r.Post("/reminders", sh.CreateReminder())
		r.Patch("/reminders/{id}/done", sh.SetReminderDone())
		r.Delete("/reminders/{id}", sh.DeleteReminder())
	})

	r.Route("/api/notifications", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", nh.List())
		r.Patch("/{id}/read", nh.MarkRead())
		r.Post("/read-all", nh.MarkAllRead())
	})

	r.Route("/api/reports", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireRoles("admin", "technician"))
		r.Get("/summary", rh.Summary())
		r.Get("/metrics", rh.Metrics())
	})

	r.With(middleware.RequireAuth).Post("/api/assistant/query", qh.Query())

	r.Route("/api/integrations", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/teams/connect", tmh.Connect())
		r.Get("/teams/callback", tmh.Callback())
		r.Get("/teams", tmh.Status())
		r.Delete("/teams", tmh.Disconnect())
		r.Post("/teams/messages", tmh.SendMessage())
		r.Get("/preferences", tmh.GetPreferences())
		r.Put("/preferences", tmh.UpdatePreferences())
	})

	r.With(middleware.RequireAuth).Get("/api/events", handlers.Events(hub))

	return r
}
