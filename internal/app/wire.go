package app

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/playwell/player-service/internal/auth"
	"github.com/playwell/player-service/internal/handler"
	"github.com/playwell/player-service/internal/infra"
	"github.com/playwell/player-service/internal/repository"
	"github.com/playwell/player-service/internal/service"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool   *pgxpool.Pool
	JWTMgr *auth.JWTManager
	Clock  infra.Clock
	Logger *slog.Logger
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	clock := deps.Clock
	if clock == nil {
		clock = infra.SystemClock()
	}

	// Repositories
	playerRepo := repository.NewPlayerRepository()
	sessionRepo := repository.NewSessionRepository()
	outboxRepo := repository.NewOutboxRepository()

	// Services
	playerSvc := service.NewPlayerService(
		deps.Pool, playerRepo, sessionRepo, outboxRepo,
		auth.NewBcryptHasher(), deps.JWTMgr, clock, deps.Logger,
	)

	// Handlers
	playerHandler := handler.NewPlayerHandler(playerSvc)
	meHandler := handler.NewMeHandler(playerSvc)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(deps.Logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(deps.Logger))
	r.Use(handler.CORS)
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(deps.Pool))

	r.Route("/api/v1/players", func(r chi.Router) {
		r.Post("/register", playerHandler.Register)
		r.Post("/login", playerHandler.Login)
		r.Post("/logout", playerHandler.Logout)
		r.Post("/set-daily-limit", playerHandler.SetDailyLimit)

		// Authenticated reads
		r.Group(func(r chi.Router) {
			r.Use(auth.AuthenticatePlayer(deps.JWTMgr))
			r.Get("/me", meHandler.GetMe)
			r.Get("/me/playtime", meHandler.GetPlaytime)
		})
	})

	return r
}
