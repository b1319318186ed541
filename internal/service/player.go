package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/playwell/player-service/internal/auth"
	"github.com/playwell/player-service/internal/domain"
	"github.com/playwell/player-service/internal/infra"
	"github.com/playwell/player-service/internal/policy"
	"github.com/playwell/player-service/internal/repository"
)

// PlayerService orchestrates registration, login/logout and daily limit
// changes. Each public method runs as a single transaction so the
// reconciliation force-closures and the new session are never torn apart.
type PlayerService struct {
	pool     *pgxpool.Pool
	players  repository.PlayerRepository
	sessions repository.SessionRepository
	outbox   repository.OutboxRepository
	hasher   auth.PasswordHasher
	jwtMgr   *auth.JWTManager
	clock    infra.Clock
	logger   *slog.Logger
}

// NewPlayerService creates a new PlayerService.
func NewPlayerService(
	pool *pgxpool.Pool,
	players repository.PlayerRepository,
	sessions repository.SessionRepository,
	outbox repository.OutboxRepository,
	hasher auth.PasswordHasher,
	jwtMgr *auth.JWTManager,
	clock infra.Clock,
	logger *slog.Logger,
) *PlayerService {
	return &PlayerService{
		pool:     pool,
		players:  players,
		sessions: sessions,
		outbox:   outbox,
		hasher:   hasher,
		jwtMgr:   jwtMgr,
		clock:    clock,
		logger:   logger,
	}
}

// RegisterInput holds the registration request fields.
type RegisterInput struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	Name        string  `json:"name"`
	Surname     string  `json:"surname"`
	DateOfBirth *string `json:"dateOfBirth"`
	Address     string  `json:"address"`
}

// Register creates a new player account with no daily limit configured.
func (s *PlayerService) Register(ctx context.Context, input RegisterInput) (*domain.Player, error) {
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := domain.ValidateDateOfBirth(input.DateOfBirth); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	existing, err := s.players.FindByEmail(ctx, s.pool, input.Email)
	if err != nil {
		return nil, domain.ErrInternal("find player", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict("Email already registered")
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	now := s.clock.Now()
	player := &domain.Player{
		ID:           uuid.New(),
		Email:        input.Email,
		PasswordHash: hash,
		Name:         input.Name,
		Surname:      input.Surname,
		DateOfBirth:  input.DateOfBirth,
		Address:      input.Address,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.players.Create(ctx, tx, player); err != nil {
		return nil, domain.ErrInternal("create player", err)
	}
	if err := s.outbox.Insert(ctx, tx, domain.NewPlayerRegisteredEvent(player, now)); err != nil {
		return nil, domain.ErrInternal("outbox registered", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("player registered", "player_id", player.ID, "email", player.Email)
	return player, nil
}

// LoginInput holds the login request fields.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Session *domain.Session `json:"session"`
	Token   string          `json:"token"`
}

// Login authenticates a player, runs the daily-limit admission check and the
// reconciliation pass, then opens a new session.
//
// Ordering is deliberate: the usage check runs first and a denial aborts the
// whole operation before any force-closure or session creation. The
// reconciliation pass only runs for an admitted login.
func (s *PlayerService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	player, err := s.players.FindByEmail(ctx, s.pool, input.Email)
	if err != nil {
		return nil, domain.ErrInternal("find player", err)
	}
	// Identical error for unknown email and wrong password.
	if player == nil || !s.hasher.Verify(input.Password, player.PasswordHash) {
		return nil, domain.ErrUnauthorized("Invalid credentials")
	}

	now := s.clock.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	limit := player.DailyLimitMinutes

	if limit != nil {
		start, end := policy.DayWindow(now)
		today, err := s.sessions.FindStartedBetween(ctx, tx, player.ID, start, end)
		if err != nil {
			return nil, domain.ErrInternal("query today's sessions", err)
		}
		result := policy.EvaluateAdmission(limit, policy.DailyUsageMinutes(today, now))
		if !result.Allowed {
			s.logger.Info("login denied by daily limit",
				"player_id", player.ID,
				"used_minutes", result.UsedMinutes,
				"limit_minutes", result.LimitMinutes,
			)
			return nil, domain.ErrDailyLimitReached()
		}
	}

	// Reconciliation: close any session left open past the limit. Handles
	// players who never logged out and never triggered another login.
	active, err := s.sessions.FindActiveByPlayer(ctx, tx, player.ID)
	if err != nil {
		return nil, domain.ErrInternal("query active sessions", err)
	}
	for _, stale := range policy.StaleSessions(active, limit, now) {
		closed, err := s.sessions.Close(ctx, tx, stale.ID, now)
		if err != nil {
			return nil, domain.ErrInternal("force-close session", err)
		}
		if !closed {
			continue
		}
		stale.LogoutTime = &now
		if err := s.outbox.Insert(ctx, tx, domain.NewSessionEvent(domain.EventSessionForceClosed, &stale, now)); err != nil {
			return nil, domain.ErrInternal("outbox force-closed", err)
		}
		s.logger.Info("session force-closed on limit breach",
			"player_id", player.ID, "session_id", stale.ID)
	}

	session := &domain.Session{
		ID:        uuid.New(),
		PlayerID:  player.ID,
		LoginTime: now,
	}
	if err := s.sessions.Create(ctx, tx, session); err != nil {
		return nil, domain.ErrInternal("create session", err)
	}
	if err := s.outbox.Insert(ctx, tx, domain.NewSessionEvent(domain.EventSessionOpened, session, now)); err != nil {
		return nil, domain.ErrInternal("outbox opened", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	token, err := s.jwtMgr.GenerateToken(player.ID, player.Email, session.ID)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	s.logger.Info("player logged in", "player_id", player.ID, "session_id", session.ID)
	return &LoginResult{Session: session, Token: token}, nil
}

// Logout closes the active session. An unknown id and an already-closed
// session are indistinguishable to the caller.
func (s *PlayerService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	session, err := s.sessions.FindActiveByID(ctx, tx, sessionID)
	if err != nil {
		return domain.ErrInternal("find session", err)
	}
	if session == nil {
		return domain.ErrNotFound("session", sessionID.String())
	}

	now := s.clock.Now()
	if _, err := s.sessions.Close(ctx, tx, sessionID, now); err != nil {
		return domain.ErrInternal("close session", err)
	}
	session.LogoutTime = &now
	if err := s.outbox.Insert(ctx, tx, domain.NewSessionEvent(domain.EventSessionClosed, session, now)); err != nil {
		return domain.ErrInternal("outbox closed", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("player logged out", "player_id", session.PlayerID, "session_id", sessionID)
	return nil
}

// SetLimitInput holds the set-daily-limit request fields.
type SetLimitInput struct {
	Email             string `json:"email"`
	DailyLimitMinutes int32  `json:"dailyLimitMinutes"`
}

// SetDailyLimit persists a new daily limit for a player. The player must have
// at least one active session; that gate is policy, not a technical need.
func (s *PlayerService) SetDailyLimit(ctx context.Context, input SetLimitInput) error {
	if err := domain.ValidateDailyLimit(input.DailyLimitMinutes); err != nil {
		return domain.ErrValidation(err.Error())
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	player, err := s.players.FindByEmail(ctx, tx, input.Email)
	if err != nil {
		return domain.ErrInternal("find player", err)
	}
	if player == nil {
		return domain.ErrNotFound("player", input.Email)
	}

	active, err := s.sessions.FindActiveByPlayer(ctx, tx, player.ID)
	if err != nil {
		return domain.ErrInternal("query active sessions", err)
	}
	if len(active) == 0 {
		return domain.ErrPrecondition("Player is not active")
	}

	if err := s.players.UpdateDailyLimit(ctx, tx, player.ID, input.DailyLimitMinutes); err != nil {
		return domain.ErrInternal("update daily limit", err)
	}

	now := s.clock.Now()
	if err := s.outbox.Insert(ctx, tx, domain.NewLimitSetEvent(player.ID, input.DailyLimitMinutes, now)); err != nil {
		return domain.ErrInternal("outbox limit set", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("daily limit set",
		"player_id", player.ID, "daily_limit_minutes", input.DailyLimitMinutes)
	return nil
}

// PlaytimeReport describes today's aggregated usage for a player.
type PlaytimeReport struct {
	PlayerID         uuid.UUID `json:"player_id"`
	UsedMinutes      int64     `json:"used_minutes"`
	LimitMinutes     *int32    `json:"limit_minutes,omitempty"`
	RemainingMinutes int64     `json:"remaining_minutes"`
}

// Playtime computes today's usage for a player with the same arithmetic as
// the admission check. RemainingMinutes is -1 for an unlimited player.
func (s *PlayerService) Playtime(ctx context.Context, playerID uuid.UUID) (*PlaytimeReport, error) {
	player, err := s.players.FindByID(ctx, s.pool, playerID)
	if err != nil {
		return nil, domain.ErrInternal("find player", err)
	}
	if player == nil {
		return nil, domain.ErrNotFound("player", playerID.String())
	}

	now := s.clock.Now()
	start, end := policy.DayWindow(now)
	today, err := s.sessions.FindStartedBetween(ctx, s.pool, playerID, start, end)
	if err != nil {
		return nil, domain.ErrInternal("query today's sessions", err)
	}

	used := policy.DailyUsageMinutes(today, now)
	return &PlaytimeReport{
		PlayerID:         playerID,
		UsedMinutes:      used,
		LimitMinutes:     player.DailyLimitMinutes,
		RemainingMinutes: policy.RemainingMinutes(player.DailyLimitMinutes, used),
	}, nil
}

// Profile returns the player record for the authenticated subject.
func (s *PlayerService) Profile(ctx context.Context, playerID uuid.UUID) (*domain.Player, error) {
	player, err := s.players.FindByID(ctx, s.pool, playerID)
	if err != nil {
		return nil, domain.ErrInternal("find player", err)
	}
	if player == nil {
		return nil, domain.ErrNotFound("player", playerID.String())
	}
	return player, nil
}
