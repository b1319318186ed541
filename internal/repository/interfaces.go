package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/playwell/player-service/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// PlayerRepository provides access to the players table. Email uniqueness is
// enforced here by the database; callers check first to report a domain
// error, but the unique index is the authority.
type PlayerRepository interface {
	// FindByEmail returns a player by exact email match, or nil if absent.
	FindByEmail(ctx context.Context, db DBTX, email string) (*domain.Player, error)

	// FindByID returns a player by ID, or nil if absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Player, error)

	// Create inserts a new player.
	Create(ctx context.Context, db DBTX, player *domain.Player) error

	// UpdateDailyLimit persists a new daily limit on the player record.
	UpdateDailyLimit(ctx context.Context, db DBTX, playerID uuid.UUID, minutes int32) error
}

// SessionRepository provides access to the sessions table. A session is
// active while its logout_time is NULL.
type SessionRepository interface {
	// FindActiveByPlayer returns all of a player's sessions with no logout
	// timestamp, in login order.
	FindActiveByPlayer(ctx context.Context, db DBTX, playerID uuid.UUID) ([]domain.Session, error)

	// FindActiveByID returns the session only if it is still active; nil for
	// an unknown id or an already-closed session.
	FindActiveByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Session, error)

	// FindStartedBetween returns the player's sessions whose login_time falls
	// within [startInclusive, endInclusive]. Used for today's-usage
	// aggregation.
	FindStartedBetween(ctx context.Context, db DBTX, playerID uuid.UUID, startInclusive, endInclusive time.Time) ([]domain.Session, error)

	// Create inserts a new session.
	Create(ctx context.Context, db DBTX, session *domain.Session) error

	// Close sets the logout timestamp on an active session. Returns false if
	// the session was already closed or does not exist.
	Close(ctx context.Context, db DBTX, id uuid.UUID, logoutTime time.Time) (bool, error)
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the state
	// change it describes).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns pending events for the outbox poller.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxDraft, error)

	// MarkPublished removes published events.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error
}
