package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/playwell/player-service/internal/domain"
)

type sessionRepo struct{}

// NewSessionRepository returns a pgx-backed SessionRepository.
func NewSessionRepository() SessionRepository {
	return &sessionRepo{}
}

const sessionColumns = `id, player_id, login_time, logout_time`

func (r *sessionRepo) FindActiveByPlayer(ctx context.Context, db DBTX, playerID uuid.UUID) ([]domain.Session, error) {
	rows, err := db.Query(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE player_id = $1 AND logout_time IS NULL
		ORDER BY login_time ASC`, playerID)
	if err != nil {
		return nil, fmt.Errorf("query active sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

func (r *sessionRepo) FindActiveByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Session, error) {
	row := db.QueryRow(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE id = $1 AND logout_time IS NULL`, id)

	s := &domain.Session{}
	err := row.Scan(&s.ID, &s.PlayerID, &s.LoginTime, &s.LogoutTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	return s, nil
}

func (r *sessionRepo) FindStartedBetween(ctx context.Context, db DBTX, playerID uuid.UUID, startInclusive, endInclusive time.Time) ([]domain.Session, error) {
	rows, err := db.Query(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE player_id = $1 AND login_time >= $2 AND login_time <= $3
		ORDER BY login_time ASC`, playerID, startInclusive, endInclusive)
	if err != nil {
		return nil, fmt.Errorf("query sessions by window: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

func (r *sessionRepo) Create(ctx context.Context, db DBTX, session *domain.Session) error {
	_, err := db.Exec(ctx, `
		INSERT INTO sessions (id, player_id, login_time, logout_time)
		VALUES ($1, $2, $3, $4)`,
		session.ID, session.PlayerID, session.LoginTime, session.LogoutTime)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Close sets logout_time only when it is still NULL, so a logout timestamp
// can never be overwritten once set.
func (r *sessionRepo) Close(ctx context.Context, db DBTX, id uuid.UUID, logoutTime time.Time) (bool, error) {
	tag, err := db.Exec(ctx, `
		UPDATE sessions SET logout_time = $1
		WHERE id = $2 AND logout_time IS NULL`, logoutTime, id)
	if err != nil {
		return false, fmt.Errorf("close session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanSessions(rows pgx.Rows) ([]domain.Session, error) {
	var sessions []domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(&s.ID, &s.PlayerID, &s.LoginTime, &s.LogoutTime); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
