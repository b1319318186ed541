package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/playwell/player-service/internal/domain"
)

type playerRepo struct{}

// NewPlayerRepository returns a pgx-backed PlayerRepository.
func NewPlayerRepository() PlayerRepository {
	return &playerRepo{}
}

const playerColumns = `id, email, password_hash, name, surname, date_of_birth, address, daily_limit_minutes, created_at, updated_at`

func (r *playerRepo) FindByEmail(ctx context.Context, db DBTX, email string) (*domain.Player, error) {
	row := db.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM players WHERE email = $1`, email)
	return scanPlayer(row)
}

func (r *playerRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Player, error) {
	row := db.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = $1`, id)
	return scanPlayer(row)
}

func (r *playerRepo) Create(ctx context.Context, db DBTX, player *domain.Player) error {
	_, err := db.Exec(ctx, `
		INSERT INTO players (id, email, password_hash, name, surname, date_of_birth, address, daily_limit_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		player.ID,
		player.Email,
		player.PasswordHash,
		player.Name,
		player.Surname,
		player.DateOfBirth,
		player.Address,
		player.DailyLimitMinutes,
	)
	if err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

func (r *playerRepo) UpdateDailyLimit(ctx context.Context, db DBTX, playerID uuid.UUID, minutes int32) error {
	tag, err := db.Exec(ctx,
		`UPDATE players SET daily_limit_minutes = $1, updated_at = now() WHERE id = $2`,
		minutes, playerID)
	if err != nil {
		return fmt.Errorf("update daily limit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("player", playerID.String())
	}
	return nil
}

func scanPlayer(row pgx.Row) (*domain.Player, error) {
	p := &domain.Player{}
	err := row.Scan(&p.ID, &p.Email, &p.PasswordHash, &p.Name, &p.Surname,
		&p.DateOfBirth, &p.Address, &p.DailyLimitMinutes, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan player: %w", err)
	}
	return p, nil
}
