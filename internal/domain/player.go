package domain

import (
	"time"

	"github.com/google/uuid"
)

// Player represents a players row. The password hash is never serialized.
type Player struct {
	ID                uuid.UUID `json:"id"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	Name              string    `json:"name,omitempty"`
	Surname           string    `json:"surname,omitempty"`
	DateOfBirth       *string   `json:"date_of_birth,omitempty"`
	Address           string    `json:"address,omitempty"`
	DailyLimitMinutes *int32    `json:"daily_limit_minutes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Session is one continuous presence interval for a player. LoginTime is set
// at creation and never changes; LogoutTime is nil while the session is open
// and is set exactly once when it closes.
type Session struct {
	ID         uuid.UUID  `json:"id"`
	PlayerID   uuid.UUID  `json:"player_id"`
	LoginTime  time.Time  `json:"login_time"`
	LogoutTime *time.Time `json:"logout_time,omitempty"`
}

// Active reports whether the session has no logout timestamp yet.
func (s *Session) Active() bool {
	return s.LogoutTime == nil
}
