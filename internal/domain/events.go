package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AggregateType identifies the outbox aggregate an event belongs to.
type AggregateType string

const (
	AggregatePlayer  AggregateType = "player"
	AggregateSession AggregateType = "session"
)

// EventType identifies the outbox event kind.
type EventType string

const (
	EventPlayerRegistered   EventType = "registered"
	EventPlayerLimitSet     EventType = "limit_set"
	EventSessionOpened      EventType = "opened"
	EventSessionClosed      EventType = "closed"
	EventSessionForceClosed EventType = "force_closed"
)

// OutboxDraft is an event row to be written to the outbox within the same
// transaction as the state change it describes.
type OutboxDraft struct {
	SeqID         int64           `json:"-"`
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     EventType       `json:"event_type"`
	PartitionKey  string          `json:"partition_key"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewPlayerRegisteredEvent creates a player lifecycle event.
func NewPlayerRegisteredEvent(player *Player, now time.Time) OutboxDraft {
	payload, _ := json.Marshal(map[string]string{
		"player_id": player.ID.String(),
		"email":     player.Email,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregatePlayer,
		AggregateID:   player.ID.String(),
		EventType:     EventPlayerRegistered,
		PartitionKey:  player.ID.String(),
		Payload:       payload,
		OccurredAt:    now,
	}
}

// NewLimitSetEvent creates a responsible gaming limit-change event.
func NewLimitSetEvent(playerID uuid.UUID, minutes int32, now time.Time) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"player_id":           playerID.String(),
		"daily_limit_minutes": minutes,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregatePlayer,
		AggregateID:   playerID.String(),
		EventType:     EventPlayerLimitSet,
		PartitionKey:  playerID.String(),
		Payload:       payload,
		OccurredAt:    now,
	}
}

// NewSessionEvent creates a session lifecycle event of the given type. The
// partition key is the owning player so all of a player's session events land
// on one partition in order.
func NewSessionEvent(evtType EventType, session *Session, now time.Time) OutboxDraft {
	payload, _ := json.Marshal(session)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateSession,
		AggregateID:   session.ID.String(),
		EventType:     evtType,
		PartitionKey:  session.PlayerID.String(),
		Payload:       payload,
		OccurredAt:    now,
	}
}
