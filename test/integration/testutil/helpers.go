//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// POST performs a JSON POST request, optionally with a bearer token.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		env.t.Fatalf("POST %s: marshal: %v", path, err)
	}

	req, err := http.NewRequest(http.MethodPost, env.Server.URL+path, bytes.NewReader(raw))
	if err != nil {
		env.t.Fatalf("POST %s: build request: %v", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// GET performs a GET request, optionally with a bearer token.
func (env *TestEnv) GET(path string, token string) *http.Response {
	env.t.Helper()

	req, err := http.NewRequest(http.MethodGet, env.Server.URL+path, nil)
	if err != nil {
		env.t.Fatalf("GET %s: build request: %v", path, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// RegisterPlayer creates a new player via the API and returns its ID.
func (env *TestEnv) RegisterPlayer(email, password string) uuid.UUID {
	env.t.Helper()

	resp := env.POST("/api/v1/players/register", map[string]string{
		"email":    email,
		"password": password,
		"name":     "Test",
		"surname":  "Player",
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("RegisterPlayer: expected 201, got %d", resp.StatusCode)
	}

	var result struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("RegisterPlayer: decode: %v", err)
	}
	return result.ID
}

// LoginPlayer authenticates a player and returns the session ID and token.
func (env *TestEnv) LoginPlayer(email, password string) (sessionID uuid.UUID, token string) {
	env.t.Helper()

	resp := env.POST("/api/v1/players/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("LoginPlayer: expected 201, got %d", resp.StatusCode)
	}

	var result struct {
		Session struct {
			ID uuid.UUID `json:"id"`
		} `json:"session"`
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("LoginPlayer: decode: %v", err)
	}
	return result.Session.ID, result.Token
}

// SeedSession inserts a session row directly, bypassing the API.
func (env *TestEnv) SeedSession(playerID uuid.UUID, loginTime time.Time, logoutTime *time.Time) uuid.UUID {
	env.t.Helper()

	id := uuid.New()
	_, err := env.Pool.Exec(context.Background(), `
		INSERT INTO sessions (id, player_id, login_time, logout_time)
		VALUES ($1, $2, $3, $4)`, id, playerID, loginTime, logoutTime)
	if err != nil {
		env.t.Fatalf("SeedSession: %v", err)
	}
	return id
}

// SetLimitDirect writes a daily limit straight to the players table.
func (env *TestEnv) SetLimitDirect(playerID uuid.UUID, minutes int32) {
	env.t.Helper()

	_, err := env.Pool.Exec(context.Background(),
		`UPDATE players SET daily_limit_minutes = $1 WHERE id = $2`, minutes, playerID)
	if err != nil {
		env.t.Fatalf("SetLimitDirect: %v", err)
	}
}

// SessionLogoutTime returns the logout_time of a session row.
func (env *TestEnv) SessionLogoutTime(sessionID uuid.UUID) *time.Time {
	env.t.Helper()

	var logout *time.Time
	err := env.Pool.QueryRow(context.Background(),
		`SELECT logout_time FROM sessions WHERE id = $1`, sessionID).Scan(&logout)
	if err != nil {
		env.t.Fatalf("SessionLogoutTime: %v", err)
	}
	return logout
}

// CountOutboxEvents returns how many outbox rows exist for an event type.
func (env *TestEnv) CountOutboxEvents(eventType string) int {
	env.t.Helper()

	var count int
	err := env.Pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM event_outbox WHERE event_type = $1`, eventType).Scan(&count)
	if err != nil {
		env.t.Fatalf("CountOutboxEvents: %v", err)
	}
	return count
}
