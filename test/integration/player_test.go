//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playwell/player-service/test/integration/testutil"
)

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// ─── Registration ───────────────────────────────────────────────────────────

func TestRegister_Success(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.POST("/api/v1/players/register", map[string]string{
		"email":       "new@test.com",
		"password":    "securepass123",
		"name":        "Ada",
		"surname":     "Lovelace",
		"dateOfBirth": "1990-05-20",
		"address":     "1 Example Street",
	}, "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "new@test.com", body["email"])
	assert.NotEmpty(t, body["id"])
	assert.NotContains(t, body, "password_hash", "hash must not be echoed")
	assert.Nil(t, body["daily_limit_minutes"], "limit starts unset")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterPlayer("dup@test.com", "securepass123")

	resp := env.POST("/api/v1/players/register", map[string]string{
		"email": "dup@test.com", "password": "anotherpass1",
	}, "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Email already registered", body["message"])

	// First registration is unaffected.
	_, _ = env.LoginPlayer("dup@test.com", "securepass123")
}

func TestRegister_InvalidBody(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.POST("/api/v1/players/register", map[string]string{
		"email": "not-an-email", "password": "securepass123",
	}, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ─── Login ──────────────────────────────────────────────────────────────────

func TestLogin_CreatesActiveSession(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterPlayer("login@test.com", "securepass123")

	sessionID, token := env.LoginPlayer("login@test.com", "securepass123")
	assert.NotEqual(t, uuid.Nil, sessionID)
	assert.NotEmpty(t, token)

	assert.Nil(t, env.SessionLogoutTime(sessionID), "session starts active")
	assert.Equal(t, 1, env.CountOutboxEvents("opened"))
}

func TestLogin_WrongPasswordAndUnknownEmailIndistinguishable(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterPlayer("known@test.com", "securepass123")

	wrongPw := env.POST("/api/v1/players/login", map[string]string{
		"email": "known@test.com", "password": "wrongpass123",
	}, "")
	defer wrongPw.Body.Close()

	unknown := env.POST("/api/v1/players/login", map[string]string{
		"email": "nobody@test.com", "password": "securepass123",
	}, "")
	defer unknown.Body.Close()

	require.Equal(t, http.StatusUnauthorized, wrongPw.StatusCode)
	require.Equal(t, http.StatusUnauthorized, unknown.StatusCode)
	assert.Equal(t, decodeBody(t, wrongPw)["message"], decodeBody(t, unknown)["message"])
}

// ─── Daily limit enforcement ────────────────────────────────────────────────

func TestLogin_WithLimitAndNoUsageSucceeds(t *testing.T) {
	env := testutil.NewTestEnv(t)
	playerID := env.RegisterPlayer("fresh@test.com", "securepass123")
	env.SetLimitDirect(playerID, 60)

	sessionID, _ := env.LoginPlayer("fresh@test.com", "securepass123")
	assert.NotEqual(t, uuid.Nil, sessionID)
}

func TestLogin_ZeroLimitAlwaysDenied(t *testing.T) {
	env := testutil.NewTestEnv(t)
	playerID := env.RegisterPlayer("blocked@test.com", "securepass123")
	env.SetLimitDirect(playerID, 0)

	resp := env.POST("/api/v1/players/login", map[string]string{
		"email": "blocked@test.com", "password": "securepass123",
	}, "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Daily time limit reached", decodeBody(t, resp)["message"])
}

func TestLogin_UsageAtLimitDenied(t *testing.T) {
	env := testutil.NewTestEnv(t)
	playerID := env.RegisterPlayer("spent@test.com", "securepass123")
	env.SetLimitDirect(playerID, 60)

	// Two closed 30-minute sessions today: exactly 60 minutes used.
	first := env.Now.Add(-3 * time.Hour)
	firstEnd := first.Add(30 * time.Minute)
	second := env.Now.Add(-2 * time.Hour)
	secondEnd := second.Add(30 * time.Minute)
	env.SeedSession(playerID, first, &firstEnd)
	env.SeedSession(playerID, second, &secondEnd)

	resp := env.POST("/api/v1/players/login", map[string]string{
		"email": "spent@test.com", "password": "securepass123",
	}, "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Daily time limit reached", decodeBody(t, resp)["message"])
}

func TestLogin_DenialLeavesStaleSessionsOpen(t *testing.T) {
	env := testutil.NewTestEnv(t)
	playerID := env.RegisterPlayer("denied@test.com", "securepass123")
	env.SetLimitDirect(playerID, 60)

	// An open session from 61 minutes ago already puts usage over the limit,
	// so the login is denied before the reconciliation pass runs.
	staleID := env.SeedSession(playerID, env.Now.Add(-61*time.Minute), nil)

	resp := env.POST("/api/v1/players/login", map[string]string{
		"email": "denied@test.com", "password": "securepass123",
	}, "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Nil(t, env.SessionLogoutTime(staleID), "denied login must not force-close")
}

func TestLogin_ForceClosesStaleSessionFromYesterday(t *testing.T) {
	env := testutil.NewTestEnv(t)
	playerID := env.RegisterPlayer("stale@test.com", "securepass123")
	env.SetLimitDirect(playerID, 60)

	// Open since yesterday evening: excluded from today's usage sum (it did
	// not start within today's window) but well past the limit, so the
	// admitted login force-closes it during reconciliation.
	staleID := env.SeedSession(playerID, env.Now.Add(-15*time.Hour), nil)

	newSessionID, _ := env.LoginPlayer("stale@test.com", "securepass123")

	closedAt := env.SessionLogoutTime(staleID)
	require.NotNil(t, closedAt, "stale session gains a logout timestamp")
	assert.Equal(t, env.Now.Unix(), closedAt.Unix())
	assert.Nil(t, env.SessionLogoutTime(newSessionID), "new session is active")
	assert.Equal(t, 1, env.CountOutboxEvents("force_closed"))
}

// ─── Logout ─────────────────────────────────────────────────────────────────

func TestLogout_ClosesSession(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterPlayer("bye@test.com", "securepass123")
	sessionID, _ := env.LoginPlayer("bye@test.com", "securepass123")

	resp := env.POST("/api/v1/players/logout", map[string]string{
		"sessionId": sessionID.String(),
	}, "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, env.SessionLogoutTime(sessionID))
}

func TestLogout_SecondCallFailsFirstEffectPersists(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterPlayer("twice@test.com", "securepass123")
	sessionID, _ := env.LoginPlayer("twice@test.com", "securepass123")

	first := env.POST("/api/v1/players/logout", map[string]string{"sessionId": sessionID.String()}, "")
	first.Body.Close()
	closedAt := env.SessionLogoutTime(sessionID)
	require.NotNil(t, closedAt)

	second := env.POST("/api/v1/players/logout", map[string]string{"sessionId": sessionID.String()}, "")
	defer second.Body.Close()

	assert.Equal(t, http.StatusNotFound, second.StatusCode)
	assert.Equal(t, closedAt, env.SessionLogoutTime(sessionID), "first logout unchanged")
}

func TestLogout_UnknownSession(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.POST("/api/v1/players/logout", map[string]string{
		"sessionId": uuid.New().String(),
	}, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ─── Set daily limit ────────────────────────────────────────────────────────

func TestSetDailyLimit_RequiresActiveSession(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterPlayer("inactive@test.com", "securepass123")

	resp := env.POST("/api/v1/players/set-daily-limit", map[string]interface{}{
		"email": "inactive@test.com", "dailyLimitMinutes": 60,
	}, "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Player is not active", decodeBody(t, resp)["message"])

	// Limit stays unset.
	var limit *int32
	err := env.Pool.QueryRow(t.Context(),
		`SELECT daily_limit_minutes FROM players WHERE email = $1`, "inactive@test.com").Scan(&limit)
	require.NoError(t, err)
	assert.Nil(t, limit)
}

func TestSetDailyLimit_Success(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterPlayer("limit@test.com", "securepass123")
	env.LoginPlayer("limit@test.com", "securepass123")

	resp := env.POST("/api/v1/players/set-daily-limit", map[string]interface{}{
		"email": "limit@test.com", "dailyLimitMinutes": 45,
	}, "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var limit *int32
	err := env.Pool.QueryRow(t.Context(),
		`SELECT daily_limit_minutes FROM players WHERE email = $1`, "limit@test.com").Scan(&limit)
	require.NoError(t, err)
	require.NotNil(t, limit)
	assert.Equal(t, int32(45), *limit)
	assert.Equal(t, 1, env.CountOutboxEvents("limit_set"))
}

func TestSetDailyLimit_UnknownPlayer(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.POST("/api/v1/players/set-daily-limit", map[string]interface{}{
		"email": "ghost@test.com", "dailyLimitMinutes": 60,
	}, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ─── Authenticated reads ────────────────────────────────────────────────────

func TestGetMe_RequiresToken(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.GET("/api/v1/players/me", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetPlaytime_ReportsUsage(t *testing.T) {
	env := testutil.NewTestEnv(t)
	playerID := env.RegisterPlayer("report@test.com", "securepass123")
	env.SetLimitDirect(playerID, 60)

	// 30 + 15 minutes already played today.
	first := env.Now.Add(-3 * time.Hour)
	firstEnd := first.Add(30 * time.Minute)
	second := env.Now.Add(-90 * time.Minute)
	secondEnd := second.Add(15 * time.Minute)
	env.SeedSession(playerID, first, &firstEnd)
	env.SeedSession(playerID, second, &secondEnd)

	_, token := env.LoginPlayer("report@test.com", "securepass123")

	resp := env.GET("/api/v1/players/me/playtime", token)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report struct {
		UsedMinutes      int64  `json:"used_minutes"`
		LimitMinutes     *int32 `json:"limit_minutes"`
		RemainingMinutes int64  `json:"remaining_minutes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, int64(45), report.UsedMinutes, "30 + 15 floored per session")
	require.NotNil(t, report.LimitMinutes)
	assert.Equal(t, int32(60), *report.LimitMinutes)
	assert.Equal(t, int64(15), report.RemainingMinutes)
}
