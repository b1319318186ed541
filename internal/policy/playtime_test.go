package policy

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/playwell/player-service/internal/domain"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04:05", value, time.Local)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return ts
}

func closedSession(login, logout time.Time) domain.Session {
	return domain.Session{ID: uuid.New(), PlayerID: uuid.New(), LoginTime: login, LogoutTime: &logout}
}

func openSession(login time.Time) domain.Session {
	return domain.Session{ID: uuid.New(), PlayerID: uuid.New(), LoginTime: login}
}

func limit(minutes int32) *int32 { return &minutes }

func TestDayWindow(t *testing.T) {
	now := at(t, "2024-03-15 14:30:45")
	start, end := DayWindow(now)

	assert.Equal(t, at(t, "2024-03-15 00:00:00"), start)
	assert.Equal(t, now, end, "window must end at now, not end of day")
}

func TestSessionMinutes_ClosedSession(t *testing.T) {
	now := at(t, "2024-03-15 12:00:00")
	s := closedSession(at(t, "2024-03-15 09:00:00"), at(t, "2024-03-15 09:30:00"))
	assert.Equal(t, int64(30), SessionMinutes(&s, now))
}

func TestSessionMinutes_OpenSessionMeasuredToNow(t *testing.T) {
	now := at(t, "2024-03-15 10:15:00")
	s := openSession(at(t, "2024-03-15 10:00:00"))
	assert.Equal(t, int64(15), SessionMinutes(&s, now))
}

func TestSessionMinutes_FloorsFractions(t *testing.T) {
	now := at(t, "2024-03-15 12:00:00")
	logout := at(t, "2024-03-15 09:00:00").Add(29*time.Minute + 59*time.Second)
	s := closedSession(at(t, "2024-03-15 09:00:00"), logout)
	assert.Equal(t, int64(29), SessionMinutes(&s, now))
}

func TestDailyUsageMinutes_FloorsPerSessionThenSums(t *testing.T) {
	now := at(t, "2024-03-15 12:00:00")

	// 09:00-09:30 and 09:45-10:00 add up to exactly 45 minutes.
	sessions := []domain.Session{
		closedSession(at(t, "2024-03-15 09:00:00"), at(t, "2024-03-15 09:30:00")),
		closedSession(at(t, "2024-03-15 09:45:00"), at(t, "2024-03-15 10:00:00")),
	}
	assert.Equal(t, int64(45), DailyUsageMinutes(sessions, now))

	// Two sessions of 30.9 minutes each floor to 30+30, not floor(61.8).
	sessions = []domain.Session{
		closedSession(at(t, "2024-03-15 09:00:00"), at(t, "2024-03-15 09:00:00").Add(30*time.Minute+54*time.Second)),
		closedSession(at(t, "2024-03-15 10:00:00"), at(t, "2024-03-15 10:00:00").Add(30*time.Minute+54*time.Second)),
	}
	assert.Equal(t, int64(60), DailyUsageMinutes(sessions, now))
}

func TestDailyUsageMinutes_EmptyIsZero(t *testing.T) {
	assert.Equal(t, int64(0), DailyUsageMinutes(nil, at(t, "2024-03-15 12:00:00")))
}

func TestEvaluateAdmission_NoLimitAlwaysAllowed(t *testing.T) {
	result := EvaluateAdmission(nil, 10_000)
	assert.True(t, result.Allowed)
}

func TestEvaluateAdmission_UnderLimitAllowed(t *testing.T) {
	result := EvaluateAdmission(limit(60), 59)
	assert.True(t, result.Allowed)
	assert.Equal(t, int64(59), result.UsedMinutes)
}

func TestEvaluateAdmission_ExactlyAtLimitDenied(t *testing.T) {
	result := EvaluateAdmission(limit(60), 60)
	assert.False(t, result.Allowed)
	assert.Equal(t, int32(60), result.LimitMinutes)
}

func TestEvaluateAdmission_ZeroLimitBlocksEvenWithZeroUsage(t *testing.T) {
	result := EvaluateAdmission(limit(0), 0)
	assert.False(t, result.Allowed)
}

func TestStaleSessions_NoLimitNothingToReconcile(t *testing.T) {
	now := at(t, "2024-03-15 12:00:00")
	active := []domain.Session{openSession(at(t, "2024-03-15 02:00:00"))}
	assert.Empty(t, StaleSessions(active, nil, now))
}

func TestStaleSessions_ClosesSessionsPastLimit(t *testing.T) {
	now := at(t, "2024-03-15 12:00:00")
	stale := openSession(now.Add(-61 * time.Minute))
	fresh := openSession(now.Add(-10 * time.Minute))

	result := StaleSessions([]domain.Session{stale, fresh}, limit(60), now)
	assert.Len(t, result, 1)
	assert.Equal(t, stale.ID, result[0].ID)
}

func TestStaleSessions_ExactlyAtLimitIsStale(t *testing.T) {
	now := at(t, "2024-03-15 12:00:00")
	s := openSession(now.Add(-60 * time.Minute))
	assert.Len(t, StaleSessions([]domain.Session{s}, limit(60), now), 1)
}

func TestStaleSessions_SessionOpenSinceYesterday(t *testing.T) {
	// A session that began before midnight is excluded from today's sum by
	// the day window, but reconciliation still sees it and closes it.
	now := at(t, "2024-03-15 00:30:00")
	s := openSession(at(t, "2024-03-14 23:00:00"))

	start, _ := DayWindow(now)
	assert.True(t, s.LoginTime.Before(start), "session starts before today's window")
	assert.Len(t, StaleSessions([]domain.Session{s}, limit(60), now), 1)
}

func TestRemainingMinutes(t *testing.T) {
	assert.Equal(t, int64(-1), RemainingMinutes(nil, 100))
	assert.Equal(t, int64(15), RemainingMinutes(limit(60), 45))
	assert.Equal(t, int64(0), RemainingMinutes(limit(60), 60))
	assert.Equal(t, int64(0), RemainingMinutes(limit(60), 75), "never negative")
}
