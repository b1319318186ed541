package policy

import (
	"time"

	"github.com/playwell/player-service/internal/domain"
)

// DayWindow returns the aggregation window for "today": local midnight of now
// up to now itself. Usage is measured only to the current instant, never
// projected to end of day. The process-wide local clock is authoritative;
// there is no per-player timezone.
func DayWindow(now time.Time) (start, end time.Time) {
	start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, now
}

// SessionMinutes returns the whole-minute duration of a session at the given
// instant. An open session is measured against now; a closed one against its
// logout timestamp. Fractions of a minute are truncated per session.
func SessionMinutes(s *domain.Session, now time.Time) int64 {
	end := now
	if s.LogoutTime != nil {
		end = *s.LogoutTime
	}
	d := end.Sub(s.LoginTime)
	if d < 0 {
		return 0
	}
	return int64(d / time.Minute)
}

// DailyUsageMinutes aggregates play time across sessions: each session's
// duration is floored to whole minutes first, then the minutes are summed.
// The order matters at limit boundaries and must not be changed to
// sum-then-floor.
func DailyUsageMinutes(sessions []domain.Session, now time.Time) int64 {
	var total int64
	for i := range sessions {
		total += SessionMinutes(&sessions[i], now)
	}
	return total
}

// AdmissionResult holds the outcome of a login admission check.
type AdmissionResult struct {
	Allowed      bool  `json:"allowed"`
	UsedMinutes  int64 `json:"used_minutes"`
	LimitMinutes int32 `json:"limit_minutes,omitempty"`
}

// EvaluateAdmission decides whether a new session may start. A nil limit
// grants admission unconditionally. Otherwise admission is denied once
// usedMinutes >= limit, so a limit of 0 blocks every login regardless of
// accumulated usage.
func EvaluateAdmission(limit *int32, usedMinutes int64) AdmissionResult {
	if limit == nil {
		return AdmissionResult{Allowed: true, UsedMinutes: usedMinutes}
	}
	return AdmissionResult{
		Allowed:      usedMinutes < int64(*limit),
		UsedMinutes:  usedMinutes,
		LimitMinutes: *limit,
	}
}

// StaleSessions returns the active sessions whose own elapsed minutes have
// reached the limit and should be force-closed during reconciliation. With no
// configured limit there is nothing to reconcile.
func StaleSessions(active []domain.Session, limit *int32, now time.Time) []domain.Session {
	if limit == nil {
		return nil
	}
	var stale []domain.Session
	for i := range active {
		if SessionMinutes(&active[i], now) >= int64(*limit) {
			stale = append(stale, active[i])
		}
	}
	return stale
}

// RemainingMinutes returns how many whole minutes of play are left today, or
// -1 for an unlimited player. Never negative for a limited player.
func RemainingMinutes(limit *int32, usedMinutes int64) int64 {
	if limit == nil {
		return -1
	}
	remaining := int64(*limit) - usedMinutes
	if remaining < 0 {
		return 0
	}
	return remaining
}
