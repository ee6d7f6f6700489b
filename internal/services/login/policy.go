package login

import (
	"time"

	"github.com/BariVakhidov/academyhub/internal/domain/models"
)

type SecurityConfig struct {
	MaxAttempts     int           `yaml:"max_attempts" validate:"gt=0"`
	LockoutDuration time.Duration `yaml:"lockout_duration" validate:"gt=0"`
	AttemptWindow   time.Duration `yaml:"attempt_window" validate:"gt=0"`
}

func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		MaxAttempts:     5,
		LockoutDuration: 15 * time.Minute,
		AttemptWindow:   15 * time.Minute,
	}
}

// IsLocked reports whether the record has exhausted its attempts and the lockout has not yet elapsed.
func IsLocked(record models.AttemptRecord, now time.Time, cfg SecurityConfig) bool {
	return record.Count >= cfg.MaxAttempts && now.Sub(record.Timestamp) < cfg.LockoutDuration
}

// RemainingLockout is zero when the record is not locked.
func RemainingLockout(record models.AttemptRecord, now time.Time, cfg SecurityConfig) time.Duration {
	if !IsLocked(record, now, cfg) {
		return 0
	}

	return cfg.LockoutDuration - now.Sub(record.Timestamp)
}

// RecordFailure restarts the counter at 1 once the attempt window has expired.
func RecordFailure(record models.AttemptRecord, now time.Time, cfg SecurityConfig) models.AttemptRecord {
	if now.Sub(record.Timestamp) > cfg.AttemptWindow {
		return models.AttemptRecord{Timestamp: now, Count: 1}
	}

	return models.AttemptRecord{Timestamp: now, Count: record.Count + 1}
}

func RecordSuccess(now time.Time) models.AttemptRecord {
	return models.AttemptRecord{Timestamp: now, Count: 0}
}

func RemainingAttempts(record models.AttemptRecord, cfg SecurityConfig) int {
	return max(0, cfg.MaxAttempts-record.Count)
}
