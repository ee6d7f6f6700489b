package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditEvent describes one login outcome for the audit stream.
type AuditEvent struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	Outcome    string    `json:"outcome"`
	Username   string    `json:"username,omitempty"`
	Attempts   int       `json:"attempts"`
	OccurredAt time.Time `json:"occurred_at"`
}
