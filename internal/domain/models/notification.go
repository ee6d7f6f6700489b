package models

import "time"

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarn    Severity = "warn"
	SeverityError   Severity = "error"
)

type Notification struct {
	Severity Severity
	Summary  string
	Detail   string
	Lifetime time.Duration
}
