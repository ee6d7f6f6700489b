package models

import "time"

// AttemptRecord is the rolling failed-login counter owned by a single login session.
type AttemptRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count"`
}
