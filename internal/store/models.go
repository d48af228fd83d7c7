package store

import "time"

// Reminder is a user-scheduled task polled by the background scheduler.
type Reminder struct {
	ID          int64
	ChatID      string
	Description string
	IntervalSec int
}

// AuditRecord is the append-only trace of one completed (or failed) action.
// It doubles as the action_completed event payload so the audit sink stays a
// pure bus observer.
type AuditRecord struct {
	ID         string
	ChatID     string
	Capability string
	Params     string
	Outcome    string
	Result     string
	Timestamp  time.Time
}
