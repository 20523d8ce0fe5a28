package models

import "time"

// AuditEvent is an append-only record of a security-relevant action.
// ActorID is empty for unauthenticated events (e.g. failed logins).
type AuditEvent struct {
	ID        int64
	ActorID   string
	Action    string
	Target    string
	Detail    string
	CreatedAt time.Time
}
