// Package audit records notable compliance actions for the dashboard
// activity feed and, when configured, mirrors them to the audit topic.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action names an auditable event. Values are stable identifiers consumed
// by the activity feed and downstream consumers.
type Action string

const (
	ActionReminderSent   Action = "reminder.sent"
	ActionReminderFailed Action = "reminder.dispatch_failed"
)

// Event is one audit record. Detail carries action-specific context
// (recipient, requirement, offset) with string values only so the event
// serializes the same everywhere.
type Event struct {
	ID        uuid.UUID         `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Action    Action            `json:"action"`
	Actor     string            `json:"actor"`
	Subject   string            `json:"subject"`
	Detail    map[string]string `json:"detail,omitempty"`
}

// Store persists audit events and serves the recent-activity read side.
type Store interface {
	Append(ctx context.Context, event Event) error
	Recent(ctx context.Context, limit int) ([]Event, error)
}
