// Package ledger tracks which reminders have already gone out, keyed by
// (assignment, offset, target date). Without a ledger a same-day re-run of
// the scheduler resends every reminder; the ledger makes the run
// idempotent per day.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Key identifies one reminder send.
type Key struct {
	AssignmentID uuid.UUID
	OffsetDays   int
	TargetDate   time.Time
}

func (k Key) String() string {
	return fmt.Sprintf("reminder:%s:%d:%s", k.AssignmentID, k.OffsetDays, k.TargetDate.Format("2006-01-02"))
}

// Ledger records sends. AlreadySent errors must be treated as "not sent"
// by callers: a broken ledger degrades to duplicate sends, never to
// suppressed reminders.
type Ledger interface {
	AlreadySent(ctx context.Context, key Key) (bool, error)
	MarkSent(ctx context.Context, key Key) error
}

// InMemory is a process-local Ledger for tests and single-instance runs.
type InMemory struct {
	mu   sync.Mutex
	sent map[string]struct{}
}

func NewInMemory() *InMemory {
	return &InMemory{sent: make(map[string]struct{})}
}

func (l *InMemory) AlreadySent(_ context.Context, key Key) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.sent[key.String()]
	return ok, nil
}

func (l *InMemory) MarkSent(_ context.Context, key Key) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent[key.String()] = struct{}{}
	return nil
}
