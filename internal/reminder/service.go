// Package reminder implements the daily deadline-reminder batch. For each
// fixed day offset it finds assignments due exactly that many days out and
// hands one notice per assignment to the notification dispatcher.
package reminder

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"comptrack/internal/audit"
	"comptrack/internal/domain"
	"comptrack/internal/notify"
	"comptrack/internal/reminder/ledger"
	"comptrack/internal/reminder/metrics"
	dErrors "comptrack/pkg/domain-errors"
)

// Offsets are the days-before-deadline at which a PIC is reminded,
// evaluated in this order on every run.
var Offsets = []int{30, 14, 7, 1}

// Store returns assignments whose deadline falls exactly on the given date
// (date-only comparison) and whose compliance status is not APPROVED.
// Approval is terminal: an approved assignment never receives another
// reminder regardless of remaining offsets.
type Store interface {
	AssignmentsDueOn(ctx context.Context, date time.Time) ([]domain.DueAssignment, error)
}

// AuditPublisher records reminder outcomes for the activity feed.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the reminder scheduler. It holds no clock; the evaluation
// date is an explicit parameter of Run so the offset math is testable
// without touching the host clock.
type Service struct {
	store      Store
	dispatcher notify.Dispatcher
	ledger     ledger.Ledger
	auditor    AuditPublisher
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLedger enables the sent-ledger. Without one, re-running the
// scheduler on the same day resends every reminder (the behavior of the
// system this replaces); with one, a same-day re-run is a no-op per
// already-sent notice.
func WithLedger(l ledger.Ledger) Option {
	return func(s *Service) { s.ledger = l }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.auditor = p }
}

// New constructs the scheduler.
func New(store Store, dispatcher notify.Dispatcher, opts ...Option) *Service {
	s := &Service{store: store, dispatcher: dispatcher, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one reminder pass for the given evaluation date. A store
// failure aborts the run; a dispatch failure is logged and the pass
// continues with the next notice. Intended cadence is once per calendar
// day — Run itself provides no mutual exclusion against overlapping
// invocations.
func (s *Service) Run(ctx context.Context, today time.Time) error {
	today = dateOnly(today)

	for _, offset := range Offsets {
		target := today.AddDate(0, 0, offset)

		due, err := s.store.AssignmentsDueOn(ctx, target)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load due assignments")
		}

		for _, d := range due {
			s.process(ctx, d, offset, target)
		}
	}
	return nil
}

func (s *Service) process(ctx context.Context, due domain.DueAssignment, offset int, target time.Time) {
	pic := due.Assignment.PIC
	if pic == nil || pic.Email == "" {
		// Unassigned or incomplete records are expected, not errors.
		s.logger.Debug("skipping assignment without recipient",
			"assignment_id", due.Assignment.ID,
			"requirement", due.Requirement,
		)
		s.incSkipped("no_recipient")
		return
	}

	key := ledger.Key{AssignmentID: due.Assignment.ID, OffsetDays: offset, TargetDate: target}
	if s.ledger != nil {
		sent, err := s.ledger.AlreadySent(ctx, key)
		if err != nil {
			// A broken ledger degrades to duplicate sends, never to
			// suppressed reminders.
			s.logger.Warn("ledger lookup failed, sending anyway",
				"assignment_id", due.Assignment.ID, "error", err)
		} else if sent {
			s.incSkipped("already_sent")
			return
		}
	}

	msg := buildMessage(due, *pic, offset)
	if err := s.dispatcher.Send(ctx, msg); err != nil {
		s.logger.Error("reminder dispatch failed",
			"recipient", pic.Email,
			"requirement", due.Requirement,
			"offset_days", offset,
			"error", err,
		)
		s.incFailed(offset)
		s.emitAudit(ctx, audit.ActionReminderFailed, due, pic.Email, offset)
		return
	}

	s.logger.Info("reminder sent",
		"recipient", pic.Email,
		"requirement", due.Requirement,
		"offset_days", offset,
	)
	s.incSent(offset)
	s.emitAudit(ctx, audit.ActionReminderSent, due, pic.Email, offset)

	if s.ledger != nil {
		if err := s.ledger.MarkSent(ctx, key); err != nil {
			s.logger.Warn("ledger mark failed",
				"assignment_id", due.Assignment.ID, "error", err)
		}
	}
}

func buildMessage(due domain.DueAssignment, pic domain.User, offset int) notify.Message {
	deadline := "Not set"
	if due.Assignment.Deadline != nil {
		deadline = due.Assignment.Deadline.Format("January 2, 2006")
	}
	status := due.Assignment.Status
	if status == "" {
		status = domain.CompliancePending
	}

	return notify.Message{
		To:         pic.Email,
		Subject:    subject(offset),
		TemplateID: notify.TemplateComplianceReminder,
		Data: map[string]string{
			"pic":         pic.DisplayName(),
			"requirement": due.Requirement,
			"deadline":    deadline,
			"days_left":   daysLeft(offset),
			"status":      string(status),
		},
	}
}

func subject(offset int) string {
	if offset == 1 {
		return "Compliance deadline reminder (24 hours)"
	}
	return "Compliance deadline reminder (D-" + strconv.Itoa(offset) + ")"
}

func daysLeft(offset int) string {
	if offset == 1 {
		return "24 hours"
	}
	return "D-" + strconv.Itoa(offset)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (s *Service) emitAudit(ctx context.Context, action audit.Action, due domain.DueAssignment, recipient string, offset int) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Action:  action,
		Actor:   "scheduler",
		Subject: due.Requirement,
		Detail: map[string]string{
			"recipient":   recipient,
			"offset_days": strconv.Itoa(offset),
		},
	})
	if err != nil {
		s.logger.Warn("audit emit failed", "action", action, "error", err)
	}
}

func (s *Service) incSent(offset int) {
	if s.metrics != nil {
		s.metrics.IncSent(offset)
	}
}

func (s *Service) incFailed(offset int) {
	if s.metrics != nil {
		s.metrics.IncFailed(offset)
	}
}

func (s *Service) incSkipped(reason string) {
	if s.metrics != nil {
		s.metrics.IncSkipped(reason)
	}
}
