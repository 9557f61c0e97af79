package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comptrack/internal/audit"
	"comptrack/internal/domain"
	"comptrack/internal/notify"
	"comptrack/internal/reminder/ledger"
	dErrors "comptrack/pkg/domain-errors"
)

// fakeStore serves due assignments keyed by target date, mimicking the
// store contract: APPROVED assignments are never returned.
type fakeStore struct {
	due     map[string][]domain.DueAssignment
	queried []string
	err     error
}

func (f *fakeStore) AssignmentsDueOn(_ context.Context, date time.Time) ([]domain.DueAssignment, error) {
	if f.err != nil {
		return nil, f.err
	}
	day := date.Format("2006-01-02")
	f.queried = append(f.queried, day)
	return f.due[day], nil
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dueOn(s string, pic *domain.User) domain.DueAssignment {
	dl := date(s)
	return domain.DueAssignment{
		Assignment: domain.Assignment{
			ID:       uuid.New(),
			PIC:      pic,
			Deadline: &dl,
			Status:   domain.CompliancePending,
		},
		Requirement: "Annual Fire Safety Inspection",
	}
}

func maria() *domain.User {
	return &domain.User{ID: uuid.New(), EmployeeName: "Maria Santos", Email: "maria.santos@example.gov"}
}

func TestRun_OffsetMath(t *testing.T) {
	store := &fakeStore{due: map[string][]domain.DueAssignment{
		"2024-06-08": {dueOn("2024-06-08", maria())},
	}}
	dispatcher := notify.NewRecorder()
	svc := New(store, dispatcher)

	require.NoError(t, svc.Run(context.Background(), date("2024-06-01")))

	assert.Equal(t, []string{"2024-07-01", "2024-06-15", "2024-06-08", "2024-06-02"}, store.queried,
		"one query per offset, in offset order")

	sent := dispatcher.Sent()
	require.Len(t, sent, 1, "deadline seven days out matches offset 7 and no other")
	assert.Equal(t, "maria.santos@example.gov", sent[0].To)
	assert.Equal(t, "Compliance deadline reminder (D-7)", sent[0].Subject)
	assert.Equal(t, notify.TemplateComplianceReminder, sent[0].TemplateID)
	assert.Equal(t, "Maria Santos", sent[0].Data["pic"])
	assert.Equal(t, "Annual Fire Safety Inspection", sent[0].Data["requirement"])
	assert.Equal(t, "June 8, 2024", sent[0].Data["deadline"])
	assert.Equal(t, "D-7", sent[0].Data["days_left"])
	assert.Equal(t, "PENDING", sent[0].Data["status"])
}

func TestRun_EveOfDeadlineSubject(t *testing.T) {
	store := &fakeStore{due: map[string][]domain.DueAssignment{
		"2024-06-02": {dueOn("2024-06-02", maria())},
	}}
	dispatcher := notify.NewRecorder()
	svc := New(store, dispatcher)

	require.NoError(t, svc.Run(context.Background(), date("2024-06-01")))

	sent := dispatcher.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Compliance deadline reminder (24 hours)", sent[0].Subject)
	assert.Equal(t, "24 hours", sent[0].Data["days_left"])
}

func TestRun_TimeOfDayIgnored(t *testing.T) {
	store := &fakeStore{due: map[string][]domain.DueAssignment{}}
	svc := New(store, notify.NewRecorder())

	// A mid-afternoon invocation targets the same dates as midnight.
	afternoon := date("2024-06-01").Add(15*time.Hour + 42*time.Minute)
	require.NoError(t, svc.Run(context.Background(), afternoon))

	assert.Equal(t, []string{"2024-07-01", "2024-06-15", "2024-06-08", "2024-06-02"}, store.queried)
}

func TestRun_SkipsAssignmentsWithoutRecipient(t *testing.T) {
	noUser := dueOn("2024-06-08", nil)
	noEmail := dueOn("2024-06-08", &domain.User{ID: uuid.New(), EmployeeName: "Jose Rizal"})

	store := &fakeStore{due: map[string][]domain.DueAssignment{
		"2024-06-08": {noUser, noEmail},
	}}
	dispatcher := notify.NewRecorder()
	svc := New(store, dispatcher)

	require.NoError(t, svc.Run(context.Background(), date("2024-06-01")),
		"recipient-less assignments are skipped silently, not errors")
	assert.Empty(t, dispatcher.Sent())
}

func TestRun_DispatchFailureDoesNotAbort(t *testing.T) {
	broken := &domain.User{ID: uuid.New(), Email: "bounce@example.gov"}

	store := &fakeStore{due: map[string][]domain.DueAssignment{
		"2024-07-01": {dueOn("2024-07-01", broken)},
		"2024-06-08": {dueOn("2024-06-08", maria())},
	}}
	dispatcher := notify.NewRecorder()
	dispatcher.FailFor("bounce@example.gov", errors.New("mailbox unavailable"))
	svc := New(store, dispatcher)

	require.NoError(t, svc.Run(context.Background(), date("2024-06-01")),
		"a dispatch failure must not abort the batch")

	sent := dispatcher.Sent()
	require.Len(t, sent, 1, "later offsets still processed after a failure")
	assert.Equal(t, "maria.santos@example.gov", sent[0].To)
}

func TestRun_StoreFailureIsFatal(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	svc := New(store, notify.NewRecorder())

	err := svc.Run(context.Background(), date("2024-06-01"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestRun_LedgerMakesRerunIdempotent(t *testing.T) {
	store := &fakeStore{due: map[string][]domain.DueAssignment{
		"2024-06-08": {dueOn("2024-06-08", maria())},
	}}
	dispatcher := notify.NewRecorder()
	svc := New(store, dispatcher, WithLedger(ledger.NewInMemory()))

	require.NoError(t, svc.Run(context.Background(), date("2024-06-01")))
	require.NoError(t, svc.Run(context.Background(), date("2024-06-01")))

	assert.Len(t, dispatcher.Sent(), 1, "same-day re-run sends nothing new")
}

func TestRun_WithoutLedgerRerunResends(t *testing.T) {
	store := &fakeStore{due: map[string][]domain.DueAssignment{
		"2024-06-08": {dueOn("2024-06-08", maria())},
	}}
	dispatcher := notify.NewRecorder()
	svc := New(store, dispatcher)

	require.NoError(t, svc.Run(context.Background(), date("2024-06-01")))
	require.NoError(t, svc.Run(context.Background(), date("2024-06-01")))

	assert.Len(t, dispatcher.Sent(), 2, "duplicate sends without a ledger are the documented behavior")
}

type brokenLedger struct{}

func (brokenLedger) AlreadySent(context.Context, ledger.Key) (bool, error) {
	return false, errors.New("redis down")
}
func (brokenLedger) MarkSent(context.Context, ledger.Key) error {
	return errors.New("redis down")
}

func TestRun_BrokenLedgerStillSends(t *testing.T) {
	store := &fakeStore{due: map[string][]domain.DueAssignment{
		"2024-06-08": {dueOn("2024-06-08", maria())},
	}}
	dispatcher := notify.NewRecorder()
	svc := New(store, dispatcher, WithLedger(brokenLedger{}))

	require.NoError(t, svc.Run(context.Background(), date("2024-06-01")))
	assert.Len(t, dispatcher.Sent(), 1, "ledger failures never suppress reminders")
}

func TestRun_EmitsAuditEvents(t *testing.T) {
	store := &fakeStore{due: map[string][]domain.DueAssignment{
		"2024-06-08": {dueOn("2024-06-08", maria())},
	}}
	auditStore := audit.NewInMemoryStore()
	pub := audit.NewPublisher(auditStore)
	defer pub.Close()

	svc := New(store, notify.NewRecorder(), WithAuditPublisher(pub))
	require.NoError(t, svc.Run(context.Background(), date("2024-06-01")))

	events, err := auditStore.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionReminderSent, events[0].Action)
	assert.Equal(t, "maria.santos@example.gov", events[0].Detail["recipient"])
	assert.Equal(t, "7", events[0].Detail["offset_days"])
}
