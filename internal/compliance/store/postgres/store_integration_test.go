//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comptrack/internal/domain"
	"comptrack/pkg/testutil/containers"
)

const schema = `
CREATE TABLE agencies (
	id UUID PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE TABLE users (
	id UUID PRIMARY KEY,
	employee_name TEXT,
	email TEXT,
	role TEXT
);
CREATE TABLE requirements (
	id UUID PRIMARY KEY,
	agency_id UUID NOT NULL REFERENCES agencies(id),
	name TEXT NOT NULL,
	category TEXT,
	deadline DATE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE requirement_assignments (
	id UUID PRIMARY KEY,
	requirement_id UUID NOT NULL REFERENCES requirements(id),
	assigned_to_user_id UUID REFERENCES users(id),
	deadline TIMESTAMPTZ,
	compliance_status TEXT NOT NULL DEFAULT 'PENDING',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE uploads (
	id UUID PRIMARY KEY,
	requirement_id UUID NOT NULL REFERENCES requirements(id),
	assignment_id UUID REFERENCES requirement_assignments(id),
	approval_status TEXT NOT NULL DEFAULT 'PENDING',
	uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

func setup(t *testing.T) (*Store, *sql.DB, func()) {
	t.Helper()
	pc := containers.NewPostgresContainer(t)

	if _, err := pc.DB.Exec(schema); err != nil {
		pc.Terminate(t)
		t.Fatalf("failed to create schema: %v", err)
	}
	return New(pc.DB), pc.DB, func() { pc.Terminate(t) }
}

func seed(t *testing.T, db *sql.DB) (agencyID, reqID, userID uuid.UUID) {
	t.Helper()
	agencyID, reqID, userID = uuid.New(), uuid.New(), uuid.New()

	_, err := db.Exec(`INSERT INTO agencies (id, code, name) VALUES ($1, 'BIR', 'Bureau of Internal Revenue')`, agencyID)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (id, employee_name, email, role) VALUES ($1, 'Maria Santos', 'maria.santos@example.gov', 'pic')`, userID)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO requirements (id, agency_id, name, category, deadline) VALUES ($1, $2, 'Quarterly Tax Filing', 'tax', '2024-06-08')`, reqID, agencyID)
	require.NoError(t, err)
	return agencyID, reqID, userID
}

func TestStore_Requirements(t *testing.T) {
	store, db, teardown := setup(t)
	defer teardown()

	_, reqID, userID := seed(t, db)

	assignmentID := uuid.New()
	_, err := db.Exec(`INSERT INTO requirement_assignments (id, requirement_id, assigned_to_user_id, deadline, compliance_status)
		VALUES ($1, $2, $3, '2024-06-08T00:00:00Z', 'SUBMITTED')`, assignmentID, reqID, userID)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO uploads (id, requirement_id, assignment_id, approval_status)
		VALUES ($1, $2, $3, 'PENDING')`, uuid.New(), reqID, assignmentID)
	require.NoError(t, err)

	// A second requirement with no deadline and no children, created later
	// so snapshot order is stable.
	_, err = db.Exec(`INSERT INTO requirements (id, agency_id, name, created_at)
		SELECT $1, agency_id, 'Data Privacy Seminar', now() + interval '1 second' FROM requirements WHERE id = $2`, uuid.New(), reqID)
	require.NoError(t, err)

	reqs, err := store.Requirements(context.Background())
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	first := reqs[0]
	assert.Equal(t, "Quarterly Tax Filing", first.Name)
	assert.Equal(t, "BIR", first.Agency.Code)
	require.NotNil(t, first.Deadline)
	assert.Equal(t, "2024-06-08", first.Deadline.Format("2006-01-02"))
	require.Len(t, first.Assignments, 1)
	assert.Equal(t, domain.ComplianceSubmitted, first.Assignments[0].Status)
	require.NotNil(t, first.Assignments[0].PIC)
	assert.Equal(t, "maria.santos@example.gov", first.Assignments[0].PIC.Email)
	require.Len(t, first.Uploads, 1)
	assert.Equal(t, domain.ApprovalPending, first.Uploads[0].Approval)

	second := reqs[1]
	assert.Nil(t, second.Deadline)
	assert.Empty(t, second.Assignments)
	assert.Empty(t, second.Uploads)
}

func TestStore_CountAgencies(t *testing.T) {
	store, db, teardown := setup(t)
	defer teardown()

	seed(t, db)
	_, err := db.Exec(`INSERT INTO agencies (id, code, name) VALUES ($1, 'SEC', 'Securities and Exchange Commission')`, uuid.New())
	require.NoError(t, err)

	count, err := store.CountAgencies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStore_AssignmentsDueOn(t *testing.T) {
	store, db, teardown := setup(t)
	defer teardown()

	_, reqID, userID := seed(t, db)

	// Due on target, not approved: selected even with a time-of-day deadline.
	_, err := db.Exec(`INSERT INTO requirement_assignments (id, requirement_id, assigned_to_user_id, deadline, compliance_status)
		VALUES ($1, $2, $3, '2024-06-08T17:30:00Z', 'PENDING')`, uuid.New(), reqID, userID)
	require.NoError(t, err)
	// Approved: terminal, never selected.
	_, err = db.Exec(`INSERT INTO requirement_assignments (id, requirement_id, assigned_to_user_id, deadline, compliance_status)
		VALUES ($1, $2, $3, '2024-06-08T00:00:00Z', 'APPROVED')`, uuid.New(), reqID, userID)
	require.NoError(t, err)
	// Different date: not selected.
	_, err = db.Exec(`INSERT INTO requirement_assignments (id, requirement_id, deadline, compliance_status)
		VALUES ($1, $2, '2024-06-09T00:00:00Z', 'PENDING')`, uuid.New(), reqID)
	require.NoError(t, err)
	// Due but unassigned: selected, PIC nil; the scheduler skips it.
	_, err = db.Exec(`INSERT INTO requirement_assignments (id, requirement_id, deadline, compliance_status)
		VALUES ($1, $2, '2024-06-08T00:00:00Z', 'OVERDUE')`, uuid.New(), reqID)
	require.NoError(t, err)

	due, err := store.AssignmentsDueOn(context.Background(), time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, due, 2)

	var withPIC, withoutPIC int
	for i, d := range due {
		assert.Equal(t, "Quarterly Tax Filing", d.Requirement)
		if d.Assignment.PIC != nil {
			withPIC = i
		} else {
			withoutPIC++
		}
	}
	assert.Equal(t, 1, withoutPIC, "the unassigned due row is still selected")
	assert.Equal(t, "maria.santos@example.gov", due[withPIC].Assignment.PIC.Email)
}
