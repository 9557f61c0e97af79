// Package postgres implements the fact-snapshot store against the
// compliance schema. Snapshots are assembled from three queries
// (requirements, assignments, uploads) inside one read; nothing here
// writes back derived state.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"comptrack/internal/domain"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects with lib/pq and verifies the connection.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Requirements loads every requirement with its agency, assignments, and
// uploads, ordered by creation so calendar accumulation is stable.
func (s *Store) Requirements(ctx context.Context) ([]domain.Requirement, error) {
	const reqQuery = `
		SELECT r.id, r.name, r.category, r.deadline,
		       a.id, a.code, a.name, a.is_active
		FROM requirements r
		JOIN agencies a ON a.id = r.agency_id
		ORDER BY r.created_at, r.id`

	rows, err := s.db.QueryContext(ctx, reqQuery)
	if err != nil {
		return nil, fmt.Errorf("query requirements: %w", err)
	}
	defer rows.Close()

	var (
		reqs  []domain.Requirement
		index = make(map[uuid.UUID]int)
		ids   []uuid.UUID
	)
	for rows.Next() {
		var (
			req      domain.Requirement
			deadline sql.NullTime
			category sql.NullString
		)
		err := rows.Scan(&req.ID, &req.Name, &category, &deadline,
			&req.Agency.ID, &req.Agency.Code, &req.Agency.Name, &req.Agency.Active)
		if err != nil {
			return nil, fmt.Errorf("scan requirement: %w", err)
		}
		req.Category = category.String
		if deadline.Valid {
			dl := deadline.Time
			req.Deadline = &dl
		}
		index[req.ID] = len(reqs)
		ids = append(ids, req.ID)
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requirements: %w", err)
	}
	if len(reqs) == 0 {
		return reqs, nil
	}

	if err := s.attachAssignments(ctx, reqs, index, ids); err != nil {
		return nil, err
	}
	if err := s.attachUploads(ctx, reqs, index, ids); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (s *Store) attachAssignments(ctx context.Context, reqs []domain.Requirement, index map[uuid.UUID]int, ids []uuid.UUID) error {
	const query = `
		SELECT a.id, a.requirement_id, a.deadline, a.compliance_status,
		       u.id, u.employee_name, u.email, u.role
		FROM requirement_assignments a
		LEFT JOIN users u ON u.id = a.assigned_to_user_id
		WHERE a.requirement_id = ANY($1)
		ORDER BY a.created_at, a.id`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return err
		}
		i, ok := index[a.RequirementID]
		if !ok {
			continue
		}
		reqs[i].Assignments = append(reqs[i].Assignments, a)
	}
	return rows.Err()
}

func (s *Store) attachUploads(ctx context.Context, reqs []domain.Requirement, index map[uuid.UUID]int, ids []uuid.UUID) error {
	const query = `
		SELECT id, requirement_id, assignment_id, approval_status, uploaded_at
		FROM uploads
		WHERE requirement_id = ANY($1)
		ORDER BY uploaded_at, id`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("query uploads: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			up           domain.Upload
			assignmentID uuid.NullUUID
			approval     string
		)
		if err := rows.Scan(&up.ID, &up.RequirementID, &assignmentID, &approval, &up.UploadedAt); err != nil {
			return fmt.Errorf("scan upload: %w", err)
		}
		if assignmentID.Valid {
			id := assignmentID.UUID
			up.AssignmentID = &id
		}
		up.Approval = domain.ApprovalStatus(approval)
		i, ok := index[up.RequirementID]
		if !ok {
			continue
		}
		reqs[i].Uploads = append(reqs[i].Uploads, up)
	}
	return rows.Err()
}

// CountAgencies counts all registered agencies, including those without
// requirements.
func (s *Store) CountAgencies(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM agencies`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count agencies: %w", err)
	}
	return count, nil
}

// AssignmentsDueOn returns assignments due exactly on the given date
// (date-only comparison) that are not yet approved, with the requirement
// name attached for the reminder notice.
func (s *Store) AssignmentsDueOn(ctx context.Context, date time.Time) ([]domain.DueAssignment, error) {
	const query = `
		SELECT a.id, a.requirement_id, a.deadline, a.compliance_status,
		       u.id, u.employee_name, u.email, u.role,
		       r.name
		FROM requirement_assignments a
		JOIN requirements r ON r.id = a.requirement_id
		LEFT JOIN users u ON u.id = a.assigned_to_user_id
		WHERE a.deadline::date = $1::date
		  AND a.compliance_status <> 'APPROVED'
		ORDER BY a.created_at, a.id`

	rows, err := s.db.QueryContext(ctx, query, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("query due assignments: %w", err)
	}
	defer rows.Close()

	var due []domain.DueAssignment
	for rows.Next() {
		var (
			a           domain.Assignment
			deadline    sql.NullTime
			status      string
			userID      uuid.NullUUID
			employee    sql.NullString
			emailAddr   sql.NullString
			role        sql.NullString
			requirement string
		)
		err := rows.Scan(&a.ID, &a.RequirementID, &deadline, &status,
			&userID, &employee, &emailAddr, &role, &requirement)
		if err != nil {
			return nil, fmt.Errorf("scan due assignment: %w", err)
		}
		if deadline.Valid {
			dl := deadline.Time
			a.Deadline = &dl
		}
		a.Status = domain.ComplianceStatus(status)
		if userID.Valid {
			a.PIC = &domain.User{
				ID:           userID.UUID,
				EmployeeName: employee.String,
				Email:        emailAddr.String,
				Role:         domain.Role(role.String),
			}
		}
		due = append(due, domain.DueAssignment{Assignment: a, Requirement: requirement})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due assignments: %w", err)
	}
	return due, nil
}

func scanAssignment(rows *sql.Rows) (domain.Assignment, error) {
	var (
		a         domain.Assignment
		deadline  sql.NullTime
		status    string
		userID    uuid.NullUUID
		employee  sql.NullString
		emailAddr sql.NullString
		role      sql.NullString
	)
	err := rows.Scan(&a.ID, &a.RequirementID, &deadline, &status,
		&userID, &employee, &emailAddr, &role)
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("scan assignment: %w", err)
	}
	if deadline.Valid {
		dl := deadline.Time
		a.Deadline = &dl
	}
	a.Status = domain.ComplianceStatus(status)
	if userID.Valid {
		a.PIC = &domain.User{
			ID:           userID.UUID,
			EmployeeName: employee.String,
			Email:        emailAddr.String,
			Role:         domain.Role(role.String),
		}
	}
	return a, nil
}
