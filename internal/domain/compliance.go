package domain

import (
	"time"

	"github.com/google/uuid"

	"comptrack/pkg/email"
)

// ComplianceStatus is the stored, assignment-level status. It is written by
// the submission/review workflow and read as-is here; the derivation layer
// never mutates it.
type ComplianceStatus string

const (
	CompliancePending   ComplianceStatus = "PENDING"
	ComplianceSubmitted ComplianceStatus = "SUBMITTED"
	ComplianceApproved  ComplianceStatus = "APPROVED"
	ComplianceRejected  ComplianceStatus = "REJECTED"
	ComplianceOverdue   ComplianceStatus = "OVERDUE"
)

// ApprovalStatus is the review state of a single uploaded evidence file.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// SummaryStatus buckets a requirement for the dashboard counters.
type SummaryStatus string

const (
	SummaryNA        SummaryStatus = "NA"
	SummaryCompliant SummaryStatus = "COMPLIANT"
	SummaryPending   SummaryStatus = "PENDING"
	SummaryOverdue   SummaryStatus = "OVERDUE"
)

// CalendarStatus buckets a requirement for the calendar and detail views.
// It differs from SummaryStatus in surfacing in-flight review work
// (FOR_APPROVAL) so specialists can triage pending submissions.
type CalendarStatus string

const (
	CalendarNA          CalendarStatus = "NA"
	CalendarForApproval CalendarStatus = "FOR_APPROVAL"
	CalendarPending     CalendarStatus = "PENDING"
	CalendarOverdue     CalendarStatus = "OVERDUE"
	CalendarComplied    CalendarStatus = "COMPLIED"
)

// Role identifies what a user is trusted to do. Only SuperAdmin and
// Specialist may read the dashboard aggregates.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleSpecialist Role = "specialist"
	RolePIC        Role = "pic"
)

// User is a PIC or staff member. Storage of the full user record lives in
// the persistence collaborator; only the fields reminders and calendar
// entries need are carried here.
type User struct {
	ID           uuid.UUID
	EmployeeName string
	Email        string
	Role         Role
}

// DisplayName returns the employee name, falling back to a name derived
// from the email local part when HR has not filled one in.
func (u User) DisplayName() string {
	if u.EmployeeName != "" {
		return u.EmployeeName
	}
	return email.DisplayName(u.Email)
}

// Agency groups requirements. Code is the short external identifier
// (e.g. "BIR") used by the per-agency breakdown.
type Agency struct {
	ID     uuid.UUID
	Code   string
	Name   string
	Active bool
}

// Assignment links a requirement to the PIC responsible for it. PIC is nil
// when nobody has been assigned yet; that is expected data, not an error.
type Assignment struct {
	ID            uuid.UUID
	RequirementID uuid.UUID
	PIC           *User
	Deadline      *time.Time
	Status        ComplianceStatus
}

// Upload is one submitted evidence file. AssignmentID is nil for uploads
// submitted against the requirement directly.
type Upload struct {
	ID            uuid.UUID
	RequirementID uuid.UUID
	AssignmentID  *uuid.UUID
	Approval      ApprovalStatus
	UploadedAt    time.Time
}

// Requirement is the fact snapshot the derivation layer consumes: one
// regulatory requirement with its assignments and uploads as of evaluation
// time. A nil Deadline means the obligation is not applicable and the
// requirement never enters any compliance statistic.
type Requirement struct {
	ID          uuid.UUID
	Agency      Agency
	Name        string
	Category    string
	Deadline    *time.Time
	Assignments []Assignment
	Uploads     []Upload
}

// DueAssignment pairs an assignment with the name of the requirement it
// satisfies, as returned by deadline-window queries for the reminder run.
type DueAssignment struct {
	Assignment  Assignment
	Requirement string
}
