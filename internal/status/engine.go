// Package status is the single source of truth for deriving compliance
// status from requirement facts. Every surface that needs a status — the
// dashboard counters, the per-agency breakdown, the calendar — calls into
// this package rather than re-deriving its own rules, so the views cannot
// silently disagree.
package status

import "comptrack/internal/domain"

// Summary buckets a requirement for the dashboard and per-agency counters.
// It answers "is the obligation met". Rules apply in order, first match
// wins:
//  1. No deadline: the obligation is not applicable.
//  2. No assignments: unfulfilled, but nobody is late yet.
//  3. Any assignment overdue: the whole requirement is overdue.
//  4. Every assignment approved: compliant.
//  5. Anything else is still pending.
func Summary(req domain.Requirement) domain.SummaryStatus {
	if req.Deadline == nil {
		return domain.SummaryNA
	}
	if len(req.Assignments) == 0 {
		return domain.SummaryPending
	}
	if anyAssignment(req, domain.ComplianceOverdue) {
		return domain.SummaryOverdue
	}
	if allAssignments(req, domain.ComplianceApproved) {
		return domain.SummaryCompliant
	}
	return domain.SummaryPending
}

// Calendar buckets a requirement for the calendar and detail views. It
// diverges from Summary by giving a pending upload precedence over every
// assignment-derived status, so specialists see in-flight review work
// distinctly and can triage it. Rules apply in order, first match wins.
func Calendar(req domain.Requirement) domain.CalendarStatus {
	if req.Deadline == nil {
		return domain.CalendarNA
	}
	for _, up := range req.Uploads {
		if up.Approval == domain.ApprovalPending {
			return domain.CalendarForApproval
		}
	}
	if len(req.Assignments) == 0 {
		return domain.CalendarPending
	}
	if anyAssignment(req, domain.ComplianceOverdue) {
		return domain.CalendarOverdue
	}
	if allAssignments(req, domain.ComplianceApproved) {
		return domain.CalendarComplied
	}
	return domain.CalendarPending
}

func anyAssignment(req domain.Requirement, s domain.ComplianceStatus) bool {
	for _, a := range req.Assignments {
		if a.Status == s {
			return true
		}
	}
	return false
}

func allAssignments(req domain.Requirement, s domain.ComplianceStatus) bool {
	for _, a := range req.Assignments {
		if a.Status != s {
			return false
		}
	}
	return true
}
