// Package stats folds status derivations across many requirements into the
// dashboard aggregates: global counters, the per-agency breakdown, and the
// deadline calendar. The folds are pure; re-running them on an unchanged
// snapshot yields identical output.
package stats

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"comptrack/internal/domain"
	"comptrack/internal/status"
)

// GlobalCounts are the dashboard summary counters. ForApproval counts
// pending uploads independently of requirement status; ComplianceRate is
// the share of all requirements that are compliant, one decimal place.
type GlobalCounts struct {
	TotalAgencies     int     `json:"total_agencies"`
	TotalRequirements int     `json:"total_requirements"`
	Compliant         int     `json:"compliant"`
	Pending           int     `json:"pending"`
	Overdue           int     `json:"overdue"`
	ForApproval       int     `json:"for_approval"`
	ComplianceRate    float64 `json:"compliance_rate"`
}

// AgencyRow is one row of the per-agency breakdown. Rate is the
// assignment-level approval rate across the agency's requirements.
type AgencyRow struct {
	Agency   string  `json:"agency"`
	Name     string  `json:"name"`
	Total    int     `json:"total"`
	NA       int     `json:"na"`
	Pending  int     `json:"pending"`
	Overdue  int     `json:"overdue"`
	Complied int     `json:"complied"`
	Rate     float64 `json:"rate"`
}

// CalendarEntry is one requirement on its deadline date. PICs holds the
// distinct assignee display names in assignment order.
type CalendarEntry struct {
	ID     uuid.UUID             `json:"id"`
	Name   string                `json:"name"`
	Status domain.CalendarStatus `json:"status"`
	PICs   []string              `json:"pics"`
}

// Fold computes the global counters from a requirement snapshot and a
// separately sourced agency count. Requirements without a deadline count
// toward the total but land in no status bucket.
func Fold(reqs []domain.Requirement, totalAgencies int) GlobalCounts {
	counts := GlobalCounts{
		TotalAgencies:     totalAgencies,
		TotalRequirements: len(reqs),
	}

	for _, req := range reqs {
		switch status.Summary(req) {
		case domain.SummaryCompliant:
			counts.Compliant++
		case domain.SummaryPending:
			counts.Pending++
		case domain.SummaryOverdue:
			counts.Overdue++
		}
		for _, up := range req.Uploads {
			if up.Approval == domain.ApprovalPending {
				counts.ForApproval++
			}
		}
	}

	counts.ComplianceRate = rate(counts.Compliant, counts.TotalRequirements)
	return counts
}

// BreakdownByAgency buckets every requirement under its agency using the
// summary rules. Agencies whose requirements all lack a deadline carry no
// signal and are omitted entirely. Rows are ordered by agency code.
func BreakdownByAgency(reqs []domain.Requirement) []AgencyRow {
	rows := make(map[uuid.UUID]*AgencyRow)
	approved := make(map[uuid.UUID]int)
	assignments := make(map[uuid.UUID]int)
	order := make([]uuid.UUID, 0)

	for _, req := range reqs {
		row, ok := rows[req.Agency.ID]
		if !ok {
			row = &AgencyRow{Agency: req.Agency.Code, Name: req.Agency.Name}
			rows[req.Agency.ID] = row
			order = append(order, req.Agency.ID)
		}
		row.Total++

		switch status.Summary(req) {
		case domain.SummaryNA:
			row.NA++
		case domain.SummaryPending:
			row.Pending++
		case domain.SummaryOverdue:
			row.Overdue++
		case domain.SummaryCompliant:
			row.Complied++
		}

		assignments[req.Agency.ID] += len(req.Assignments)
		for _, a := range req.Assignments {
			if a.Status == domain.ComplianceApproved {
				approved[req.Agency.ID]++
			}
		}
	}

	out := make([]AgencyRow, 0, len(order))
	for _, agencyID := range order {
		row := rows[agencyID]
		if row.Total == row.NA {
			// Zero deadline-bearing requirements; the agency must not appear.
			continue
		}
		row.Rate = rate(approved[agencyID], assignments[agencyID])
		out = append(out, *row)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Agency < out[j].Agency })
	return out
}

// BuildCalendar indexes deadline-bearing requirements by their deadline
// date (requirement-level, not assignment-level). Requirements sharing a
// date accumulate in input order; PIC names are deduplicated in
// assignment order.
func BuildCalendar(reqs []domain.Requirement) map[string][]CalendarEntry {
	index := make(map[string][]CalendarEntry)

	for _, req := range reqs {
		if req.Deadline == nil {
			continue
		}
		day := req.Deadline.Format("2006-01-02")
		index[day] = append(index[day], CalendarEntry{
			ID:     req.ID,
			Name:   req.Name,
			Status: status.Calendar(req),
			PICs:   picNames(req.Assignments),
		})
	}

	return index
}

func picNames(assignments []domain.Assignment) []string {
	seen := make(map[string]struct{}, len(assignments))
	names := make([]string, 0, len(assignments))
	for _, a := range assignments {
		if a.PIC == nil {
			continue
		}
		name := a.PIC.DisplayName()
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}
