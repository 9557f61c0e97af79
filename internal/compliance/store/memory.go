// Package store provides fact-snapshot stores. The in-memory variant backs
// tests and local development; the postgres subpackage is the production
// persistence collaborator.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"comptrack/internal/domain"
)

// InMemory holds agencies and requirements (with nested assignments and
// uploads) behind a RWMutex. Reads return deep copies so callers get
// immutable snapshots.
type InMemory struct {
	mu           sync.RWMutex
	agencies     map[uuid.UUID]domain.Agency
	requirements []domain.Requirement
}

func NewInMemory() *InMemory {
	return &InMemory{agencies: make(map[uuid.UUID]domain.Agency)}
}

// PutAgency registers an agency. Agencies exist independently of
// requirements so the dashboard can count empty ones.
func (s *InMemory) PutAgency(agency domain.Agency) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agencies[agency.ID] = agency
}

// PutRequirement appends a requirement snapshot and registers its agency.
func (s *InMemory) PutRequirement(req domain.Requirement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agencies[req.Agency.ID] = req.Agency
	s.requirements = append(s.requirements, req)
}

// Requirements returns a fresh copy of every requirement with its
// assignments and uploads.
func (s *InMemory) Requirements(_ context.Context) ([]domain.Requirement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Requirement, len(s.requirements))
	for i, req := range s.requirements {
		out[i] = copyRequirement(req)
	}
	return out, nil
}

// CountAgencies returns the number of registered agencies.
func (s *InMemory) CountAgencies(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.agencies), nil
}

// AssignmentsDueOn returns assignments whose deadline falls on the given
// date (date-only comparison) and whose status is not APPROVED.
func (s *InMemory) AssignmentsDueOn(_ context.Context, date time.Time) ([]domain.DueAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	day := date.Format("2006-01-02")
	var due []domain.DueAssignment
	for _, req := range s.requirements {
		for _, a := range req.Assignments {
			if a.Deadline == nil || a.Deadline.Format("2006-01-02") != day {
				continue
			}
			if a.Status == domain.ComplianceApproved {
				continue
			}
			copied := copyAssignment(a)
			due = append(due, domain.DueAssignment{Assignment: copied, Requirement: req.Name})
		}
	}
	return due, nil
}

func copyRequirement(req domain.Requirement) domain.Requirement {
	out := req
	if req.Deadline != nil {
		dl := *req.Deadline
		out.Deadline = &dl
	}
	out.Assignments = make([]domain.Assignment, len(req.Assignments))
	for i, a := range req.Assignments {
		out.Assignments[i] = copyAssignment(a)
	}
	out.Uploads = make([]domain.Upload, len(req.Uploads))
	copy(out.Uploads, req.Uploads)
	return out
}

func copyAssignment(a domain.Assignment) domain.Assignment {
	out := a
	if a.Deadline != nil {
		dl := *a.Deadline
		out.Deadline = &dl
	}
	if a.PIC != nil {
		pic := *a.PIC
		out.PIC = &pic
	}
	return out
}
