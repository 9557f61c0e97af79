package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Snapshot stores and the ledger
// return these (optionally wrapped) so services can translate them into
// domain errors. They describe factual states about resources, not
// validation failures:
//   - ErrNotFound: entity does not exist in the store
//   - ErrConflict: write lost to a concurrent writer
//   - ErrUnavailable: backing service temporarily unreachable
//
// For validation errors use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
