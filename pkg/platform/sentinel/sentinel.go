package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so the lead service can translate them into domain errors.
//
//   - ErrUnavailable: backing store or broker cannot be reached
//   - ErrNotConfigured: a collaborator was selected but has no settings
//   - ErrInvalidRecord: a record failed a store-side constraint
var (
	ErrUnavailable   = errors.New("unavailable")
	ErrNotConfigured = errors.New("not configured")
	ErrInvalidRecord = errors.New("invalid record")
)
