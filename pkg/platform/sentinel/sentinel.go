package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped) and
// the transfer service translates them into coded domain errors.
//
//   - ErrNotFound: record does not exist
//   - ErrConflict: optimistic-concurrency stamp did not match
//   - ErrAlreadyExists: a record with the same identity was already written
//   - ErrUnavailable: backing service temporarily unreachable
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	ErrUnavailable   = errors.New("unavailable")
)
