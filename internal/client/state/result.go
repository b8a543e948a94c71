package state

import (
	"errors"
)

var (
	// ErrNotSynced is the Result.Err of a write kept local on purpose, e.g.
	// an update of a record the server has not seen yet.
	ErrNotSynced = errors.New("record not synchronized yet")

	// ErrMalformedImport wraps every decode or validation failure of Import.
	ErrMalformedImport = errors.New("malformed import file")

	// ErrUnknownID is returned for ids that are not in the local state.
	ErrUnknownID = errors.New("unknown id")
)

// Source tells where the record in a Result came from.
type Source int

const (
	SourceRemote Source = iota
	SourceLocal
)

func (s Source) String() string {
	if s == SourceRemote {
		return "remote"
	}
	return "local"
}

// Result is the outcome of an operation that may have fallen back to the
// local copy. Err carries the remote failure, if any; it is informational.
type Result[T any] struct {
	Record T
	Source Source
	Err    error
}

// Synced reports whether the server confirmed the operation.
func (r Result[T]) Synced() bool {
	return r.Source == SourceRemote && r.Err == nil
}

// ReconcileReport counts what one sweep did.
type ReconcileReport struct {
	Pushed  int // remote writes confirmed
	Failed  int // records left pending for the next sweep
	Dropped int // local records removed because the server no longer has them
}

func (r ReconcileReport) Empty() bool {
	return r.Pushed == 0 && r.Failed == 0 && r.Dropped == 0
}
