// Package collector defines the contract every external-source adapter
// satisfies, plus the registry and HTTP plumbing they share.
package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonesrussell/intelsleuth/internal/domain"
)

// ErrTimeout marks a collector abandoned at the request deadline.
var ErrTimeout = errors.New("collector timed out")

// Collector is one external-source adapter.
//
// Collect must honour ctx: when its deadline passes the caller stops
// waiting, so an implementation should return promptly. "No data" is an
// empty slice and a nil error; any failure is reported as *Error.
// Implementations must not share mutable state with other collectors.
type Collector interface {
	Name() string
	Applicable(t domain.QueryType) bool
	Collect(ctx context.Context, q domain.Query) ([]domain.RawFinding, error)
}

// Error is the only error a collector returns.
type Error struct {
	SourceID string
	Reason   string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("collector %s: %s", e.SourceID, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// Timeout reports whether the collector was cut off by the deadline.
func (e *Error) Timeout() bool {
	return errors.Is(e.Err, ErrTimeout) || errors.Is(e.Err, context.DeadlineExceeded)
}

// NewError wraps err as a collector failure for source. An err that is
// already an *Error is returned unchanged.
func NewError(source string, err error) *Error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return &Error{SourceID: source, Reason: err.Error(), Err: err}
}

// Errorf builds a collector failure from a formatted reason.
func Errorf(source, format string, args ...any) *Error {
	err := fmt.Errorf(format, args...)
	return &Error{SourceID: source, Reason: err.Error(), Err: err}
}

// TypeSet is the fixed set of query types a collector handles.
type TypeSet map[domain.QueryType]bool

// Types builds a TypeSet.
func Types(types ...domain.QueryType) TypeSet {
	set := make(TypeSet, len(types))
	for _, t := range types {
		set[t] = true
	}
	return set
}

// Has reports whether t is in the set.
func (s TypeSet) Has(t domain.QueryType) bool { return s[t] }
