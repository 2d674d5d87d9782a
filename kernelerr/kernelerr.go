// Package kernelerr defines the error kinds the simulation kernel signals.
//
// The original core used an errno-style global set by the registry and
// parser layers; callers bubbled the failure up by hand. Here each kind is
// a sentinel error checked with errors.Is, and Wrap attaches the context
// (object name, property name, offending value) a caller needs without
// losing the sentinel for matching further up the stack.
package kernelerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel kinds. See spec §7.
var (
	// ErrInvalidArgument covers bad group-expression/aggregator/loadshape
	// syntax, unknown keywords, and unit mismatches.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound covers class, property, function, or object-name lookups
	// that miss the registry.
	ErrNotFound = errors.New("not found")
	// ErrOutOfRange covers timestamps outside the supported span, property
	// values outside their declared unit domain, and distribution
	// parameters outside documented bounds.
	ErrOutOfRange = errors.New("out of range")
	// ErrOutOfMemory covers registry/object allocation failure.
	ErrOutOfMemory = errors.New("out of memory")
	// ErrStateInvariantBroken covers inheritance cycles, unassignable
	// ranks, non-monotonic clocks, and SM_ERROR from a delta handler.
	ErrStateInvariantBroken = errors.New("state invariant broken")
	// ErrNotImplemented is returned by operations the spec documents as
	// declared-but-throwing (skew/kurtosis aggregation).
	ErrNotImplemented = errors.New("not implemented")
)

// Wrap attaches context to a sentinel kind while keeping it matchable with
// errors.Is(err, kind).
func Wrap(kind error, context string) error {
	return errors.Wrap(kind, context)
}

// Wrapf is Wrap with fmt-style formatting.
func Wrapf(kind error, format string, args ...interface{}) error {
	return errors.Wrap(kind, fmt.Sprintf(format, args...))
}

// Is reports whether err is, or wraps, kind.
func Is(err, kind error) bool {
	return errors.Is(err, kind)
}
