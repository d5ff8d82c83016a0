package mmport

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// Status sentinels. Callers compare with errors.Is; wrapping (see wrap
// below) never changes what errors.Is reports.
var (
	// ErrInvalid covers malformed arguments, wrong state (e.g. already
	// enabled), and invalid port-type combinations.
	ErrInvalid = errors.New("mmport: invalid argument or state")

	// ErrNotImplemented is returned when a module handler -- or a
	// non-core parameter -- has no implementation.
	ErrNotImplemented = errors.New("mmport: not implemented")

	// ErrFault means the client overwrote port.Format with a different
	// pointer than the one the core allocated.
	ErrFault = errors.New("mmport: format pointer overwritten")

	// ErrAlreadyConnected means a port already has a connected peer.
	ErrAlreadyConnected = errors.New("mmport: already connected")

	// ErrNotConnected means a port has no connected peer.
	ErrNotConnected = errors.New("mmport: not connected")

	// ErrNoMemory means a pool was exhausted or an allocation failed.
	ErrNoMemory = errors.New("mmport: out of memory")

	// ErrNoSpace means an event pool was exhausted, or an event buffer
	// was too small for the event being written into it.
	ErrNoSpace = errors.New("mmport: no space")
)

// wrap attaches context and a stack trace to a non-nil status error,
// leaving errors.Is(result, status) true.
func wrap(status error, format string, args ...interface{}) error {
	if status == nil {
		return nil
	}
	return pkgerrors.Wrapf(status, format, args...)
}
