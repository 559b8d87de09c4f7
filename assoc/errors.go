// Package assoc binds dul, acse and dimse into the association-level
// API an application actually calls: negotiate once, then exchange
// DIMSE messages by abstract syntax without touching context IDs,
// fragmentation or the state machine directly.
package assoc

import (
	"errors"
	"fmt"
)

var (
	// ErrNoContext means the abstract syntax requested wasn't
	// negotiated (or was negotiated but rejected) for this association.
	ErrNoContext = errors.New("no accepted presentation context for abstract syntax")
	// ErrUnexpectedMessage means a DIMSE message arrived that this
	// association had no pending command or registered handler for.
	ErrUnexpectedMessage = errors.New("unexpected DIMSE message")
	// ErrClosed means the association's upcall stream ended
	// (released, aborted, or the transport dropped) before a pending
	// command got its response.
	ErrClosed = errors.New("association closed")
)

func wrapf(base error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{base}, args...)...)
}
