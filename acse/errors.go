// Package acse implements Association Control Service Element
// negotiation on top of dul: building the A-ASSOCIATE-RQ, applying
// acceptor policy, negotiating presentation contexts and roles, and
// driving release/abort to completion.
package acse

import (
	"errors"
	"fmt"

	"github.com/net-dicom/ulcore/pdu"
)

// Sentinel errors for the taxonomy of PS3.8 §7, inspectable with
// errors.Is/errors.As.
var (
	ErrUnexpectedPDU       = errors.New("unexpected PDU for current state")
	ErrProtocolViolation   = errors.New("protocol violation")
	ErrAssociationRejected = errors.New("association rejected")
	ErrAssociationAborted  = errors.New("association aborted")
	ErrTimeout             = errors.New("acse timeout")
	ErrTransport           = errors.New("transport error")
	ErrConfiguration       = errors.New("configuration error")
)

// RejectedError reports a peer's A-ASSOCIATE-RJ (returned by Request), or
// a locally-generated one returned by Accept when this package's
// acceptor-side policy refuses the incoming association.
type RejectedError struct {
	Result byte
	Source byte
	Reason byte
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%v: result=%d source=%d reason=%d", ErrAssociationRejected, e.Result, e.Source, e.Reason)
}

func (e *RejectedError) Unwrap() error { return ErrAssociationRejected }

func rejectedFrom(rj *pdu.A_ASSOCIATE_RJ) *RejectedError {
	return &RejectedError{Result: rj.Result, Source: rj.Source, Reason: rj.Reason}
}

// AbortedError reports an A-ABORT, local or remote.
type AbortedError struct {
	Source byte
	Reason byte
}

func (e *AbortedError) Error() string {
	return fmt.Sprintf("%v: source=%d reason=%d", ErrAssociationAborted, e.Source, e.Reason)
}

func (e *AbortedError) Unwrap() error { return ErrAssociationAborted }

func abortedFrom(ab *pdu.A_ABORT) *AbortedError {
	return &AbortedError{Source: ab.Source, Reason: ab.Reason}
}

func configErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+fmt.Sprintf(format, args...), ErrConfiguration)
}
