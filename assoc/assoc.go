package assoc

import (
	"context"
	"encoding/binary"
	"net"

	"github.com/yasushi-saito/go-dicom/dicomio"
	"v.io/x/lib/vlog"

	"github.com/net-dicom/ulcore/acse"
	"github.com/net-dicom/ulcore/dimse"
	"github.com/net-dicom/ulcore/dul"
)

// Association is an established DICOM association with DIMSE message
// exchange layered on top: SendCommand/Invoke work in terms of
// abstract syntaxes and dimse.Message values, never context IDs or
// P-DATA-TF fragmentation directly.
type Association struct {
	inner *acse.Association
	disp  *dispatcher
	done  chan struct{}
}

func newAssociation(inner *acse.Association) *Association {
	a := &Association{inner: inner, disp: newDispatcher(), done: make(chan struct{})}
	go a.pump()
	return a
}

// pump reads the underlying acse.Association's upcall stream for the
// association's lifetime, feeding P-DATA into the dispatcher and
// unblocking any pending command once the stream ends.
func (a *Association) pump() {
	defer close(a.done)
	defer a.disp.closeAll()
	for ind := range a.inner.Upcalls() {
		switch ind.Type {
		case dul.IndicationPData:
			if err := a.disp.feed(ind.PData); err != nil {
				vlog.Errorf("assoc: reassembly error, aborting: %v", err)
				a.inner.Abort()
				return
			}
		case dul.IndicationReleaseComplete, dul.IndicationAbort, dul.IndicationTransportClosed:
			return
		}
	}
}

// Contexts returns the negotiated presentation contexts.
func (a *Association) Contexts() []acse.NegotiatedContext { return a.inner.Contexts() }

// contextFor resolves abstractSyntax to its accepted context ID and
// negotiated transfer syntax.
func (a *Association) contextFor(abstractSyntax string) (acse.NegotiatedContext, error) {
	for _, c := range a.inner.Contexts() {
		if c.AbstractSyntax == abstractSyntax && c.Accepted() {
			return c, nil
		}
	}
	return acse.NegotiatedContext{}, wrapf(ErrNoContext, "%q", abstractSyntax)
}

// encodeCommand serializes msg's command set (Implicit VR Little
// Endian, per P3.7 6.3.1, same as dimse.ReadMessage/EncodeMessage
// expect on the wire).
func encodeCommand(msg dimse.Message) ([]byte, error) {
	e := dicomio.NewBytesEncoder(binary.LittleEndian, dicomio.ImplicitVR)
	dimse.EncodeMessage(e, msg)
	if err := e.Error(); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// SendCommand encodes msg and hands it, and data, to the underlying
// acse.Association one half at a time; dul is the only layer that
// fragments into PDVs (against the peer's negotiated maximum PDU size),
// so passing whole halves here keeps each half's Last-fragment bit
// correct.
func (a *Association) SendCommand(abstractSyntax string, msg dimse.Message, data []byte) error {
	ctx, err := a.contextFor(abstractSyntax)
	if err != nil {
		return err
	}
	commandBytes, err := encodeCommand(msg)
	if err != nil {
		return err
	}
	a.inner.SendData(ctx.ContextID, true, commandBytes)
	if len(data) > 0 {
		a.inner.SendData(ctx.ContextID, false, data)
	}
	return nil
}

// Invoke sends msg (which must carry a fresh MessageID from
// NextMessageID) on abstractSyntax and blocks for the matching
// response (the *_RSP whose MessageIDBeingRespondedTo equals msg's
// MessageID), or until ctx is done or the association closes.
func (a *Association) Invoke(ctx context.Context, abstractSyntax string, messageID uint16, msg dimse.Message, data []byte) (dimse.Message, []byte, error) {
	pc := a.disp.registerPending(messageID)
	defer a.disp.unregisterPending(messageID)
	if err := a.SendCommand(abstractSyntax, msg, data); err != nil {
		return nil, nil, err
	}
	select {
	case r, ok := <-pc.ch:
		if !ok {
			return nil, nil, ErrClosed
		}
		return r.command, r.data, nil
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}

// NextMessageID allocates a fresh DIMSE Message ID for this process.
func NextMessageID() uint16 { return nextMessageID() }

// RegisterHandler arranges for unsolicited messages (no Invoke is
// waiting on their MessageID) with the given command field to be
// passed to cb, the shape an SCP uses to answer incoming C-STORE-RQ,
// C-ECHO-RQ, etc. Only one handler may be registered per command
// field at a time.
func (a *Association) RegisterHandler(commandField uint16, cb func(contextID byte, msg dimse.Message, data []byte)) {
	a.disp.registerHandler(commandField, cb)
}

func (a *Association) UnregisterHandler(commandField uint16) {
	a.disp.unregisterHandler(commandField)
}

// Release begins an orderly release and waits for it to complete.
func (a *Association) Release(ctx context.Context) error {
	return a.inner.Release(ctx)
}

// Abort tears the association down immediately.
func (a *Association) Abort() {
	a.inner.Abort()
}

// Done is closed once the association's upcall pump exits (release
// complete, abort, or transport loss).
func (a *Association) Done() <-chan struct{} { return a.done }

// Request dials addr and negotiates an association as the requestor.
func Request(ctx context.Context, addr string, cfg acse.RequestorConfig) (*Association, error) {
	inner, err := acse.Request(ctx, addr, cfg)
	if err != nil {
		return nil, err
	}
	return newAssociation(inner), nil
}

// Accept negotiates an association as the acceptor over an
// already-accepted transport connection.
func Accept(ctx context.Context, conn net.Conn, cfg acse.AcceptorConfig) (*Association, error) {
	inner, err := acse.Accept(ctx, conn, cfg)
	if err != nil {
		return nil, err
	}
	return newAssociation(inner), nil
}
