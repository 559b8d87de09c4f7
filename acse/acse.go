package acse

import (
	"context"
	"fmt"
	"net"

	"v.io/x/lib/vlog"

	"github.com/net-dicom/ulcore/dul"
	"github.com/net-dicom/ulcore/pdu"
	"github.com/net-dicom/ulcore/uid"
)

// Association is an established (or cleanly finished) DICOM association:
// the negotiated presentation contexts, the peer's accepted max PDU
// size, and the underlying dul.Provider driving the wire protocol.
type Association struct {
	provider       *dul.Provider
	contexts       []NegotiatedContext
	peerMaxPDUSize uint32
	callingAETitle string
	calledAETitle  string
}

// Contexts returns the negotiated presentation contexts, in the order
// they were proposed. Only entries with Accepted() true have a usable
// TransferSyntax.
func (a *Association) Contexts() []NegotiatedContext { return a.contexts }

// PeerMaxPDUSize is the maximum PDU size the peer told us it's willing
// to receive; dimse.Fragment should chunk sends against this, not the
// locally configured MaximumPDUSize.
func (a *Association) PeerMaxPDUSize() uint32 { return a.peerMaxPDUSize }

// ContextID returns the negotiated, accepted context ID for
// abstractSyntax, or (0, false) if it wasn't proposed or wasn't
// accepted.
func (a *Association) ContextID(abstractSyntax string) (byte, bool) {
	for _, c := range a.contexts {
		if c.AbstractSyntax == abstractSyntax && c.Accepted() {
			return c.ContextID, true
		}
	}
	return 0, false
}

// Upcalls exposes the underlying dul.Provider's indication stream for
// P-DATA, release and abort events; AssociateRequest/Accept/Reject
// indications are already consumed by Request/Accept and never appear
// here.
func (a *Association) Upcalls() <-chan dul.Indication { return a.provider.Upcalls() }

// SendData transmits one DIMSE command (or dataset) fragment set on
// contextID.
func (a *Association) SendData(contextID byte, command bool, payload []byte) {
	a.provider.SendData(contextID, command, payload)
}

// Release begins an orderly release and blocks until the provider
// confirms it (ReleaseComplete) or the association aborts/the
// transport drops, whichever happens first.
func (a *Association) Release(ctx context.Context) error {
	a.provider.RequestRelease()
	return a.waitForTerminal(ctx)
}

// Abort tears the association down immediately.
func (a *Association) Abort() {
	a.provider.Abort()
}

func (a *Association) waitForTerminal(ctx context.Context) error {
	for {
		select {
		case ind, ok := <-a.provider.Upcalls():
			if !ok {
				return nil
			}
			switch ind.Type {
			case dul.IndicationReleaseComplete:
				return nil
			case dul.IndicationAbort:
				if ind.Abort != nil {
					return abortedFrom(ind.Abort)
				}
				return fmt.Errorf("%w: %v", ErrTransport, ind.Err)
			case dul.IndicationTransportClosed:
				return fmt.Errorf("%w: %v", ErrTransport, ind.Err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Request dials addr and negotiates an association as the requestor.
// It blocks until the peer accepts, rejects, or the configured timeout
// (or ctx) elapses.
func Request(ctx context.Context, addr string, cfg RequestorConfig) (*Association, error) {
	cfg.fillDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	items, proposed := buildAssociateRequestItems(&cfg)
	rq := &pdu.A_ASSOCIATE{
		Type:            pdu.PDUTypeA_ASSOCIATE_RQ,
		ProtocolVersion: pdu.CurrentProtocolVersion,
		CalledAETitle:   uid.PadAETitle(cfg.CalledAETitle),
		CallingAETitle:  uid.PadAETitle(cfg.CallingAETitle),
		Items:           items,
	}

	p := dul.NewRequestor(cfg.MaximumPDUSize, nil)
	go p.Run()

	timeoutCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	p.RequestAssociation(addr, rq)

	select {
	case ind, ok := <-p.Upcalls():
		if !ok {
			return nil, fmt.Errorf("%w: connection closed before A-ASSOCIATE reply", ErrTransport)
		}
		switch ind.Type {
		case dul.IndicationAssociateAccept:
			contexts, peerMaxPDUSize, err := parseAssociateResponse(ind.Associate.Items, proposed)
			if err != nil {
				p.Abort()
				return nil, err
			}
			p.SetPeerMaxPDUSize(peerMaxPDUSize)
			vlog.VI(1).Infof("acse: association established, %d contexts", len(contexts))
			return &Association{
				provider:       p,
				contexts:       contexts,
				peerMaxPDUSize: peerMaxPDUSize,
				callingAETitle: cfg.CallingAETitle,
				calledAETitle:  cfg.CalledAETitle,
			}, nil
		case dul.IndicationAssociateReject:
			return nil, rejectedFrom(ind.Reject)
		case dul.IndicationAbort:
			if ind.Abort != nil {
				return nil, abortedFrom(ind.Abort)
			}
			return nil, fmt.Errorf("%w: %v", ErrTransport, ind.Err)
		case dul.IndicationTransportClosed:
			return nil, fmt.Errorf("%w: %v", ErrTransport, ind.Err)
		default:
			return nil, fmt.Errorf("%w: got %v while awaiting A-ASSOCIATE reply", ErrUnexpectedPDU, ind.Type)
		}
	case <-timeoutCtx.Done():
		p.Abort()
		return nil, fmt.Errorf("%w: no A-ASSOCIATE reply within %v", ErrTimeout, cfg.Timeout)
	}
}

// Accept negotiates an association as the acceptor over an
// already-accepted transport connection (the listener's Accept already
// returned conn). It applies the policy checks of PS3.8 §4.4 in
// order, then the presentation-context negotiation algorithm, and
// either establishes the association or returns the rejection/abort
// reason.
func Accept(ctx context.Context, conn net.Conn, cfg AcceptorConfig) (*Association, error) {
	cfg.fillDefaults()
	if err := cfg.validate(); err != nil {
		conn.Close()
		return nil, err
	}

	p := dul.NewAcceptor(conn, cfg.MaximumPDUSize, nil)
	go p.Run()

	timeoutCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	select {
	case ind, ok := <-p.Upcalls():
		if !ok {
			return nil, fmt.Errorf("%w: connection closed before A-ASSOCIATE-RQ", ErrTransport)
		}
		if ind.Type != dul.IndicationAssociateRequest {
			return nil, fmt.Errorf("%w: got %v while awaiting A-ASSOCIATE-RQ", ErrUnexpectedPDU, ind.Type)
		}
		return acceptRequest(p, ind.Associate, &cfg)
	case <-timeoutCtx.Done():
		p.Abort()
		return nil, fmt.Errorf("%w: no A-ASSOCIATE-RQ within %v", ErrTimeout, cfg.Timeout)
	}
}

func acceptRequest(p *dul.Provider, rq *pdu.A_ASSOCIATE, cfg *AcceptorConfig) (*Association, error) {
	callingTitle := uid.TrimAETitle(rq.CallingAETitle)
	calledTitle := uid.TrimAETitle(rq.CalledAETitle)

	if !cfg.allowsCallingTitle(callingTitle) {
		rj := &pdu.A_ASSOCIATE_RJ{Result: pdu.ResultRejectedPermanent, Source: pdu.SourceULServiceUser, Reason: reasonCallingAETitleNotRecognized}
		p.RejectAssociation(rj)
		return nil, rejectedFrom(rj)
	}
	if cfg.StrictCalledAETitle && !uid.EqualAETitle(calledTitle, cfg.CalledAETitle) {
		rj := &pdu.A_ASSOCIATE_RJ{Result: pdu.ResultRejectedPermanent, Source: pdu.SourceULServiceUser, Reason: reasonCalledAETitleNotRecognized}
		p.RejectAssociation(rj)
		return nil, rejectedFrom(rj)
	}

	contexts, peerMaxPDUSize, identity, err := parseAssociateRequest(cfg, rq.Items)
	if err != nil {
		p.Abort()
		return nil, err
	}

	var identityResponse []byte
	if identity != nil && cfg.ValidateUserIdentity != nil {
		accept, resp := cfg.ValidateUserIdentity(identity)
		if !accept {
			rj := &pdu.A_ASSOCIATE_RJ{Result: pdu.ResultRejectedTransient, Source: pdu.SourceULServiceProviderACSE, Reason: reasonUserIdentityFailed}
			p.RejectAssociation(rj)
			return nil, rejectedFrom(rj)
		}
		if identity.PositiveResponseRequested {
			identityResponse = resp
		}
	}

	if cfg.MaxConcurrentAssociations > 0 && cfg.CurrentAssociations() >= cfg.MaxConcurrentAssociations {
		rj := &pdu.A_ASSOCIATE_RJ{Result: pdu.ResultRejectedTransient, Source: pdu.SourceULServiceProviderPresentation, Reason: reasonLocalLimitExceeded}
		p.RejectAssociation(rj)
		return nil, rejectedFrom(rj)
	}

	items := buildAssociateResponseItems(cfg, contexts, identityResponse)
	ac := &pdu.A_ASSOCIATE{
		Type:            pdu.PDUTypeA_ASSOCIATE_AC,
		ProtocolVersion: pdu.CurrentProtocolVersion,
		CalledAETitle:   rq.CalledAETitle,
		CallingAETitle:  rq.CallingAETitle,
		Items:           items,
	}
	p.SetPeerMaxPDUSize(peerMaxPDUSize)
	p.AcceptAssociation(ac)
	vlog.VI(1).Infof("acse: accepted association from %q, %d contexts", callingTitle, len(contexts))
	return &Association{
		provider:       p,
		contexts:       contexts,
		peerMaxPDUSize: peerMaxPDUSize,
		callingAETitle: callingTitle,
		calledAETitle:  calledTitle,
	}, nil
}
