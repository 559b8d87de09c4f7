package dul

import (
	"fmt"
	"io"
	"net"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/net-dicom/ulcore/pdu"
	"github.com/net-dicom/ulcore/timer"
)

// IndicationType discriminates the Indication values delivered on a
// Provider's upcall channel.
type IndicationType int

const (
	// IndicationAssociateRequest carries a received A-ASSOCIATE-RQ, on
	// the acceptor side. The caller answers with AcceptAssociation or
	// RejectAssociation.
	IndicationAssociateRequest IndicationType = iota + 1
	// IndicationAssociateAccept carries a received A-ASSOCIATE-AC, on
	// the requestor side; the association is now established.
	IndicationAssociateAccept
	// IndicationAssociateReject carries a received A-ASSOCIATE-RJ, on
	// the requestor side.
	IndicationAssociateReject
	// IndicationPData carries one received P-DATA-TF PDU, verbatim;
	// reassembling PDVs into a DIMSE message is the caller's job.
	IndicationPData
	// IndicationReleaseRequest means the peer asked to release; the
	// caller answers with ConfirmRelease.
	IndicationReleaseRequest
	// IndicationReleaseComplete means the release handshake finished
	// and the transport connection is closing.
	IndicationReleaseComplete
	// IndicationAbort means the association was aborted, locally or by
	// the peer; Abort carries the reason if the peer sent an A-ABORT.
	IndicationAbort
	// IndicationTransportClosed means the connection closed without an
	// orderly release or abort (e.g. the peer vanished).
	IndicationTransportClosed
)

func (t IndicationType) String() string {
	switch t {
	case IndicationAssociateRequest:
		return "AssociateRequest"
	case IndicationAssociateAccept:
		return "AssociateAccept"
	case IndicationAssociateReject:
		return "AssociateReject"
	case IndicationPData:
		return "PData"
	case IndicationReleaseRequest:
		return "ReleaseRequest"
	case IndicationReleaseComplete:
		return "ReleaseComplete"
	case IndicationAbort:
		return "Abort"
	case IndicationTransportClosed:
		return "TransportClosed"
	default:
		return fmt.Sprintf("IndicationType(%d)", int(t))
	}
}

// Indication is one upcall from the DUL provider to its owner (the acse
// package). Only the field relevant to Type is populated.
type Indication struct {
	Type      IndicationType
	Associate *pdu.A_ASSOCIATE
	Reject    *pdu.A_ASSOCIATE_RJ
	PData     *pdu.P_DATA_TF
	Abort     *pdu.A_ABORT
	Err       error
}

// wireEvent is the internal representation pushed through the
// Provider's channels: the (state-machine event, payload) pair that
// getNextEvent/runOneStep dispatch on.
type wireEvent struct {
	event Event
	pdu   pdu.PDU
	err   error
	conn  net.Conn

	serverAddr string
	data       *dataRequest
	debug      *State // state the timer was armed in, for diagnostics
}

func (e wireEvent) String() string {
	return fmt.Sprintf("evt%d(%s) err=%v pdu=%v", e.event.ID, e.event.Description, e.err, e.pdu)
}

type dataRequest struct {
	contextID byte
	command   bool
	payload   []byte
}

var providerSeq int32

// Provider drives one DUL connection's state machine: it owns the
// socket, the read pump, the ARTIM timer, and translates local
// requests/PDUs-off-the-wire into the standard's Sta/Evt/Action table.
// One Provider serves exactly one association attempt; create a new one
// per connection.
type Provider struct {
	name        string
	isRequestor bool

	netCh      chan wireEvent
	errorCh    chan wireEvent
	downcallCh chan wireEvent
	upcallCh   chan Indication

	artim *timer.ARTIM

	conn         net.Conn
	currentState *State
	maxPDUSize   uint32
	// peerMaxPDUSize is the peer's negotiated received-max (PS3.8 §4.1's
	// Maximum Length item from the A-ASSOCIATE-AC/RQ), set once via
	// SetPeerMaxPDUSize once ACSE negotiation completes. Outgoing P-DATA-TF
	// fragmentation budgets against this, not maxPDUSize, which only
	// bounds what this side accepts on read (PS3.8 §4.5).
	peerMaxPDUSize uint32

	faults *FaultInjector

	// pendingRQ is the A-ASSOCIATE-RQ to send once the transport
	// connects, supplied by RequestAssociation (built by the acse
	// layer, not by dul itself; dul only frames and transmits it).
	pendingRQ *pdu.A_ASSOCIATE
}

// NewRequestor creates a Provider that will dial out once
// RequestAssociation is called. maxPDUSize bounds inbound PDU sizes
// (PS3.8 §4.1); 0 selects DefaultMaxPDUSize.
func NewRequestor(maxPDUSize uint32, faults *FaultInjector) *Provider {
	return newProvider(true, maxPDUSize, faults)
}

// NewAcceptor creates a Provider bound to an already-accepted transport
// connection (the listener's Accept() has already returned conn).
func NewAcceptor(conn net.Conn, maxPDUSize uint32, faults *FaultInjector) *Provider {
	p := newProvider(false, maxPDUSize, faults)
	p.conn = conn
	return p
}

func newProvider(isRequestor bool, maxPDUSize uint32, faults *FaultInjector) *Provider {
	if maxPDUSize == 0 {
		maxPDUSize = DefaultMaxPDUSize
	}
	role := "p"
	if isRequestor {
		role = "u"
	}
	return &Provider{
		name:         fmt.Sprintf("dul(%s)-%d", role, atomic.AddInt32(&providerSeq, 1)),
		isRequestor:  isRequestor,
		netCh:        make(chan wireEvent, 128),
		errorCh:      make(chan wireEvent, 128),
		downcallCh:   make(chan wireEvent, 128),
		upcallCh:     make(chan Indication, 128),
		artim:        timer.New(timer.DefaultARTIM),
		currentState: Sta1,
		maxPDUSize:   maxPDUSize,
		faults:       faults,
	}
}

// DefaultMaxPDUSize is used when a caller doesn't specify a bound on
// inbound PDU size.
const DefaultMaxPDUSize = uint32(1 << 20)

// Upcalls returns the channel on which the provider reports received
// PDUs and lifecycle transitions. The channel is closed once the
// connection reaches Sta1 for good.
func (p *Provider) Upcalls() <-chan Indication {
	return p.upcallCh
}

// RequestAssociation starts the requestor side: dial addr, then send rq
// once connected (Evt1/AE-1, followed by AE-2 on the resulting Evt2).
func (p *Provider) RequestAssociation(addr string, rq *pdu.A_ASSOCIATE) {
	p.pendingRQ = rq
	p.downcallCh <- wireEvent{event: Evt1, serverAddr: addr}
}

// AcceptAssociation answers a pending IndicationAssociateRequest with an
// A-ASSOCIATE-AC built by the caller (Evt7/AE-7).
func (p *Provider) AcceptAssociation(ac *pdu.A_ASSOCIATE) {
	p.downcallCh <- wireEvent{event: Evt7, pdu: ac}
}

// RejectAssociation answers a pending IndicationAssociateRequest with an
// A-ASSOCIATE-RJ (Evt8/AE-8).
func (p *Provider) RejectAssociation(rj *pdu.A_ASSOCIATE_RJ) {
	p.downcallCh <- wireEvent{event: Evt8, pdu: rj}
}

// SetPeerMaxPDUSize records the peer's negotiated received-max, so
// SendData fragments against the bound the peer actually advertised
// instead of this side's own inbound limit. The acse layer calls this
// once association negotiation completes, before any SendData.
func (p *Provider) SetPeerMaxPDUSize(max uint32) {
	p.peerMaxPDUSize = max
}

// SendData transmits payload as one or more P-DATA-TF PDUs on
// contextID, fragmented per the peer's negotiated maximum PDU size
// (Evt9/DT-1 or AR-7 depending on state).
func (p *Provider) SendData(contextID byte, command bool, payload []byte) {
	p.downcallCh <- wireEvent{event: Evt9, data: &dataRequest{contextID: contextID, command: command, payload: payload}}
}

// RequestRelease begins an orderly release (Evt11/AR-1).
func (p *Provider) RequestRelease() {
	p.downcallCh <- wireEvent{event: Evt11}
}

// ConfirmRelease answers a pending IndicationReleaseRequest (Evt14,
// AR-4 or AR-9 depending on whether this is a release collision).
func (p *Provider) ConfirmRelease() {
	p.downcallCh <- wireEvent{event: Evt14}
}

// Abort tears down the association immediately (Evt15/AA-1).
func (p *Provider) Abort() {
	p.downcallCh <- wireEvent{event: Evt15}
}

// Run drives the state machine to completion. It blocks until the
// connection returns to Sta1 (association closed, rejected, or
// aborted) and should be started in its own goroutine.
func (p *Provider) Run() {
	if p.isRequestor {
		ev := wireEvent{event: Evt1}
		// The actual serverAddr/pdu arrive via downcallCh from
		// RequestAssociation; block here until that first event shows up
		// so currentState transitions off Sta1 under the same table the
		// rest of the loop uses.
		ev = <-p.downcallCh
		p.currentState = findAction(Sta1, ev.event).Callback(p, ev)
	} else {
		ev := wireEvent{event: Evt5, conn: p.conn}
		p.currentState = findAction(Sta1, ev.event).Callback(p, ev)
	}
	for p.currentState != Sta1 {
		p.runOneStep()
	}
	close(p.upcallCh)
}

func (p *Provider) runOneStep() {
	ev := p.getNextEvent()
	glog.V(1).Infof("%s: state=%v event=%v", p.name, p.currentState, ev)
	action := findAction(p.currentState, ev.event)
	if action == nil {
		glog.Errorf("%s: no transition for state=%v event=%v; forcing abort", p.name, p.currentState, ev)
		action = actionAA8
	}
	if p.faults != nil {
		p.faults.onStateTransition(p.currentState, ev, action)
	}
	p.currentState = action.Callback(p, ev)
}

func (p *Provider) getNextEvent() wireEvent {
	select {
	case ev := <-p.netCh:
		return ev
	case ev := <-p.errorCh:
		return ev
	case <-p.artim.C():
		return wireEvent{event: Evt18}
	case ev := <-p.downcallCh:
		return ev
	}
}

func (p *Provider) sendPDU(out pdu.PDU) {
	data, err := pdu.EncodePDU(out)
	if err != nil {
		glog.Errorf("%s: failed to encode %v: %v", p.name, out, err)
		p.errorCh <- wireEvent{event: Evt17, err: err}
		return
	}
	if p.faults != nil {
		if p.faults.onSend(data) == faultInjectorDisconnect {
			glog.Infof("%s: fault injector closing connection", p.name)
			p.conn.Close()
		}
	}
	if _, err := p.conn.Write(data); err != nil {
		glog.Errorf("%s: failed to write PDU: %v", p.name, err)
		p.conn.Close()
		p.errorCh <- wireEvent{event: Evt17, err: err}
	}
}

func (p *Provider) closeConnection() {
	if p.conn != nil {
		p.conn.Close()
	}
}

// readPump runs in its own goroutine for the lifetime of the transport
// connection, translating pdu.ReadPDU results into netCh wireEvents, the
// idiomatic replacement for a busy-poll read loop (PS3.8 §9).
func (p *Provider) readPump() {
	for {
		got, err := pdu.ReadPDU(p.conn, int(p.maxPDUSize))
		if err != nil {
			if err == io.EOF {
				p.netCh <- wireEvent{event: Evt17}
			} else {
				p.netCh <- wireEvent{event: Evt19, err: err}
			}
			return
		}
		switch n := got.(type) {
		case *pdu.A_ASSOCIATE:
			if n.Type == pdu.PDUTypeA_ASSOCIATE_RQ {
				p.netCh <- wireEvent{event: Evt6, pdu: n}
			} else {
				p.netCh <- wireEvent{event: Evt3, pdu: n}
			}
		case *pdu.A_ASSOCIATE_RJ:
			p.netCh <- wireEvent{event: Evt4, pdu: n}
		case *pdu.P_DATA_TF:
			p.netCh <- wireEvent{event: Evt10, pdu: n}
		case *pdu.A_RELEASE_RQ:
			p.netCh <- wireEvent{event: Evt12, pdu: n}
		case *pdu.A_RELEASE_RP:
			p.netCh <- wireEvent{event: Evt13, pdu: n}
		case *pdu.A_ABORT:
			p.netCh <- wireEvent{event: Evt16, pdu: n}
		default:
			p.netCh <- wireEvent{event: Evt19, err: fmt.Errorf("unhandled PDU type %T", got)}
		}
	}
}
