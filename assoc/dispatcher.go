package assoc

import (
	"sync"
	"sync/atomic"

	"v.io/x/lib/vlog"

	"github.com/net-dicom/ulcore/dimse"
	"github.com/net-dicom/ulcore/pdu"
)

// messageIDSeq hands out DIMSE message IDs (0000,0110), wrapping before
// 0 since 0 is commonly treated as "unset" by peers.
var messageIDSeq uint32

func nextMessageID() uint16 {
	id := atomic.AddUint32(&messageIDSeq, 1)
	return uint16(id%0xFFFF) + 1
}

// received is one reassembled DIMSE message handed up from the wire,
// paired with the context it arrived on.
type received struct {
	contextID byte
	command   dimse.Message
	data      []byte
}

// pendingCommand is a command this association's caller is waiting on
// a response for, keyed by the Message ID it sent.
type pendingCommand struct {
	messageID uint16
	ch        chan received
}

// handler answers an unsolicited request (one with no pendingCommand
// waiting on its MessageID) keyed by CommandField, the pattern an SCP
// uses to answer C-ECHO-RQ/C-STORE-RQ/etc. as they arrive.
type handler func(contextID byte, msg dimse.Message, data []byte)

// dispatcher reassembles P-DATA-TF PDUs into DIMSE messages (one
// dimse.CommandAssembler per context ID, since a context carries one
// in-flight message at a time) and routes each finished message either
// to the pendingCommand awaiting its MessageID or to a handler
// registered by CommandField.
type dispatcher struct {
	mu         sync.Mutex
	assemblers map[byte]*dimse.CommandAssembler
	pending    map[uint16]*pendingCommand
	handlers   map[uint16]handler
	closed     bool
}

func newDispatcher() *dispatcher {
	return &dispatcher{
		assemblers: make(map[byte]*dimse.CommandAssembler),
		pending:    make(map[uint16]*pendingCommand),
		handlers:   make(map[uint16]handler),
	}
}

// registerPending records that messageID's response should be routed
// back to the returned pendingCommand's channel rather than to a
// handler.
func (d *dispatcher) registerPending(messageID uint16) *pendingCommand {
	pc := &pendingCommand{messageID: messageID, ch: make(chan received, 1)}
	d.mu.Lock()
	d.pending[messageID] = pc
	d.mu.Unlock()
	return pc
}

func (d *dispatcher) unregisterPending(messageID uint16) {
	d.mu.Lock()
	delete(d.pending, messageID)
	d.mu.Unlock()
}

// registerHandler arranges for unsolicited messages with the given
// command field to be passed to cb, run in its own goroutine per
// message so a slow handler can't stall the reassembly loop.
func (d *dispatcher) registerHandler(commandField uint16, cb handler) {
	d.mu.Lock()
	d.handlers[commandField] = cb
	d.mu.Unlock()
}

func (d *dispatcher) unregisterHandler(commandField uint16) {
	d.mu.Lock()
	delete(d.handlers, commandField)
	d.mu.Unlock()
}

// feed folds one P-DATA-TF PDU into the assembler for its PDVs'
// context, dispatching any message AddDataPDU completes.
func (d *dispatcher) feed(p *pdu.P_DATA_TF) error {
	if len(p.Items) == 0 {
		return nil
	}
	contextID := p.Items[0].ContextID
	d.mu.Lock()
	a, ok := d.assemblers[contextID]
	if !ok {
		a = &dimse.CommandAssembler{}
		d.assemblers[contextID] = a
	}
	d.mu.Unlock()

	gotContextID, msg, data, err := a.AddDataPDU(p)
	if err != nil {
		d.mu.Lock()
		delete(d.assemblers, contextID)
		d.mu.Unlock()
		return err
	}
	if msg == nil {
		return nil
	}
	d.mu.Lock()
	delete(d.assemblers, contextID)
	d.mu.Unlock()
	d.dispatch(gotContextID, msg, data)
	return nil
}

func (d *dispatcher) dispatch(contextID byte, msg dimse.Message, data []byte) {
	d.mu.Lock()
	pc, isPending := d.pending[msg.CorrelationID()]
	var cb handler
	var hasHandler bool
	if !isPending {
		cb, hasHandler = d.handlers[msg.CommandField()]
	}
	d.mu.Unlock()

	switch {
	case isPending:
		pc.ch <- received{contextID: contextID, command: msg, data: data}
	case hasHandler:
		go cb(contextID, msg, data)
	default:
		vlog.Infof("assoc: dropping unsolicited %v with no registered handler", msg)
	}
}

// closeAll unblocks every pending command with a closed channel;
// called once the underlying association's upcall stream ends.
func (d *dispatcher) closeAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	for _, pc := range d.pending {
		close(pc.ch)
	}
}
