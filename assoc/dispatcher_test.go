package assoc

import (
	"testing"
	"time"

	"github.com/net-dicom/ulcore/dimse"
)

func TestNextMessageIDNeverZero(t *testing.T) {
	for i := 0; i < 10; i++ {
		if nextMessageID() == 0 {
			t.Fatal("nextMessageID returned 0")
		}
	}
}

func TestDispatcherRoutesToPendingByCorrelationID(t *testing.T) {
	d := newDispatcher()
	pc := d.registerPending(42)
	defer d.unregisterPending(42)

	d.dispatch(1, &dimse.C_ECHO_RSP{MessageIDBeingRespondedTo: 42, Status: dimse.Status{Status: dimse.StatusSuccess}}, nil)

	select {
	case r := <-pc.ch:
		resp := r.command.(*dimse.C_ECHO_RSP)
		if resp.MessageIDBeingRespondedTo != 42 {
			t.Errorf("got MessageIDBeingRespondedTo %d, want 42", resp.MessageIDBeingRespondedTo)
		}
	default:
		t.Fatal("pending command's channel has no message")
	}
}

func TestDispatcherRoutesUnsolicitedToHandler(t *testing.T) {
	d := newDispatcher()
	got := make(chan *dimse.C_ECHO_RQ, 1)
	d.registerHandler(dimse.CommandFieldCEchoRQ, func(contextID byte, msg dimse.Message, data []byte) {
		got <- msg.(*dimse.C_ECHO_RQ)
	})
	d.dispatch(3, &dimse.C_ECHO_RQ{MessageID: 7}, nil)
	select {
	case rq := <-got:
		if rq.MessageID != 7 {
			t.Errorf("got MessageID %d, want 7", rq.MessageID)
		}
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked within 1s")
	}
}

func TestFeedReassemblesAcrossTwoPDUs(t *testing.T) {
	d := newDispatcher()
	got := make(chan *dimse.C_ECHO_RQ, 1)
	d.registerHandler(dimse.CommandFieldCEchoRQ, func(contextID byte, msg dimse.Message, data []byte) {
		got <- msg.(*dimse.C_ECHO_RQ)
	})

	commandBytes, err := encodeCommand(&dimse.C_ECHO_RQ{MessageID: 9, CommandDataSetType: dimse.CommandDataSetTypeNull})
	if err != nil {
		t.Fatalf("encodeCommand: %v", err)
	}
	// A PDU budget of half the command plus framing forces two fragments.
	pdus := dimse.Fragment(1, commandBytes, nil, uint32(len(commandBytes)/2+12+1))
	if len(pdus) != 2 {
		t.Fatalf("got %d PDUs, want 2", len(pdus))
	}
	for _, p := range pdus {
		if err := d.feed(p); err != nil {
			t.Fatalf("feed: %v", err)
		}
	}
	select {
	case rq := <-got:
		if rq.MessageID != 9 {
			t.Errorf("got MessageID %d, want 9", rq.MessageID)
		}
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestCloseAllUnblocksPending(t *testing.T) {
	d := newDispatcher()
	pc := d.registerPending(1)
	d.closeAll()
	if _, ok := <-pc.ch; ok {
		t.Fatal("expected closed channel")
	}
}
