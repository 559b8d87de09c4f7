package assoc_test

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/net-dicom/ulcore/acse"
	"github.com/net-dicom/ulcore/assoc"
	"github.com/net-dicom/ulcore/dimse"
	"github.com/net-dicom/ulcore/uid"
)

func TestCEchoRoundTrip(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer listener.Close()

	scpDone := make(chan *assoc.Association, 1)
	scpErr := make(chan error, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			scpErr <- err
			return
		}
		a, err := assoc.Accept(context.Background(), conn, acse.AcceptorConfig{
			CalledAETitle: "SCP",
			SupportedContexts: []acse.SupportedContext{
				{AbstractSyntax: uid.VerificationSOPClass.UID, TransferSyntaxes: []string{uid.ImplicitVRLittleEndian}},
			},
		})
		if err != nil {
			scpErr <- err
			return
		}
		a.RegisterHandler(dimse.CommandFieldCEchoRQ, func(contextID byte, msg dimse.Message, data []byte) {
			rq := msg.(*dimse.C_ECHO_RQ)
			resp := &dimse.C_ECHO_RSP{
				MessageIDBeingRespondedTo: rq.MessageID,
				CommandDataSetType:        dimse.CommandDataSetTypeNull,
				Status:                    dimse.Status{Status: dimse.StatusSuccess},
			}
			a.SendCommand(uid.VerificationSOPClass.UID, resp, nil)
		})
		scpDone <- a
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	scu, err := assoc.Request(ctx, listener.Addr().String(), acse.RequestorConfig{
		CallingAETitle: "SCU",
		CalledAETitle:  "SCP",
		Contexts: []acse.ProposedContext{
			{AbstractSyntax: uid.VerificationSOPClass.UID, TransferSyntaxes: []string{uid.ImplicitVRLittleEndian}},
		},
	})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}

	var scp *assoc.Association
	select {
	case scp = <-scpDone:
	case err := <-scpErr:
		t.Fatalf("Accept: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for acceptor side")
	}
	defer scp.Abort()

	messageID := assoc.NextMessageID()
	rq := &dimse.C_ECHO_RQ{MessageID: messageID, CommandDataSetType: dimse.CommandDataSetTypeNull}
	invokeCtx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	respMsg, _, err := scu.Invoke(invokeCtx, uid.VerificationSOPClass.UID, messageID, rq, nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	resp, ok := respMsg.(*dimse.C_ECHO_RSP)
	if !ok {
		t.Fatalf("got %T, want *dimse.C_ECHO_RSP", respMsg)
	}
	if resp.Status.Status != dimse.StatusSuccess {
		t.Errorf("Status = %v, want Success", resp.Status)
	}
	if resp.MessageIDBeingRespondedTo != messageID {
		t.Errorf("MessageIDBeingRespondedTo = %d, want %d", resp.MessageIDBeingRespondedTo, messageID)
	}

	releaseCtx, cancel3 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel3()
	if err := scu.Release(releaseCtx); err != nil {
		t.Fatalf("Release: %v", err)
	}
}

func TestInvokeTimesOutWithNoResponse(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer listener.Close()

	scpDone := make(chan *assoc.Association, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		a, err := assoc.Accept(context.Background(), conn, acse.AcceptorConfig{
			CalledAETitle: "SCP",
			SupportedContexts: []acse.SupportedContext{
				{AbstractSyntax: uid.VerificationSOPClass.UID, TransferSyntaxes: []string{uid.ImplicitVRLittleEndian}},
			},
		})
		if err != nil {
			return
		}
		scpDone <- a
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	scu, err := assoc.Request(ctx, listener.Addr().String(), acse.RequestorConfig{
		CallingAETitle: "SCU",
		CalledAETitle:  "SCP",
		Contexts: []acse.ProposedContext{
			{AbstractSyntax: uid.VerificationSOPClass.UID, TransferSyntaxes: []string{uid.ImplicitVRLittleEndian}},
		},
	})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	scp := <-scpDone
	defer scp.Abort()

	messageID := assoc.NextMessageID()
	rq := &dimse.C_ECHO_RQ{MessageID: messageID, CommandDataSetType: dimse.CommandDataSetTypeNull}
	invokeCtx, cancel2 := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel2()
	_, _, err = scu.Invoke(invokeCtx, uid.VerificationSOPClass.UID, messageID, rq, nil)
	if err == nil {
		t.Fatal("expected a timeout error, got nil")
	}
}

// TestCStoreFragmentedRoundTrip forces a peer max PDU size small enough
// (128 bytes) that both the command set and the dataset need several
// P-DATA-TF PDUs apiece, and checks that SendCommand/the dispatcher
// reassemble them back into the original bytes. A long
// AffectedSOPInstanceUID pads the command set past one PDV's worth of
// payload; it doesn't need to be a real UID, only a string of known
// length, since nothing here decodes it as one.
func TestCStoreFragmentedRoundTrip(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer listener.Close()

	sopClass := uid.StorageClasses[0].UID
	paddedInstanceUID := strings.Repeat("9", 400)
	dataset := bytes.Repeat([]byte{0xAB}, 900)

	scpDone := make(chan *assoc.Association, 1)
	scpErr := make(chan error, 1)
	received := make(chan []byte, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			scpErr <- err
			return
		}
		a, err := assoc.Accept(context.Background(), conn, acse.AcceptorConfig{
			CalledAETitle:  "SCP",
			MaximumPDUSize: 128,
			SupportedContexts: []acse.SupportedContext{
				{AbstractSyntax: sopClass, TransferSyntaxes: []string{uid.ImplicitVRLittleEndian}},
			},
		})
		if err != nil {
			scpErr <- err
			return
		}
		a.RegisterHandler(dimse.CommandFieldCStoreRQ, func(contextID byte, msg dimse.Message, data []byte) {
			rq := msg.(*dimse.C_STORE_RQ)
			received <- data
			resp := &dimse.C_STORE_RSP{
				AffectedSOPClassUID:       rq.AffectedSOPClassUID,
				MessageIDBeingRespondedTo: rq.MessageID,
				CommandDataSetType:        dimse.CommandDataSetTypeNull,
				AffectedSOPInstanceUID:    rq.AffectedSOPInstanceUID,
				Status:                    dimse.Status{Status: dimse.StatusSuccess},
			}
			a.SendCommand(sopClass, resp, nil)
		})
		scpDone <- a
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	scu, err := assoc.Request(ctx, listener.Addr().String(), acse.RequestorConfig{
		CallingAETitle: "SCU",
		CalledAETitle:  "SCP",
		MaximumPDUSize: 128,
		Contexts: []acse.ProposedContext{
			{AbstractSyntax: sopClass, TransferSyntaxes: []string{uid.ImplicitVRLittleEndian}},
		},
	})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}

	var scp *assoc.Association
	select {
	case scp = <-scpDone:
	case err := <-scpErr:
		t.Fatalf("Accept: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for acceptor side")
	}
	defer scp.Abort()

	messageID := assoc.NextMessageID()
	rq := &dimse.C_STORE_RQ{
		AffectedSOPClassUID:    sopClass,
		MessageID:              messageID,
		CommandDataSetType:     1,
		AffectedSOPInstanceUID: paddedInstanceUID,
	}
	invokeCtx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	respMsg, _, err := scu.Invoke(invokeCtx, sopClass, messageID, rq, dataset)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	resp, ok := respMsg.(*dimse.C_STORE_RSP)
	if !ok {
		t.Fatalf("got %T, want *dimse.C_STORE_RSP", respMsg)
	}
	if resp.Status.Status != dimse.StatusSuccess {
		t.Errorf("Status = %v, want Success", resp.Status)
	}

	var gotData []byte
	select {
	case gotData = <-received:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for SCP to receive the dataset")
	}
	if !bytes.Equal(gotData, dataset) {
		t.Errorf("reassembled dataset mismatch: got %d bytes, want %d bytes", len(gotData), len(dataset))
	}

	releaseCtx, cancel3 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel3()
	if err := scu.Release(releaseCtx); err != nil {
		t.Fatalf("Release: %v", err)
	}
}
