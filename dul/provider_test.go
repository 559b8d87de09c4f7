package dul

import (
	"net"
	"testing"
	"time"

	"github.com/net-dicom/ulcore/pdu"
)

func mustEncode(t *testing.T, p pdu.PDU) []byte {
	t.Helper()
	b, err := pdu.EncodePDU(p)
	if err != nil {
		t.Fatalf("EncodePDU(%v): %v", p, err)
	}
	return b
}

func recvIndication(t *testing.T, ch <-chan Indication) Indication {
	t.Helper()
	select {
	case ind, ok := <-ch:
		if !ok {
			t.Fatalf("upcall channel closed unexpectedly")
		}
		return ind
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for an upcall")
	}
	return Indication{}
}

// TestAcceptorFullLifecycle drives an acceptor Provider over a net.Pipe,
// playing the role of the remote peer by hand: RQ, AC, one P-DATA-TF in
// each direction, then an orderly release. It exercises every action in
// the Sta2->Sta6->Sta7->Sta1 path without a real TCP socket.
func TestAcceptorFullLifecycle(t *testing.T) {
	serverSide, peerSide := net.Pipe()
	acceptor := NewAcceptor(serverSide, 0, nil)
	done := make(chan struct{})
	go func() {
		acceptor.Run()
		close(done)
	}()

	go func() {
		rq := &pdu.A_ASSOCIATE{
			Type:            pdu.PDUTypeA_ASSOCIATE_RQ,
			ProtocolVersion: pdu.CurrentProtocolVersion,
			CalledAETitle:   "SCP",
			CallingAETitle:  "SCU",
		}
		peerSide.Write(mustEncode(t, rq))
	}()

	ind := recvIndication(t, acceptor.Upcalls())
	if ind.Type != IndicationAssociateRequest {
		t.Fatalf("got indication %v, want AssociateRequest", ind.Type)
	}

	acPeerRead := make(chan pdu.PDU, 1)
	go func() {
		got, err := pdu.ReadPDU(peerSide, 1<<20)
		if err != nil {
			t.Errorf("peer failed to read A-ASSOCIATE-AC: %v", err)
			return
		}
		acPeerRead <- got
	}()

	ac := &pdu.A_ASSOCIATE{
		Type:            pdu.PDUTypeA_ASSOCIATE_AC,
		ProtocolVersion: pdu.CurrentProtocolVersion,
		CalledAETitle:   ind.Associate.CalledAETitle,
		CallingAETitle:  ind.Associate.CallingAETitle,
	}
	acceptor.AcceptAssociation(ac)

	select {
	case got := <-acPeerRead:
		if _, ok := got.(*pdu.A_ASSOCIATE); !ok {
			t.Fatalf("peer got %T, want *pdu.A_ASSOCIATE", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for A-ASSOCIATE-AC")
	}

	acceptor.SendData(1, true, []byte{0xAA, 0xBB})
	pv, err := pdu.ReadPDU(peerSide, 1<<20)
	if err != nil {
		t.Fatalf("peer failed to read P-DATA-TF: %v", err)
	}
	pd, ok := pv.(*pdu.P_DATA_TF)
	if !ok || len(pd.Items) != 1 || pd.Items[0].ContextID != 1 {
		t.Fatalf("unexpected P-DATA-TF: %v", pv)
	}

	go func() {
		p := &pdu.P_DATA_TF{Items: []pdu.PresentationDataValueItem{{
			ContextID: 1, Command: false, Last: true, Value: []byte{0x01},
		}}}
		peerSide.Write(mustEncode(t, p))
	}()
	ind = recvIndication(t, acceptor.Upcalls())
	if ind.Type != IndicationPData {
		t.Fatalf("got indication %v, want PData", ind.Type)
	}

	acceptor.RequestRelease()
	rel, err := pdu.ReadPDU(peerSide, 1<<20)
	if err != nil {
		t.Fatalf("peer failed to read A-RELEASE-RQ: %v", err)
	}
	if _, ok := rel.(*pdu.A_RELEASE_RQ); !ok {
		t.Fatalf("peer got %T, want *pdu.A_RELEASE_RQ", rel)
	}
	peerSide.Write(mustEncode(t, &pdu.A_RELEASE_RP{}))

	ind = recvIndication(t, acceptor.Upcalls())
	if ind.Type != IndicationReleaseComplete {
		t.Fatalf("got indication %v, want ReleaseComplete", ind.Type)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run() never returned after release")
	}
}

// TestAcceptorRejectsBadProtocolVersion exercises AE-6's early reject
// path (Sta2, Evt6 with an unsupported protocol version).
func TestAcceptorRejectsBadProtocolVersion(t *testing.T) {
	serverSide, peerSide := net.Pipe()
	acceptor := NewAcceptor(serverSide, 0, nil)
	go acceptor.Run()

	go func() {
		rq := &pdu.A_ASSOCIATE{
			Type:            pdu.PDUTypeA_ASSOCIATE_RQ,
			ProtocolVersion: 0xFFFF,
			CalledAETitle:   "SCP",
			CallingAETitle:  "SCU",
		}
		peerSide.Write(mustEncode(t, rq))
	}()

	got, err := pdu.ReadPDU(peerSide, 1<<20)
	if err != nil {
		t.Fatalf("peer failed to read A-ASSOCIATE-RJ: %v", err)
	}
	rj, ok := got.(*pdu.A_ASSOCIATE_RJ)
	if !ok {
		t.Fatalf("peer got %T, want *pdu.A_ASSOCIATE_RJ", got)
	}
	if rj.Source != pdu.SourceULServiceProviderACSE {
		t.Errorf("rj.Source = %d, want %d", rj.Source, pdu.SourceULServiceProviderACSE)
	}
}
