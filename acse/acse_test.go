package acse_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/net-dicom/ulcore/acse"
	"github.com/net-dicom/ulcore/uid"
)

func TestRequestAcceptEstablishesAssociation(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer listener.Close()

	acceptorDone := make(chan *acse.Association, 1)
	acceptorErr := make(chan error, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			acceptorErr <- err
			return
		}
		assoc, err := acse.Accept(context.Background(), conn, acse.AcceptorConfig{
			CalledAETitle: "SCP",
			SupportedContexts: []acse.SupportedContext{
				{AbstractSyntax: uid.VerificationSOPClass.UID, TransferSyntaxes: []string{uid.ImplicitVRLittleEndian}},
			},
		})
		if err != nil {
			acceptorErr <- err
			return
		}
		acceptorDone <- assoc
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	requestor, err := acse.Request(ctx, listener.Addr().String(), acse.RequestorConfig{
		CallingAETitle: "SCU",
		CalledAETitle:  "SCP",
		Contexts: []acse.ProposedContext{
			{AbstractSyntax: uid.VerificationSOPClass.UID, TransferSyntaxes: []string{uid.ImplicitVRLittleEndian}},
		},
	})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}

	var acceptor *acse.Association
	select {
	case acceptor = <-acceptorDone:
	case err := <-acceptorErr:
		t.Fatalf("Accept: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for acceptor side")
	}

	if _, ok := requestor.ContextID(uid.VerificationSOPClass.UID); !ok {
		t.Error("requestor: verification context should be accepted")
	}
	if _, ok := acceptor.ContextID(uid.VerificationSOPClass.UID); !ok {
		t.Error("acceptor: verification context should be accepted")
	}

	releaseCtx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := requestor.Release(releaseCtx); err != nil {
		t.Fatalf("Release: %v", err)
	}
}

func TestRequestRejectedOnCallingAETitleNotAllowed(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer listener.Close()

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		acse.Accept(context.Background(), conn, acse.AcceptorConfig{
			CalledAETitle:          "SCP",
			AllowedCallingAETitles: []string{"OTHERSCU"},
			SupportedContexts: []acse.SupportedContext{
				{AbstractSyntax: uid.VerificationSOPClass.UID, TransferSyntaxes: []string{uid.ImplicitVRLittleEndian}},
			},
		})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = acse.Request(ctx, listener.Addr().String(), acse.RequestorConfig{
		CallingAETitle: "SCU",
		CalledAETitle:  "SCP",
		Contexts: []acse.ProposedContext{
			{AbstractSyntax: uid.VerificationSOPClass.UID, TransferSyntaxes: []string{uid.ImplicitVRLittleEndian}},
		},
	})
	var rejected *acse.RejectedError
	if err == nil {
		t.Fatal("expected rejection, got nil error")
	}
	if !errors.As(err, &rejected) {
		t.Fatalf("error %v is not a *acse.RejectedError", err)
	}
}
