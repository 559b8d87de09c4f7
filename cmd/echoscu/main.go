// A sample program issuing a single C-ECHO against a remote DICOM
// application entity, the minimal exercise of a full association
// request/negotiate/invoke/release cycle.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/golang/glog"

	"github.com/net-dicom/ulcore/acse"
	"github.com/net-dicom/ulcore/assoc"
	"github.com/net-dicom/ulcore/dimse"
	"github.com/net-dicom/ulcore/uid"
)

var (
	serverFlag  = flag.String("server", "localhost:11112", "host:port of the remote application entity")
	callingFlag = flag.String("calling-ae", "ECHOSCU", "calling AE title")
	calledFlag  = flag.String("called-ae", "ANY-SCP", "called AE title")
	timeoutFlag = flag.Duration("timeout", 30*time.Second, "association and invoke timeout")
)

func main() {
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	a, err := assoc.Request(ctx, *serverFlag, acse.RequestorConfig{
		CallingAETitle: *callingFlag,
		CalledAETitle:  *calledFlag,
		Contexts: []acse.ProposedContext{
			{
				AbstractSyntax:   uid.VerificationSOPClass.UID,
				TransferSyntaxes: []string{uid.ImplicitVRLittleEndian, uid.ExplicitVRLittleEndian},
			},
		},
	})
	if err != nil {
		glog.Fatalf("associate with %s: %v", *serverFlag, err)
	}
	defer a.Abort()

	messageID := assoc.NextMessageID()
	rq := &dimse.C_ECHO_RQ{MessageID: messageID, CommandDataSetType: dimse.CommandDataSetTypeNull}

	invokeCtx, invokeCancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer invokeCancel()
	respMsg, _, err := a.Invoke(invokeCtx, uid.VerificationSOPClass.UID, messageID, rq, nil)
	if err != nil {
		glog.Fatalf("C-ECHO: %v", err)
	}
	resp, ok := respMsg.(*dimse.C_ECHO_RSP)
	if !ok {
		glog.Fatalf("C-ECHO: unexpected response type %T", respMsg)
	}
	if resp.Status.Status != dimse.StatusSuccess {
		glog.Fatalf("C-ECHO rejected: %v", resp.Status)
	}
	glog.Info("C-ECHO succeeded")

	releaseCtx, releaseCancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer releaseCancel()
	if err := a.Release(releaseCtx); err != nil {
		glog.Errorf("release: %v", err)
	}
}
