// A minimal verification SCP: accepts associations, answers every
// C-ECHO-RQ it receives with Success, and releases when the peer asks.
package main

import (
	"context"
	"flag"
	"net"
	"time"

	"github.com/golang/glog"

	"github.com/net-dicom/ulcore/acse"
	"github.com/net-dicom/ulcore/assoc"
	"github.com/net-dicom/ulcore/dimse"
	"github.com/net-dicom/ulcore/uid"
)

var (
	portFlag    = flag.String("port", "11112", "TCP port to listen on")
	calledFlag  = flag.String("ae", "ANY-SCP", "AE title this server answers to")
	timeoutFlag = flag.Duration("timeout", 30*time.Second, "per-association negotiation timeout")
)

func serve(conn net.Conn, cfg acse.AcceptorConfig) {
	defer conn.Close()
	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	a, err := assoc.Accept(ctx, conn, cfg)
	if err != nil {
		glog.Errorf("%s: accept: %v", conn.RemoteAddr(), err)
		return
	}
	defer a.Abort()

	a.RegisterHandler(dimse.CommandFieldCEchoRQ, func(contextID byte, msg dimse.Message, data []byte) {
		rq := msg.(*dimse.C_ECHO_RQ)
		glog.Infof("%s: C-ECHO-RQ (messageID %d)", conn.RemoteAddr(), rq.MessageID)
		resp := &dimse.C_ECHO_RSP{
			MessageIDBeingRespondedTo: rq.MessageID,
			CommandDataSetType:        dimse.CommandDataSetTypeNull,
			Status:                    dimse.Status{Status: dimse.StatusSuccess},
		}
		if err := a.SendCommand(uid.VerificationSOPClass.UID, resp, nil); err != nil {
			glog.Errorf("%s: send C-ECHO-RSP: %v", conn.RemoteAddr(), err)
		}
	})

	<-a.Done()
	glog.Infof("%s: association closed", conn.RemoteAddr())
}

func main() {
	flag.Parse()
	port := *portFlag
	if port[0] != ':' {
		port = ":" + port
	}

	listener, err := net.Listen("tcp", port)
	if err != nil {
		glog.Fatalf("listen on %s: %v", port, err)
	}
	glog.Infof("listening on %s", port)

	cfg := acse.AcceptorConfig{
		CalledAETitle: *calledFlag,
		SupportedContexts: []acse.SupportedContext{
			{
				AbstractSyntax:   uid.VerificationSOPClass.UID,
				TransferSyntaxes: []string{uid.ImplicitVRLittleEndian, uid.ExplicitVRLittleEndian},
			},
		},
	}

	for {
		conn, err := listener.Accept()
		if err != nil {
			glog.Errorf("accept: %v", err)
			continue
		}
		go serve(conn, cfg)
	}
}
