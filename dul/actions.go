package dul

import (
	"net"

	"github.com/golang/glog"

	"github.com/net-dicom/ulcore/dimse"
	"github.com/net-dicom/ulcore/pdu"
)

// Association establishment actions (AE-1..AE-8), P3.8 Table 9-6.

var actionAE1 = &Action{"AE-1", "Issue transport connect request", func(p *Provider, ev Event) *State {
	go func(addr string) {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			glog.Infof("%s: failed to connect to %s: %v", p.name, addr, err)
			p.netCh <- wireEvent{event: Evt17, err: err}
			return
		}
		p.netCh <- wireEvent{event: Evt2, conn: conn}
	}(ev.serverAddr)
	return Sta4
}}

var actionAE2 = &Action{"AE-2", "Send A-ASSOCIATE-RQ PDU", func(p *Provider, ev Event) *State {
	p.conn = ev.conn
	go p.readPump()
	p.sendPDU(p.pendingRQ)
	p.artim.Start()
	return Sta5
}}

var actionAE3 = &Action{"AE-3", "Issue A-ASSOCIATE confirmation (accept)", func(p *Provider, ev Event) *State {
	p.artim.Stop()
	ac := ev.pdu.(*pdu.A_ASSOCIATE)
	p.upcallCh <- Indication{Type: IndicationAssociateAccept, Associate: ac}
	return Sta6
}}

var actionAE4 = &Action{"AE-4", "Issue A-ASSOCIATE confirmation (reject), close transport", func(p *Provider, ev Event) *State {
	rj := ev.pdu.(*pdu.A_ASSOCIATE_RJ)
	p.upcallCh <- Indication{Type: IndicationAssociateReject, Reject: rj}
	p.closeConnection()
	return Sta1
}}

var actionAE5 = &Action{"AE-5", "Issue transport connection response, start ARTIM", func(p *Provider, ev Event) *State {
	p.conn = ev.conn
	p.artim.Start()
	go p.readPump()
	return Sta2
}}

var actionAE6 = &Action{"AE-6", "Stop ARTIM, evaluate A-ASSOCIATE-RQ acceptability", func(p *Provider, ev Event) *State {
	p.artim.Stop()
	rq := ev.pdu.(*pdu.A_ASSOCIATE)
	if rq.ProtocolVersion != pdu.CurrentProtocolVersion {
		glog.Infof("%s: rejecting unsupported protocol version 0x%x", p.name, rq.ProtocolVersion)
		p.sendPDU(&pdu.A_ASSOCIATE_RJ{
			Result: pdu.ResultRejectedPermanent,
			Source: pdu.SourceULServiceProviderACSE,
			Reason: pdu.ReasonApplicationContextNameNotSupported,
		})
		p.artim.Start()
		return Sta13
	}
	p.upcallCh <- Indication{Type: IndicationAssociateRequest, Associate: rq}
	return Sta3
}}

var actionAE7 = &Action{"AE-7", "Send A-ASSOCIATE-AC PDU", func(p *Provider, ev Event) *State {
	p.sendPDU(ev.pdu.(*pdu.A_ASSOCIATE))
	return Sta6
}}

var actionAE8 = &Action{"AE-8", "Send A-ASSOCIATE-RJ PDU, start ARTIM", func(p *Provider, ev Event) *State {
	p.sendPDU(ev.pdu.(*pdu.A_ASSOCIATE_RJ))
	p.artim.Start()
	return Sta13
}}

// Data transfer actions (DT-1, DT-2), P3.8 Table 9-7.

var actionDT1 = &Action{"DT-1", "Send P-DATA-TF PDU", func(p *Provider, ev Event) *State {
	sendFragmented(p, ev.data)
	return Sta6
}}

var actionDT2 = &Action{"DT-2", "Issue P-DATA indication", func(p *Provider, ev Event) *State {
	p.upcallCh <- Indication{Type: IndicationPData, PData: ev.pdu.(*pdu.P_DATA_TF)}
	return Sta6
}}

func sendFragmented(p *Provider, req *dataRequest) {
	var command, data []byte
	if req.command {
		command = req.payload
	} else {
		data = req.payload
	}
	for _, out := range dimse.Fragment(req.contextID, command, data, p.peerMaxPDUSize) {
		p.sendPDU(out)
	}
}

// Association release actions (AR-1..AR-10), P3.8 Table 9-8.

var actionAR1 = &Action{"AR-1", "Send A-RELEASE-RQ PDU", func(p *Provider, ev Event) *State {
	p.sendPDU(&pdu.A_RELEASE_RQ{})
	return Sta7
}}

var actionAR2 = &Action{"AR-2", "Issue A-RELEASE indication", func(p *Provider, ev Event) *State {
	p.upcallCh <- Indication{Type: IndicationReleaseRequest}
	return Sta8
}}

var actionAR3 = &Action{"AR-3", "Issue A-RELEASE confirmation, close transport", func(p *Provider, ev Event) *State {
	p.upcallCh <- Indication{Type: IndicationReleaseComplete}
	p.closeConnection()
	return Sta1
}}

var actionAR4 = &Action{"AR-4", "Send A-RELEASE-RP PDU, start ARTIM", func(p *Provider, ev Event) *State {
	p.sendPDU(&pdu.A_RELEASE_RP{})
	p.artim.Start()
	return Sta13
}}

var actionAR5 = &Action{"AR-5", "Stop ARTIM", func(p *Provider, ev Event) *State {
	p.artim.Stop()
	return Sta1
}}

var actionAR6 = &Action{"AR-6", "Issue P-DATA indication", func(p *Provider, ev Event) *State {
	p.upcallCh <- Indication{Type: IndicationPData, PData: ev.pdu.(*pdu.P_DATA_TF)}
	return Sta7
}}

var actionAR7 = &Action{"AR-7", "Send P-DATA-TF PDU", func(p *Provider, ev Event) *State {
	sendFragmented(p, ev.data)
	return Sta8
}}

var actionAR8 = &Action{"AR-8", "Issue A-RELEASE indication (release collision)", func(p *Provider, ev Event) *State {
	p.upcallCh <- Indication{Type: IndicationReleaseRequest}
	if p.isRequestor {
		return Sta9
	}
	return Sta10
}}

var actionAR9 = &Action{"AR-9", "Send A-RELEASE-RP PDU", func(p *Provider, ev Event) *State {
	p.sendPDU(&pdu.A_RELEASE_RP{})
	return Sta11
}}

var actionAR10 = &Action{"AR-10", "Issue A-RELEASE confirmation", func(p *Provider, ev Event) *State {
	p.upcallCh <- Indication{Type: IndicationReleaseComplete}
	return Sta12
}}

// Association abort actions (AA-1..AA-8), P3.8 Table 9-9.

var actionAA1 = &Action{"AA-1", "Send A-ABORT PDU (service-user source), start/restart ARTIM", func(p *Provider, ev Event) *State {
	var diagnostic byte
	if p.currentState == Sta2 {
		diagnostic = 2
	}
	p.sendPDU(&pdu.A_ABORT{Source: 0, Reason: diagnostic})
	p.artim.Restart()
	return Sta13
}}

var actionAA2 = &Action{"AA-2", "Stop ARTIM if running, close transport", func(p *Provider, ev Event) *State {
	p.artim.Stop()
	p.closeConnection()
	return Sta1
}}

var actionAA3 = &Action{"AA-3", "Issue A-ABORT/A-P-ABORT indication, close transport", func(p *Provider, ev Event) *State {
	ind := Indication{Type: IndicationAbort, Err: ev.err}
	if ab, ok := ev.pdu.(*pdu.A_ABORT); ok {
		ind.Abort = ab
	}
	p.upcallCh <- ind
	p.closeConnection()
	return Sta1
}}

var actionAA4 = &Action{"AA-4", "Issue A-P-ABORT indication", func(p *Provider, ev Event) *State {
	p.upcallCh <- Indication{Type: IndicationTransportClosed, Err: ev.err}
	return Sta1
}}

var actionAA5 = &Action{"AA-5", "Stop ARTIM", func(p *Provider, ev Event) *State {
	p.artim.Stop()
	return Sta1
}}

var actionAA6 = &Action{"AA-6", "Ignore PDU", func(p *Provider, ev Event) *State {
	return Sta13
}}

var actionAA7 = &Action{"AA-7", "Send A-ABORT PDU", func(p *Provider, ev Event) *State {
	p.sendPDU(&pdu.A_ABORT{Source: 0, Reason: 0})
	return Sta13
}}

var actionAA8 = &Action{"AA-8", "Send A-ABORT PDU (service-dul source), issue A-P-ABORT indication, start ARTIM", func(p *Provider, ev Event) *State {
	p.sendPDU(&pdu.A_ABORT{Source: 2, Reason: 0})
	p.upcallCh <- Indication{Type: IndicationAbort, Err: ev.err}
	p.artim.Start()
	return Sta13
}}
