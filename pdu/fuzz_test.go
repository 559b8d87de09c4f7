package pdu_test

import (
	"bytes"
	"testing"

	"github.com/net-dicom/ulcore/pdu"
)

// FuzzDecodePDU: Decode must never panic on arbitrary input, and any
// successfully decoded PDU must re-encode without error.
func FuzzDecodePDU(f *testing.F) {
	seedRQ := &pdu.A_ASSOCIATE{
		Type: pdu.PDUTypeA_ASSOCIATE_RQ, ProtocolVersion: 1,
		CalledAETitle: "SERVER         ", CallingAETitle: "CLIENT         ",
		Items: []pdu.SubItem{
			&pdu.ApplicationContextItem{Name: pdu.DICOMApplicationContextItemName},
		},
	}
	if seed, err := pdu.EncodePDU(seedRQ); err == nil {
		f.Add(seed)
	}
	f.Add([]byte{byte(pdu.PDUTypeA_ABORT), 0, 0, 0, 0, 2, 0, 0})
	f.Add([]byte{byte(pdu.PDUTypeA_RELEASE_RQ), 0, 0, 0, 0, 4, 0, 0, 0, 0})
	f.Add([]byte{0x01, 0x02, 0x03})

	f.Fuzz(func(t *testing.T, data []byte) {
		p, err := pdu.ReadPDU(bytes.NewReader(data), 1<<16)
		if err != nil || p == nil {
			return
		}
		if _, err := pdu.EncodePDU(p); err != nil {
			t.Errorf("successfully decoded PDU failed to re-encode: %v", err)
		}
	})
}
