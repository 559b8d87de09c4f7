package dimse_test

import (
	"encoding/binary"
	"testing"

	"github.com/yasushi-saito/go-dicom/dicomio"

	"github.com/net-dicom/ulcore/dimse"
)

// FuzzReadMessage: decoding an arbitrary command set must never panic,
// and a successfully decoded message must re-encode without error.
func FuzzReadMessage(f *testing.F) {
	seed := dicomio.NewBytesEncoder(binary.LittleEndian, dicomio.ImplicitVR)
	dimse.EncodeMessage(seed, &dimse.C_ECHO_RQ{MessageID: 1, CommandDataSetType: dimse.CommandDataSetTypeNull})
	if err := seed.Error(); err == nil {
		f.Add(seed.Bytes())
	}
	f.Add([]byte{})
	f.Add([]byte{0x01, 0x02, 0x03, 0x04})

	f.Fuzz(func(t *testing.T, data []byte) {
		d := dicomio.NewBytesDecoder(data, binary.LittleEndian, dicomio.ImplicitVR)
		msg := dimse.ReadMessage(d)
		if d.Finish() != nil || msg == nil {
			return
		}
		e := dicomio.NewBytesEncoder(binary.LittleEndian, dicomio.ImplicitVR)
		dimse.EncodeMessage(e, msg)
		if err := e.Error(); err != nil {
			t.Errorf("successfully decoded message failed to re-encode: %v", err)
		}
	})
}
