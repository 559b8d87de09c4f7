package uid_test

import "github.com/net-dicom/ulcore/uid"

import "testing"

func TestValid(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"1.2.840.10008.1.1", true},
		{"", false},
		{"1.2.3", true},
	}
	for _, c := range cases {
		if got := uid.Valid(c.in); got != c.want {
			t.Errorf("Valid(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestPadAndTrimAETitle(t *testing.T) {
	padded := uid.PadAETitle("MYAE")
	if len(padded) != uid.AETitleLength {
		t.Fatalf("PadAETitle length = %d, want %d", len(padded), uid.AETitleLength)
	}
	if uid.TrimAETitle(padded) != "MYAE" {
		t.Errorf("TrimAETitle(%q) = %q, want MYAE", padded, uid.TrimAETitle(padded))
	}
}

func TestValidAETitle(t *testing.T) {
	if uid.ValidAETitle("") {
		t.Error("empty title should be invalid")
	}
	if uid.ValidAETitle("   ") {
		t.Error("all-space title should be invalid")
	}
	if !uid.ValidAETitle("STORESCU") {
		t.Error("STORESCU should be valid")
	}
}

func TestEqualAETitle(t *testing.T) {
	if !uid.EqualAETitle("STORESCU", uid.PadAETitle("STORESCU")) {
		t.Error("padded and unpadded titles should compare equal")
	}
	if uid.EqualAETitle("STORESCU", "storescu") {
		t.Error("AE title comparison must be case-sensitive")
	}
}
