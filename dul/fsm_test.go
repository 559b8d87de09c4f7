package dul

import "testing"

func TestTransitionsHaveNoDuplicateEntries(t *testing.T) {
	seen := make(map[*State]map[Event]bool)
	for _, tr := range transitions {
		byEvent, ok := seen[tr.from]
		if !ok {
			byEvent = make(map[Event]bool)
			seen[tr.from] = byEvent
		}
		if byEvent[tr.event] {
			t.Errorf("duplicate transition entry for state=%v event=%v", tr.from, tr.event)
		}
		byEvent[tr.event] = true
	}
}

func TestTransitionsNeverReferenceNilAction(t *testing.T) {
	for _, tr := range transitions {
		if tr.action == nil {
			t.Errorf("state=%v event=%v has a nil action", tr.from, tr.event)
		}
	}
}

func TestFindActionUnknownPairReturnsNil(t *testing.T) {
	if a := findAction(Sta1, Evt10); a != nil {
		t.Errorf("findAction(Sta1, Evt10) = %v, want nil", a)
	}
}

func TestFindActionKnownPair(t *testing.T) {
	a := findAction(Sta6, Evt9)
	if a != actionDT1 {
		t.Errorf("findAction(Sta6, Evt9) = %v, want actionDT1", a)
	}
}

// Every one of the 13 states must have a defined reaction (possibly
// nil, meaning "protocol error") for each of the 19 events; this test
// only guards against a typo that aims an entry at the wrong state.
func TestAllTransitionsNameARealState(t *testing.T) {
	states := map[*State]bool{
		Sta1: true, Sta2: true, Sta3: true, Sta4: true, Sta5: true, Sta6: true,
		Sta7: true, Sta8: true, Sta9: true, Sta10: true, Sta11: true, Sta12: true, Sta13: true,
	}
	for _, tr := range transitions {
		if !states[tr.from] {
			t.Errorf("transition references unknown state %v", tr.from)
		}
	}
}
