// Package dul implements the DICOM Upper Layer's 13-state, 19-event
// connection state machine (P3.8 9.2.3) and the Provider that drives it
// over a net.Conn.
//
// The state/event/action vocabulary below mirrors the standard's own
// naming (Sta1..Sta13, Evt1..Evt19, AE-1..AA-8) deliberately: this table
// *is* the specification's closed set, so it is kept structurally
// intact rather than redesigned.
package dul

import "fmt"

// State is one of the 13 states of the DUL state machine.
type State struct {
	Name        string
	Description string
}

func (s *State) String() string {
	return fmt.Sprintf("%s(%s)", s.Name, s.Description)
}

var (
	Sta1  = &State{"Sta1", "Idle"}
	Sta2  = &State{"Sta2", "Transport connection open (awaiting A-ASSOCIATE-RQ PDU)"}
	Sta3  = &State{"Sta3", "Awaiting local A-ASSOCIATE response primitive"}
	Sta4  = &State{"Sta4", "Awaiting transport connection to open"}
	Sta5  = &State{"Sta5", "Awaiting A-ASSOCIATE-AC or -RJ PDU"}
	Sta6  = &State{"Sta6", "Association established, ready for data transfer"}
	Sta7  = &State{"Sta7", "Awaiting A-RELEASE-RP PDU"}
	Sta8  = &State{"Sta8", "Awaiting local A-RELEASE response primitive"}
	Sta9  = &State{"Sta9", "Release collision, requestor side: awaiting local response"}
	Sta10 = &State{"Sta10", "Release collision, acceptor side: awaiting A-RELEASE-RP PDU"}
	Sta11 = &State{"Sta11", "Release collision, requestor side: awaiting A-RELEASE-RP PDU"}
	Sta12 = &State{"Sta12", "Release collision, acceptor side: awaiting local response primitive"}
	Sta13 = &State{"Sta13", "Awaiting transport close (association no longer exists)"}
)

// Event is one of the 19 events the DUL state machine reacts to.
type Event struct {
	ID          int
	Description string
}

var (
	Evt1  = Event{1, "A-ASSOCIATE request (local user)"}
	Evt2  = Event{2, "Transport connection confirmed"}
	Evt3  = Event{3, "A-ASSOCIATE-AC PDU received"}
	Evt4  = Event{4, "A-ASSOCIATE-RJ PDU received"}
	Evt5  = Event{5, "Transport connection indication"}
	Evt6  = Event{6, "A-ASSOCIATE-RQ PDU received"}
	Evt7  = Event{7, "A-ASSOCIATE response primitive (accept)"}
	Evt8  = Event{8, "A-ASSOCIATE response primitive (reject)"}
	Evt9  = Event{9, "P-DATA request primitive"}
	Evt10 = Event{10, "P-DATA-TF PDU received"}
	Evt11 = Event{11, "A-RELEASE request primitive"}
	Evt12 = Event{12, "A-RELEASE-RQ PDU received"}
	Evt13 = Event{13, "A-RELEASE-RP PDU received"}
	Evt14 = Event{14, "A-RELEASE response primitive"}
	Evt15 = Event{15, "A-ABORT request primitive"}
	Evt16 = Event{16, "A-ABORT PDU received"}
	Evt17 = Event{17, "Transport connection closed indication"}
	Evt18 = Event{18, "ARTIM timer expired"}
	Evt19 = Event{19, "Unrecognized or invalid PDU received"}
)

// Action is one of the standard's named transition actions (AE-1..AA-8).
// Callback mutates p as needed (sending PDUs, starting/stopping the
// ARTIM timer, delivering indications) and returns the next state.
type Action struct {
	Name        string
	Description string
	Callback    func(p *Provider, ev Event) *State
}

func (a *Action) String() string {
	return fmt.Sprintf("%s(%s)", a.Name, a.Description)
}

type transition struct {
	from   *State
	event  Event
	action *Action
}

// transitions is P3.8 Table 9-10, encoded as (current state, event) ->
// action. Two entries sharing a (state, event) pair would be a bug in
// the standard itself; findAction returns the first match.
var transitions = []transition{
	{Sta1, Evt1, actionAE1},
	{Sta1, Evt5, actionAE5},

	{Sta2, Evt3, actionAA1},
	{Sta2, Evt4, actionAA1},
	{Sta2, Evt6, actionAE6},
	{Sta2, Evt10, actionAA1},
	{Sta2, Evt12, actionAA1},
	{Sta2, Evt13, actionAA1},
	{Sta2, Evt16, actionAA2},
	{Sta2, Evt17, actionAA5},
	{Sta2, Evt18, actionAA2},
	{Sta2, Evt19, actionAA1},

	{Sta3, Evt3, actionAA8},
	{Sta3, Evt4, actionAA8},
	{Sta3, Evt6, actionAA8},
	{Sta3, Evt7, actionAE7},
	{Sta3, Evt8, actionAE8},
	{Sta3, Evt10, actionAA8},
	{Sta3, Evt12, actionAA8},
	{Sta3, Evt13, actionAA8},
	{Sta3, Evt15, actionAA1},
	{Sta3, Evt16, actionAA3},
	{Sta3, Evt17, actionAA4},
	{Sta3, Evt19, actionAA8},

	{Sta4, Evt2, actionAE2},
	{Sta4, Evt15, actionAA2},
	{Sta4, Evt17, actionAA4},

	{Sta5, Evt3, actionAE3},
	{Sta5, Evt4, actionAE4},
	{Sta5, Evt6, actionAA8},
	{Sta5, Evt10, actionAA8},
	{Sta5, Evt12, actionAA8},
	{Sta5, Evt13, actionAA8},
	{Sta5, Evt15, actionAA1},
	{Sta5, Evt16, actionAA3},
	{Sta5, Evt17, actionAA4},
	{Sta5, Evt18, actionAA8},
	{Sta5, Evt19, actionAA8},

	{Sta6, Evt3, actionAA8},
	{Sta6, Evt4, actionAA8},
	{Sta6, Evt6, actionAA8},
	{Sta6, Evt9, actionDT1},
	{Sta6, Evt10, actionDT2},
	{Sta6, Evt11, actionAR1},
	{Sta6, Evt12, actionAR2},
	{Sta6, Evt13, actionAA8},
	{Sta6, Evt15, actionAA1},
	{Sta6, Evt16, actionAA3},
	{Sta6, Evt17, actionAA4},
	{Sta6, Evt19, actionAA8},

	{Sta7, Evt3, actionAA8},
	{Sta7, Evt4, actionAA8},
	{Sta7, Evt6, actionAA8},
	{Sta7, Evt10, actionAR6},
	{Sta7, Evt12, actionAR8},
	{Sta7, Evt13, actionAR3},
	{Sta7, Evt15, actionAA1},
	{Sta7, Evt16, actionAA3},
	{Sta7, Evt17, actionAA4},
	{Sta7, Evt19, actionAA8},

	{Sta8, Evt3, actionAA8},
	{Sta8, Evt4, actionAA8},
	{Sta8, Evt6, actionAA8},
	{Sta8, Evt9, actionAR7},
	{Sta8, Evt10, actionAA8},
	{Sta8, Evt12, actionAA8},
	{Sta8, Evt13, actionAA8},
	{Sta8, Evt14, actionAR4},
	{Sta8, Evt15, actionAA1},
	{Sta8, Evt16, actionAA3},
	{Sta8, Evt17, actionAA4},
	{Sta8, Evt19, actionAA8},

	{Sta9, Evt3, actionAA8},
	{Sta9, Evt4, actionAA8},
	{Sta9, Evt6, actionAA8},
	{Sta9, Evt10, actionAA8},
	{Sta9, Evt12, actionAA8},
	{Sta9, Evt13, actionAA8},
	{Sta9, Evt14, actionAR9},
	{Sta9, Evt15, actionAA1},
	{Sta9, Evt16, actionAA3},
	{Sta9, Evt17, actionAA4},
	{Sta9, Evt19, actionAA8},

	{Sta10, Evt3, actionAA8},
	{Sta10, Evt4, actionAA8},
	{Sta10, Evt6, actionAA8},
	{Sta10, Evt10, actionAA8},
	{Sta10, Evt12, actionAA8},
	{Sta10, Evt13, actionAR10},
	{Sta10, Evt15, actionAA1},
	{Sta10, Evt16, actionAA3},
	{Sta10, Evt17, actionAA4},
	{Sta10, Evt19, actionAA8},

	{Sta11, Evt3, actionAA8},
	{Sta11, Evt4, actionAA8},
	{Sta11, Evt6, actionAA8},
	{Sta11, Evt10, actionAA8},
	{Sta11, Evt12, actionAA8},
	{Sta11, Evt13, actionAR3},
	{Sta11, Evt15, actionAA1},
	{Sta11, Evt16, actionAA3},
	{Sta11, Evt17, actionAA4},
	{Sta11, Evt19, actionAA8},

	{Sta12, Evt3, actionAA8},
	{Sta12, Evt4, actionAA8},
	{Sta12, Evt6, actionAA8},
	{Sta12, Evt10, actionAA8},
	{Sta12, Evt12, actionAA8},
	{Sta12, Evt13, actionAA8},
	{Sta12, Evt14, actionAR4},
	{Sta12, Evt15, actionAA1},
	{Sta12, Evt16, actionAA3},
	{Sta12, Evt17, actionAA4},
	{Sta12, Evt19, actionAA8},

	{Sta13, Evt3, actionAA6},
	{Sta13, Evt4, actionAA6},
	{Sta13, Evt6, actionAA7},
	{Sta13, Evt7, actionAA7},
	{Sta13, Evt8, actionAA7},
	{Sta13, Evt9, actionAA7},
	{Sta13, Evt10, actionAA6},
	{Sta13, Evt11, actionAA6},
	{Sta13, Evt12, actionAA6},
	{Sta13, Evt13, actionAA6},
	{Sta13, Evt14, actionAA6},
	{Sta13, Evt15, actionAA2},
	{Sta13, Evt16, actionAA2},
	{Sta13, Evt17, actionAR5},
	{Sta13, Evt18, actionAA2},
	{Sta13, Evt19, actionAA7},
}

// findAction looks up the action for (state, event). A nil return means
// the standard defines no transition for that pair; the caller treats
// this as a protocol error (AA-8-equivalent abort), since it can only
// arise from a bug in this table, not from untrusted network input
// (Evt19 already catches malformed/unrecognized PDUs at every state).
func findAction(state *State, event Event) *Action {
	for _, t := range transitions {
		if t.from == state && t.event == event {
			return t.action
		}
	}
	return nil
}
