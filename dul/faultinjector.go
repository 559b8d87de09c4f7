package dul

import (
	"fmt"
	"math"
)

type faultInjectorAction int

const (
	faultInjectorContinue faultInjectorAction = iota
	faultInjectorDisconnect
)

type faultInjectorStateTransition struct {
	state  *State
	event  wireEvent
	action *Action
}

// FaultInjector drives protocol-fuzzing tests: it occasionally mutates
// one byte of an outbound PDU or has the Provider sever the connection
// instead of sending it, and records every state
// transition a Provider takes so a test can assert on the path walked.
// It is not meant for production use.
type FaultInjector struct {
	fuzz  []byte
	steps int

	stateHistory []faultInjectorStateTransition
}

func fuzzByte(f *FaultInjector) byte {
	if len(f.fuzz) == 0 {
		panic("fault injector has no fuzz bytes left to draw from")
	}
	v := f.fuzz[f.steps]
	f.steps++
	if f.steps >= len(f.fuzz) {
		f.steps = 0
	}
	return v
}

func fuzzUInt16(f *FaultInjector) uint16 {
	return (uint16(fuzzByte(f)) << 8) | uint16(fuzzByte(f))
}

func fuzzExponentialInRange(f *FaultInjector, max int) int {
	r := float64(fuzzUInt16(f)) / float64(0xffff)
	exp := -math.Log(r)
	v := int(exp * float64(max))
	if v < 0 {
		v = 0
	}
	if v >= max {
		v = max - 1
	}
	return v
}

// NewFuzzFaultInjector creates a FaultInjector that draws its mutation
// decisions from fuzz, cycling through it as needed.
func NewFuzzFaultInjector(fuzz []byte) *FaultInjector {
	return &FaultInjector{fuzz: fuzz}
}

// onStateTransition records that event fired while p was in state,
// about to run action.
func (f *FaultInjector) onStateTransition(state *State, event wireEvent, action *Action) {
	f.stateHistory = append(f.stateHistory, faultInjectorStateTransition{state, event, action})
}

// onSend inspects (and may mutate in place) the bytes about to be
// written to the wire, and decides whether the Provider should sever
// the connection instead of sending them.
func (f *FaultInjector) onSend(data []byte) faultInjectorAction {
	if len(f.fuzz) == 0 || len(data) == 0 {
		return faultInjectorContinue
	}
	op := fuzzByte(f)
	if op >= 0xe8 {
		return faultInjectorDisconnect
	}
	if op >= 0xc0 {
		offset := fuzzExponentialInRange(f, len(data))
		data[offset] = fuzzByte(f)
	}
	return faultInjectorContinue
}

func (f *FaultInjector) String() string {
	s := "statehistory:{"
	for i, e := range f.stateHistory {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("{state:%v, event:%v, action:%v}\n", e.state, e.event, e.action)
	}
	return s + "}"
}
