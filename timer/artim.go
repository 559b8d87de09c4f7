// Package timer implements the ARTIM (Association Request/Release Timer)
// watchdog used by the DUL state machine, as a standalone type rather
// than the inline start/stop/restart closures a state machine could
// keep to itself, matching the separation pynetdicom draws between
// fsm.py and timer.py.
package timer

import (
	"sync"
	"time"
)

// DefaultARTIM is the default ARTIM timeout (PS3.8 §5): "fixed protocol
// timer (default 30 s) used during Sta2/Sta13".
const DefaultARTIM = 30 * time.Second

// ARTIM is a one-shot, restartable countdown timer. Expiry is reported by
// sending on C once per countdown armed by Start or Restart; a Stop before
// expiry suppresses that send. ARTIM is safe for concurrent use.
type ARTIM struct {
	mu       sync.Mutex
	duration time.Duration
	timer    *time.Timer
	c        chan struct{}
}

// New creates a stopped ARTIM timer with the given duration. Expired
// fires are delivered on the channel returned by C.
func New(duration time.Duration) *ARTIM {
	if duration <= 0 {
		duration = DefaultARTIM
	}
	return &ARTIM{duration: duration, c: make(chan struct{}, 1)}
}

// C returns the channel on which an expiry is reported. The same channel
// is reused across Start/Stop/Restart calls for the lifetime of the
// ARTIM.
func (a *ARTIM) C() <-chan struct{} {
	return a.c
}

// Start arms the timer. Starting an already-running timer is a no-op
// (AE-5/AE-8/AR-4/AA-8 only start the timer if it isn't already counting
// down for this association phase); use Restart to force a fresh
// countdown.
func (a *ARTIM) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		return
	}
	a.arm()
}

// Restart re-arms the timer from zero regardless of whether it was
// already running, per AA-1's "start (or restart if already started)"
// wording in PS3.8 §4.2.
func (a *ARTIM) Restart() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.arm()
}

func (a *ARTIM) arm() {
	var t *time.Timer
	t = time.AfterFunc(a.duration, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.timer != t {
			return // stopped or re-armed meanwhile
		}
		a.timer = nil
		select {
		case a.c <- struct{}{}:
		default:
		}
	})
	a.timer = t
}

// Stop disarms the timer. Legal to call even if the timer isn't running.
func (a *ARTIM) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	// Drain any fire that raced ahead of Stop.
	select {
	case <-a.c:
	default:
	}
}
