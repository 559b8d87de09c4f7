package timer_test

import (
	"testing"
	"time"

	"github.com/net-dicom/ulcore/timer"
)

func TestExpiry(t *testing.T) {
	a := timer.New(10 * time.Millisecond)
	a.Start()
	select {
	case <-a.C():
	case <-time.After(time.Second):
		t.Fatal("timer never expired")
	}
}

func TestStopSuppressesExpiry(t *testing.T) {
	a := timer.New(20 * time.Millisecond)
	a.Start()
	a.Stop()
	select {
	case <-a.C():
		t.Fatal("stopped timer must not fire")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestRestartExtendsDeadline(t *testing.T) {
	a := timer.New(30 * time.Millisecond)
	a.Start()
	time.Sleep(15 * time.Millisecond)
	a.Restart()
	start := time.Now()
	select {
	case <-a.C():
		if time.Since(start) < 20*time.Millisecond {
			t.Fatal("restart did not extend the deadline")
		}
	case <-time.After(time.Second):
		t.Fatal("timer never expired")
	}
}

func TestStartIsIdempotent(t *testing.T) {
	a := timer.New(50 * time.Millisecond)
	a.Start()
	a.Start() // must not panic or double-fire
	<-a.C()
}
