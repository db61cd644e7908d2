package wrflock

import (
	"errors"
	"testing"
	"time"
)

func TestPhaseString(t *testing.T) {
	cases := map[Phase]string{
		PhaseWrite:  "write",
		PhaseRead:   "read",
		PhaseFree:   "free",
		PhaseUninit: "uninit",
	}
	for p, want := range cases {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", p, got, want)
		}
	}
}

func TestUnifiedDispatcherMatchesNamedMethods(t *testing.T) {
	l := New(0, false)
	if !l.Acquire(PhaseWrite) {
		t.Fatal("Acquire(PhaseWrite) failed")
	}
	if !l.Wait(PhaseWrite, time.Second) {
		t.Fatal("Wait(PhaseWrite) failed")
	}
	if !l.TryWait(PhaseWrite) {
		t.Fatal("TryWait(PhaseWrite) should be true once Wait succeeded")
	}
	if l.TryWait(PhaseRead) {
		t.Fatal("TryWait(PhaseRead) should be false while in write phase")
	}
	if !l.Release(PhaseWrite) {
		t.Fatal("Release(PhaseWrite) failed")
	}
}

func TestWithPhaseRunsBodyAndReleases(t *testing.T) {
	l := New(0, false)
	ran := false
	if err := WithPhase(l, PhaseWrite, time.Second, func() { ran = true }); err != nil {
		t.Fatalf("WithPhase returned error: %v", err)
	}
	if !ran {
		t.Fatal("WithPhase did not run the body")
	}
	if l.CurrentState() == PhaseWrite {
		t.Fatal("WithPhase did not release the phase")
	}
}

func TestWithPhaseOverflowReturnsError(t *testing.T) {
	l := New(0, false)
	if !l.WAcquire() {
		t.Fatal("WAcquire failed")
	}
	err := WithPhase(l, PhaseWrite, time.Millisecond, func() {
		t.Fatal("body must not run on acquire overflow")
	})
	if !errors.Is(err, ErrOverflow) {
		t.Fatalf("WithPhase error = %v, want ErrOverflow", err)
	}
}

func TestPollPhaseSkipsPollWhenAdmitted(t *testing.T) {
	l := New(0, false)
	polls := 0
	ran := false
	err := PollPhase(l, PhaseWrite, func() {
		polls++
	}, func() {
		ran = true
	})
	if err != nil {
		t.Fatalf("PollPhase returned error: %v", err)
	}
	if !ran {
		t.Fatal("PollPhase did not run the body")
	}
	// The lock primes straight into CURR_W, so TryWait should succeed
	// immediately without ever invoking poll.
	if polls != 0 {
		t.Fatalf("PollPhase invoked poll %d times on an already-admitted phase", polls)
	}
}
