// Package wrflock implements the Write/Read/Free Lock: a synchronization
// primitive that serializes three phases of access to a shared resource in
// a strict cyclic order — a single writer produces content, one or more
// readers consume it, and a single freer reclaims it, after which the cycle
// returns to write. It is intended as the per-slot synchronizer for a
// single-producer multiple-consumer ring buffer with explicit memory
// management.
package wrflock

import (
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/shayanhabibi/wrflock/internal/opt"
	"github.com/shayanhabibi/wrflock/internal/waitq"
)

// WRFLock is the lock's single 8-byte word, viewed either as one 64-bit
// word (for reader-counter updates, which must be atomic with respect to
// the state half) or as two 32-bit halves: the state half S, where futex
// waits occur, and the counters half C, which holds RD_COUNT. See bits.go
// for the field layout and the endian-dependent split between S and C.
//
// The word lives in opt.LockSlot rather than a bare field directly on
// WRFLock: when many WRFLocks back adjacent ring-buffer slots, padding each
// lock's word out to a cache line (opt.LockSlot, enabled by default on
// architectures where false sharing is costlier) keeps one slot's
// writer/reader traffic from bouncing the cache line backing its neighbor.
//
// slot.W is a bare uint64 rather than atomic.Uint64: the wait backend needs
// the raw address of the state half to hand to the OS, and taking that
// address from inside a typed atomic would mean relying on the internal
// field layout of sync/atomic's wrapper types. A bare word with
// package-level sync/atomic calls is the same shape the teacher uses for
// its own address-taking primitives (RWLock's uintptr word, BitLockUint64's
// *uint64 parameter) — both exist specifically because their callers need
// a raw pointer into the lock's storage, same as here.
type WRFLock struct {
	_ noCopy

	slot opt.LockSlot

	backend waitq.Backend
}

// New creates a lock primed for its first writer: NEXT_W is set and
// everything else is zero except the caller-selected wait-strategy flags
// and the pshared marker. pshared has no behavioral effect beyond selecting
// which futex flavor Linux uses (see internal/waitq); it is preserved as a
// bit for informational/cross-platform-parity purposes only.
func New(flags Flags, pshared bool) *WRFLock {
	l := &WRFLock{}
	s := uint32(sNextW) | flags.bits()
	if pshared {
		s |= sPshared
	}
	l.slot.W = stateToWord(s)
	if pshared {
		l.backend = waitq.Shared
	} else {
		l.backend = waitq.Default
	}
	return l
}

// Close releases any OS resources held by the lock. WRFLock tracks no
// reference count; the caller must ensure no goroutine can still reach the
// lock before calling Close.
func (l *WRFLock) Close() {}

// stateAddr returns the address of the state half S as a *uint32, for use
// with the wait backend. w is 8-byte aligned by the Go memory model's
// guarantee for the first word of an allocated struct, so the 4-byte
// sub-word at stateByteOffset is itself naturally aligned.
func (l *WRFLock) stateAddr() *uint32 {
	base := unsafe.Pointer(&l.slot.W)
	return (*uint32)(unsafe.Add(base, stateByteOffset))
}

func (l *WRFLock) loadWord() uint64 {
	return atomic.LoadUint64(&l.slot.W)
}

func (l *WRFLock) loadS() uint32 {
	return wordState(l.loadWord())
}

// casLoop applies compute to the current state half S, retrying the whole
// read-compute-CAS cycle under contention. compute returns the new state
// bits and whether the operation should fail outright (e.g. Overflow)
// without attempting a CAS. casLoop never blocks; it is bounded only by CAS
// contention, per the "wait-free per step" design requirement. This is the
// "template-inlined CAS loop, remapped as a helper that takes a pure
// function" pattern the design calls for, generalizing the teacher's
// tryLockUint64/BitLockUint64 retry shape.
func (l *WRFLock) casLoop(compute func(s uint32) (next uint32, ok bool)) bool {
	for {
		w := atomic.LoadUint64(&l.slot.W)
		s := wordState(w)
		next, ok := compute(s)
		if !ok {
			return false
		}
		if next == s {
			return true
		}
		if atomic.CompareAndSwapUint64(&l.slot.W, w, withState(w, next)) {
			return true
		}
	}
}

// ---------------------------------------------------------------------
// Write phase
// ---------------------------------------------------------------------

// WAcquire non-blockingly reserves the next write slot. It returns false
// (Overflow) if a writer is already reserved.
func (l *WRFLock) WAcquire() bool {
	return l.casLoop(func(s uint32) (uint32, bool) {
		if s&sAcqW != 0 {
			return 0, false
		}
		s |= sAcqW
		if s&sAcqF != 0 {
			s |= sRdNextLoop
		}
		if s&sNextW != 0 {
			s = (s &^ sNextW) | sCurrW
		}
		return s, true
	})
}

// WWait blocks or yields (per the writer's wait-strategy flag) until the
// machine is in the Write phase, or until timeout elapses (0 = infinite).
func (l *WRFLock) WWait(timeout time.Duration) bool {
	return l.wait(sCurrW, sYieldW, timeout)
}

// WTryWait reports whether the machine is currently in the Write phase,
// without blocking.
func (l *WRFLock) WTryWait() bool {
	return l.loadS()&sCurrW != 0
}

// WRelease marks the writer done and advances the machine. It returns
// false (Overflow) if no writer was reserved. Its CAS is the publication
// point for any user-level writes performed during the write phase: the
// store here, and the acquire-ordered load that confirms the successor
// phase in Wait, together give writer-critical-section-happens-before-
// reader/freer-critical-section.
func (l *WRFLock) WRelease() bool {
	var wake uint32
	ok := l.casLoop(func(s uint32) (uint32, bool) {
		if s&sAcqW == 0 {
			return 0, false
		}
		s &^= sAcqW | sCurrW | sRdNextLoop
		switch {
		case s&sAcqR != 0:
			s |= sCurrR
		case s&sAcqF != 0:
			s |= sCurrF
		default:
			s |= sNextRF
		}
		wake = s
		return s, true
	})
	if !ok {
		return false
	}
	if (wake&(sCurrR|sRdNextLoop) != 0 && wake&sYieldR == 0) ||
		(wake&sCurrF != 0 && wake&sYieldF == 0) {
		l.backend.WakeAll(l.stateAddr())
	}
	return true
}

// ---------------------------------------------------------------------
// Read phase
// ---------------------------------------------------------------------

// RAcquire blocks behind any outstanding writer->freer handoff (the
// RD_NEXT_LOOP barrier), then non-blockingly reserves a read slot. It
// returns false (Overflow) if 65535 readers are already reserved.
func (l *WRFLock) RAcquire() bool {
	l.readBarrier()

	for {
		w := atomic.LoadUint64(&l.slot.W)
		c := wordCounter(w)
		if rdCount(c) == cRdCountMax {
			return false
		}
		if atomic.CompareAndSwapUint64(&l.slot.W, w, w+counterDelta(cRdCountUnit)) {
			break
		}
	}

	l.casLoop(func(s uint32) (uint32, bool) {
		s |= sAcqR
		if s&sNextRF != 0 {
			s = (s &^ sNextRF) | sCurrR
		}
		return s, true
	})
	return true
}

// readBarrier parks while RD_NEXT_LOOP is set, per the reader-admission
// barrier: readers must not slip past a writer that is waiting behind a
// queued freer.
func (l *WRFLock) readBarrier() {
	var spins int
	for {
		s := l.loadS()
		if s&sRdNextLoop == 0 {
			return
		}
		if s&sYieldR != 0 {
			delay(&spins)
			continue
		}
		l.backend.Wait(l.stateAddr(), s, 0)
	}
}

// RWait blocks or yields until the machine is in the Read phase, or until
// timeout elapses (0 = infinite).
func (l *WRFLock) RWait(timeout time.Duration) bool {
	return l.wait(sCurrR, sYieldR, timeout)
}

// RTryWait reports whether the machine is currently in the Read phase,
// without blocking.
func (l *WRFLock) RTryWait() bool {
	return l.loadS()&sCurrR != 0
}

// RRelease marks one reader done and, if it was the last active reader,
// advances the machine. It returns false (Overflow) if RD_COUNT is already
// zero. The full-word CAS keeps the counter decrement atomic with any
// state-half transition that only the last reader out may perform.
func (l *WRFLock) RRelease() bool {
	var wake uint32
	var woke bool
	for {
		w := atomic.LoadUint64(&l.slot.W)
		c := wordCounter(w)
		s := wordState(w)
		if rdCount(c) == 0 {
			return false
		}
		c2 := c - cRdCountUnit
		s2 := s
		if rdCount(c2) == 0 {
			s2 &^= sAcqR
			if s2&sAcqF != 0 {
				s2 = (s2 &^ sCurrR) | sCurrF
			} else {
				s2 = (s2 &^ sCurrR) | sNextRF
			}
		}
		w2 := joinWord(s2, c2)
		if atomic.CompareAndSwapUint64(&l.slot.W, w, w2) {
			wake = s2
			woke = true
			break
		}
	}
	if woke && wake&sCurrF != 0 && wake&sYieldF == 0 {
		l.backend.WakeAll(l.stateAddr())
	}
	return true
}

// ---------------------------------------------------------------------
// Free phase
// ---------------------------------------------------------------------

// FAcquire non-blockingly reserves the next free slot. It returns false
// (Overflow) if a freer is already reserved.
func (l *WRFLock) FAcquire() bool {
	return l.casLoop(func(s uint32) (uint32, bool) {
		if s&sAcqF != 0 {
			return 0, false
		}
		s |= sAcqF
		if s&sNextRF != 0 {
			s = (s &^ sNextRF) | sCurrF
		}
		return s, true
	})
}

// FWait blocks or yields until the machine is in the Free phase, or until
// timeout elapses (0 = infinite).
func (l *WRFLock) FWait(timeout time.Duration) bool {
	return l.wait(sCurrF, sYieldF, timeout)
}

// FTryWait reports whether the machine is currently in the Free phase,
// without blocking.
func (l *WRFLock) FTryWait() bool {
	return l.loadS()&sCurrF != 0
}

// FRelease marks the freer done and advances the machine back toward
// Write. It returns false (Overflow) if no freer was reserved.
func (l *WRFLock) FRelease() bool {
	var wake uint32
	ok := l.casLoop(func(s uint32) (uint32, bool) {
		if s&sAcqF == 0 {
			return 0, false
		}
		s &^= sAcqF | sCurrF
		if s&sAcqW != 0 {
			s |= sCurrW
		} else {
			s |= sNextW
		}
		wake = s
		return s, true
	})
	if !ok {
		return false
	}
	if wake&sCurrW != 0 && wake&sYieldW == 0 {
		l.backend.WakeAll(l.stateAddr())
	}
	return true
}

// ---------------------------------------------------------------------
// Shared wait machinery
// ---------------------------------------------------------------------

// wait is the common body of WWait/RWait/FWait: loop until curr is set in
// S, dispatching to the blocking backend or a yield-spin depending on
// yieldBit, honoring an optional overall timeout budget. On success it
// issues no extra fence beyond the acquire-ordered atomic load already used
// by loadS — Go's sync/atomic loads are sequentially consistent, which is
// at least as strong as the acquire ordering the design calls for.
func (l *WRFLock) wait(curr, yieldBit uint32, timeout time.Duration) bool {
	var start time.Time
	hasDeadline := timeout > 0
	if hasDeadline {
		start = time.Now()
	}
	var spins int
	for {
		s := l.loadS()
		if s&curr != 0 {
			return true
		}
		if s&yieldBit == 0 {
			remaining := timeout
			if hasDeadline {
				elapsed := time.Since(start)
				if elapsed >= timeout {
					return false
				}
				remaining = timeout - elapsed
			}
			if !l.backend.Wait(l.stateAddr(), s, remaining) {
				return false
			}
			continue
		}
		if hasDeadline && time.Since(start) > timeout {
			return false
		}
		delay(&spins)
	}
}

// CurrentState reports which phase, if any, is currently admitted.
func (l *WRFLock) CurrentState() Phase {
	s := l.loadS()
	switch {
	case s&sCurrW != 0:
		return PhaseWrite
	case s&sCurrR != 0:
		return PhaseRead
	case s&sCurrF != 0:
		return PhaseFree
	default:
		return PhaseUninit
	}
}
