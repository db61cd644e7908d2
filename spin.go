package wrflock

import (
	"time"
	_ "unsafe" // for go:linkname
)

// noCopy may be embedded in structs that must not be copied after first use.
//
// See https://golang.org/issues/8005#issuecomment-190753527 for details.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// trySpin attempts one round of active spinning, mirroring the runtime's own
// judgment of whether spinning is still profitable (GOMAXPROCS > 1 and the
// spin count hasn't exceeded the runtime's active-spin budget).
func trySpin(spins *int) bool {
	if runtime_canSpin(*spins) {
		*spins++
		runtime_doSpin()
		return true
	}
	return false
}

// delay backs off a CAS retry loop: a few rounds of active spinning, then a
// 500us sleep (duration borrowed from Facebook/folly's Sleeper: see
// https://github.com/facebook/folly/blob/main/folly/synchronization/detail/Sleeper.h).
func delay(spins *int) {
	if trySpin(spins) {
		return
	}
	*spins = 0
	time.Sleep(500 * time.Microsecond)
}

//go:linkname runtime_canSpin sync.runtime_canSpin
func runtime_canSpin(i int) bool

//go:linkname runtime_doSpin sync.runtime_doSpin
func runtime_doSpin()
