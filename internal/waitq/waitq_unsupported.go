//go:build !linux && !darwin && !windows

package waitq

import "time"

// This platform has no address-based wait primitive wired up. Per the
// design's "unsupported platforms refuse to compile" requirement, this is a
// hard compile-time error rather than a silent stdlib fallback: a
// mis-scheduled sleep-poll loop masquerading as a futex would violate the
// timeout-accuracy and wake-correctness properties the state machine relies
// on.
type unsupportedPlatform [-1]int

var _ = unsupportedPlatform{}

type defaultBackend struct{}

func (defaultBackend) Wait(addr *uint32, expected uint32, timeout time.Duration) bool { return false }
func (defaultBackend) WakeOne(addr *uint32)                                           {}
func (defaultBackend) WakeAll(addr *uint32)                                           {}
