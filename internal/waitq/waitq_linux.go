//go:build linux

package waitq

import (
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// defaultBackend and sharedBackend both issue raw SYS_FUTEX syscalls via
// golang.org/x/sys/unix, the idiomatic cgo-free way to reach the futex
// syscall from Go (grounded on the futex wrapper pattern of
// golang.org/x/sys/unix.Syscall6(unix.SYS_FUTEX, ...)), extended with a
// timespec for bounded waits. They differ only in whether FUTEX_PRIVATE_FLAG
// is set: defaultBackend assumes the word is only ever touched by threads of
// this process (the common case, and faster — the kernel skips the VMA
// lookup needed to support cross-process waiters); sharedBackend omits the
// flag so a lock created with pshared=true behaves correctly if ever mapped
// into more than one process's address space.
type defaultBackend struct{}
type sharedBackend struct{}

// Shared is selected by the lock when it was created with pshared=true.
var Shared Backend = sharedBackend{}

// FUTEX_WAIT, FUTEX_WAKE and FUTEX_PRIVATE_FLAG are fixed Linux UAPI futex
// op-code values (linux/futex.h); golang.org/x/sys/unix exposes SYS_FUTEX
// (the syscall number) but not these op codes, so they're defined here.
const (
	futexOpWait        = 0
	futexOpWake        = 1
	futexOpPrivateFlag = 128

	futexWaitPrivate = futexOpWait | futexOpPrivateFlag
	futexWakePrivate = futexOpWake | futexOpPrivateFlag
)

func (defaultBackend) Wait(addr *uint32, expected uint32, timeout time.Duration) bool {
	return futexWait(addr, expected, timeout, futexWaitPrivate)
}

func (defaultBackend) WakeOne(addr *uint32) { futexWake(addr, 1, futexWakePrivate) }

func (defaultBackend) WakeAll(addr *uint32) {
	futexWake(addr, int32(^uint32(0)>>1), futexWakePrivate)
}

func (sharedBackend) Wait(addr *uint32, expected uint32, timeout time.Duration) bool {
	return futexWait(addr, expected, timeout, futexOpWait)
}

func (sharedBackend) WakeOne(addr *uint32) { futexWake(addr, 1, futexOpWake) }

func (sharedBackend) WakeAll(addr *uint32) {
	futexWake(addr, int32(^uint32(0)>>1), futexOpWake)
}

func futexWait(addr *uint32, expected uint32, timeout time.Duration, op uintptr) bool {
	var ts *unix.Timespec
	if timeout > 0 {
		t := unix.NsecToTimespec(timeout.Nanoseconds())
		ts = &t
	}
	_, _, errno := unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		op,
		uintptr(expected),
		uintptr(unsafe.Pointer(ts)),
		0, 0,
	)
	// EAGAIN means *addr had already changed before the kernel parked us;
	// treat it the same as a real wakeup since the caller always rechecks.
	switch errno {
	case 0, unix.EAGAIN, unix.EINTR:
		return true
	default:
		return false
	}
}

func futexWake(addr *uint32, n int32, op uintptr) {
	unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		op,
		uintptr(n),
		0, 0, 0,
	)
}
