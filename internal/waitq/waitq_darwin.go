//go:build darwin

package waitq

/*
#include <stdint.h>

// __ulock_wait/__ulock_wake are private libSystem entry points (the same
// ones the Go runtime itself calls on darwin for its internal futex-style
// parking, see runtime/lock_sema.go's macOS sibling lock_futex.go in newer
// toolchains). There is no exported Go wrapper for them in golang.org/x/sys,
// so a cgo declaration against libSystem is the only way to reach them
// short of reimplementing the Go runtime's own boundary.
extern int __ulock_wait(uint32_t operation, void *addr, uint64_t value, uint32_t timeout_us);
extern int __ulock_wake(uint32_t operation, void *addr, uint64_t wake_value);
*/
import "C"

import (
	"time"
	"unsafe"
)

const (
	ulCompareAndWait = 1
	ulfNoErrno       = 0x01000000
	ulfWakeAll       = 0x00000100
)

type defaultBackend struct{}

func (defaultBackend) Wait(addr *uint32, expected uint32, timeout time.Duration) bool {
	var timeoutUS uint32
	if timeout > 0 {
		us := timeout.Microseconds()
		if us > int64(^uint32(0)) {
			us = int64(^uint32(0))
		}
		timeoutUS = uint32(us)
	}
	ret := C.__ulock_wait(
		C.uint32_t(ulCompareAndWait|ulfNoErrno),
		unsafe.Pointer(addr),
		C.uint64_t(expected),
		C.uint32_t(timeoutUS),
	)
	// With ULF_NO_ERRNO, a negative return is -errno. ETIMEDOUT means the
	// value never changed within the budget; anything else (including a
	// successful wake or the value having already changed) is a wakeup.
	const eTimedout = 60 // ETIMEDOUT on darwin
	if ret < 0 && -ret == eTimedout {
		return false
	}
	return true
}

func (defaultBackend) WakeOne(addr *uint32) {
	C.__ulock_wake(C.uint32_t(ulCompareAndWait|ulfNoErrno), unsafe.Pointer(addr), 0)
}

func (defaultBackend) WakeAll(addr *uint32) {
	C.__ulock_wake(C.uint32_t(ulCompareAndWait|ulfNoErrno|ulfWakeAll), unsafe.Pointer(addr), 0)
}
