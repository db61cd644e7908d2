//go:build windows

package waitq

import (
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// defaultBackend on Windows calls WaitOnAddress/WakeByAddressSingle/
// WakeByAddressAll from api-ms-win-core-synch-l1-2-0.dll. These were added
// in Windows 8 and are not yet wrapped by typed functions in
// golang.org/x/sys/windows, so they're reached via that package's lazy-DLL
// loading idiom (the standard way to call an unwrapped Win32 API from Go
// without cgo).
type defaultBackend struct{}

var (
	modSynch             = windows.NewLazySystemDLL("api-ms-win-core-synch-l1-2-0.dll")
	procWaitOnAddress    = modSynch.NewProc("WaitOnAddress")
	procWakeByAddrSingle = modSynch.NewProc("WakeByAddressSingle")
	procWakeByAddrAll    = modSynch.NewProc("WakeByAddressAll")

	loadOnce sync.Once
)

func ensureLoaded() {
	loadOnce.Do(func() {
		_ = modSynch.Load()
	})
}

func (defaultBackend) Wait(addr *uint32, expected uint32, timeout time.Duration) bool {
	ensureLoaded()
	ms := uint32(0xFFFFFFFF) // INFINITE
	if timeout > 0 {
		if d := timeout.Milliseconds(); d < int64(0xFFFFFFFF) {
			ms = uint32(d)
		}
	}
	ret, _, _ := procWaitOnAddress.Call(
		uintptr(unsafe.Pointer(addr)),
		uintptr(unsafe.Pointer(&expected)),
		uintptr(4), // size of the compared value in bytes
		uintptr(ms),
	)
	return ret != 0
}

func (defaultBackend) WakeOne(addr *uint32) {
	ensureLoaded()
	procWakeByAddrSingle.Call(uintptr(unsafe.Pointer(addr)))
}

func (defaultBackend) WakeAll(addr *uint32) {
	ensureLoaded()
	procWakeByAddrAll.Call(uintptr(unsafe.Pointer(addr)))
}
