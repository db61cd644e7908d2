//go:build !wrflock_cachelinesize_32 && !wrflock_cachelinesize_64 && !wrflock_cachelinesize_128 && !wrflock_cachelinesize_256

package opt

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize is used to pad slot arrays of WRFLocks against false
// sharing between adjacent slots. It's computed via golang.org/x/sys/cpu
// rather than hard-coded per architecture.
const CacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})
