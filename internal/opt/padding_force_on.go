//go:build wrflock_enable_padding

package opt

import (
	"unsafe"
)

// LockSlot pads an 8-byte WRFLock word for use in a slot array. Padding is
// force-enabled via the wrflock_enable_padding build tag.
// Use: go build -tags=wrflock_enable_padding
type LockSlot struct {
	W uint64
	_ [(CacheLineSize - unsafe.Sizeof(struct {
		W uint64
	}{})%CacheLineSize) % CacheLineSize]byte
}
