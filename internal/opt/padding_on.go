//go:build !(amd64 || 386 || arm || mips || mipsle || wasm) && !wrflock_disable_padding && !wrflock_enable_padding

package opt

import (
	"unsafe"
)

// LockSlot pads an 8-byte WRFLock word out to a full cache line, for use in
// a slot array where adjacent locks must not false-share. Padding is
// automatically enabled for architectures that are NOT:
//   - amd64 (x86_64): hardware optimizations often make padding less critical
//   - 32-bit architectures (386, arm, mips, mipsle, wasm): smaller cache
//     lines/memory constraints
//
// Enabled for: arm64, s390x, ppc64, ppc64le, riscv64, loong64, mips64, mips64le, etc.
type LockSlot struct {
	W uint64 // the lock's 8-byte word, accessed atomically
	_ [(CacheLineSize - unsafe.Sizeof(struct {
		W uint64
	}{})%CacheLineSize) % CacheLineSize]byte
}
