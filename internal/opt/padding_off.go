//go:build (amd64 || 386 || arm || mips || mipsle || wasm) && !wrflock_disable_padding && !wrflock_enable_padding

package opt

// LockSlot pads an 8-byte WRFLock word for use in a slot array. Padding is
// disabled by default for:
//   - amd64
//   - 32-bit architectures (386, arm, mips, mipsle, wasm)
type LockSlot struct {
	W uint64 // the lock's 8-byte word, accessed atomically
}
