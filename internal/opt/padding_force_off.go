//go:build wrflock_disable_padding

package opt

// LockSlot pads an 8-byte WRFLock word for use in a slot array. Padding is
// force-disabled via the wrflock_disable_padding build tag.
// Use: go build -tags=wrflock_disable_padding
type LockSlot struct {
	W uint64
}
