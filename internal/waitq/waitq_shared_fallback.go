//go:build !linux

package waitq

// Shared falls back to the same backend as Default on platforms whose
// address-based wait primitive makes no private/shared distinction
// (__ulock_wait and WaitOnAddress are both address-scoped regardless of
// whether the address lives in a cross-process mapping). The lock's
// PSHARED bit is still preserved across SetFlags on these platforms; it
// simply selects no different code path here.
var Shared = Default
