package models

// LockState is the advisory lock setting carried on an element row.
type LockState string

// Lock states. LockSelf applies to the element only. LockPropagate is
// inherited by every descendant.
const (
	LockNone      LockState = ""
	LockSelf      LockState = "self"
	LockPropagate LockState = "propagate"
)

// Locked indicates whether the state is anything other than LockNone.
func (l LockState) Locked() bool {
	return l != LockNone
}
