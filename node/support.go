package node

import "github.com/decred/dcrd/wire"

// Support is a third-party endorsement that adds its amount to a specific
// claim's EffectiveAmount while active. An orphaned support, whose target
// claim has been spent, is kept around (it may be reinstated by an undo)
// but contributes nothing (spec.md §3, §4.6).
type Support struct {
	ID ClaimID

	OutPoint wire.OutPoint

	SupportedClaimID ClaimID

	Amount int64

	HeightClaimed int32

	HeightValid int32
}

// Clone returns a deep copy.
func (s *Support) Clone() *Support {
	ss := *s
	return &ss
}

// ActiveAt reports whether the support contributes to its target's
// EffectiveAmount at the given height: it must have activated, and its
// target claim (checked by the caller) must still exist.
func (s *Support) ActiveAt(height int32) bool {
	return height >= s.HeightValid
}
