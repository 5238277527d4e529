package node

import "github.com/decred/dcrd/wire"

// Claim is a bid on a name backed by locked value. It is a value object:
// two Claims are equal iff their ID fields match, regardless of any other
// field (spec.md §4.3).
type Claim struct {
	ID ClaimID

	OutPoint wire.OutPoint

	// Amount is the claim's own locked value, exclusive of supports.
	Amount int64

	// EffectiveAmount is Amount plus the amount of every currently
	// active support targeting this claim. It is recomputed by the node
	// whenever claims or supports are added, spent, or cross an
	// activation/expiration boundary; it is never mutated directly.
	EffectiveAmount int64

	// HeightClaimed is the height the claim's transaction was mined at.
	HeightClaimed int32

	// HeightValid is the height at which the claim becomes eligible to
	// win the name. Until then it sits in the activation queue, not the
	// trie.
	HeightValid int32
}

// Clone returns a deep copy, used by the cache overlay when it needs to
// mutate a claim without disturbing the base trie's copy.
func (c *Claim) Clone() *Claim {
	cc := *c
	return &cc
}

// Equal compares claims by identity alone, per spec.md §4.3.
func (c *Claim) Equal(other *Claim) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.ID == other.ID
}
