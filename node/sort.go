package node

import "sort"

// Claims is the ordered set of active claims at one trie node. Claims.Sort
// establishes spec.md's invariant I2: claims are ordered by descending
// EffectiveAmount, ties broken by ascending HeightValid, further ties by
// lexicographic ClaimID. Claims[0], once sorted, is the controlling claim.
type Claims []*Claim

// Sort reorders c in place per I2.
func (c Claims) Sort() {
	sort.SliceStable(c, func(i, j int) bool {
		a, b := c[i], c[j]
		if a.EffectiveAmount != b.EffectiveAmount {
			return a.EffectiveAmount > b.EffectiveAmount
		}
		if a.HeightValid != b.HeightValid {
			return a.HeightValid < b.HeightValid
		}
		return a.ID.Less(b.ID)
	})
}

// IndexOf returns the position of the claim with the given id, or -1.
func (c Claims) IndexOf(id ClaimID) int {
	for i, claim := range c {
		if claim.ID == id {
			return i
		}
	}
	return -1
}

// Find returns the claim with the given id, or nil.
func (c Claims) Find(id ClaimID) *Claim {
	if i := c.IndexOf(id); i >= 0 {
		return c[i]
	}
	return nil
}
