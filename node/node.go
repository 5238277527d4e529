package node

import "github.com/decred/dcrd/chaincfg/chainhash"

// Node is the unit the trie is built from: the set of claims living at an
// exact name, the set of supports targeting those claims, and the byte
// edges leading to existing descendants. A Node does not hold pointers to
// its children; the tree shape is recovered from the store it is kept in,
// keyed by path (spec.md §6, "Persisted state layout"). This is what lets
// the cache overlay (C5) do copy-on-write at the granularity of a single
// path instead of cloning whole subtrees.
type Node struct {
	// Children records which single-byte edges lead to an existing
	// descendant. The boolean payload is unused; presence is the signal.
	Children map[byte]bool

	// Claims is the ordered, active claim set for this exact name. Kept
	// sorted per I2 at all times; Claims[0] is the controlling claim.
	Claims Claims

	// Supports targets claims living at this same name.
	Supports []*Support

	// Hash caches this node's Merkle commitment. Nil means dirty: the
	// trie must recompute it (and, transitively, every ancestor's) on
	// the next MerkleHash call.
	Hash *chainhash.Hash
}

// New returns an empty node with no claims, supports, or children.
func New() *Node {
	return &Node{Children: make(map[byte]bool)}
}

// Clone returns a deep-enough copy for copy-on-write use: Children,
// Claims, and Supports are all copied, though individual Claim/Support
// values are shared until mutated (they are treated as immutable once
// published — callers that mutate a claim in place must Clone it first).
func (n *Node) Clone() *Node {
	if n == nil {
		return New()
	}
	clone := &Node{
		Children: make(map[byte]bool, len(n.Children)),
		Claims:   make(Claims, len(n.Claims)),
		Supports: make([]*Support, len(n.Supports)),
	}
	for b := range n.Children {
		clone.Children[b] = true
	}
	copy(clone.Claims, n.Claims)
	copy(clone.Supports, n.Supports)
	return clone
}

// IsEmpty reports whether the node carries no claims and has no
// descendants, i.e. it is eligible for pruning from the store.
func (n *Node) IsEmpty() bool {
	return n == nil || (len(n.Claims) == 0 && len(n.Children) == 0)
}

// HasClaim reports whether a claim with the given id is active at this
// node. A nil node holds no claims.
func (n *Node) HasClaim(id ClaimID) bool {
	return n != nil && n.Claims.IndexOf(id) >= 0
}

// Controlling returns the controlling claim (Claims[0]) or nil if the
// node carries no claims.
func (n *Node) Controlling() *Claim {
	if len(n.Claims) == 0 {
		return nil
	}
	return n.Claims[0]
}

// RecomputeEffectiveAmounts refreshes EffectiveAmount for every claim from
// its own Amount plus the amounts of every support targeting it that is
// active at height, then re-sorts Claims per I2. Must be called whenever
// claims or supports at this node are added, removed, or cross an
// activation/expiration boundary (SPEC_FULL.md supplemented feature 3).
func (n *Node) RecomputeEffectiveAmounts(height int32) {
	totals := make(map[ClaimID]int64, len(n.Claims))
	for _, claim := range n.Claims {
		totals[claim.ID] = claim.Amount
	}
	for _, support := range n.Supports {
		if !support.ActiveAt(height) {
			continue
		}
		if _, ok := totals[support.SupportedClaimID]; !ok {
			continue // orphaned support: target claim absent from this node
		}
		totals[support.SupportedClaimID] += support.Amount
	}
	for _, claim := range n.Claims {
		claim.EffectiveAmount = totals[claim.ID]
	}
	n.Claims.Sort()
}
