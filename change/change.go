// Package change defines the closed set of mutations a block can apply to
// the claim trie: adding or spending a claim, and adding or spending a
// support. Representing the four operation kinds as a single tagged
// variant (rather than an interface with four implementations) keeps undo
// logs trivially serializable and keeps block.Apply a flat switch instead
// of a type hierarchy.
package change

import (
	"github.com/decred/dcrd/wire"

	"github.com/lbryio/claimtrie/node"
)

// OpType names one of the four consensus-relevant operations a
// transaction output can encode.
type OpType uint8

const (
	// AddClaim registers a new claim on a name.
	AddClaim OpType = iota
	// SpendClaim removes a claim from a name, wherever it currently sits
	// (trie or activation queue).
	SpendClaim
	// AddSupport registers a new support for an existing claim.
	AddSupport
	// SpendSupport removes a support.
	SpendSupport
)

func (t OpType) String() string {
	switch t {
	case AddClaim:
		return "AddClaim"
	case SpendClaim:
		return "SpendClaim"
	case AddSupport:
		return "AddSupport"
	case SpendSupport:
		return "SpendSupport"
	default:
		return "Unknown"
	}
}

// Change is one entry of a block's claim-relevant outputs/spends, in the
// order the block processor observed them. It is also the unit the undo
// log is built from: applying the inverse of every Change in a block, in
// reverse order, must reproduce the pre-block state exactly (spec.md P2).
type Change struct {
	Type OpType

	Name []byte

	// OutPoint identifies the transaction output this add/spend refers
	// to; ClaimID/SupportID is derived from it via node.DeriveID.
	OutPoint wire.OutPoint

	// ClaimID is always populated. For AddSupport/SpendSupport it is the
	// id of the support itself; SupportedClaimID below names the claim
	// the support boosts.
	ClaimID node.ClaimID

	// SupportedClaimID is only meaningful for AddSupport/SpendSupport.
	SupportedClaimID node.ClaimID

	Amount int64

	Height int32
}
