package cache

import "github.com/lbryio/claimtrie/node"

// OpKind names one of the four inverse actions an UndoLog entry can
// replay. Each forward mutation the cache applies appends the Op that
// reverses it, in order; replaying the log back-to-front and applying
// each one's inverse reproduces the pre-block state (spec.md P2).
type OpKind uint8

const (
	// UndoAddClaim reverses an AddClaim: remove the claim, wherever it
	// currently sits.
	UndoAddClaim OpKind = iota
	// UndoSpendClaim reverses a SpendClaim: reinsert the claim exactly
	// as it was.
	UndoSpendClaim
	// UndoAddSupport reverses an AddSupport.
	UndoAddSupport
	// UndoSpendSupport reverses a SpendSupport.
	UndoSpendSupport
)

// Op is one entry of a block's undo log. A queue drain performed by
// IncrementBlock appends entries of the same four kinds as an explicit
// AddClaim/SpendClaim/AddSupport/SpendSupport call would: activating a
// pending claim logs an UndoAddClaim (reversed by removing it again),
// and expiring an active claim logs an UndoSpendClaim carrying the
// claim's pre-expiry snapshot (reversed by reinserting it).
type Op struct {
	Kind OpKind

	Name []byte

	ClaimID    node.ClaimID
	Claim      *node.Claim
	Support    *node.Support
	WasPending bool
}

// UndoLog is the opaque-to-callers, per-block record sufficient to
// reverse a flushed block during reorganisation (spec.md §6).
type UndoLog struct {
	Entries []Op
}
