// Package block translates a block's claim-relevant transaction outputs
// and spends into cache operations, and replays a block's undo log to
// reverse it on reorganisation (spec.md C6).
package block

import (
	"github.com/pkg/errors"

	"github.com/decred/dcrd/chaincfg/chainhash"

	"github.com/lbryio/claimtrie/cache"
	"github.com/lbryio/claimtrie/change"
	"github.com/lbryio/claimtrie/node"
	"github.com/lbryio/claimtrie/param"
	"github.com/lbryio/claimtrie/trie"
)

// Processor drives the cache overlay on behalf of the external block
// processor: one Apply call per block, one Disconnect call to reverse it.
type Processor struct {
	trie   *trie.Trie
	params param.Params
}

// New returns a Processor operating against trie with the given params.
func New(t *trie.Trie, params param.Params) *Processor {
	return &Processor{trie: t, params: params}
}

// Apply stages every change in a block (already in block/output order, as
// produced by the external validator) against a fresh cache, drains the
// activation/expiration queues for height, and flushes. It returns the
// new root and the undo log needed to reverse this exact block. Every
// change is staged at height, whatever its own Height field holds.
//
// Edge cases handled by virtue of simply processing changes in order
// (spec.md §4.6): a same-transaction claim update (spend old + add new
// on one name) works because the spend is processed before the add in
// output order; two claims created in one transaction are independent
// adds that both enter the queue, with I2 deciding the winner once they
// activate; a support for a not-yet-seen claim is accepted and simply
// contributes nothing until (if ever) its target claim exists.
func (p *Processor) Apply(changes []change.Change, height int32) (*chainhash.Hash, *cache.UndoLog, error) {
	c := cache.New(p.trie, p.params)

	for _, chg := range changes {
		chg.Height = height
		if err := applyOne(c, chg); err != nil {
			c.Drop()
			return nil, nil, errors.Wrapf(err, "applying change %s on %q", chg.Type, chg.Name)
		}
	}

	if err := c.IncrementBlock(height); err != nil {
		c.Drop()
		return nil, nil, errors.Wrap(err, "increment block")
	}

	root, undoLog, err := c.Flush()
	if err != nil {
		return nil, nil, errors.Wrap(err, "flush")
	}
	return root, undoLog, nil
}

func applyOne(c *cache.Cache, chg change.Change) error {
	switch chg.Type {
	case change.AddClaim:
		claim := &node.Claim{
			ID:            chg.ClaimID,
			OutPoint:      chg.OutPoint,
			Amount:        chg.Amount,
			HeightClaimed: chg.Height,
		}
		return c.AddClaim(chg.Height, chg.Name, claim)

	case change.SpendClaim:
		_, _, err := c.SpendClaim(chg.Height, chg.Name, chg.ClaimID)
		return err

	case change.AddSupport:
		support := &node.Support{
			ID:               chg.ClaimID,
			OutPoint:         chg.OutPoint,
			SupportedClaimID: chg.SupportedClaimID,
			Amount:           chg.Amount,
			HeightClaimed:    chg.Height,
		}
		return c.AddSupport(chg.Height, chg.Name, support)

	case change.SpendSupport:
		_, _, err := c.SpendSupport(chg.Height, chg.Name, chg.ClaimID)
		return err

	default:
		return errors.Errorf("block: unknown change type %v", chg.Type)
	}
}

// Disconnect reverses a previously flushed block: its undo log is
// replayed through inverse operations against a fresh cache, which is
// then flushed back onto the trie (spec.md §4.6). height is the height
// the block being disconnected was at.
func (p *Processor) Disconnect(height int32, log *cache.UndoLog) (*chainhash.Hash, error) {
	c := cache.New(p.trie, p.params)

	if err := c.Replay(log, height); err != nil {
		c.Drop()
		return nil, errors.Wrap(err, "replay undo log")
	}

	root, _, err := c.Flush()
	if err != nil {
		return nil, errors.Wrap(err, "flush after disconnect")
	}
	return root, nil
}
