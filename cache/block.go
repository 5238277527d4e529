package cache

import (
	"github.com/pkg/errors"

	"github.com/lbryio/claimtrie/node"
)

// IncrementBlock drains the activation and expiration queues at
// newHeight and applies their effects: pending claims/supports due at
// this height move into the trie, and active claims/supports scheduled
// to expire at this height are removed (spec.md §4.5, §4.6 step 3).
func (c *Cache) IncrementBlock(newHeight int32) error {
	start := len(c.log)

	for _, pending := range c.activation.DrainClaimsAt(newHeight) {
		if err := c.activateClaim(pending.Name, pending.Claim, newHeight); err != nil {
			return err
		}
		c.log = append(c.log, Op{Kind: UndoAddClaim, Name: pending.Name, ClaimID: pending.Claim.ID})
	}
	for _, pending := range c.activation.DrainSupportsAt(newHeight) {
		if err := c.activateSupport(pending.Name, pending.Support, newHeight); err != nil {
			return err
		}
		c.log = append(c.log, Op{Kind: UndoAddSupport, Name: pending.Name, ClaimID: pending.Support.ID})
	}

	for id, entry := range c.expiration.DrainAt(newHeight) {
		n, err := c.getNode(entry.Name)
		if err != nil {
			return err
		}
		if entry.IsSupport {
			var snapshot *node.Support
			for _, s := range n.Supports {
				if s.ID == id {
					snapshot = s.Clone()
					break
				}
			}
			if snapshot == nil {
				return errors.Errorf("cache: expiring support %s not found at %q", id, entry.Name)
			}
			if err := c.deactivateSupport(entry.Name, id, newHeight); err != nil {
				return err
			}
			c.log = append(c.log, Op{Kind: UndoSpendSupport, Name: entry.Name, Support: snapshot, WasPending: false})
			continue
		}

		claim := n.Claims.Find(id)
		if claim == nil {
			return errors.Errorf("cache: expiring claim %s not found at %q", id, entry.Name)
		}
		snapshot := claim.Clone()
		if err := c.deactivateClaim(entry.Name, id, newHeight); err != nil {
			return err
		}
		c.log = append(c.log, Op{Kind: UndoSpendClaim, Name: entry.Name, Claim: snapshot, WasPending: false})
	}

	c.lastIncrementHeight = newHeight
	c.lastIncrementLogStart = start
	return nil
}

// DecrementBlock reverses the most recent IncrementBlock call on this
// cache, which must have been for oldHeight (spec.md §4.5).
func (c *Cache) DecrementBlock(oldHeight int32) error {
	if c.lastIncrementLogStart < 0 || c.lastIncrementHeight != oldHeight {
		return errors.Errorf("cache: decrement_block(%d) has no matching increment_block", oldHeight)
	}
	entries := append([]Op(nil), c.log[c.lastIncrementLogStart:]...)
	c.log = c.log[:c.lastIncrementLogStart]
	c.lastIncrementLogStart = -1

	for i := len(entries) - 1; i >= 0; i-- {
		if err := c.applyInverse(entries[i], oldHeight); err != nil {
			return err
		}
	}
	return nil
}

// applyInverse performs the inverse action named by op, used by both
// DecrementBlock and block.Disconnect when replaying a persisted undo
// log against a fresh cache.
func (c *Cache) applyInverse(op Op, height int32) error {
	switch op.Kind {
	case UndoAddClaim:
		return c.UndoAddClaim(height, op.Name, op.ClaimID)
	case UndoSpendClaim:
		return c.UndoSpendClaim(height, op.Name, op.Claim, op.WasPending)
	case UndoAddSupport:
		return c.UndoAddSupport(height, op.Name, op.ClaimID)
	case UndoSpendSupport:
		return c.UndoSpendSupport(height, op.Name, op.Support, op.WasPending)
	default:
		return errors.Errorf("cache: unknown undo op kind %d", op.Kind)
	}
}

// Replay applies every entry of log in reverse order against c, the
// mechanism block.Disconnect uses to reverse a flushed block (spec.md
// §4.6: "the log is replayed through inverse operations").
func (c *Cache) Replay(log *UndoLog, height int32) error {
	for i := len(log.Entries) - 1; i >= 0; i-- {
		if err := c.applyInverse(log.Entries[i], height); err != nil {
			return err
		}
	}
	return nil
}
