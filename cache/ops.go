package cache

import (
	"github.com/pkg/errors"

	"github.com/lbryio/claimtrie/node"
)

// controllingHeightValid returns the height_valid of name's controlling
// claim, and whether name currently has one at all, used to compute the
// activation delay of a challenger (spec.md §4.4).
func (c *Cache) controllingHeightValid(name []byte) (int32, bool, error) {
	n, err := c.getNode(name)
	if err != nil {
		return 0, false, err
	}
	if n == nil || len(n.Claims) == 0 {
		return 0, false, nil
	}
	return n.Claims[0].HeightValid, true, nil
}

// AddClaim stages a new claim on name. If the name is uncontrolled the
// claim activates immediately; otherwise it is scheduled per the
// activation delay formula (spec.md §4.4, §4.5).
func (c *Cache) AddClaim(height int32, name []byte, claim *node.Claim) error {
	controllingHeightValid, hasController, err := c.controllingHeightValid(name)
	if err != nil {
		return err
	}
	delay := c.params.ActivationDelay(height, controllingHeightValid, hasController)
	claim.HeightValid = height + delay

	if delay == 0 {
		if err := c.activateClaim(name, claim, height); err != nil {
			return err
		}
	} else {
		c.activation.EnqueueClaim(claim.HeightValid, name, claim)
	}

	c.log = append(c.log, Op{Kind: UndoAddClaim, Name: name, ClaimID: claim.ID})
	return nil
}

// UndoAddClaim reverses AddClaim: the claim is removed from wherever it
// currently sits, pending or active.
func (c *Cache) UndoAddClaim(height int32, name []byte, id node.ClaimID) error {
	if _, ok := c.activation.RemoveClaim(id); ok {
		return nil
	}
	return c.deactivateClaim(name, id, height)
}

// SpendClaim removes a claim, pending or active, and cancels its
// expiration. It returns the removed claim and whether it had still been
// pending, both needed to build the exact undo entry.
func (c *Cache) SpendClaim(height int32, name []byte, id node.ClaimID) (*node.Claim, bool, error) {
	if pending, ok := c.activation.RemoveClaim(id); ok {
		c.log = append(c.log, Op{Kind: UndoSpendClaim, Name: name, Claim: pending.Claim.Clone(), WasPending: true})
		return pending.Claim, true, nil
	}

	n, err := c.getNode(name)
	if err != nil {
		return nil, false, err
	}
	claim := n.Claims.Find(id)
	if claim == nil {
		return nil, false, errors.Errorf("cache: spend of unknown claim %s at %q", id, name)
	}
	snapshot := claim.Clone()

	if err := c.deactivateClaim(name, id, height); err != nil {
		return nil, false, err
	}

	c.log = append(c.log, Op{Kind: UndoSpendClaim, Name: name, Claim: snapshot, WasPending: false})
	return snapshot, false, nil
}

// UndoSpendClaim reinserts claim exactly as it was: back into the
// activation queue if it had not yet activated, or back into the trie
// (restoring its expiration) otherwise.
func (c *Cache) UndoSpendClaim(height int32, name []byte, claim *node.Claim, wasPending bool) error {
	if wasPending {
		c.activation.EnqueueClaim(claim.HeightValid, name, claim.Clone())
		return nil
	}
	return c.activateClaim(name, claim.Clone(), height)
}

func (c *Cache) activateClaim(name []byte, claim *node.Claim, height int32) error {
	n, err := c.cloneForWrite(name)
	if err != nil {
		return err
	}
	n.Claims = append(n.Claims, claim)
	if err := c.linkChild(name); err != nil {
		return err
	}
	if err := c.recomputeNode(name, height); err != nil {
		return err
	}
	c.expiration.Enqueue(claim.HeightValid+c.params.ExpirationTime, name, claim.ID, false)
	return nil
}

func (c *Cache) deactivateClaim(name []byte, id node.ClaimID, height int32) error {
	n, err := c.cloneForWrite(name)
	if err != nil {
		return err
	}
	idx := n.Claims.IndexOf(id)
	if idx < 0 {
		return errors.Errorf("cache: claim %s not active at %q", id, name)
	}
	n.Claims = append(n.Claims[:idx], n.Claims[idx+1:]...)
	c.expiration.Remove(id)
	if err := c.recomputeNode(name, height); err != nil {
		return err
	}
	return c.unlinkChildIfEmpty(name)
}

// AddSupport stages a new support for an existing or not-yet-existing
// claim, following the same activation-delay formula as claims, measured
// against the claim it endorses (spec.md §4.4).
func (c *Cache) AddSupport(height int32, name []byte, support *node.Support) error {
	controllingHeightValid, hasController, err := c.controllingHeightValid(name)
	if err != nil {
		return err
	}
	delay := c.params.ActivationDelay(height, controllingHeightValid, hasController)
	support.HeightValid = height + delay

	if delay == 0 {
		if err := c.activateSupport(name, support, height); err != nil {
			return err
		}
	} else {
		c.activation.EnqueueSupport(support.HeightValid, name, support)
	}

	c.log = append(c.log, Op{Kind: UndoAddSupport, Name: name, ClaimID: support.ID})
	return nil
}

// UndoAddSupport reverses AddSupport.
func (c *Cache) UndoAddSupport(height int32, name []byte, id node.ClaimID) error {
	if _, ok := c.activation.RemoveSupport(id); ok {
		return nil
	}
	return c.deactivateSupport(name, id, height)
}

// SpendSupport removes a support, pending or active.
func (c *Cache) SpendSupport(height int32, name []byte, id node.ClaimID) (*node.Support, bool, error) {
	if pending, ok := c.activation.RemoveSupport(id); ok {
		c.log = append(c.log, Op{Kind: UndoSpendSupport, Name: name, Support: pending.Support.Clone(), WasPending: true})
		return pending.Support, true, nil
	}

	n, err := c.getNode(name)
	if err != nil {
		return nil, false, err
	}
	var support *node.Support
	for _, s := range n.Supports {
		if s.ID == id {
			support = s
			break
		}
	}
	if support == nil {
		return nil, false, errors.Errorf("cache: spend of unknown support %s at %q", id, name)
	}
	snapshot := support.Clone()

	if err := c.deactivateSupport(name, id, height); err != nil {
		return nil, false, err
	}

	c.log = append(c.log, Op{Kind: UndoSpendSupport, Name: name, Support: snapshot, WasPending: false})
	return snapshot, false, nil
}

// UndoSpendSupport reinserts support exactly as it was.
func (c *Cache) UndoSpendSupport(height int32, name []byte, support *node.Support, wasPending bool) error {
	if wasPending {
		c.activation.EnqueueSupport(support.HeightValid, name, support.Clone())
		return nil
	}
	return c.activateSupport(name, support.Clone(), height)
}

func (c *Cache) activateSupport(name []byte, support *node.Support, height int32) error {
	n, err := c.cloneForWrite(name)
	if err != nil {
		return err
	}
	n.Supports = append(n.Supports, support)
	if err := c.linkChild(name); err != nil {
		return err
	}
	if err := c.recomputeNode(name, height); err != nil {
		return err
	}
	c.expiration.Enqueue(support.HeightValid+c.params.ExpirationTime, name, support.ID, true)
	return nil
}

func (c *Cache) deactivateSupport(name []byte, id node.ClaimID, height int32) error {
	n, err := c.cloneForWrite(name)
	if err != nil {
		return err
	}
	idx := -1
	for i, s := range n.Supports {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.Errorf("cache: support %s not active at %q", id, name)
	}
	n.Supports = append(n.Supports[:idx], n.Supports[idx+1:]...)
	c.expiration.Remove(id)
	if err := c.recomputeNode(name, height); err != nil {
		return err
	}
	return c.unlinkChildIfEmpty(name)
}
