// Package cache implements the copy-on-write overlay a block's worth of
// claim-trie mutations is staged through (spec.md C5): mutations land in
// a per-path shadow map and cloned queue snapshots, a candidate Merkle
// root can be computed without touching the base trie, and the whole
// block can be flushed or dropped atomically.
package cache

import (
	"github.com/pkg/errors"

	"github.com/decred/dcrd/chaincfg/chainhash"

	"github.com/lbryio/claimtrie/node"
	"github.com/lbryio/claimtrie/param"
	"github.com/lbryio/claimtrie/queue"
	"github.com/lbryio/claimtrie/trie"
)

// Cache is a copy-on-write overlay above a base *trie.Trie, accumulating
// the mutations of exactly one block.
type Cache struct {
	base   *trie.Trie
	params param.Params

	// shadow holds cloned nodes touched by this block, keyed by path. A
	// present key with a nil value is a tombstone: the node existed in
	// base but has been pruned in the overlay.
	shadow map[string]*node.Node

	activation *queue.Activation
	expiration *queue.Expiration

	log []Op

	lastIncrementHeight   int32
	lastIncrementLogStart int
}

// New stages a new block's mutations against base.
func New(base *trie.Trie, params param.Params) *Cache {
	return &Cache{
		base:                  base,
		params:                params,
		shadow:                make(map[string]*node.Node),
		activation:            base.Activation.Clone(),
		expiration:            base.Expiration.Clone(),
		lastIncrementLogStart: -1,
	}
}

// getNode resolves a read through the overlay first, then the base.
func (c *Cache) getNode(path []byte) (*node.Node, error) {
	if n, ok := c.shadow[string(path)]; ok {
		return n, nil
	}
	return c.base.Get(path)
}

// cloneForWrite returns the overlay's mutable copy of the node at path,
// cloning it from base on first touch.
func (c *Cache) cloneForWrite(path []byte) (*node.Node, error) {
	key := string(path)
	if n, ok := c.shadow[key]; ok {
		if n == nil {
			n = node.New()
			c.shadow[key] = n
		}
		return n, nil
	}
	base, err := c.getNode(path)
	if err != nil {
		return nil, err
	}
	clone := base.Clone()
	c.shadow[key] = clone
	return clone, nil
}

// touch marks path and every ancestor (including the root) dirty by
// invalidating their cached hash, cloning them into the overlay as
// needed. Spec.md §4.5: "any mutation marks the node and all its
// ancestors dirty."
func (c *Cache) touch(path []byte) error {
	for depth := len(path); depth >= 0; depth-- {
		n, err := c.cloneForWrite(path[:depth])
		if err != nil {
			return err
		}
		n.Hash = nil
	}
	return nil
}

// linkChild ensures every ancestor of name records the edge leading to
// its child, creating empty interior nodes as needed.
func (c *Cache) linkChild(name []byte) error {
	for depth := 0; depth < len(name); depth++ {
		parent, err := c.cloneForWrite(name[:depth])
		if err != nil {
			return err
		}
		parent.Children[name[depth]] = true
	}
	return nil
}

// unlinkChildIfEmpty removes the edge from name[:depth] to name[depth] if
// that child node is now empty, and recurses upward, pruning the whole
// now-dead suffix (spec.md §5: "nodes dropped during flush... are freed
// immediately"). If every node down to the root is pruned this way, the
// root itself is tombstoned too, so an emptied trie hashes to the same
// distinguished EmptyTrieHash as one that was never touched (spec.md §4.1).
func (c *Cache) unlinkChildIfEmpty(name []byte) error {
	depth := len(name)
	for depth > 0 {
		child, err := c.getNode(name[:depth])
		if err != nil {
			return err
		}
		if !child.IsEmpty() {
			return nil
		}
		c.shadow[string(name[:depth])] = nil // tombstone

		parent, err := c.cloneForWrite(name[:depth-1])
		if err != nil {
			return err
		}
		delete(parent.Children, name[depth-1])
		depth--
	}

	root, err := c.getNode(nil)
	if err != nil {
		return err
	}
	if root.IsEmpty() {
		c.shadow[""] = nil // tombstone the root itself
	}
	return nil
}

func (c *Cache) recomputeNode(name []byte, height int32) error {
	n, err := c.cloneForWrite(name)
	if err != nil {
		return err
	}
	// Claim values are shared with the base trie; clone them before
	// their EffectiveAmount is rewritten.
	for i, claim := range n.Claims {
		n.Claims[i] = claim.Clone()
	}
	n.RecomputeEffectiveAmounts(height)
	return c.touch(name)
}

// MerkleHash forces recomputation of every dirty node's hash and returns
// the root (spec.md §4.5).
func (c *Cache) MerkleHash() (*chainhash.Hash, error) {
	return trie.New(overlayRepo{c}).MerkleHash()
}

// overlayRepo adapts Cache's shadow+base resolution to trie.Repo so
// trie.Trie's hashing walk can run directly against the overlay without
// a full flush.
type overlayRepo struct{ c *Cache }

func (o overlayRepo) Get(path []byte) (*node.Node, error) { return o.c.getNode(path) }
func (o overlayRepo) Set(path []byte, n *node.Node) error {
	o.c.shadow[string(path)] = n
	return nil
}
func (o overlayRepo) Delete(path []byte) error {
	o.c.shadow[string(path)] = nil
	return nil
}
func (o overlayRepo) Close() error { return nil }

// Flush writes every touched node into the base trie and installs the
// overlay's queues as the base's, returning the new root and the undo
// log needed to reverse this exact block (spec.md §4.5, §4.6).
func (c *Cache) Flush() (*chainhash.Hash, *UndoLog, error) {
	root, err := c.MerkleHash()
	if err != nil {
		return nil, nil, err
	}
	repo := c.base.Repo()
	for path, n := range c.shadow {
		if n == nil {
			if err := repo.Delete([]byte(path)); err != nil {
				return nil, nil, errors.Wrap(err, "cache flush: delete")
			}
			continue
		}
		if err := repo.Set([]byte(path), n); err != nil {
			return nil, nil, errors.Wrap(err, "cache flush: set")
		}
	}
	c.base.Activation = c.activation
	c.base.Expiration = c.expiration

	log := &UndoLog{Entries: c.log}
	return root, log, nil
}

// Drop discards every staged mutation without touching the base trie.
func (c *Cache) Drop() {
	c.shadow = make(map[string]*node.Node)
	c.activation = c.base.Activation.Clone()
	c.expiration = c.base.Expiration.Clone()
	c.log = nil
	c.lastIncrementLogStart = -1
}
