// Package trie implements the persistent, content-addressed name-claim
// trie (spec.md C1, C2): a radix tree keyed by the raw bytes of a name,
// committing to a Merkle root that every honest node must compute
// bit-identically after applying the same blocks.
package trie

import "github.com/lbryio/claimtrie/node"

// Repo is the storage abstraction a Trie is built on. Paths are the raw
// bytes of a name prefix; the root is the empty path. Implementations
// must treat a missing path as (nil, nil), never an error.
type Repo interface {
	Get(path []byte) (*node.Node, error)
	Set(path []byte, n *node.Node) error
	Delete(path []byte) error
	Close() error
}
