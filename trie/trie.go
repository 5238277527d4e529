package trie

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/decred/dcrd/chaincfg/chainhash"

	"github.com/lbryio/claimtrie/node"
	"github.com/lbryio/claimtrie/param"
	"github.com/lbryio/claimtrie/queue"
)

// EmptyTrieHash is the Merkle commitment of a trie with no claims at all
// (spec.md §4.1, the distinguished genesis value 0x...01).
var EmptyTrieHash = mustHashFromHex(param.EmptyTrieHashHex)

func mustHashFromHex(s string) chainhash.Hash {
	h, err := chainhash.NewHashFromStr(s)
	if err != nil {
		panic("trie: invalid empty-trie hash constant: " + err.Error())
	}
	return *h
}

// Info is the result of a GetInfoForName query.
type Info struct {
	Controlling     *node.Claim
	EffectiveAmount int64
	HeightValid     int32
}

// Trie is the persistent, content-addressed name-claim trie (C2). It
// exposes read-only queries directly against Repo; all mutation happens
// through a cache overlay (package cache) which flushes back into a Trie.
// The activation and expiration queues live here too (spec.md §5: "live
// inside C2 and are copy-on-write under C5 like the trie itself").
type Trie struct {
	repo Repo

	Activation *queue.Activation
	Expiration *queue.Expiration
}

// New wraps repo as a queryable/mutable Trie with empty queues.
func New(repo Repo) *Trie {
	return &Trie{
		repo:       repo,
		Activation: queue.NewActivation(),
		Expiration: queue.NewExpiration(),
	}
}

// Repo exposes the underlying store, used by the cache overlay to resolve
// base reads that are not shadowed.
func (t *Trie) Repo() Repo { return t.repo }

// Get returns the node stored at path, or nil if none exists.
func (t *Trie) Get(path []byte) (*node.Node, error) {
	return t.repo.Get(path)
}

// GetInfoForName implements spec.md §4.2: returns the controlling claim
// for name along with its effective amount and height_valid, or
// (nil, false) if the name carries no active claims.
func (t *Trie) GetInfoForName(name []byte) (*Info, bool, error) {
	n, err := t.repo.Get(name)
	if err != nil {
		return nil, false, err
	}
	if n == nil || len(n.Claims) == 0 {
		return nil, false, nil
	}
	c := n.Claims[0]
	return &Info{Controlling: c, EffectiveAmount: c.EffectiveAmount, HeightValid: c.HeightValid}, true, nil
}

// HasClaim reports whether the given claim id is active at name.
func (t *Trie) HasClaim(name []byte, id node.ClaimID) (bool, error) {
	n, err := t.repo.Get(name)
	if err != nil {
		return false, err
	}
	if n == nil {
		return false, nil
	}
	return n.HasClaim(id), nil
}

// IsEmpty reports whether the trie holds no claims anywhere.
func (t *Trie) IsEmpty() (bool, error) {
	root, err := t.repo.Get(nil)
	if err != nil {
		return false, err
	}
	return root.IsEmpty(), nil
}

// MerkleHash returns the root hash, recomputing any dirty (Hash == nil)
// node along the way. Implementations that never leave a dirty node
// unflushed (the base Trie, after a cache flush) pay this cost only once.
func (t *Trie) MerkleHash() (*chainhash.Hash, error) {
	h, err := t.hashAt(nil)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (t *Trie) hashAt(path []byte) (*chainhash.Hash, error) {
	n, err := t.repo.Get(path)
	if err != nil {
		return nil, err
	}
	if n == nil {
		if len(path) == 0 {
			empty := EmptyTrieHash
			return &empty, nil
		}
		return nil, errors.Errorf("trie: missing node at path %x referenced by parent", path)
	}
	if n.Hash != nil {
		return n.Hash, nil
	}

	edges := make([]byte, 0, len(n.Children))
	for b := range n.Children {
		edges = append(edges, b)
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i] < edges[j] })

	buf := make([]byte, 0, len(edges)*(chainhash.HashSize+1)+chainhash.HashSize)
	childPath := make([]byte, len(path)+1)
	copy(childPath, path)
	for _, b := range edges {
		childPath[len(path)] = b
		childHash, err := t.hashAt(childPath)
		if err != nil {
			return nil, err
		}
		buf = append(buf, b)
		buf = append(buf, childHash[:]...)
	}

	claimsHash := node.HashClaims(n.Claims)
	buf = append(buf, claimsHash[:]...)

	h := chainhash.HashH(buf)
	n.Hash = &h
	if err := t.repo.Set(path, n); err != nil {
		return nil, err
	}
	return n.Hash, nil
}

// CheckConsistency recomputes every hash bottom-up from scratch (ignoring
// any cached value) and compares the result to the root's cached hash.
// Used by tests and debug tooling (spec.md §4.2); a mismatch is fatal
// per §7.
func (t *Trie) CheckConsistency() (bool, error) {
	root, err := t.repo.Get(nil)
	if err != nil {
		return false, err
	}
	cached := root.Hash
	t.invalidateAll(nil)
	recomputed, err := t.hashAt(nil)
	if err != nil {
		return false, err
	}
	return cached == nil || cached.IsEqual(recomputed), nil
}

func (t *Trie) invalidateAll(path []byte) {
	n, err := t.repo.Get(path)
	if err != nil || n == nil {
		return
	}
	n.Hash = nil
	for b := range n.Children {
		t.invalidateAll(append(append([]byte{}, path...), b))
	}
}

// ProofStep is one edge of a Merkle proof from a name's node up to the
// root: the sibling hashes and the claims-hash needed to recompute a
// parent's hash from a child's (SPEC_FULL.md supplemented feature 4).
type ProofStep struct {
	// Edge is the byte this step descends on.
	Edge byte
	// Siblings holds (byte, hash) pairs for every other child of the
	// parent node, sorted ascending by byte.
	Siblings []SiblingHash
	// ClaimsHash is the parent's hash_of_claims commitment.
	ClaimsHash chainhash.Hash
}

// SiblingHash is one non-path child hash contributing to a proof step.
type SiblingHash struct {
	Edge byte
	Hash chainhash.Hash
}

// MerkleProof returns the sibling hashes from name's node up to the root,
// sufficient for a verifier to recompute the root hash without holding
// the rest of the trie.
func (t *Trie) MerkleProof(name []byte) ([]ProofStep, error) {
	if _, ok, err := t.GetInfoForName(name); err != nil {
		return nil, err
	} else if !ok {
		return nil, errors.Errorf("trie: no active claims at %q", name)
	}

	steps := make([]ProofStep, 0, len(name))
	for depth := len(name); depth > 0; depth-- {
		parentPath := name[:depth-1]
		parent, err := t.repo.Get(parentPath)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, errors.Errorf("trie: missing ancestor at %x", parentPath)
		}
		edge := name[depth-1]

		step := ProofStep{Edge: edge, ClaimsHash: node.HashClaims(parent.Claims)}
		edges := make([]byte, 0, len(parent.Children))
		for b := range parent.Children {
			edges = append(edges, b)
		}
		sort.Slice(edges, func(i, j int) bool { return edges[i] < edges[j] })
		for _, b := range edges {
			if b == edge {
				continue
			}
			h, err := t.hashAt(append(append([]byte{}, parentPath...), b))
			if err != nil {
				return nil, err
			}
			step.Siblings = append(step.Siblings, SiblingHash{Edge: b, Hash: *h})
		}
		steps = append(steps, step)
	}
	return steps, nil
}
