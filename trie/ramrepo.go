package trie

import (
	"sync"

	"github.com/lbryio/claimtrie/node"
)

// RamRepo is an in-memory Repo, used for config.RamTrie mode and tests.
// It mirrors the RAM/persistent split the reference claimtrie package
// makes between merkletrie.NewRamTrie and merkletrie.NewPersistentTrie.
type RamRepo struct {
	mtx   sync.RWMutex
	nodes map[string]*node.Node
}

// NewRamRepo returns an empty in-memory repo.
func NewRamRepo() *RamRepo {
	return &RamRepo{nodes: make(map[string]*node.Node)}
}

func (r *RamRepo) Get(path []byte) (*node.Node, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return r.nodes[string(path)], nil
}

func (r *RamRepo) Set(path []byte, n *node.Node) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.nodes[string(path)] = n
	return nil
}

func (r *RamRepo) Delete(path []byte) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	delete(r.nodes, string(path))
	return nil
}

func (r *RamRepo) Close() error { return nil }
