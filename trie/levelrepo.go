package trie

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/lbryio/claimtrie/node"
)

// LevelRepo is a goleveldb-backed Repo, the on-disk engine named in
// SPEC_FULL.md's Storage section (the same KV engine the teacher's
// database submodule requires).
type LevelRepo struct {
	db *leveldb.DB
}

// NewLevelRepo opens (creating if necessary) a leveldb database at dir.
func NewLevelRepo(dir string) (*LevelRepo, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, errors.Wrap(err, "opening node repo")
	}
	return &LevelRepo{db: db}, nil
}

func (r *LevelRepo) Get(path []byte) (*node.Node, error) {
	data, err := r.db.Get(path, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "node repo get")
	}
	n, err := node.UnmarshalNode(data)
	if err != nil {
		return nil, errors.Wrap(err, "node repo decode")
	}
	return n, nil
}

func (r *LevelRepo) Set(path []byte, n *node.Node) error {
	data, err := n.MarshalBinary()
	if err != nil {
		return errors.Wrap(err, "node repo encode")
	}
	return errors.Wrap(r.db.Put(path, data, nil), "node repo put")
}

func (r *LevelRepo) Delete(path []byte) error {
	return errors.Wrap(r.db.Delete(path, nil), "node repo delete")
}

func (r *LevelRepo) Close() error {
	return errors.Wrap(r.db.Close(), "node repo close")
}
