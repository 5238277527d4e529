// Package claimtrie ties the node, trie, queue, cache, and block
// packages together into the single entry point an external block
// processor drives: feed it a block's claim/support adds and spends,
// call AppendBlock, and read back the committed Merkle root.
package claimtrie

import (
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/wire"
	"github.com/decred/slog"

	"github.com/lbryio/claimtrie/block"
	"github.com/lbryio/claimtrie/cache"
	"github.com/lbryio/claimtrie/change"
	"github.com/lbryio/claimtrie/config"
	"github.com/lbryio/claimtrie/node"
	"github.com/lbryio/claimtrie/normalization"
	"github.com/lbryio/claimtrie/param"
	"github.com/lbryio/claimtrie/temporalrepo"
	"github.com/lbryio/claimtrie/trie"
)

// ClaimTrie is a Merkle trie of human-readable names supporting a linear
// history of block-by-block commits, with full reversal on reorg.
type ClaimTrie struct {
	repo      trie.Repo
	trie      *trie.Trie
	processor *block.Processor
	params    param.Params

	height int32

	// undoLogs holds one entry per connected-but-not-yet-pruned block,
	// keyed by height, sufficient to disconnect back to any earlier
	// height in sequence. A real deployment persists these alongside
	// the block; kept in memory here since persistence format is a
	// storage-layer concern outside this package (spec.md §7).
	undoLogs map[int32]*cache.UndoLog

	pending []change.Change

	// temporal persists the activation/expiration queues across restarts;
	// nil when RamTrie is set, since the queues then only ever live in
	// memory.
	temporal *temporalrepo.Repo

	cleanups []func() error
}

// New builds a ClaimTrie from cfg, opening (or creating) its node store
// and, unless RamTrie is set, its persisted queue store.
func New(cfg config.Config) (*ClaimTrie, error) {
	var repo trie.Repo
	var temporal *temporalrepo.Repo
	var cleanups []func() error

	if cfg.RamTrie {
		repo = trie.NewRamRepo()
	} else {
		levelRepo, err := trie.NewLevelRepo(filepath.Join(cfg.DataDir, cfg.NodeRepoPath))
		if err != nil {
			return nil, errors.Wrap(err, "opening node repo")
		}
		cleanups = append(cleanups, levelRepo.Close)
		repo = levelRepo

		queueRepo, err := temporalrepo.New(filepath.Join(cfg.DataDir, cfg.TemporalRepoPath))
		if err != nil {
			return nil, errors.Wrap(err, "opening temporal repo")
		}
		cleanups = append(cleanups, queueRepo.Close)
		temporal = queueRepo
	}

	t := trie.New(repo)
	if temporal != nil {
		activation, expiration, err := temporal.Load()
		if err != nil {
			return nil, errors.Wrap(err, "loading persisted queues")
		}
		t.Activation = activation
		t.Expiration = expiration
	}

	ct := &ClaimTrie{
		repo:      repo,
		trie:      t,
		processor: block.New(t, cfg.Params),
		params:    cfg.Params,
		undoLogs:  make(map[int32]*cache.UndoLog),
		temporal:  temporal,
		cleanups:  cleanups,
	}
	return ct, nil
}

// saveQueues persists the current activation/expiration queues, a no-op
// when running with RamTrie.
func (ct *ClaimTrie) saveQueues() error {
	if ct.temporal == nil {
		return nil
	}
	return errors.Wrap(ct.temporal.Save(ct.trie.Activation, ct.trie.Expiration), "persisting queues")
}

func (ct *ClaimTrie) stage(chg change.Change) {
	chg.Height = ct.height + 1
	ct.pending = append(ct.pending, chg)
}

// AddClaim stages a new claim on name, to take effect on the next
// AppendBlock.
func (ct *ClaimTrie) AddClaim(name []byte, op wire.OutPoint, amount int64) {
	name = ct.normalize(name)
	ct.stage(change.Change{
		Type:     change.AddClaim,
		Name:     name,
		OutPoint: op,
		ClaimID:  node.DeriveID(op),
		Amount:   amount,
	})
}

// SpendClaim stages the removal of an existing claim.
func (ct *ClaimTrie) SpendClaim(name []byte, id node.ClaimID) {
	name = ct.normalize(name)
	ct.stage(change.Change{Type: change.SpendClaim, Name: name, ClaimID: id})
}

// AddSupport stages a new support for an existing claim.
func (ct *ClaimTrie) AddSupport(name []byte, op wire.OutPoint, amount int64, supportedClaimID node.ClaimID) {
	name = ct.normalize(name)
	ct.stage(change.Change{
		Type:             change.AddSupport,
		Name:             name,
		OutPoint:         op,
		ClaimID:          node.DeriveID(op),
		SupportedClaimID: supportedClaimID,
		Amount:           amount,
	})
}

// SpendSupport stages the removal of an existing support.
func (ct *ClaimTrie) SpendSupport(name []byte, id node.ClaimID) {
	name = ct.normalize(name)
	ct.stage(change.Change{Type: change.SpendSupport, Name: name, ClaimID: id})
}

func (ct *ClaimTrie) normalize(name []byte) []byte {
	return normalization.NormalizeIfNecessary(name, ct.height+1, ct.params.NormalizationForkHeight)
}

// AppendBlock applies every change staged since the last AppendBlock as
// one block at height+1, and records its undo log.
func (ct *ClaimTrie) AppendBlock() (*chainhash.Hash, error) {
	newHeight := ct.height + 1
	root, undoLog, err := ct.processor.Apply(ct.pending, newHeight)
	if err != nil {
		return nil, errors.Wrap(err, "apply block")
	}
	if err := ct.saveQueues(); err != nil {
		return nil, err
	}
	ct.pending = nil
	ct.undoLogs[newHeight] = undoLog
	ct.height = newHeight
	return root, nil
}

// ResetHeight disconnects blocks down to height, in reverse order, using
// each one's recorded undo log.
func (ct *ClaimTrie) ResetHeight(height int32) error {
	for ct.height > height {
		undoLog, ok := ct.undoLogs[ct.height]
		if !ok {
			return errors.Errorf("claimtrie: no undo log recorded for height %d", ct.height)
		}
		if _, err := ct.processor.Disconnect(ct.height, undoLog); err != nil {
			return errors.Wrapf(err, "disconnecting block %d", ct.height)
		}
		if err := ct.saveQueues(); err != nil {
			return err
		}
		delete(ct.undoLogs, ct.height)
		ct.height--
	}
	return nil
}

// MerkleHash returns the trie's current Merkle root.
func (ct *ClaimTrie) MerkleHash() (*chainhash.Hash, error) {
	return ct.trie.MerkleHash()
}

// Height returns the current block height.
func (ct *ClaimTrie) Height() int32 { return ct.height }

// GetInfoForName implements spec.md §4.2.
func (ct *ClaimTrie) GetInfoForName(name []byte) (*trie.Info, bool, error) {
	return ct.trie.GetInfoForName(ct.normalizeForQuery(name))
}

// HasClaim implements spec.md §4.2.
func (ct *ClaimTrie) HasClaim(name []byte, id node.ClaimID) (bool, error) {
	return ct.trie.HasClaim(ct.normalizeForQuery(name), id)
}

func (ct *ClaimTrie) normalizeForQuery(name []byte) []byte {
	return normalization.NormalizeIfNecessary(name, ct.height, ct.params.NormalizationForkHeight)
}

// IsEmpty implements spec.md §4.2.
func (ct *ClaimTrie) IsEmpty() (bool, error) {
	return ct.trie.IsEmpty()
}

// CheckConsistency implements spec.md §4.2.
func (ct *ClaimTrie) CheckConsistency() (bool, error) {
	return ct.trie.CheckConsistency()
}

// MerkleProof implements SPEC_FULL.md's supplemented proof-generation
// query.
func (ct *ClaimTrie) MerkleProof(name []byte) ([]trie.ProofStep, error) {
	return ct.trie.MerkleProof(ct.normalizeForQuery(name))
}

// Close runs every registered cleanup in reverse order, persisting
// whatever the underlying repo needs to on shutdown.
func (ct *ClaimTrie) Close() error {
	var firstErr error
	for i := len(ct.cleanups) - 1; i >= 0; i-- {
		if err := ct.cleanups[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SetLogger wires backend into every subsystem's package-local logger.
func SetLogger(backend *slog.Backend) {
	node.UseLogger(backend.Logger("CNODE"))
	trie.UseLogger(backend.Logger("CTRIE"))
	cache.UseLogger(backend.Logger("CCACHE"))
	block.UseLogger(backend.Logger("CBLCK"))
}
