package claimtrie

import (
	"testing"

	"github.com/decred/dcrd/wire"

	"github.com/lbryio/claimtrie/config"
	"github.com/lbryio/claimtrie/node"
	"github.com/lbryio/claimtrie/param"
)

func newTestClaimTrie(t *testing.T) *ClaimTrie {
	t.Helper()
	cfg := config.Default(t.TempDir())
	cfg.RamTrie = true
	cfg.Params = param.Regtest()
	ct, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ct
}

func TestAppendBlockCommitsStagedChanges(t *testing.T) {
	ct := newTestClaimTrie(t)

	emptyRoot, err := ct.MerkleHash()
	if err != nil {
		t.Fatalf("MerkleHash: %v", err)
	}

	var op wire.OutPoint
	op.Hash[0] = 7
	ct.AddClaim([]byte("movie"), op, 100)

	root, err := ct.AppendBlock()
	if err != nil {
		t.Fatalf("AppendBlock: %v", err)
	}
	if *root == *emptyRoot {
		t.Fatal("root must change once a claim is committed")
	}
	if ct.Height() != 1 {
		t.Fatalf("Height() = %d, want 1", ct.Height())
	}

	has, err := ct.HasClaim([]byte("movie"), node.DeriveID(op))
	if err != nil || !has {
		t.Fatalf("HasClaim after AppendBlock = %v, %v, want true, nil", has, err)
	}
}

func TestResetHeightReversesBlocks(t *testing.T) {
	ct := newTestClaimTrie(t)

	emptyRoot, err := ct.MerkleHash()
	if err != nil {
		t.Fatalf("MerkleHash: %v", err)
	}

	var op wire.OutPoint
	op.Hash[0] = 9
	ct.AddClaim([]byte("show"), op, 50)
	if _, err := ct.AppendBlock(); err != nil {
		t.Fatalf("AppendBlock: %v", err)
	}

	ct.SpendClaim([]byte("show"), node.DeriveID(op))
	if _, err := ct.AppendBlock(); err != nil {
		t.Fatalf("AppendBlock(spend): %v", err)
	}
	if ct.Height() != 2 {
		t.Fatalf("Height() = %d, want 2", ct.Height())
	}

	if err := ct.ResetHeight(0); err != nil {
		t.Fatalf("ResetHeight: %v", err)
	}
	if ct.Height() != 0 {
		t.Fatalf("Height() after ResetHeight(0) = %d, want 0", ct.Height())
	}

	root, err := ct.MerkleHash()
	if err != nil {
		t.Fatalf("MerkleHash: %v", err)
	}
	if *root != *emptyRoot {
		t.Fatalf("root after ResetHeight(0) = %s, want the empty root %s", root, emptyRoot)
	}

	empty, err := ct.IsEmpty()
	if err != nil || !empty {
		t.Fatalf("IsEmpty() = %v, %v, want true, nil", empty, err)
	}
}

func TestGetInfoForNameReflectsControllingClaim(t *testing.T) {
	ct := newTestClaimTrie(t)

	var opA, opB wire.OutPoint
	opA.Hash[0] = 1
	opB.Hash[0] = 2
	ct.AddClaim([]byte("channel"), opA, 100)
	ct.AddClaim([]byte("channel"), opB, 200)
	if _, err := ct.AppendBlock(); err != nil {
		t.Fatalf("AppendBlock: %v", err)
	}

	info, ok, err := ct.GetInfoForName([]byte("channel"))
	if err != nil || !ok {
		t.Fatalf("GetInfoForName: ok=%v, err=%v", ok, err)
	}
	if info.Controlling.ID != node.DeriveID(opB) {
		t.Fatalf("controlling claim = %x, want the higher-amount claim B", info.Controlling.ID)
	}
}
