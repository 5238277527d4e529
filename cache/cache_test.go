package cache

import (
	"testing"

	"github.com/lbryio/claimtrie/node"
	"github.com/lbryio/claimtrie/param"
	"github.com/lbryio/claimtrie/trie"
)

func claimID(b byte) node.ClaimID {
	var id node.ClaimID
	id[node.IDSize-1] = b
	return id
}

func newTestBase() *trie.Trie {
	return trie.New(trie.NewRamRepo())
}

func TestAddClaimActivatesImmediatelyOnUncontrolledName(t *testing.T) {
	base := newTestBase()
	params := param.Mainnet()
	c := New(base, params)

	claim := &node.Claim{ID: claimID(1), Amount: 10}
	if err := c.AddClaim(100, []byte("alice"), claim); err != nil {
		t.Fatalf("AddClaim: %v", err)
	}

	if claim.HeightValid != 100 {
		t.Fatalf("HeightValid = %d, want 100 (no delay on an uncontrolled name)", claim.HeightValid)
	}

	has, err := func() (bool, error) {
		n, err := c.getNode([]byte("alice"))
		if err != nil {
			return false, err
		}
		return n.HasClaim(claim.ID), nil
	}()
	if err != nil || !has {
		t.Fatalf("expected claim active immediately, has=%v err=%v", has, err)
	}
}

func TestAddClaimDelaysBehindController(t *testing.T) {
	base := newTestBase()
	params := param.Mainnet()
	c := New(base, params)

	first := &node.Claim{ID: claimID(1), Amount: 100}
	if err := c.AddClaim(0, []byte("alice"), first); err != nil {
		t.Fatalf("AddClaim(first): %v", err)
	}

	challenger := &node.Claim{ID: claimID(2), Amount: 50}
	if err := c.AddClaim(10000, []byte("alice"), challenger); err != nil {
		t.Fatalf("AddClaim(challenger): %v", err)
	}

	wantDelay := int32(312) // min(4032, 10000/32)
	if challenger.HeightValid != 10000+wantDelay {
		t.Fatalf("challenger.HeightValid = %d, want %d", challenger.HeightValid, 10000+wantDelay)
	}

	if height, ok := c.activation.ClaimHeight(challenger.ID); !ok || height != challenger.HeightValid {
		t.Fatalf("challenger must sit in the activation queue until %d, got height=%d ok=%v", challenger.HeightValid, height, ok)
	}
}

func TestSpendAndUndoSpendClaim(t *testing.T) {
	base := newTestBase()
	params := param.Mainnet()
	c := New(base, params)

	claim := &node.Claim{ID: claimID(1), Amount: 10}
	if err := c.AddClaim(0, []byte("alice"), claim); err != nil {
		t.Fatalf("AddClaim: %v", err)
	}

	spent, wasPending, err := c.SpendClaim(5, []byte("alice"), claim.ID)
	if err != nil {
		t.Fatalf("SpendClaim: %v", err)
	}
	if wasPending {
		t.Fatal("claim had already activated, must not report wasPending")
	}

	n, err := c.getNode([]byte("alice"))
	if err != nil {
		t.Fatalf("getNode: %v", err)
	}
	if n.HasClaim(claim.ID) {
		t.Fatal("claim must no longer be active after SpendClaim")
	}

	if err := c.UndoSpendClaim(5, []byte("alice"), spent, wasPending); err != nil {
		t.Fatalf("UndoSpendClaim: %v", err)
	}
	n, err = c.getNode([]byte("alice"))
	if err != nil {
		t.Fatalf("getNode: %v", err)
	}
	if !n.HasClaim(claim.ID) {
		t.Fatal("UndoSpendClaim must restore the claim")
	}
}

func TestFlushWritesThroughToBase(t *testing.T) {
	base := newTestBase()
	params := param.Mainnet()

	emptyHash, err := base.MerkleHash()
	if err != nil {
		t.Fatalf("MerkleHash: %v", err)
	}

	c := New(base, params)
	claim := &node.Claim{ID: claimID(1), Amount: 10}
	if err := c.AddClaim(0, []byte("alice"), claim); err != nil {
		t.Fatalf("AddClaim: %v", err)
	}
	root, _, err := c.Flush()
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if *root == *emptyHash {
		t.Fatal("root must change once a claim is flushed in")
	}

	baseRoot, err := base.MerkleHash()
	if err != nil {
		t.Fatalf("base.MerkleHash: %v", err)
	}
	if *baseRoot != *root {
		t.Fatal("Flush must write through to the base trie")
	}
}

func TestDropDiscardsStagedMutations(t *testing.T) {
	base := newTestBase()
	params := param.Mainnet()
	emptyHash, err := base.MerkleHash()
	if err != nil {
		t.Fatalf("MerkleHash: %v", err)
	}

	c := New(base, params)
	claim := &node.Claim{ID: claimID(1), Amount: 10}
	if err := c.AddClaim(0, []byte("alice"), claim); err != nil {
		t.Fatalf("AddClaim: %v", err)
	}
	c.Drop()

	baseRoot, err := base.MerkleHash()
	if err != nil {
		t.Fatalf("base.MerkleHash: %v", err)
	}
	if *baseRoot != *emptyHash {
		t.Fatal("Drop must leave the base trie untouched")
	}
}
