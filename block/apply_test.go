package block

import (
	"testing"

	"github.com/decred/dcrd/wire"

	"github.com/lbryio/claimtrie/change"
	"github.com/lbryio/claimtrie/node"
	"github.com/lbryio/claimtrie/param"
	"github.com/lbryio/claimtrie/trie"
)

func outpoint(b byte) wire.OutPoint {
	var op wire.OutPoint
	op.Hash[0] = b
	return op
}

func newTestProcessor(t *testing.T) (*Processor, *trie.Trie) {
	t.Helper()
	tr := trie.New(trie.NewRamRepo())
	p := New(tr, param.Mainnet())
	return p, tr
}

// TestInsertUpdateRollback covers claiming a name, spending the claim, and
// disconnecting both blocks back to the genesis (empty) root.
func TestInsertUpdateRollback(t *testing.T) {
	p, tr := newTestProcessor(t)

	emptyRoot, err := tr.MerkleHash()
	if err != nil {
		t.Fatalf("MerkleHash: %v", err)
	}

	op := outpoint(1)
	claimID := node.DeriveID(op)
	addChanges := []change.Change{
		{Type: change.AddClaim, Name: []byte("movie"), OutPoint: op, ClaimID: claimID, Amount: 10},
	}
	rootAfterAdd, undoAdd, err := p.Apply(addChanges, 1)
	if err != nil {
		t.Fatalf("Apply(add): %v", err)
	}
	if *rootAfterAdd == *emptyRoot {
		t.Fatal("root must change once a claim is committed")
	}

	has, err := tr.HasClaim([]byte("movie"), claimID)
	if err != nil || !has {
		t.Fatalf("HasClaim after add = %v, %v, want true, nil", has, err)
	}

	spendChanges := []change.Change{
		{Type: change.SpendClaim, Name: []byte("movie"), ClaimID: claimID},
	}
	rootAfterSpend, undoSpend, err := p.Apply(spendChanges, 2)
	if err != nil {
		t.Fatalf("Apply(spend): %v", err)
	}
	has, err = tr.HasClaim([]byte("movie"), claimID)
	if err != nil || has {
		t.Fatalf("HasClaim after spend = %v, %v, want false, nil", has, err)
	}

	// Disconnect the spend block: the claim must reappear and the root
	// must return to what it was right after the add.
	rootAfterDisconnectSpend, err := p.Disconnect(2, undoSpend)
	if err != nil {
		t.Fatalf("Disconnect(spend): %v", err)
	}
	if *rootAfterDisconnectSpend != *rootAfterAdd {
		t.Fatalf("root after disconnecting the spend = %s, want %s", rootAfterDisconnectSpend, rootAfterAdd)
	}
	has, err = tr.HasClaim([]byte("movie"), claimID)
	if err != nil || !has {
		t.Fatalf("HasClaim after disconnecting spend = %v, %v, want true, nil", has, err)
	}

	// Disconnect the add block: the trie must return to empty.
	rootAfterDisconnectAdd, err := p.Disconnect(1, undoAdd)
	if err != nil {
		t.Fatalf("Disconnect(add): %v", err)
	}
	if *rootAfterDisconnectAdd != *emptyRoot {
		t.Fatalf("root after disconnecting the add = %s, want the empty root %s", rootAfterDisconnectAdd, emptyRoot)
	}
	empty, err := tr.IsEmpty()
	if err != nil || !empty {
		t.Fatalf("trie.IsEmpty() = %v, %v, want true, nil", empty, err)
	}

	_ = rootAfterSpend // asserted indirectly via the disconnect round trip above
}

// TestSupportFlipsControl exercises a controlling claim being displaced by
// a second claim once a support pushes the second claim's effective
// amount above the first's.
func TestSupportFlipsControl(t *testing.T) {
	p, tr := newTestProcessor(t)

	opA := outpoint(1)
	idA := node.DeriveID(opA)
	opB := outpoint(2)
	idB := node.DeriveID(opB)

	changes := []change.Change{
		{Type: change.AddClaim, Name: []byte("thing"), OutPoint: opA, ClaimID: idA, Amount: 100},
		{Type: change.AddClaim, Name: []byte("thing"), OutPoint: opB, ClaimID: idB, Amount: 90},
	}
	if _, _, err := p.Apply(changes, 1); err != nil {
		t.Fatalf("Apply(claims): %v", err)
	}

	info, ok, err := tr.GetInfoForName([]byte("thing"))
	if err != nil || !ok || info.Controlling.ID != idA {
		t.Fatalf("controlling claim = %+v, ok=%v, err=%v, want claim A controlling", info, ok, err)
	}

	opSupport := outpoint(3)
	supportID := node.DeriveID(opSupport)
	supportChanges := []change.Change{
		{Type: change.AddSupport, Name: []byte("thing"), OutPoint: opSupport, ClaimID: supportID, SupportedClaimID: idB, Amount: 20},
	}
	// Both claims are already active and on an uncontrolled-challenger
	// footing relative to each other, so the support (targeting the
	// non-controlling claim) activates immediately, same as a claim would.
	if _, _, err := p.Apply(supportChanges, 2); err != nil {
		t.Fatalf("Apply(support): %v", err)
	}

	info, ok, err = tr.GetInfoForName([]byte("thing"))
	if err != nil || !ok {
		t.Fatalf("GetInfoForName after support: ok=%v, err=%v", ok, err)
	}
	if info.Controlling.ID != idB {
		t.Fatalf("controlling claim after support = %x, want claim B (90+20=110 > 100)", info.Controlling.ID)
	}
}

// TestExpiration covers a claim that is committed, then naturally expires
// once the block height reaches its scheduled expiration.
func TestExpiration(t *testing.T) {
	p, tr := newTestProcessor(t)

	op := outpoint(1)
	claimID := node.DeriveID(op)
	changes := []change.Change{
		{Type: change.AddClaim, Name: []byte("ephemeral"), OutPoint: op, ClaimID: claimID, Amount: 10},
	}
	if _, _, err := p.Apply(changes, 1); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	expiresAt := int32(1) + param.Mainnet().ExpirationTime

	if _, _, err := p.Apply(nil, expiresAt-1); err != nil {
		t.Fatalf("Apply(empty, pre-expiry): %v", err)
	}
	has, err := tr.HasClaim([]byte("ephemeral"), claimID)
	if err != nil || !has {
		t.Fatalf("claim must still be active one block before expiry: has=%v err=%v", has, err)
	}

	if _, _, err := p.Apply(nil, expiresAt); err != nil {
		t.Fatalf("Apply(empty, at expiry): %v", err)
	}
	has, err = tr.HasClaim([]byte("ephemeral"), claimID)
	if err != nil || has {
		t.Fatalf("claim must have expired at height %d: has=%v err=%v", expiresAt, has, err)
	}
}
