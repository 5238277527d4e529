package node

import (
	"testing"

	"github.com/decred/dcrd/wire"
)

func TestDeriveIDDeterministic(t *testing.T) {
	op := wire.OutPoint{Index: 7}
	copy(op.Hash[:], []byte("some fixed 32 byte hash value!!"))

	a := DeriveID(op)
	b := DeriveID(op)
	if a != b {
		t.Fatal("DeriveID must be a pure function of its outpoint")
	}

	other := op
	other.Index = 8
	if DeriveID(other) == a {
		t.Fatal("differing outpoint index must derive a differing id")
	}
}

func TestClaimIDLess(t *testing.T) {
	a := mustClaimID(1)
	b := mustClaimID(2)
	if !a.Less(b) {
		t.Fatal("expected a < b")
	}
	if b.Less(a) {
		t.Fatal("expected b !< a")
	}
	if a.Less(a) {
		t.Fatal("expected a !< a")
	}
}

func TestClaimIDIsZero(t *testing.T) {
	var zero ClaimID
	if !zero.IsZero() {
		t.Fatal("zero value ClaimID must report IsZero")
	}
	if mustClaimID(1).IsZero() {
		t.Fatal("non-zero ClaimID must not report IsZero")
	}
}
