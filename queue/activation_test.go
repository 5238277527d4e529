package queue

import (
	"testing"

	"github.com/lbryio/claimtrie/node"
)

func claimID(b byte) node.ClaimID {
	var id node.ClaimID
	id[node.IDSize-1] = b
	return id
}

func TestActivationEnqueueAndDrainClaims(t *testing.T) {
	a := NewActivation()
	claim := &node.Claim{ID: claimID(1)}
	a.EnqueueClaim(100, []byte("foo"), claim)

	if got := a.DrainClaimsAt(99); len(got) != 0 {
		t.Fatalf("DrainClaimsAt(99) = %v, want empty (nothing scheduled yet)", got)
	}

	drained := a.DrainClaimsAt(100)
	if len(drained) != 1 || drained[0].Claim.ID != claim.ID {
		t.Fatalf("DrainClaimsAt(100) = %+v, want one entry for claim %x", drained, claim.ID)
	}

	if got := a.DrainClaimsAt(100); len(got) != 0 {
		t.Fatal("draining the same height twice must be idempotent")
	}
}

func TestActivationRemoveClaim(t *testing.T) {
	a := NewActivation()
	claim := &node.Claim{ID: claimID(2)}
	a.EnqueueClaim(50, []byte("bar"), claim)

	if _, ok := a.ClaimHeight(claim.ID); !ok {
		t.Fatal("expected pending claim to report a scheduled height")
	}

	removed, ok := a.RemoveClaim(claim.ID)
	if !ok || removed.Claim.ID != claim.ID {
		t.Fatalf("RemoveClaim = %+v, %v, want the enqueued claim", removed, ok)
	}

	if _, ok := a.ClaimHeight(claim.ID); ok {
		t.Fatal("removed claim must no longer be scheduled")
	}
	if got := a.DrainClaimsAt(50); len(got) != 0 {
		t.Fatal("removed claim must not surface on drain")
	}
}

func TestActivationReEnqueueMoves(t *testing.T) {
	a := NewActivation()
	claim := &node.Claim{ID: claimID(3)}
	a.EnqueueClaim(10, []byte("x"), claim)
	a.EnqueueClaim(20, []byte("x"), claim) // re-schedule, e.g. after a re-derived delay

	if got := a.DrainClaimsAt(10); len(got) != 0 {
		t.Fatal("old schedule must be cleared by re-enqueue")
	}
	if got := a.DrainClaimsAt(20); len(got) != 1 {
		t.Fatalf("new schedule must hold the claim, got %v", got)
	}
}

func TestActivationClone(t *testing.T) {
	a := NewActivation()
	claim := &node.Claim{ID: claimID(4)}
	a.EnqueueClaim(5, []byte("y"), claim)

	clone := a.Clone()
	clone.RemoveClaim(claim.ID)

	if _, ok := a.ClaimHeight(claim.ID); !ok {
		t.Fatal("mutating the clone must not affect the original queue")
	}
}

func TestActivationSupports(t *testing.T) {
	a := NewActivation()
	support := &node.Support{ID: claimID(9), SupportedClaimID: claimID(1)}
	a.EnqueueSupport(30, []byte("z"), support)

	drained := a.DrainSupportsAt(30)
	if len(drained) != 1 || drained[0].Support.ID != support.ID {
		t.Fatalf("DrainSupportsAt(30) = %+v, want the enqueued support", drained)
	}
}
