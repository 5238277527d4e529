package queue

import "github.com/lbryio/claimtrie/node"

// PendingClaim is a claim that has been accepted but has not yet reached
// its height_valid.
type PendingClaim struct {
	Name  []byte
	Claim *node.Claim
}

// PendingSupport is a support that has been accepted but has not yet
// reached its height_valid.
type PendingSupport struct {
	Name    []byte
	Support *node.Support
}

// Activation is the activation_queue of spec.md §3: a height-indexed
// schedule of claims and supports waiting to become active.
type Activation struct {
	claims   *heightMap[node.ClaimID, PendingClaim]
	supports *heightMap[node.ClaimID, PendingSupport]
}

// NewActivation returns an empty activation queue.
func NewActivation() *Activation {
	return &Activation{
		claims:   newHeightMap[node.ClaimID, PendingClaim](),
		supports: newHeightMap[node.ClaimID, PendingSupport](),
	}
}

// EnqueueClaim schedules a claim to activate at height.
func (a *Activation) EnqueueClaim(height int32, name []byte, claim *node.Claim) {
	a.claims.Enqueue(height, claim.ID, PendingClaim{Name: name, Claim: claim})
}

// EnqueueSupport schedules a support to activate at height.
func (a *Activation) EnqueueSupport(height int32, name []byte, support *node.Support) {
	a.supports.Enqueue(height, support.ID, PendingSupport{Name: name, Support: support})
}

// DrainClaimsAt removes and returns every claim scheduled to activate at
// height.
func (a *Activation) DrainClaimsAt(height int32) []PendingClaim {
	return values(a.claims.DrainAt(height))
}

// DrainSupportsAt removes and returns every support scheduled to activate
// at height.
func (a *Activation) DrainSupportsAt(height int32) []PendingSupport {
	return values(a.supports.DrainAt(height))
}

// RemoveClaim removes a pending claim by id (used by spend_claim and
// undo_add_claim), returning whether it was found pending at all.
func (a *Activation) RemoveClaim(id node.ClaimID) (PendingClaim, bool) {
	v, _, ok := a.claims.Remove(id)
	return v, ok
}

// RemoveSupport removes a pending support by id.
func (a *Activation) RemoveSupport(id node.ClaimID) (PendingSupport, bool) {
	v, _, ok := a.supports.Remove(id)
	return v, ok
}

// ClaimHeight returns the height a pending claim is scheduled to activate
// at, if it is still pending.
func (a *Activation) ClaimHeight(id node.ClaimID) (int32, bool) {
	return a.claims.Height(id)
}

// SupportHeight returns the height a pending support is scheduled to
// activate at, if it is still pending.
func (a *Activation) SupportHeight(id node.ClaimID) (int32, bool) {
	return a.supports.Height(id)
}

// Clone returns a copy-on-write snapshot of the queue.
func (a *Activation) Clone() *Activation {
	return &Activation{claims: a.claims.Clone(), supports: a.supports.Clone()}
}

// ClaimEntries returns every pending claim, grouped by the height it is
// scheduled to activate at. Used by temporalrepo to snapshot the queue to
// disk.
func (a *Activation) ClaimEntries() map[int32][]PendingClaim {
	out := make(map[int32][]PendingClaim, len(a.claims.byHeight))
	for height, bucket := range a.claims.byHeight {
		entries := make([]PendingClaim, 0, len(bucket))
		for _, v := range bucket {
			entries = append(entries, v)
		}
		out[height] = entries
	}
	return out
}

// SupportEntries returns every pending support, grouped by the height it
// is scheduled to activate at. Used by temporalrepo to snapshot the queue
// to disk.
func (a *Activation) SupportEntries() map[int32][]PendingSupport {
	out := make(map[int32][]PendingSupport, len(a.supports.byHeight))
	for height, bucket := range a.supports.byHeight {
		entries := make([]PendingSupport, 0, len(bucket))
		for _, v := range bucket {
			entries = append(entries, v)
		}
		out[height] = entries
	}
	return out
}

func values[K comparable, V any](m map[K]V) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
