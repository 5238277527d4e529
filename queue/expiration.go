package queue

import "github.com/lbryio/claimtrie/node"

// ExpirationEntry names the node an expiring claim or support lives at.
type ExpirationEntry struct {
	Name      []byte
	IsSupport bool
}

// Expiration is the expiration_queue of spec.md §3. Every active claim
// has exactly one entry here (invariant I4), scheduled when the claim
// activates and cancelled on spend or reorg; supports share the same
// lifecycle (spec.md §5: "a support... retains its bytes until the
// support itself is spent or expires").
type Expiration struct {
	entries *heightMap[node.ClaimID, ExpirationEntry]
}

// NewExpiration returns an empty expiration queue.
func NewExpiration() *Expiration {
	return &Expiration{entries: newHeightMap[node.ClaimID, ExpirationEntry]()}
}

// Enqueue schedules id's expiration at height.
func (e *Expiration) Enqueue(height int32, name []byte, id node.ClaimID, isSupport bool) {
	e.entries.Enqueue(height, id, ExpirationEntry{Name: name, IsSupport: isSupport})
}

// DrainAt removes and returns every id expiring at height.
func (e *Expiration) DrainAt(height int32) map[node.ClaimID]ExpirationEntry {
	return e.entries.DrainAt(height)
}

// Remove cancels id's scheduled expiration (spend or reorg), returning
// the height it had been scheduled at.
func (e *Expiration) Remove(id node.ClaimID) (int32, bool) {
	_, height, ok := e.entries.Remove(id)
	return height, ok
}

// Height returns the height id is scheduled to expire at, if any.
func (e *Expiration) Height(id node.ClaimID) (int32, bool) {
	return e.entries.Height(id)
}

// Clone returns a copy-on-write snapshot of the queue.
func (e *Expiration) Clone() *Expiration {
	return &Expiration{entries: e.entries.Clone()}
}

// ExpirationRecord augments ExpirationEntry with the id it is filed
// under, for callers that need to enumerate every scheduled entry rather
// than draining by height.
type ExpirationRecord struct {
	ClaimID node.ClaimID
	ExpirationEntry
}

// Entries returns every scheduled expiration, grouped by height. Used by
// temporalrepo to snapshot the queue to disk.
func (e *Expiration) Entries() map[int32][]ExpirationRecord {
	out := make(map[int32][]ExpirationRecord, len(e.entries.byHeight))
	for height, bucket := range e.entries.byHeight {
		records := make([]ExpirationRecord, 0, len(bucket))
		for id, entry := range bucket {
			records = append(records, ExpirationRecord{ClaimID: id, ExpirationEntry: entry})
		}
		out[height] = records
	}
	return out
}
