package queue

import "testing"

func TestExpirationEnqueueAndDrain(t *testing.T) {
	e := NewExpiration()
	id := claimID(1)
	e.Enqueue(200, []byte("foo"), id, false)

	if got := e.DrainAt(199); len(got) != 0 {
		t.Fatal("nothing should be scheduled before its height")
	}

	drained := e.DrainAt(200)
	entry, ok := drained[id]
	if !ok || entry.IsSupport {
		t.Fatalf("DrainAt(200) = %+v, want one claim entry for %x", drained, id)
	}
}

func TestExpirationSupportEntry(t *testing.T) {
	e := NewExpiration()
	id := claimID(2)
	e.Enqueue(50, []byte("bar"), id, true)

	drained := e.DrainAt(50)
	entry, ok := drained[id]
	if !ok || !entry.IsSupport {
		t.Fatalf("expected a support expiration entry, got %+v", entry)
	}
}

func TestExpirationRemove(t *testing.T) {
	e := NewExpiration()
	id := claimID(3)
	e.Enqueue(10, []byte("baz"), id, false)

	height, ok := e.Remove(id)
	if !ok || height != 10 {
		t.Fatalf("Remove = %d, %v, want 10, true", height, ok)
	}
	if got := e.DrainAt(10); len(got) != 0 {
		t.Fatal("removed entry must not surface on drain")
	}
}

func TestExpirationClone(t *testing.T) {
	e := NewExpiration()
	id := claimID(4)
	e.Enqueue(15, []byte("qux"), id, false)

	clone := e.Clone()
	clone.Remove(id)

	if _, ok := e.Height(id); !ok {
		t.Fatal("mutating the clone must not affect the original queue")
	}
}
