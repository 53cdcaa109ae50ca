package hub

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

type nopSender struct{}

func (nopSender) Send([]byte) error { return nil }
func (nopSender) Close() error      { return nil }

func TestRegistryAddRemove(t *testing.T) {
	r := NewRegistry()
	conn := newConn(nopSender{}, "alice")

	r.Add(conn)
	if r.Len() != 1 {
		t.Fatalf("expected 1 connection, got %d", r.Len())
	}

	if !r.Remove(conn.ID) {
		t.Fatal("expected Remove to report presence")
	}
	if r.Remove(conn.ID) {
		t.Fatal("expected second Remove to be a no-op")
	}
	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Len())
	}
}

func TestRegistryRemoveUnknownID(t *testing.T) {
	r := NewRegistry()
	if r.Remove(uuid.New()) {
		t.Fatal("expected Remove of unknown id to be a no-op")
	}
}

func TestRegistrySnapshotIsACopy(t *testing.T) {
	r := NewRegistry()
	conn := newConn(nopSender{}, "alice")
	r.Add(conn)

	snapshot := r.Snapshot()
	r.Remove(conn.ID)

	if len(snapshot) != 1 || snapshot[0].ID != conn.ID {
		t.Fatalf("snapshot mutated by later removal: %+v", snapshot)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn := newConn(nopSender{}, "guest")
			r.Add(conn)
			for j := 0; j < 10; j++ {
				r.Snapshot()
				r.Len()
			}
			r.Remove(conn.ID)
		}()
	}
	wg.Wait()

	if r.Len() != 0 {
		t.Fatalf("expected empty registry after all goroutines, got %d", r.Len())
	}
}
