package app

import (
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/Pointing/internal/core"
	"github.com/dkeye/Pointing/internal/domain"
)

func newTestRegistry() *Registry {
	return NewRegistry(domain.DefaultScale(), nil)
}

func TestCreateAndGetRoom(t *testing.T) {
	t.Parallel()
	reg := newTestRegistry()

	svc, owner, err := reg.Create("Sprint Planning", "Alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if owner.Name != "Alice" {
		t.Fatalf("owner name = %q, want Alice", owner.Name)
	}
	if svc.Room().OwnerID != owner.ID {
		t.Fatalf("room owner = %q, want %q", svc.Room().OwnerID, owner.ID)
	}

	got, err := reg.Get(svc.Room().ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != svc {
		t.Fatal("get must return the created room handle")
	}
}

func TestGetUnknownRoom(t *testing.T) {
	t.Parallel()
	reg := newTestRegistry()
	if _, err := reg.Get("nope"); !errors.Is(err, core.ErrRoomNotFound) {
		t.Fatalf("err = %v, want ErrRoomNotFound", err)
	}
}

func TestCreateValidatesNames(t *testing.T) {
	t.Parallel()
	reg := newTestRegistry()
	if _, _, err := reg.Create("", "Alice"); !errors.Is(err, domain.ErrNameEmpty) {
		t.Fatalf("empty room name err = %v, want ErrNameEmpty", err)
	}
	if _, _, err := reg.Create("room", ""); !errors.Is(err, domain.ErrNameEmpty) {
		t.Fatalf("empty owner name err = %v, want ErrNameEmpty", err)
	}
}

func TestEvictRoom(t *testing.T) {
	t.Parallel()
	reg := newTestRegistry()
	svc, _, err := reg.Create("room", "Alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	reg.Evict(svc.Room().ID)
	if _, err := reg.Get(svc.Room().ID); !errors.Is(err, core.ErrRoomNotFound) {
		t.Fatalf("err after evict = %v, want ErrRoomNotFound", err)
	}
}

func TestConcurrentCreatesNeverCollide(t *testing.T) {
	t.Parallel()
	reg := newTestRegistry()

	const n = 32
	ids := make([]domain.RoomID, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			svc, _, err := reg.Create("room", "Owner")
			if err != nil {
				t.Errorf("create: %v", err)
				return
			}
			ids[idx] = svc.Room().ID
		}(i)
	}
	wg.Wait()

	seen := make(map[domain.RoomID]bool, n)
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate room id %q", id)
		}
		seen[id] = true
		if _, err := reg.Get(id); err != nil {
			t.Fatalf("get %q: %v", id, err)
		}
	}
	if got := len(reg.List()); got != n {
		t.Fatalf("list = %d rooms, want %d", got, n)
	}
}
