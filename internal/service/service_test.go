package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/connection-monitor/internal/model"
	"github.com/iliyamo/connection-monitor/internal/queue"
	"github.com/iliyamo/connection-monitor/internal/repository"
	"github.com/iliyamo/connection-monitor/internal/store"
)

var testNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newStore() *store.ConnectionStore {
	return store.New(model.ExampleDataset(testNow), store.WithClock(func() time.Time { return testNow }))
}

func TestSnapshotSaverSavesDataChanges(t *testing.T) {
	s := newStore()
	repo := &repository.MemorySnapshotRepo{}
	saver := NewSnapshotSaver(repo)
	s.Subscribe(saver)

	s.SetSearchTerm("abc")
	if err := saver.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if repo.Saves() != 0 {
		t.Fatalf("ui change must not save, got %d saves", repo.Saves())
	}

	s.AddConnection(model.ConnectionInput{ClientName: "Test", Address: "вул. Шевченка 25"})
	s.AddAddress(model.AddressInput{Street: "вул. Франка", Building: "3"})
	if err := saver.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if repo.Saves() != 1 {
		t.Fatalf("changes should coalesce into one save, got %d", repo.Saves())
	}
	ds, _ := repo.LoadAll(context.Background())
	if len(ds.Connections) != 2 || len(ds.Addresses) != 2 {
		t.Fatalf("unexpected saved dataset: %d connections, %d addresses", len(ds.Connections), len(ds.Addresses))
	}
}

func TestSnapshotSaverRunFlushesOnStop(t *testing.T) {
	s := newStore()
	repo := &repository.MemorySnapshotRepo{}
	saver := NewSnapshotSaver(repo)
	s.Subscribe(saver)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		saver.Run(ctx)
		close(done)
	}()
	s.RemoveConnection("1")
	cancel()
	<-done

	ds, _ := repo.LoadAll(context.Background())
	if repo.Saves() == 0 || len(ds.Connections) != 0 {
		t.Fatalf("expected removal to be saved, got %d saves and %d connections", repo.Saves(), len(ds.Connections))
	}
}

func TestBuildEvent(t *testing.T) {
	s := newStore()
	p, ok := s.AddPhoto("1", model.PhotoInput{URL: "http://x/1.jpg"})
	if !ok {
		t.Fatal("photo not added")
	}
	ev := BuildEvent(store.Change{Kind: store.ChangePhotoAdded, ID: p.ID, ConnectionID: "1"}, s.Snapshot(), testNow)
	if ev.Kind != "photo.added" || ev.EntityID != p.ID || ev.ClientName != "Іван Петренко" || ev.Status != "Active" {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.Total != 1 || ev.OccurredAt != "2025-03-01T10:00:00Z" {
		t.Fatalf("unexpected event meta %+v", ev)
	}

	a := s.AddAddress(model.AddressInput{Street: "вул. Франка", Building: "3"})
	ev = BuildEvent(store.Change{Kind: store.ChangeAddressAdded, ID: a.ID}, s.Snapshot(), testNow)
	if ev.Address != "вул. Франка 3" {
		t.Fatalf("expected address label, got %q", ev.Address)
	}
}

func TestEventPublisherPublishesDataChanges(t *testing.T) {
	s := newStore()
	pub := NewEventPublisher("", 8)
	var (
		mu   sync.Mutex
		got  []queue.ConnectionChangedEvent
		seen = make(chan struct{}, 8)
	)
	pub.publish = func(_ context.Context, body []byte) error {
		var ev queue.ConnectionChangedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			t.Errorf("bad body: %v", err)
		}
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
		seen <- struct{}{}
		return nil
	}
	s.Subscribe(pub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pub.Run(ctx)

	s.ToggleSortByAddress()
	s.UpdateConnection("1", model.ConnectionPatch{Status: statusPtr(model.StatusInactive)})

	select {
	case <-seen:
	case <-time.After(2 * time.Second):
		t.Fatal("no event published")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0].Kind != "connection.updated" || got[0].Status != "Inactive" {
		t.Fatalf("unexpected events %+v", got)
	}
}

func TestCacheInvalidatorWithoutRedis(t *testing.T) {
	inv := NewCacheInvalidator(nil, "k")
	inv.StateChanged(store.Change{Kind: store.ChangeSortToggled}, store.Snapshot{})
}

func statusPtr(s model.Status) *model.Status { return &s }
