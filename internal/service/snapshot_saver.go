package service

import (
	"context"
	"sync"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/connection-monitor/internal/model"
	"github.com/iliyamo/connection-monitor/internal/repository"
	"github.com/iliyamo/connection-monitor/internal/store"
)

// SnapshotSaver is a StateListener that writes the dataset to a
// SnapshotRepo after each data change.  Saves are coalesced: while one is
// running, further changes collapse into a single follow-up save of the
// newest dataset.
type SnapshotSaver struct {
	repo    repository.SnapshotRepo
	timeout time.Duration

	mu      sync.Mutex
	pending *model.Dataset
	wake    chan struct{}
	saveMu  sync.Mutex
}

func NewSnapshotSaver(repo repository.SnapshotRepo) *SnapshotSaver {
	return &SnapshotSaver{repo: repo, timeout: 10 * time.Second, wake: make(chan struct{}, 1)}
}

func (s *SnapshotSaver) StateChanged(change store.Change, snap store.Snapshot) {
	if !change.Kind.IsData() {
		return
	}
	ds := snap.Dataset()
	s.mu.Lock()
	s.pending = &ds
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Run saves pending datasets until ctx is done, then flushes what is left.
func (s *SnapshotSaver) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			fctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			if err := s.Flush(fctx); err != nil {
				log.Errorf("snapshot: final save failed: %v", err)
			}
			cancel()
			return
		case <-s.wake:
			sctx, cancel := context.WithTimeout(ctx, s.timeout)
			if err := s.Flush(sctx); err != nil {
				log.Errorf("snapshot: save failed: %v", err)
			}
			cancel()
		}
	}
}

// Flush saves the pending dataset, if any.  A failed save stays pending
// unless a newer dataset arrived meanwhile.
func (s *SnapshotSaver) Flush(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	ds := s.pending
	s.pending = nil
	s.mu.Unlock()
	if ds == nil {
		return nil
	}
	if err := s.repo.SaveAll(ctx, *ds); err != nil {
		s.mu.Lock()
		if s.pending == nil {
			s.pending = ds
		}
		s.mu.Unlock()
		return err
	}
	return nil
}
