// Package inmemory provides a process-local snapshot store for tests and
// single-node deployments.
package inmemory

import (
	"context"
	"sync"

	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/hitl"
)

type Store struct {
	mu        sync.Mutex
	snapshots map[string]hitl.Snapshot
}

func New() *Store {
	return &Store{
		snapshots: make(map[string]hitl.Snapshot),
	}
}

func (s *Store) Put(ctx context.Context, snapshot hitl.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[snapshot.RequestID] = snapshot
	return nil
}

// Consume removes and returns the snapshot in one step, so concurrent
// resumes of the same request id resolve first-resumer-wins.
func (s *Store) Consume(ctx context.Context, requestID string) (hitl.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, ok := s.snapshots[requestID]
	if !ok {
		return hitl.Snapshot{}, hitl.ErrSnapshotNotFound
	}

	delete(s.snapshots, requestID)
	return snapshot, nil
}
