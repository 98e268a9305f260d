// Package redisstore persists workflow snapshots in Redis so paused
// research sessions survive process restarts and spread across replicas.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/hitl"
)

type Store struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

type Opts struct {
	KeyPrefix string
	TTL       time.Duration
}

func New(client *redis.Client, opts Opts) *Store {
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}

	return &Store{
		client:    client,
		keyPrefix: opts.KeyPrefix,
		ttl:       opts.TTL,
	}
}

func (s *Store) key(requestID string) string {
	if s.keyPrefix != "" {
		return fmt.Sprintf("%s:snapshots:%s", s.keyPrefix, requestID)
	}
	return fmt.Sprintf("snapshots:%s", requestID)
}

func (s *Store) Put(ctx context.Context, snapshot hitl.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := s.client.Set(ctx, s.key(snapshot.RequestID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	return nil
}

// Consume reads and deletes atomically via GETDEL, so the first resumer
// wins and later attempts observe a miss.
func (s *Store) Consume(ctx context.Context, requestID string) (hitl.Snapshot, error) {
	payload, err := s.client.GetDel(ctx, s.key(requestID)).Result()
	if err == redis.Nil {
		return hitl.Snapshot{}, hitl.ErrSnapshotNotFound
	}
	if err != nil {
		return hitl.Snapshot{}, fmt.Errorf("failed to consume snapshot: %w", err)
	}

	var snapshot hitl.Snapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return hitl.Snapshot{}, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return snapshot, nil
}
