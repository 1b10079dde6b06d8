// Package banstore persists the set of beatmaps permanently excluded from
// PP calculation. Records are keyed by beatmap id, created at most once,
// and never deleted by this module.
package banstore

import (
	"context"
	"errors"
	"sync"

	"github.com/googuteam/scorepp/internal/config"
	"github.com/googuteam/scorepp/internal/observability"
)

// Store is the banned-beatmap store. Insert must be idempotent: two
// concurrent writers banning the same beatmap both succeed and leave
// exactly one record.
type Store interface {
	// Exists reports whether the beatmap is banned.
	Exists(ctx context.Context, beatmapID int64) (bool, error)

	// Insert bans the beatmap. Inserting an already-banned beatmap is a
	// no-op, not an error.
	Insert(ctx context.Context, beatmapID int64) error

	// Close releases the underlying connection.
	Close() error
}

// New creates a store based on the configuration.
func New(cfg *config.BanStoreConfig, logger observability.Logger) (Store, error) {
	if cfg == nil {
		return NewMemory(), nil
	}
	if logger == nil {
		logger = observability.NopLogger()
	}

	switch cfg.Type {
	case config.CacheTypeMemory, "":
		return NewMemory(), nil
	case config.CacheTypeRedis:
		return newRedisStore(cfg, logger)
	default:
		return nil, errors.New("unknown ban store type: " + cfg.Type)
	}
}

// memoryStore is an in-process Store, used in tests and single-node
// deployments.
type memoryStore struct {
	mu     sync.RWMutex
	banned map[int64]struct{}
}

// NewMemory creates an in-memory Store.
func NewMemory() Store {
	return &memoryStore{banned: make(map[int64]struct{})}
}

func (s *memoryStore) Exists(_ context.Context, beatmapID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.banned[beatmapID]
	return ok, nil
}

func (s *memoryStore) Insert(_ context.Context, beatmapID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banned[beatmapID] = struct{}{}
	return nil
}

func (s *memoryStore) Close() error {
	return nil
}
