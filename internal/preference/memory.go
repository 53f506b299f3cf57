package preference

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps preferences in process memory. Entries never expire
// unless a TTL is supplied, which makes it suitable for single-instance deployments and tests.
type MemoryStore struct {
	backend *gocache.Cache
}

// NewMemoryStore creates an in-memory Store. A ttl of zero keeps entries forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemoryStore{backend: gocache.New(ttl, 10*time.Minute)}
}

func (s *MemoryStore) Get(_ context.Context, owner, key string) (string, error) {
	raw, ok := s.backend.Get(scopedKey(owner, key))
	if !ok {
		return "", ErrNotFound
	}
	v, ok := raw.(string)
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) Set(_ context.Context, owner, key, value string) error {
	s.backend.SetDefault(scopedKey(owner, key), value)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, owner, key string) error {
	s.backend.Delete(scopedKey(owner, key))
	return nil
}
