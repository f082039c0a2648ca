package session

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in process memory. Sessions do not survive a
// restart and are not shared between instances.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: cache.New(cache.NoExpiration, 10*time.Minute)}
}

func (s *MemoryStore) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	s.cache.Set(sess.ID, *sess, ttl)
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*Session, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	sess := v.(Session)
	return &sess, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}
