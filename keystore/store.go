package keystore

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when no key is registered under a prefix.
var ErrNotFound = errors.New("api key not found")

// Key is the server side record of an API key.
type Key struct {
	Prefix string
	// Hash is the bcrypt hash of the full key.
	Hash string
	// ExpiresAt is the zero time for keys that never expire.
	ExpiresAt time.Time
}

func (k Key) Expired(now time.Time) bool {
	return !k.ExpiresAt.IsZero() && now.After(k.ExpiresAt)
}

// Store looks up API keys by their public prefix.
type Store interface {
	GetKey(ctx context.Context, prefix string) (Key, error)
}

// MemStore is a Store held in memory.
type MemStore struct {
	mu   sync.RWMutex
	keys map[string]Key
}

func NewMemStore(keys ...Key) *MemStore {
	s := &MemStore{keys: make(map[string]Key, len(keys))}
	for _, k := range keys {
		s.keys[k.Prefix] = k
	}
	return s
}

func (s *MemStore) Add(k Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[k.Prefix] = k
}

func (s *MemStore) GetKey(ctx context.Context, prefix string) (Key, error) {
	if err := ctx.Err(); err != nil {
		return Key{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.keys[prefix]
	if !ok {
		return Key{}, ErrNotFound
	}
	return k, nil
}
