package speech

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Store memoizes encoded audio by fingerprint. Implementations must be safe for concurrent use;
// concurrent writes to one key may race, and the last writer wins.
type Store interface {
	Get(key string) (string, bool)
	Add(key, audio string)
	Purge()
	Len() int
}

// LRUStore is a size-bounded in-memory Store.
type LRUStore struct {
	cache *lru.Cache[string, string]
}

// NewLRUStore returns a store holding at most size entries.
func NewLRUStore(size int) (*LRUStore, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &LRUStore{cache: cache}, nil
}

func (s *LRUStore) Get(key string) (string, bool) {
	return s.cache.Get(key)
}

func (s *LRUStore) Add(key, audio string) {
	s.cache.Add(key, audio)
}

func (s *LRUStore) Purge() {
	s.cache.Purge()
}

func (s *LRUStore) Len() int {
	return s.cache.Len()
}
