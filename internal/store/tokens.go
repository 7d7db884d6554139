// Package store provides the single-use correlation token store.
package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// TokenStore maps freshly minted opaque tokens to a context value. Tokens
// are single-use: the first Consume removes the entry, so a reuse behaves
// exactly like a token that was never minted. Entries also expire after the
// configured TTL and are evicted LRU-first when the store is full.
type TokenStore[V any] struct {
	cache *expirable.LRU[string, V]
}

// NewTokenStore creates a token store holding at most size live tokens,
// each valid for ttl.
func NewTokenStore[V any](size int, ttl time.Duration) *TokenStore[V] {
	return &TokenStore[V]{
		cache: expirable.NewLRU[string, V](size, nil, ttl),
	}
}

// Mint stores value under a fresh opaque token and returns the token.
func (s *TokenStore[V]) Mint(value V) string {
	token := uuid.NewString()
	s.cache.Add(token, value)
	return token
}

// Consume removes and returns the value for token. Expired, already
// consumed, and never-minted tokens all return ok=false.
func (s *TokenStore[V]) Consume(token string) (V, bool) {
	value, ok := s.cache.Get(token)
	if ok {
		s.cache.Remove(token)
	}
	return value, ok
}

// Len returns the number of live tokens.
func (s *TokenStore[V]) Len() int {
	return s.cache.Len()
}
