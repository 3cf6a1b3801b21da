package db

import (
	"jandon-server/src/codef"

	"github.com/dgraph-io/ristretto"
)

const tokenCacheKey = "codef_access_token"

// TokenCache is the ristretto-backed implementation of codef.TokenCache.
// Expiry decisions belong to the token manager; this only holds the pair.
type TokenCache struct {
	cache *ristretto.Cache
}

func NewTokenCache() (*TokenCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 100, // only a handful of keys live here
		MaxCost:     100,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, err
	}
	return &TokenCache{cache: cache}, nil
}

func (c *TokenCache) Get() (codef.Token, bool) {
	v, ok := c.cache.Get(tokenCacheKey)
	if !ok {
		return codef.Token{}, false
	}
	tok, ok := v.(codef.Token)
	return tok, ok
}

func (c *TokenCache) Set(tok codef.Token) {
	c.cache.Set(tokenCacheKey, tok, 1)
	// Ristretto applies sets asynchronously; wait so the very next Get sees it.
	c.cache.Wait()
}
