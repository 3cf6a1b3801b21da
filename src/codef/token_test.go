package codef

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCache is a plain in-process TokenCache for tests.
type memoryCache struct {
	tok Token
	ok  bool
}

func (c *memoryCache) Get() (Token, bool) { return c.tok, c.ok }
func (c *memoryCache) Set(tok Token)      { c.tok, c.ok = tok, true }

func newTokenServer(t *testing.T, calls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))

		*calls++
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": fmt.Sprintf("tok-%d", *calls),
		})
	}))
}

func TestToken_CachedTokenIsReused(t *testing.T) {
	var calls int
	srv := newTokenServer(t, &calls)
	defer srv.Close()

	m := NewTokenManager(&memoryCache{}, srv.URL, "client-id", "client-secret")

	tok, err := m.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
	assert.Equal(t, 1, calls)

	// Within the 50-minute lifetime: no network call.
	tok, err = m.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
	assert.Equal(t, 1, calls)
}

func TestToken_ExpiredTokenIsReissuedOnce(t *testing.T) {
	var calls int
	srv := newTokenServer(t, &calls)
	defer srv.Close()

	m := NewTokenManager(&memoryCache{}, srv.URL, "client-id", "client-secret")

	_, err := m.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	// Move the clock past the cached expiry.
	m.now = func() time.Time { return time.Now().Add(51 * time.Minute) }

	tok, err := m.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok)
	assert.Equal(t, 2, calls)

	// The re-issued token is cached against the moved clock.
	tok, err = m.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok)
	assert.Equal(t, 2, calls)
}

func TestRefresh_AlwaysCallsAndOverwritesCache(t *testing.T) {
	var calls int
	srv := newTokenServer(t, &calls)
	defer srv.Close()

	cache := &memoryCache{}
	m := NewTokenManager(cache, srv.URL, "client-id", "client-secret")

	_, err := m.Token(context.Background())
	require.NoError(t, err)

	tok, err := m.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "tok-2", cache.tok.Value)
}

func TestRefresh_NonSuccessStatusIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusForbidden)
	}))
	defer srv.Close()

	m := NewTokenManager(&memoryCache{}, srv.URL, "client-id", "client-secret")

	_, err := m.Token(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestRefresh_MissingAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token_type": "Bearer"})
	}))
	defer srv.Close()

	m := NewTokenManager(&memoryCache{}, srv.URL, "client-id", "client-secret")

	_, err := m.Refresh(context.Background())
	assert.Error(t, err)
}
