package jwtx

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/sync/singleflight"
)

// KeyProvider resolves a kid to its RSA public key. Implemented by
// RemoteKeySet for production and by plain KeySets in tests.
type KeyProvider interface {
	Get(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// RemoteKeySet memoizes the identity provider's published signing keys.
// Keys rotate rarely, so cached entries never expire proactively; a lookup
// miss triggers a single re-fetch of the whole set to tolerate rotation.
// Concurrent misses for the same kid collapse into one fetch.
type RemoteKeySet struct {
	url        string
	httpClient *http.Client

	keys  *KeySet
	group singleflight.Group
}

// RemoteOption configures a RemoteKeySet.
type RemoteOption func(*RemoteKeySet)

// WithHTTPClient sets a custom HTTP client for fetching the key set.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *RemoteKeySet) { r.httpClient = c }
}

// NewRemoteKeySet creates a key cache backed by the given JWKS URL.
func NewRemoteKeySet(url string, opts ...RemoteOption) *RemoteKeySet {
	r := &RemoteKeySet{
		url:        url,
		httpClient: http.DefaultClient,
		keys:       NewKeySet(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Get returns the public key for kid, fetching the remote set once if the
// kid is not cached. Returns ErrNoKey when the provider's published set has
// no matching key even after a refresh.
func (r *RemoteKeySet) Get(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if pk, err := r.keys.Get(kid); err == nil {
		return pk, nil
	}

	// Collapse concurrent refreshes for the same unknown kid. Redundant
	// fetches across distinct kids are harmless, just wasteful.
	_, err, _ := r.group.Do(kid, func() (any, error) {
		// Re-check under the flight: another caller may have refreshed
		// the set while we queued.
		if _, err := r.keys.Get(kid); err == nil {
			return nil, nil
		}
		return nil, r.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}

	return r.keys.Get(kid)
}

// Prime fetches the key set eagerly. Useful at startup so the first
// authenticated request doesn't pay the fetch latency.
func (r *RemoteKeySet) Prime(ctx context.Context) error {
	return r.refresh(ctx)
}

// IsReady reports whether at least one key has been loaded.
func (r *RemoteKeySet) IsReady() bool {
	return r.keys.IsReady()
}

func (r *RemoteKeySet) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return fmt.Errorf("jwtx: build jwks request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("jwtx: fetch jwks: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwtx: fetch jwks: unexpected status %d", resp.StatusCode)
	}

	var jwks JWKS
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return fmt.Errorf("jwtx: decode jwks: %w", err)
	}

	return r.keys.ResetFromJWKS(jwks)
}
