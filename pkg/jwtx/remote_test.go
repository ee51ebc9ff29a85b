package jwtx_test

import (
	"context"
	"sync"
	"testing"

	"github.com/simpledungeon/api/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestRemoteKeySetCachesAfterPrime(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	priv := newTestKey(t)
	srv := newJWKSServer(t, jwkFor("k1", &priv.PublicKey))

	keys := jwtx.NewRemoteKeySet(srv.URL)
	require.NoError(t, keys.Prime(ctx))
	require.True(t, keys.IsReady())

	for i := 0; i < 5; i++ {
		pk, err := keys.Get(ctx, "k1")
		require.NoError(t, err)
		require.Equal(t, priv.PublicKey.N, pk.N)
	}

	// Prime fetched once; cached lookups don't hit the server again.
	require.EqualValues(t, 1, srv.Fetches())
}

func TestRemoteKeySetRefreshesOnUnknownKID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	oldKey := newTestKey(t)
	newKey := newTestKey(t)

	srv := newJWKSServer(t, jwkFor("old", &oldKey.PublicKey))

	keys := jwtx.NewRemoteKeySet(srv.URL)
	require.NoError(t, keys.Prime(ctx))

	// Key rotation: the provider publishes a new key under a new kid.
	srv.SetKeys(jwkFor("old", &oldKey.PublicKey), jwkFor("new", &newKey.PublicKey))

	pk, err := keys.Get(ctx, "new")
	require.NoError(t, err)
	require.Equal(t, newKey.PublicKey.N, pk.N)
	require.EqualValues(t, 2, srv.Fetches())
}

func TestRemoteKeySetUnknownKIDAfterRefresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	priv := newTestKey(t)
	srv := newJWKSServer(t, jwkFor("k1", &priv.PublicKey))

	keys := jwtx.NewRemoteKeySet(srv.URL)

	_, err := keys.Get(ctx, "nope")
	require.ErrorIs(t, err, jwtx.ErrNoKey)
}

func TestRemoteKeySetSingleFlightsConcurrentMisses(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	priv := newTestKey(t)
	srv := newJWKSServer(t, jwkFor("k1", &priv.PublicKey))

	keys := jwtx.NewRemoteKeySet(srv.URL)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := keys.Get(ctx, "k1")
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	// All misses for the same kid should collapse into very few fetches.
	// Singleflight guarantees one fetch per "flight"; with all goroutines
	// racing the first flight this stays well below the goroutine count.
	require.LessOrEqual(t, srv.Fetches(), int64(3))
}
