package cryptox_test

import (
	"testing"

	"github.com/simpledungeon/api/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	t.Run("rejects non-positive sizes", func(t *testing.T) {
		_, err := cryptox.GenerateToken(0)
		require.Error(t, err)

		_, err = cryptox.GenerateToken(-1)
		require.Error(t, err)
	})

	t.Run("tokens are unique", func(t *testing.T) {
		seen := make(map[string]struct{})
		for i := 0; i < 100; i++ {
			tok, err := cryptox.GenerateToken(cryptox.TokenSize256)
			require.NoError(t, err)
			require.NotContains(t, seen, tok)
			seen[tok] = struct{}{}
		}
	})
}

func TestFingerprintToken(t *testing.T) {
	t.Parallel()

	t.Run("known fixture", func(t *testing.T) {
		// sha256("example-token") base64url, no padding.
		require.Equal(t,
			"TRVmodffQqhRdFbWDqBu0oTlNc_kyVaqbuFy2835Rfc",
			cryptox.FingerprintToken("example-token"),
		)
	})

	t.Run("deterministic", func(t *testing.T) {
		a := cryptox.FingerprintToken("some-bearer-token")
		b := cryptox.FingerprintToken("some-bearer-token")
		require.Equal(t, a, b)
	})

	t.Run("distinct inputs produce distinct fingerprints", func(t *testing.T) {
		require.NotEqual(t,
			cryptox.FingerprintToken("token-a"),
			cryptox.FingerprintToken("token-b"),
		)
	})
}
