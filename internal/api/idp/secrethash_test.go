package idp_test

import (
	"testing"

	"github.com/simpledungeon/api/internal/api/idp"
	"github.com/stretchr/testify/require"
)

func TestSecretHashKnownFixture(t *testing.T) {
	t.Parallel()

	// HMAC-SHA256("test-client-secret", "user@example.com"+"test-client-id"),
	// standard base64. The provider computes the same digest independently,
	// so this fixture pins the exact formula.
	got := idp.SecretHash("user@example.com", "test-client-id", "test-client-secret")
	require.Equal(t, "JDFaz1Kl3Xp5KDXMm53WxP0U+ngLmtk3FN01nVGOnmQ=", got)
}

func TestSecretHashIsDeterministic(t *testing.T) {
	t.Parallel()

	a := idp.SecretHash("user@example.com", "client-1", "secret")
	b := idp.SecretHash("user@example.com", "client-1", "secret")
	require.Equal(t, a, b)
}

func TestSecretHashIsInputSensitive(t *testing.T) {
	t.Parallel()

	base := idp.SecretHash("user@example.com", "client-1", "secret")

	require.NotEqual(t, base, idp.SecretHash("other@example.com", "client-1", "secret"),
		"changing the email must change the digest")
	require.NotEqual(t, base, idp.SecretHash("user@example.com", "client-2", "secret"),
		"changing the client id must change the digest")
	require.NotEqual(t, base, idp.SecretHash("user@example.com", "client-1", "other-secret"),
		"changing the key must change the digest")
}

func TestSecretHashSecondFixture(t *testing.T) {
	t.Parallel()

	got := idp.SecretHash("other@example.com", "test-client-id", "test-client-secret")
	require.Equal(t, "MDs1yOVuTqM7k/pcAXxJqmAtHFrJrVgA3u9VVls5aMU=", got)
}
