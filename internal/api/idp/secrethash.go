package idp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// SecretHash derives the keyed digest the identity provider requires on
// every credential operation when the app client has a secret configured.
// The provider recomputes HMAC-SHA256(secret, email+clientID) on its side
// and compares, so this must be byte-exact and deterministic.
func SecretHash(email, clientID, clientSecret string) string {
	mac := hmac.New(sha256.New, []byte(clientSecret))
	mac.Write([]byte(email + clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
