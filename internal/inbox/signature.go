package inbox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Signature returns the lowercase hex HMAC-SHA256 digest of body keyed by secret.
func Signature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether provided is a valid HMAC-SHA256 hex digest
// of body under secret. The provided value may be upper or lower case and may
// carry a "sha256=" prefix. The digest comparison is constant-time; hex
// decoding touches only caller-supplied data, never the secret or the
// expected digest. Returns false on empty secret, empty signature, or
// malformed hex.
func VerifySignature(secret string, body []byte, provided string) bool {
	if secret == "" {
		return false
	}
	sig := strings.ToLower(strings.TrimSpace(provided))
	sig = strings.TrimPrefix(sig, "sha256=")
	if sig == "" {
		return false
	}
	decoded, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return hmac.Equal(mac.Sum(nil), decoded)
}
