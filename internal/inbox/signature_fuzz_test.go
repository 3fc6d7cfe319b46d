package inbox

import "testing"

func FuzzVerifySignatureDoesNotPanic(f *testing.F) {
	f.Add("s3cr3t", []byte(`{"message_id":"m1"}`), "deadbeef")
	f.Add("", []byte(""), "")
	f.Add("k", []byte("body"), "sha256=ZZZZ")
	f.Add("k", []byte("body"), "74aa479f3cbeba1f1f0a0effbd2b3f51550028d3e37d84fe8ff6e07d576c4221")

	f.Fuzz(func(t *testing.T, secret string, body []byte, provided string) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("VerifySignature panicked: %v", r)
			}
		}()

		ok := VerifySignature(secret, body, provided)
		if ok && secret != "" {
			// Anything accepted must round-trip against the canonical digest.
			if !VerifySignature(secret, body, Signature(secret, body)) {
				t.Fatalf("accepted %q but canonical digest fails", provided)
			}
		}
		if ok && secret == "" {
			t.Fatalf("accepted signature with empty secret")
		}
	})
}
