package inbox

import (
	"strings"
	"testing"
)

func TestSignatureKnownAnswer(t *testing.T) {
	body := []byte(`{"message_id":"m1","from":"+919876543210","to":"+14155550100","ts":"2025-01-15T10:00:00Z","text":"hi"}`)
	want := "74aa479f3cbeba1f1f0a0effbd2b3f51550028d3e37d84fe8ff6e07d576c4221"
	if got := Signature("s3cr3t", body); got != want {
		t.Fatalf("signature mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestVerifySignatureRoundTrip(t *testing.T) {
	cases := []struct {
		secret string
		body   string
	}{
		{"s3cr3t", `{"message_id":"m1"}`},
		{"another-secret", ""},
		{"k", strings.Repeat("x", 10000)},
	}
	for _, tc := range cases {
		sig := Signature(tc.secret, []byte(tc.body))
		if !VerifySignature(tc.secret, []byte(tc.body), sig) {
			t.Fatalf("verify(sign(%q, body)) = false for body %q...", tc.secret, tc.body[:min(len(tc.body), 20)])
		}
	}
}

func TestVerifySignatureAcceptsUppercaseAndPrefix(t *testing.T) {
	body := []byte(`payload`)
	sig := Signature("s", body)

	if !VerifySignature("s", body, strings.ToUpper(sig)) {
		t.Fatalf("uppercase signature rejected")
	}
	if !VerifySignature("s", body, "sha256="+sig) {
		t.Fatalf("sha256= prefixed signature rejected")
	}
	if !VerifySignature("s", body, "  "+sig+"  ") {
		t.Fatalf("padded signature rejected")
	}
}

func TestVerifySignatureRejects(t *testing.T) {
	body := []byte(`payload`)
	sig := Signature("s", body)

	if VerifySignature("", body, sig) {
		t.Fatalf("accepted with empty secret")
	}
	if VerifySignature("s", body, "") {
		t.Fatalf("accepted empty signature")
	}
	if VerifySignature("s", body, "not-hex") {
		t.Fatalf("accepted non-hex signature")
	}
	if VerifySignature("wrong", body, sig) {
		t.Fatalf("accepted signature under wrong secret")
	}

	// Flipping any single byte of the body must invalidate the signature.
	for i := range body {
		tampered := append([]byte(nil), body...)
		tampered[i] ^= 0x01
		if VerifySignature("s", tampered, sig) {
			t.Fatalf("accepted signature for body tampered at byte %d", i)
		}
	}
}
