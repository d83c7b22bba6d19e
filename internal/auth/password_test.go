package auth

import "testing"

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := BcryptHasher{}

	digest, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if digest == "s3cret" {
		t.Fatalf("digest must not equal the plaintext")
	}

	if !h.Verify("s3cret", digest) {
		t.Fatalf("expected correct password to verify")
	}
	if h.Verify("wrong", digest) {
		t.Fatalf("expected wrong password to fail")
	}
	if h.Verify("", digest) {
		t.Fatalf("expected empty password to fail")
	}
	if h.Verify("s3cret", "") {
		t.Fatalf("expected empty digest to fail")
	}
}

func TestBcryptHasherSalted(t *testing.T) {
	h := BcryptHasher{}
	d1, err := h.Hash("same")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	d2, err := h.Hash("same")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if d1 == d2 {
		t.Fatalf("two digests of the same password should differ (salt)")
	}
}

func TestBcryptHasherEmptyPassword(t *testing.T) {
	h := BcryptHasher{}
	if _, err := h.Hash(""); err == nil {
		t.Fatalf("expected error for empty password")
	}
}
