package security

import "testing"

func TestBcryptHashAndVerify(t *testing.T) {
	h := NewBcryptHasher(4)
	hash, err := h.Hash("s3cret-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret-password" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !h.Verify("s3cret-password", hash) {
		t.Error("correct password should verify")
	}
	if h.Verify("wrong-password", hash) {
		t.Error("wrong password should not verify")
	}
}

func TestBcryptHashesDiffer(t *testing.T) {
	h := NewBcryptHasher(4)
	a, err := h.Hash("same")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := h.Hash("same")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == b {
		t.Error("two hashes of the same password should differ (random salt)")
	}
}
