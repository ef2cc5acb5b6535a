package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-password", 4)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "s3cret-password" {
		t.Fatalf("hash must not equal plaintext")
	}
	if !VerifyPassword(hash, "s3cret-password") {
		t.Fatalf("expected valid password to verify")
	}
	if VerifyPassword(hash, "wrong-password") {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestHashPasswordSaltsEachCall(t *testing.T) {
	first, err := HashPassword("same-input", 4)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	second, err := HashPassword("same-input", 4)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct hashes for the same input")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	if VerifyPassword("not-a-bcrypt-hash", "anything") {
		t.Fatalf("malformed hash must verify as false")
	}
}
