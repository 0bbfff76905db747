package utils

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordRoundTrip(t *testing.T) {
	cases := []string{"pw1", "correct horse battery staple", "päss wörd", ""}
	for _, plain := range cases {
		hash, err := HashPassword(plain, bcrypt.MinCost)
		if err != nil {
			t.Fatalf("hash %q: %v", plain, err)
		}
		if !VerifyPassword(hash, plain) {
			t.Fatalf("verify(hash(%q)) = false", plain)
		}
		if VerifyPassword(hash, plain+"x") {
			t.Fatalf("verify accepted wrong password for %q", plain)
		}
	}
}

func TestVerifyPasswordNeverPanicsOnGarbageHash(t *testing.T) {
	if VerifyPassword("not-a-bcrypt-hash", "pw") {
		t.Fatal("garbage hash verified")
	}
}

func TestHashTokenHandlesLongInput(t *testing.T) {
	// Refresh tokens are JWTs, far beyond bcrypt's 72-byte limit.
	raw := strings.Repeat("a.b.c", 100)
	hash, err := HashToken(raw, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash long token: %v", err)
	}
	if !VerifyToken(hash, raw) {
		t.Fatal("verify(hash(token)) = false")
	}
	if VerifyToken(hash, raw+"tail") {
		t.Fatal("verify accepted a different token")
	}
}

func TestHashTokenSaltsDigests(t *testing.T) {
	a, err := HashToken("same-token", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	b, err := HashToken("same-token", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("token digests are unsalted")
	}
}
