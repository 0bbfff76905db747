package utils

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares a bcrypt hash and a plain password.
// It returns false on any mismatch and never reports a reason.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// HashToken returns a bcrypt digest of a refresh-token value.  The
// raw token is a signed JWT and exceeds bcrypt's 72-byte input limit,
// so it is compressed through SHA-256 first.  The one-way property is
// the same as for passwords; only the pre-digest differs.
func HashToken(raw string, cost int) (string, error) {
	return HashPassword(tokenDigest(raw), cost)
}

// VerifyToken checks a refresh-token value against a digest produced
// by HashToken.
func VerifyToken(hash, raw string) bool {
	return VerifyPassword(hash, tokenDigest(raw))
}

func tokenDigest(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
