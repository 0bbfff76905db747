package utils // package utils provides token issuance and verification helpers

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned by ParseToken for any token that cannot
// be accepted: bad signature, wrong algorithm, expired, or malformed
// claims.  Callers treat it uniformly as an authentication failure.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload carried by both halves of a token pair.  The
// access and refresh tokens of one issuance hold identical claims and
// differ only in signing secret and expiry.
type Claims struct {
	UserID uint64
	Email  string
	Role   string
}

// TokenPair bundles one access/refresh issuance.  Nothing in the pair
// is persisted directly; the ledger stores only the refresh half's
// digest (plus the raw value for the deletion fallback).
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// IssuePair signs an HS256 access/refresh token pair for a user.  The
// two tokens carry the same {sub, email, role} payload but are signed
// with distinct secrets and expiries: access tokens live for
// accessTTL, refresh tokens for refreshTTL.
func IssuePair(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, cl Claims) (TokenPair, error) {
	now := time.Now().UTC()

	access, accessExp, err := sign(accessSecret, cl, now, accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := sign(refreshSecret, cl, now, refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func sign(secret string, cl Claims, now time.Time, ttl time.Duration) (string, time.Time, error) {
	exp := now.Add(ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   cl.UserID,
		"email": cl.Email,
		"role":  cl.Role,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
		// Unique per token: two issuances for the same user in the
		// same second must still produce distinct token values, or
		// their ledger digests would collide.
		"jti": uuid.NewString(),
	})
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ParseToken verifies a token's HS256 signature and expiry with the
// given secret and returns its claims.  Any failure is reported as
// ErrInvalidToken.
func ParseToken(raw, secret string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything other than HMAC.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	var cl Claims
	switch sub := mc["sub"].(type) {
	case float64:
		// JSON numbers decode as float64.
		cl.UserID = uint64(sub)
	case string:
		n, err := strconv.ParseUint(sub, 10, 64)
		if err != nil {
			return Claims{}, ErrInvalidToken
		}
		cl.UserID = n
	default:
		return Claims{}, ErrInvalidToken
	}
	if cl.UserID == 0 {
		return Claims{}, ErrInvalidToken
	}
	cl.Email, _ = mc["email"].(string)
	cl.Role, _ = mc["role"].(string)
	return cl, nil
}
