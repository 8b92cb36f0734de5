package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// RefreshRecord is the single persisted refresh token of a user. Only the
// SHA-256 digest of the token value is stored.
type RefreshRecord struct {
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UpdatedAt time.Time
}

func (r RefreshRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Session is a freshly issued access/refresh pair.
type Session struct {
	UserID           string
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
