package sessions

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Session is a refresh session issued at login. Only the SHA-256 digest of the
// refresh token is persisted.
type Session struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	TokenHash string    `bson:"tokenHash" json:"tokenHash"`
	UserID    string    `bson:"userId" json:"userId"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool { return now.After(s.ExpiresAt) }

func hashToken(refresh string) string {
	sum := sha256.Sum256([]byte(refresh))
	return hex.EncodeToString(sum[:])
}
