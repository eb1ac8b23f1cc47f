package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// verificationTokenTTL is how long an email verification link stays usable.
const verificationTokenTTL = 24 * time.Hour

// NewVerificationToken returns a fresh opaque verification token and its
// expiry time.
//
// OPAQUE vs SIGNED TOKENS:
// Unlike the JWT session token, this one carries no claims — it's 16 bytes
// of crypto/rand output, hex-encoded. The server stores it next to the user
// row and matches on equality; possession of the string IS the proof. That
// makes it single-use by construction: verification clears the stored copy,
// and a replayed token no longer matches anything.
func NewVerificationToken() (string, time.Time, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, fmt.Errorf("auth: generating verification token: %w", err)
	}
	return hex.EncodeToString(buf), time.Now().Add(verificationTokenTTL), nil
}
