package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// Token is the opaque capability minted for a running class. Possession of
// the value is the whole credential, so it carries 128 bits of randomness
// and is compared in constant time.
type Token string

// NewToken draws a fresh random token.
func NewToken() (Token, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("token entropy: %w", err)
	}
	return Token(hex.EncodeToString(buf[:])), nil
}

// Equal compares tokens without leaking a timing signal.
func (t Token) Equal(other Token) bool {
	return subtle.ConstantTimeCompare([]byte(t), []byte(other)) == 1
}
