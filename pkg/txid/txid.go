// Package txid generates short transaction identifiers.
package txid

import (
	"crypto/rand"
	"fmt"
)

// Length is the number of characters in a generated ID.
const Length = 8

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// New returns a random lowercase alphanumeric ID of Length characters.
// Uniqueness is probabilistic, not checked against the ledger.
func New() (string, error) {
	return NewLen(Length)
}

// NewLen returns a random ID of n characters.
func NewLen(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}

// MustNew is New for call sites that cannot surface an error. It panics
// only if the system random source is unavailable.
func MustNew() string {
	id, err := New()
	if err != nil {
		panic(err)
	}
	return id
}
