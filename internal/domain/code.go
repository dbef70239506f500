package domain

import (
	"crypto/rand"
	"math/big"
)

const confirmationCodeLen = 10

// NewConfirmationCode returns a 10-digit numeric guest-facing code.
// Uniqueness is enforced by the store; callers retry on collision.
func NewConfirmationCode() string {
	digits := make([]byte, confirmationCodeLen)
	max := big.NewInt(10)
	for i := range digits {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing is unrecoverable process state
			panic(err)
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits)
}
