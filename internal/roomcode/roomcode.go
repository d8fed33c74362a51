package roomcode

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
)

// Alphabet excludes 0/O/1/I so codes survive being read out loud or
// copied by hand.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const Length = 6

const maxAttempts = 10

var ErrExhausted = errors.New("roomcode: could not generate a unique code")

// Exists reports whether a candidate code is already taken.
type Exists func(ctx context.Context, code string) (bool, error)

// New returns a random code from the alphabet.
func New() (string, error) {
	buf := make([]byte, Length)
	max := big.NewInt(int64(len(Alphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = Alphabet[n.Int64()]
	}
	return string(buf), nil
}

// NewUnique generates codes until one passes the exists check, giving up
// after a bounded number of attempts rather than looping forever.
func NewUnique(ctx context.Context, exists Exists) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		code, err := New()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrExhausted
}
