// Package ticket generates the short human-readable codes printed on visitor tickets.
package ticket

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
)

const (
	letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits  = "0123456789"

	// MaxAttempts bounds code generation: 1 initial draw + 7 retries.
	MaxAttempts = 8
)

// ErrExhaustedRetries is returned when every generated candidate collided
// with an existing ticket code.
var ErrExhaustedRetries = errors.New("ticket: exhausted code generation retries")

// Pattern matches a valid ticket code: 3 uppercase letters followed by 3 digits.
var Pattern = regexp.MustCompile(`^[A-Z]{3}[0-9]{3}$`)

// ExistsFunc reports whether a candidate code is already persisted.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// Generate produces a unique LLLDDD ticket code, retrying on collision up to
// MaxAttempts total draws. Uniqueness here is advisory; the visitors table's
// unique index on ticket_code is the authoritative guard.
func Generate(ctx context.Context, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		code, err := draw()
		if err != nil {
			return "", fmt.Errorf("draw code: %w", err)
		}
		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrExhaustedRetries
}

func draw() (string, error) {
	buf := make([]byte, 6)
	for i := 0; i < 3; i++ {
		n, err := randIndex(len(letters))
		if err != nil {
			return "", err
		}
		buf[i] = letters[n]
	}
	for i := 3; i < 6; i++ {
		n, err := randIndex(len(digits))
		if err != nil {
			return "", err
		}
		buf[i] = digits[n]
	}
	return string(buf), nil
}

func randIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
