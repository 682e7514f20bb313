package provisioning

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const otpDigits = 6

// generateOTP returns a zero-padded 6-digit verification code.
func generateOTP() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generating otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
