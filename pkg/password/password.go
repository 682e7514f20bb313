package password

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Alphabet is the character set used for generated passwords. The HR
// admin UI shows generated passwords to the tenant admin once, so the
// set is fixed to keep them typeable.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*()_+~`|}{[]:;?><,./-="

// DefaultLength is the length of auto-generated user passwords.
const DefaultLength = 12

// Generate returns a random password of the given length drawn
// uniformly from Alphabet.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	max := big.NewInt(int64(len(Alphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating password: %w", err)
		}
		buf[i] = Alphabet[n.Int64()]
	}
	return string(buf), nil
}
