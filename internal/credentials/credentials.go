package credentials

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

// TokenLength is the number of characters in a partner invite token
const TokenLength = 6

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateInviteToken returns a random uppercase alphanumeric invite token
func GenerateInviteToken() (string, error) {
	token := make([]byte, TokenLength)

	for i := 0; i < TokenLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(tokenAlphabet))))
		if err != nil {
			return "", err
		}
		token[i] = tokenAlphabet[num.Int64()]
	}

	return string(token), nil
}

// NewID returns a random identifier for accounts, children and events
func NewID() string {
	return uuid.NewString()
}

// NewFamilyID returns the id of a freshly created family
func NewFamilyID() string {
	return "family-" + uuid.NewString()
}
