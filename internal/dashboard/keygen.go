package dashboard

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/grootlabs/groot/pkg/models"
)

const (
	// SecretPrefix is the prefix for all groot secrets.
	SecretPrefix = "groot_"
	// SecretRandomLength is the number of random characters after the
	// environment tag.
	SecretRandomLength = 24
)

// base62Alphabet contains characters for secret generation (0-9, A-Z, a-z).
var base62Alphabet = []byte("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz")

// GenerateSecret creates a new secret with format: groot_<tag>_<24 base62 chars>,
// where <tag> identifies the environment (prod, staging, dev). A colliding
// secret is not retried here; the store rejects it and the caller reports it.
func GenerateSecret(env models.Environment) (string, error) {
	if !env.Valid() {
		return "", fmt.Errorf("%w: invalid environment %q", ErrValidation, env)
	}

	result := make([]byte, SecretRandomLength)
	alphabetLen := big.NewInt(int64(len(base62Alphabet)))

	for i := 0; i < SecretRandomLength; i++ {
		idx, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		result[i] = base62Alphabet[idx.Int64()]
	}

	return SecretPrefix + env.Tag() + "_" + string(result), nil
}
