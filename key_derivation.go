package notecrypt

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// DeriveKey derives keyLengthBits of key material from the passphrase and
// salt with PBKDF2-HMAC-SHA256. The same inputs always give the same key.
//
// The caller owns the returned slice and should wipe it once the cipher has
// been set up.
func DeriveKey(passphrase *Passphrase, salt []byte, iterations, keyLengthBits int) ([]byte, error) {
	if err := validatePassphrase(passphrase); err != nil {
		return nil, err
	}
	if err := validateSalt(salt); err != nil {
		return nil, err
	}
	if iterations <= 0 {
		return nil, NewValidationError("iterations", iterations, "iteration count must be positive")
	}
	if keyLengthBits <= 0 || keyLengthBits%8 != 0 {
		return nil, NewValidationError("key_length", keyLengthBits, "key length must be a positive multiple of 8 bits")
	}

	return pbkdf2.Key(passphrase.bytes(), salt, iterations, keyLengthBits/8, sha256.New), nil
}

// deriveSchemeKey derives the key an envelope of the given scheme was
// sealed under
func deriveSchemeKey(s scheme, passphrase *Passphrase, salt []byte) ([]byte, error) {
	return DeriveKey(passphrase, salt, s.iterations, s.keyBits)
}

// GenerateSalt generates a new random salt
func GenerateSalt() ([]byte, error) {
	return randomBytes(SaltSize, "salt")
}

// GenerateIV generates a new random CBC initialization vector
func GenerateIV() ([]byte, error) {
	return randomBytes(IVSize, "iv")
}

func randomBytes(n int, what string) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate %s: %w", what, err)
	}
	return b, nil
}
