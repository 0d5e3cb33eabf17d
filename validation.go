package notecrypt

import (
	"fmt"
)

// Input validation helpers shared by key derivation, the cipher engine and
// the state gate

func validatePassphrase(p *Passphrase) error {
	if p.IsEmpty() {
		return &ValidationError{
			Field:   "passphrase",
			Message: "passphrase cannot be empty",
			Err:     ErrEmptyPassphrase,
		}
	}
	return nil
}

func validatePlaintext(plaintext string) error {
	if plaintext == "" {
		return &ValidationError{
			Field:   "content",
			Message: "content cannot be empty",
			Err:     ErrEmptyContent,
		}
	}
	return nil
}

func validateSalt(salt []byte) error {
	if len(salt) != SaltSize {
		return &ValidationError{
			Field:   "salt",
			Value:   len(salt),
			Message: fmt.Sprintf("invalid salt size: got %d bytes, expected %d bytes", len(salt), SaltSize),
			Err:     ErrInvalidSalt,
		}
	}
	return nil
}

// ValidateIV checks that an initialization vector is exactly one AES block
func ValidateIV(iv []byte) error {
	if len(iv) != IVSize {
		return &ValidationError{
			Field:   "iv",
			Value:   len(iv),
			Message: fmt.Sprintf("invalid iv size: got %d bytes, expected %d bytes", len(iv), IVSize),
		}
	}
	return nil
}

// ValidateKey checks if a key has the correct size
func ValidateKey(key []byte, expectedSize int) error {
	if key == nil {
		return &ValidationError{
			Field:   "key",
			Message: "key cannot be nil",
		}
	}

	if len(key) != expectedSize {
		return &ValidationError{
			Field:   "key",
			Value:   len(key),
			Message: fmt.Sprintf("invalid key size: got %d bytes, expected %d bytes", len(key), expectedSize),
		}
	}

	return nil
}
