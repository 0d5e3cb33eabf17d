package notecrypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"fmt"
	"unicode/utf8"
)

// CBCEngine encrypts with AES-256 in CBC mode with PKCS#7 padding.
//
// CBC is unauthenticated: a wrong key is detected only through the padding
// and text checks in DecryptContent. Rare wrong keys can pass those checks
// only if the recovered bytes happen to be valid padding and valid UTF-8.
type CBCEngine struct {
	block cipher.Block
}

// NewCBCEngine creates a new AES-256-CBC engine
func NewCBCEngine(key []byte) (*CBCEngine, error) {
	if err := ValidateKey(key, 32); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	return &CBCEngine{block: block}, nil
}

// Encrypt pads plaintext and encrypts it under iv
func (e *CBCEngine) Encrypt(iv, plaintext []byte) ([]byte, error) {
	if err := ValidateIV(iv); err != nil {
		return nil, err
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(e.block, iv).CryptBlocks(ciphertext, padded)
	wipe(padded)

	return ciphertext, nil
}

// Decrypt decrypts ciphertext under iv and strips the padding. It returns
// ErrInvalidPadding when the padding does not check out.
func (e *CBCEngine) Decrypt(iv, ciphertext []byte) ([]byte, error) {
	if err := ValidateIV(iv); err != nil {
		return nil, err
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, NewFormatError("content", "ciphertext is not a whole number of blocks", nil)
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(e.block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		wipe(padded)
		return nil, err
	}
	return plaintext, nil
}

// EncryptContent locks plaintext behind passphrase and returns the envelope
// string. Every call draws a fresh salt and IV, so encrypting the same text
// twice yields two different envelopes.
func EncryptContent(plaintext string, passphrase *Passphrase) (string, error) {
	if err := validatePlaintext(plaintext); err != nil {
		return "", err
	}
	if err := validatePassphrase(passphrase); err != nil {
		return "", err
	}

	sch, err := lookupScheme(CurrentVersion)
	if err != nil {
		return "", err
	}

	salt, err := GenerateSalt()
	if err != nil {
		return "", err
	}
	iv, err := GenerateIV()
	if err != nil {
		return "", err
	}

	key, err := deriveSchemeKey(sch, passphrase, salt)
	if err != nil {
		return "", err
	}
	defer wipe(key)

	engine, err := NewCBCEngine(key)
	if err != nil {
		return "", err
	}

	ciphertext, err := engine.Encrypt(iv, []byte(plaintext))
	if err != nil {
		return "", err
	}

	return EncodeEnvelope(sch.version, salt, iv, ciphertext), nil
}

// DecryptContent recovers the plaintext locked in envelope.
//
// Errors: FormatError when the envelope does not parse, VersionError when
// its version is unknown, AuthenticationError when the recovered bytes fail
// validation (almost always a wrong passphrase). Corrupted output is never
// returned as a success.
func DecryptContent(envelope string, passphrase *Passphrase) (string, error) {
	if err := validatePassphrase(passphrase); err != nil {
		return "", err
	}

	env, err := DecodeEnvelope(envelope)
	if err != nil {
		return "", err
	}

	sch, err := lookupScheme(env.Version)
	if err != nil {
		return "", err
	}
	if err := sch.checkFields(env); err != nil {
		return "", err
	}

	key, err := deriveSchemeKey(sch, passphrase, env.Salt)
	if err != nil {
		return "", err
	}
	defer wipe(key)

	engine, err := NewCBCEngine(key)
	if err != nil {
		return "", err
	}

	plaintext, err := engine.Decrypt(env.IV, env.Ciphertext)
	if err != nil {
		return "", NewAuthenticationError(err)
	}
	defer wipe(plaintext)

	if len(plaintext) == 0 || !utf8.Valid(plaintext) {
		return "", NewAuthenticationError(ErrInvalidText)
	}

	return string(plaintext), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+n)
	copy(out, data)
	copy(out[len(data):], bytes.Repeat([]byte{byte(n)}, n))
	return out
}

// pkcs7Unpad checks every padding byte, not just the last one
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrInvalidPadding
	}

	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, ErrInvalidPadding
	}

	want := bytes.Repeat([]byte{byte(n)}, n)
	if subtle.ConstantTimeCompare(data[len(data)-n:], want) != 1 {
		return nil, ErrInvalidPadding
	}

	return data[:len(data)-n], nil
}
