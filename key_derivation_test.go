package notecrypt

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pbkdf2"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	pass := NewPassphrase("correct horse battery staple")
	defer pass.Destroy()
	salt := bytes.Repeat([]byte{0xAB}, SaltSize)

	k1, err := DeriveKey(pass, salt, 1000, 256)
	require.NoError(t, err)
	k2, err := DeriveKey(pass, salt, 1000, 256)
	require.NoError(t, err)

	assert.Len(t, k1, 32)
	assert.Equal(t, k1, k2)
}

func TestDeriveKey_MatchesPBKDF2(t *testing.T) {
	pass := NewPassphrase("test secret")
	defer pass.Destroy()
	salt := []byte("testsalt12345678")

	got, err := DeriveKey(pass, salt, 1000, 256)
	require.NoError(t, err)

	want := pbkdf2.Key([]byte("test secret"), salt, 1000, 32, sha256.New)
	assert.Equal(t, want, got)
}

func TestDeriveKey_DifferentInputsDifferentKeys(t *testing.T) {
	pass := NewPassphrase("same password")
	defer pass.Destroy()
	other := NewPassphrase("other password")
	defer other.Destroy()

	salt1 := bytes.Repeat([]byte{0x01}, SaltSize)
	salt2 := bytes.Repeat([]byte{0x02}, SaltSize)

	k1, err := DeriveKey(pass, salt1, 1000, 256)
	require.NoError(t, err)
	k2, err := DeriveKey(pass, salt2, 1000, 256)
	require.NoError(t, err)
	k3, err := DeriveKey(other, salt1, 1000, 256)
	require.NoError(t, err)
	k4, err := DeriveKey(pass, salt1, 2000, 256)
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2, "different salts")
	assert.NotEqual(t, k1, k3, "different passphrases")
	assert.NotEqual(t, k1, k4, "different iteration counts")
}

func TestDeriveKey_Validation(t *testing.T) {
	pass := NewPassphrase("password")
	defer pass.Destroy()
	salt := bytes.Repeat([]byte{0x01}, SaltSize)

	tests := []struct {
		name       string
		pass       *Passphrase
		salt       []byte
		iterations int
		keyBits    int
		field      string
	}{
		{"nil passphrase", nil, salt, 1000, 256, "passphrase"},
		{"empty passphrase", NewPassphrase(""), salt, 1000, 256, "passphrase"},
		{"nil salt", pass, nil, 1000, 256, "salt"},
		{"short salt", pass, salt[:8], 1000, 256, "salt"},
		{"long salt", pass, append(salt, 0x00), 1000, 256, "salt"},
		{"zero iterations", pass, salt, 0, 256, "iterations"},
		{"negative iterations", pass, salt, -5, 256, "iterations"},
		{"zero key length", pass, salt, 1000, 0, "key_length"},
		{"key length not whole bytes", pass, salt, 1000, 255, "key_length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeriveKey(tt.pass, tt.salt, tt.iterations, tt.keyBits)
			require.Error(t, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "want ValidationError, got %T", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestDeriveKey_DestroyedPassphrase(t *testing.T) {
	pass := NewPassphrase("password")
	pass.Destroy()

	_, err := DeriveKey(pass, bytes.Repeat([]byte{0x01}, SaltSize), 1000, 256)
	assert.ErrorIs(t, err, ErrEmptyPassphrase)
}

func TestCurrentSchemeParameters(t *testing.T) {
	s, err := lookupScheme(CurrentVersion)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, s.iterations, 100000)
	assert.Equal(t, 256, s.keyBits)
	assert.Equal(t, 32, s.keyBytes())
	assert.Equal(t, 16, s.saltSize)
	assert.Equal(t, 16, s.ivSize)
}

func TestLookupSchemeUnknown(t *testing.T) {
	_, err := lookupScheme("0")
	assert.True(t, IsVersionError(err))
	assert.False(t, IsSupportedVersion("0"))
	assert.True(t, IsSupportedVersion(CurrentVersion))
}

func TestGenerateSaltAndIV(t *testing.T) {
	s1, err := GenerateSalt()
	require.NoError(t, err)
	s2, err := GenerateSalt()
	require.NoError(t, err)
	assert.Len(t, s1, SaltSize)
	assert.NotEqual(t, s1, s2)

	iv1, err := GenerateIV()
	require.NoError(t, err)
	iv2, err := GenerateIV()
	require.NoError(t, err)
	assert.Len(t, iv1, IVSize)
	assert.NotEqual(t, iv1, iv2)
}
