package notecrypt

import (
	"crypto/aes"
)

const (
	// CurrentVersion is the envelope version written by EncryptContent
	CurrentVersion = "1"

	// SaltSize is the salt length in bytes (128 bits)
	SaltSize = 16

	// IVSize is the CBC initialization vector length in bytes (one AES block)
	IVSize = aes.BlockSize
)

// scheme fixes every cryptographic parameter of one envelope version. An
// envelope never records these values itself; its version tag selects them.
type scheme struct {
	version    string
	iterations int // PBKDF2 iteration count
	keyBits    int // derived key length in bits
	saltSize   int
	ivSize     int
}

// schemes is the closed set of versions this build can read. Adding a
// stronger version means adding an entry here and pointing CurrentVersion
// at it; older entries stay so existing notes keep decrypting.
var schemes = map[string]scheme{
	"1": {
		version:    "1",
		iterations: 100000,
		keyBits:    256,
		saltSize:   SaltSize,
		ivSize:     IVSize,
	},
}

// lookupScheme returns the scheme for version, or a VersionError
func lookupScheme(version string) (scheme, error) {
	s, ok := schemes[version]
	if !ok {
		return scheme{}, NewVersionError(version)
	}
	return s, nil
}

// IsSupportedVersion reports whether envelopes tagged with version can be
// decrypted by this build
func IsSupportedVersion(version string) bool {
	_, ok := schemes[version]
	return ok
}

// keyBytes returns the derived key length in bytes
func (s scheme) keyBytes() int {
	return s.keyBits / 8
}

// checkFields verifies the decoded field sizes match what this scheme
// produces
func (s scheme) checkFields(env *Envelope) error {
	if len(env.Salt) != s.saltSize {
		return NewFormatError("salt", "unexpected salt length for version "+s.version, nil)
	}
	if len(env.IV) != s.ivSize {
		return NewFormatError("iv", "unexpected iv length for version "+s.version, nil)
	}
	if len(env.Ciphertext) == 0 || len(env.Ciphertext)%aes.BlockSize != 0 {
		return NewFormatError("content", "ciphertext is not a whole number of blocks", nil)
	}
	return nil
}
