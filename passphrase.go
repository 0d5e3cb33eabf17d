package notecrypt

import (
	"crypto/subtle"

	"github.com/awnumar/memguard"
)

// Passphrase holds a caller-owned secret for the duration of a lock or
// unlock call.
//
// The library reads the bytes during a call and never keeps a reference
// afterwards. The caller owns the value and must call Destroy once it is no
// longer needed; Destroy overwrites the backing array (best effort: copies
// the runtime made of the original string are out of reach).
type Passphrase struct {
	b []byte
}

// NewPassphrase copies s into a fresh buffer owned by the returned value
func NewPassphrase(s string) *Passphrase {
	b := make([]byte, len(s))
	copy(b, s)
	return &Passphrase{b: b}
}

// PassphraseFromBytes takes ownership of b. The caller must not use b after
// the call; Destroy wipes it.
func PassphraseFromBytes(b []byte) *Passphrase {
	return &Passphrase{b: b}
}

// Len returns the passphrase length in bytes
func (p *Passphrase) Len() int {
	if p == nil {
		return 0
	}
	return len(p.b)
}

// IsEmpty reports whether there is nothing to derive a key from.
// A destroyed passphrase is empty.
func (p *Passphrase) IsEmpty() bool {
	return p.Len() == 0
}

// bytes exposes the secret to key derivation only
func (p *Passphrase) bytes() []byte {
	if p == nil {
		return nil
	}
	return p.b
}

// Equal compares two passphrases in constant time
func (p *Passphrase) Equal(other *Passphrase) bool {
	return subtle.ConstantTimeCompare(p.bytes(), other.bytes()) == 1
}

// Destroy wipes the passphrase. Safe to call more than once.
func (p *Passphrase) Destroy() {
	if p == nil || p.b == nil {
		return
	}
	memguard.WipeBytes(p.b)
	p.b = nil
}

// String never reveals the secret
func (p *Passphrase) String() string {
	return "[REDACTED]"
}

// GoString never reveals the secret
func (p *Passphrase) GoString() string {
	return "notecrypt.Passphrase{[REDACTED]}"
}

// wipe zeroes ephemeral key material
func wipe(b []byte) {
	if len(b) > 0 {
		memguard.WipeBytes(b)
	}
}
