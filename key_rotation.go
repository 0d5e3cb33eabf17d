package notecrypt

import (
	"fmt"
)

// ReEncrypt opens envelope with oldPassphrase and seals the recovered text
// again under newPassphrase with CurrentVersion and a fresh salt and IV.
// It also serves to migrate envelopes written by an older version.
func ReEncrypt(envelope string, oldPassphrase, newPassphrase *Passphrase) (string, error) {
	if err := validatePassphrase(newPassphrase); err != nil {
		return "", err
	}

	plaintext, err := DecryptContent(envelope, oldPassphrase)
	if err != nil {
		return "", err
	}

	return EncryptContent(plaintext, newPassphrase)
}

// NeedsMigration reports whether an envelope was written by a version other
// than CurrentVersion. Malformed input reports false.
func NeedsMigration(envelope string) bool {
	env, err := DecodeEnvelope(envelope)
	if err != nil {
		return false
	}
	return IsSupportedVersion(env.Version) && env.Version != CurrentVersion
}

// Rekey changes the passphrase of an encrypted note in one step. The note
// never passes through the plain state: on failure it keeps its original
// envelope; on success it holds the new one.
func (g *Gate) Rekey(n *Note, oldPassphrase, newPassphrase *Passphrase) error {
	if n == nil {
		return ErrNilNote
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.encrypted {
		g.logRejected(n, "rekey", ErrNotEncrypted)
		return fmt.Errorf("rekey note %s: %w", n.id, ErrNotEncrypted)
	}

	envelope, err := ReEncrypt(n.content, oldPassphrase, newPassphrase)
	if err != nil {
		g.logFailed(n, "rekey", err)
		return fmt.Errorf("rekey note %s: %w", n.id, err)
	}

	n.content = envelope

	g.log.Info().Str("note_id", n.id).Msg("note passphrase changed")
	return nil
}
