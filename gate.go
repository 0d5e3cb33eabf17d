package notecrypt

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Gate decides when a note may be encrypted, decrypted or edited, and keeps
// a note's encrypted flag in step with its content.
//
// Every operation holds the note's lock from the state check to the final
// swap, so a transition never interleaves with an edit or another
// transition on the same note. Content and flag are assigned together only
// after all fallible work has succeeded; a failed call leaves the note
// exactly as it was.
//
// A Gate holds no secrets and no per-note state, so one Gate can serve any
// number of notes concurrently.
type Gate struct {
	log zerolog.Logger
	now func() time.Time
}

// Option configures a Gate or a Store
type Option func(*options)

type options struct {
	log zerolog.Logger
	now func() time.Time
}

func defaultOptions() options {
	return options{
		log: zerolog.Nop(),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithLogger sets the logger used for transition and storage events.
// Passphrases, keys and note content are never logged.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithClock overrides the time source for LastEdited stamps
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// NewGate creates a new state gate
func NewGate(opts ...Option) *Gate {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Gate{
		log: o.log.With().Str("component", "gate").Logger(),
		now: o.now,
	}
}

// Encrypt locks a plain note. A note that is already encrypted is rejected
// with ErrAlreadyEncrypted and left untouched.
func (g *Gate) Encrypt(n *Note, passphrase *Passphrase) error {
	if n == nil {
		return ErrNilNote
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.encrypted {
		g.logRejected(n, "encrypt", ErrAlreadyEncrypted)
		return fmt.Errorf("encrypt note %s: %w", n.id, ErrAlreadyEncrypted)
	}

	envelope, err := EncryptContent(n.content, passphrase)
	if err != nil {
		g.logFailed(n, "encrypt", err)
		return fmt.Errorf("encrypt note %s: %w", n.id, err)
	}

	n.content = envelope
	n.encrypted = true

	g.log.Info().
		Str("note_id", n.id).
		Stringer("from", StatePlain).
		Stringer("to", StateEncrypted).
		Msg("note encrypted")
	return nil
}

// Decrypt unlocks an encrypted note. On any failure the note stays
// encrypted with its content byte-identical to before the call.
func (g *Gate) Decrypt(n *Note, passphrase *Passphrase) error {
	if n == nil {
		return ErrNilNote
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.encrypted {
		g.logRejected(n, "decrypt", ErrNotEncrypted)
		return fmt.Errorf("decrypt note %s: %w", n.id, ErrNotEncrypted)
	}

	plaintext, err := DecryptContent(n.content, passphrase)
	if err != nil {
		g.logFailed(n, "decrypt", err)
		return fmt.Errorf("decrypt note %s: %w", n.id, err)
	}
	if IsEnvelope(plaintext) {
		// A plain note must never look locked
		err := NewCorruptionError(n.id, "decrypted content is itself an envelope")
		g.logFailed(n, "decrypt", err)
		return err
	}

	n.content = plaintext
	n.encrypted = false

	g.log.Info().
		Str("note_id", n.id).
		Stringer("from", StateEncrypted).
		Stringer("to", StatePlain).
		Msg("note decrypted")
	return nil
}

// Edit replaces the content of a plain note. Encrypted notes are not
// editable and return ErrNoteLocked. Content that would itself pass for an
// envelope is rejected so the flag and the content cannot disagree.
func (g *Gate) Edit(n *Note, content string) error {
	if n == nil {
		return ErrNilNote
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.encrypted {
		g.logRejected(n, "edit", ErrNoteLocked)
		return fmt.Errorf("edit note %s: %w", n.id, ErrNoteLocked)
	}
	if IsEnvelope(content) {
		return NewValidationError("envelope", nil, "plain content cannot be an encrypted envelope")
	}

	n.content = content
	n.lastEdited = g.now()

	g.log.Debug().Str("note_id", n.id).Int("length", len(content)).Msg("note edited")
	return nil
}

// Content returns the note content when the note is plain. Encrypted notes
// must not be rendered, so their envelope is withheld and ErrNoteLocked is
// returned.
func (g *Gate) Content(n *Note) (string, error) {
	if n == nil {
		return "", ErrNilNote
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.encrypted {
		return "", fmt.Errorf("read note %s: %w", n.id, ErrNoteLocked)
	}
	return n.content, nil
}

func (g *Gate) logRejected(n *Note, op string, err error) {
	g.log.Warn().
		Str("note_id", n.id).
		Str("op", op).
		Stringer("state", n.stateLocked()).
		Err(err).
		Msg("transition rejected")
}

func (g *Gate) logFailed(n *Note, op string, err error) {
	g.log.Warn().
		Str("note_id", n.id).
		Str("op", op).
		Str("kind", errorKind(err)).
		Msg("transition failed, note unchanged")
}

// errorKind names the failure category for logs without echoing inputs
func errorKind(err error) string {
	switch {
	case IsValidationError(err):
		return "validation"
	case IsFormatError(err):
		return "format"
	case IsVersionError(err):
		return "version"
	case IsAuthenticationError(err):
		return "authentication"
	case IsCorruptionError(err):
		return "corruption"
	case IsIOError(err):
		return "io"
	default:
		return "other"
	}
}
