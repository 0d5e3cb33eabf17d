// Package notecrypt locks note content behind a passphrase before the note
// is handed to an untrusted storage layer.
//
// # Overview
//
// A note is either plain or encrypted. Its content is plaintext markup in
// the first state and a serialized envelope in the second, and the two
// representations never mix: a note's encrypted flag always equals
// IsEnvelope(content). The Gate is the only way to move a note between the
// two states, and a failed transition leaves the note exactly as it was.
//
// # Components
//
//   - Key derivation: PBKDF2-HMAC-SHA256 over the passphrase and a 128-bit
//     salt, with the work factor fixed by the envelope version
//   - Envelope codec: version, salt, IV and ciphertext in one string
//   - Cipher engine: AES-256-CBC with PKCS#7 padding
//   - Gate: per-note Plain/Encrypted state machine
//   - Store: notes persisted as JSON documents on any absfs.FileSystem
//
// # Basic Usage
//
//	gate := notecrypt.NewGate()
//	note := notecrypt.NewNote("Groceries")
//	_ = gate.Edit(note, "Hello <b>World</b>")
//
//	pass := notecrypt.NewPassphrase("correct-horse")
//	defer pass.Destroy()
//
//	if err := gate.Encrypt(note, pass); err != nil {
//	    return err
//	}
//	// note.Snapshot().Content is now an envelope
//
//	if err := gate.Decrypt(note, pass); err != nil {
//	    fmt.Println(notecrypt.UserMessage(err)) // "wrong password", ...
//	}
//
// # Envelope Format
//
// Envelopes are compact JSON objects with exactly four string members:
//
//	{"version":"1","salt":"<32 hex>","iv":"<32 hex>","content":"<base64>"}
//
// Version "1" means PBKDF2-HMAC-SHA256 with 100,000 iterations, a 256-bit
// key and AES-256-CBC. Unknown versions fail with a VersionError and are
// never decrypted under a guessed scheme.
//
// # Failure Modes
//
//   - ValidationError: empty content or passphrase
//   - FormatError: the envelope does not parse
//   - VersionError: the envelope version is not supported
//   - AuthenticationError: the decrypted bytes are not valid padded text,
//     which almost always means a wrong passphrase
//
// # Security Considerations
//
// CBC carries no integrity tag, so a wrong passphrase is recognised only
// through invalid padding or invalid UTF-8 in the output. Tampered
// ciphertext is reported the same way. Passphrases and derived keys are
// wiped after each call on a best-effort basis; the runtime may still hold
// copies of strings it was given.
package notecrypt
