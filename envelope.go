package notecrypt

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Envelope is the persisted form of encrypted note content.
//
// Wire format, one compact JSON object with exactly four string members:
//
//	{"version":"1","salt":"<hex>","iv":"<hex>","content":"<base64>"}
//
// salt and iv are lowercase hex; content is standard padded base64 of the
// ciphertext. The version tag selects every other parameter, so an envelope
// decodes without outside context.
type Envelope struct {
	Version    string
	Salt       []byte
	IV         []byte
	Ciphertext []byte
}

// envelopeWire is the JSON shape of an Envelope
type envelopeWire struct {
	Version string `json:"version"`
	Salt    string `json:"salt"`
	IV      string `json:"iv"`
	Content string `json:"content"`
}

// EncodeEnvelope serializes the four envelope fields into a single string
func EncodeEnvelope(version string, salt, iv, ciphertext []byte) string {
	w := envelopeWire{
		Version: version,
		Salt:    hex.EncodeToString(salt),
		IV:      hex.EncodeToString(iv),
		Content: base64.StdEncoding.EncodeToString(ciphertext),
	}
	// Marshal cannot fail for a struct of strings
	b, _ := json.Marshal(w)
	return string(b)
}

// String encodes the envelope
func (e *Envelope) String() string {
	return EncodeEnvelope(e.Version, e.Salt, e.IV, e.Ciphertext)
}

// DecodeEnvelope parses s back into its four fields. It fails with a
// FormatError when s is not a JSON object of exactly the four envelope
// members, when a member is missing or empty, when a member does not
// decode, or when s differs from what EncodeEnvelope would write for the
// same fields (surrounding whitespace aside). The version tag is not
// judged here.
func DecodeEnvelope(s string) (*Envelope, error) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, NewFormatError("", "not an envelope", nil)
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.DisallowUnknownFields()

	var w envelopeWire
	if err := dec.Decode(&w); err != nil {
		return nil, NewFormatError("", "malformed envelope", err)
	}
	// Anything after the object means s is not a single envelope
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, NewFormatError("", "trailing data after envelope", nil)
	}

	if w.Version == "" {
		return nil, NewFormatError("version", "missing field", nil)
	}

	salt, err := decodeHexField("salt", w.Salt)
	if err != nil {
		return nil, err
	}
	iv, err := decodeHexField("iv", w.IV)
	if err != nil {
		return nil, err
	}

	if w.Content == "" {
		return nil, NewFormatError("content", "missing field", nil)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(w.Content)
	if err != nil {
		return nil, NewFormatError("content", "invalid base64", err)
	}

	env := &Envelope{
		Version:    w.Version,
		Salt:       salt,
		IV:         iv,
		Ciphertext: ciphertext,
	}

	// encoding/json folds key case and keeps the last duplicate, so only
	// the exact bytes EncodeEnvelope writes are accepted
	if env.String() != trimmed {
		return nil, NewFormatError("", "envelope is not in canonical form", nil)
	}
	return env, nil
}

func decodeHexField(field, value string) ([]byte, error) {
	if value == "" {
		return nil, NewFormatError(field, "missing field", nil)
	}
	b, err := hex.DecodeString(value)
	if err != nil {
		return nil, NewFormatError(field, "invalid hex", err)
	}
	return b, nil
}

// IsEnvelope reports whether s is a well-formed envelope of a supported
// version. It never panics and treats every other input, including markup
// and the empty string, as plain content.
func IsEnvelope(s string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	env, err := DecodeEnvelope(s)
	if err != nil {
		return false
	}
	sch, err := lookupScheme(env.Version)
	if err != nil {
		return false
	}
	return sch.checkFields(env) == nil
}

// IsContentEncrypted reports whether note content is locked. UIs use it to
// pick the lock indicator and to route edits through Decrypt first.
func IsContentEncrypted(content string) bool {
	return IsEnvelope(content)
}
