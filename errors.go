package notecrypt

import (
	"errors"
	"fmt"
)

// Error types represent the failure categories callers are expected to
// distinguish. None of them ever carries passphrase or key material.

// ValidationError represents an invalid input to an operation
type ValidationError struct {
	Field   string // The field or parameter that failed validation
	Value   any    // The invalid value (never a secret)
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// FormatError represents an envelope that could not be parsed into its
// four fields
type FormatError struct {
	Field   string // Envelope field at fault, if known
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *FormatError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("format error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("format error: %s", e.Message)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// VersionError represents a well-formed envelope carrying a version tag
// this build does not support
type VersionError struct {
	Version string // The unrecognized tag
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("version error: unsupported envelope version %q", e.Version)
}

func (e *VersionError) Unwrap() error {
	return ErrUnsupportedVersion
}

// AuthenticationError represents a decryption whose output failed
// validation, which almost always means the passphrase was wrong
type AuthenticationError struct {
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication error: %s", e.Message)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// CorruptionError represents a stored note whose encrypted flag disagrees
// with its content
type CorruptionError struct {
	NoteID  string // Note identifier, if known
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *CorruptionError) Error() string {
	if e.NoteID != "" {
		return fmt.Sprintf("corruption error: note %s: %s", e.NoteID, e.Message)
	}
	return fmt.Sprintf("corruption error: %s", e.Message)
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}

// IOError represents a storage failure in the note store
type IOError struct {
	Operation string // "read", "write", "rename", "remove", ...
	Path      string // Storage path
	Message   string // Human-readable error message
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("io error: %s %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("io error: %s: %s", e.Operation, e.Message)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Common sentinel errors
var (
	ErrEmptyPassphrase    = errors.New("passphrase cannot be empty")
	ErrEmptyContent       = errors.New("content cannot be empty")
	ErrInvalidSalt        = errors.New("invalid salt")
	ErrInvalidPadding     = errors.New("invalid padding")
	ErrInvalidText        = errors.New("decrypted content is not valid text")
	ErrUnsupportedVersion = errors.New("unsupported envelope version")
	ErrAlreadyEncrypted   = errors.New("note is already encrypted")
	ErrNotEncrypted       = errors.New("note is not encrypted")
	ErrNoteLocked         = errors.New("note is encrypted and cannot be edited")
	ErrNoteNotFound       = errors.New("note not found")
	ErrNilNote            = errors.New("note cannot be nil")
	ErrNilFileSystem      = errors.New("file system cannot be nil")
)

// Helper functions for creating structured errors

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, message string) error {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NewFormatError creates a new format error
func NewFormatError(field, message string, err error) error {
	return &FormatError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// NewVersionError creates a new version error
func NewVersionError(version string) error {
	return &VersionError{Version: version}
}

// NewAuthenticationError creates a new authentication error
func NewAuthenticationError(err error) error {
	return &AuthenticationError{
		Message: err.Error(),
		Err:     err,
	}
}

// NewCorruptionError creates a new corruption error
func NewCorruptionError(noteID, message string) error {
	return &CorruptionError{
		NoteID:  noteID,
		Message: message,
	}
}

// NewIOError creates a new I/O error
func NewIOError(operation, path string, err error) error {
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   err.Error(),
		Err:       err,
	}
}

// Error checking helpers

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsFormatError checks if an error is a format error
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// IsVersionError checks if an error is a version error
func IsVersionError(err error) bool {
	var ve *VersionError
	return errors.As(err, &ve)
}

// IsAuthenticationError checks if an error is an authentication error
func IsAuthenticationError(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}

// IsCorruptionError checks if an error is a corruption error
func IsCorruptionError(err error) bool {
	var ce *CorruptionError
	return errors.As(err, &ce)
}

// IsIOError checks if an error is an I/O error
func IsIOError(err error) bool {
	var ie *IOError
	return errors.As(err, &ie)
}

// User-visible messages for the failure kinds a note UI has to surface.
const (
	MessageWrongPassword  = "wrong password"
	MessageCannotDecrypt  = "this note cannot be decrypted"
	MessageInvalidInput   = "content and password are required"
	MessageNoteLocked     = "this note is locked"
	MessageNoteNotFound   = "note not found"
	MessageStorageFailure = "notes could not be saved or loaded"
)

// UserMessage maps an error to the text a note UI should show. Format and
// version failures never claim the password was wrong.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case IsAuthenticationError(err):
		return MessageWrongPassword
	case IsFormatError(err), IsVersionError(err), IsCorruptionError(err):
		return MessageCannotDecrypt
	case IsValidationError(err):
		var ve *ValidationError
		errors.As(err, &ve)
		if ve.Field == "content" || ve.Field == "passphrase" {
			return MessageInvalidInput
		}
		return ve.Message
	case errors.Is(err, ErrNoteLocked), errors.Is(err, ErrAlreadyEncrypted):
		return MessageNoteLocked
	case errors.Is(err, ErrNoteNotFound):
		return MessageNoteNotFound
	case IsIOError(err):
		return MessageStorageFailure
	default:
		return err.Error()
	}
}
