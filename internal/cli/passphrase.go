package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/awnumar/memguard"
	"golang.org/x/term"

	"github.com/absfs/notecrypt"
)

var errPassphraseMismatch = errors.New("passphrases do not match")

// readPassphrase returns a passphrase from the configured file, a terminal
// prompt, or the next line of piped input, in that order of preference.
// The caller must Destroy the result.
func (a *app) readPassphrase(prompt string) (*notecrypt.Passphrase, error) {
	if a.cfg != nil && a.cfg.PassphraseFile != "" {
		return readPassphraseFile(a.cfg.PassphraseFile)
	}
	return a.promptPassphrase(prompt)
}

// readNewPassphrase asks for a passphrase twice when prompting
// interactively. A passphrase file is trusted as is.
func (a *app) readNewPassphrase(prompt string) (*notecrypt.Passphrase, error) {
	if a.cfg != nil && a.cfg.PassphraseFile != "" {
		return readPassphraseFile(a.cfg.PassphraseFile)
	}
	return a.promptConfirmed(prompt)
}

func (a *app) promptConfirmed(prompt string) (*notecrypt.Passphrase, error) {
	first, err := a.promptPassphrase(prompt)
	if err != nil {
		return nil, err
	}
	second, err := a.promptPassphrase("Confirm " + prompt)
	if err != nil {
		first.Destroy()
		return nil, err
	}
	defer second.Destroy()

	if !first.Equal(second) {
		first.Destroy()
		return nil, errPassphraseMismatch
	}
	return first, nil
}

func (a *app) promptPassphrase(prompt string) (*notecrypt.Passphrase, error) {
	if f, ok := a.stdinFile(); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(a.io.ErrOut, prompt+": ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.io.ErrOut)
		if err != nil {
			return nil, fmt.Errorf("failed to read passphrase: %w", err)
		}
		return notecrypt.PassphraseFromBytes(b), nil
	}

	if a.lines == nil {
		a.lines = bufio.NewReader(a.io.In)
	}
	line, err := a.lines.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}
	return notecrypt.PassphraseFromBytes(trimNewline(line)), nil
}

func readPassphraseFile(p string) (*notecrypt.Passphrase, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, notecrypt.NewIOError("read", p, err)
	}
	trimmed := trimNewline(b)
	if len(trimmed) < len(b) {
		memguard.WipeBytes(b[len(trimmed):])
	}
	return notecrypt.PassphraseFromBytes(trimmed), nil
}

// trimNewline drops one trailing line ending without copying
func trimNewline(b []byte) []byte {
	b = bytes.TrimSuffix(b, []byte("\n"))
	return bytes.TrimSuffix(b, []byte("\r"))
}
