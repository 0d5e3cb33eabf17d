package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absfs/notecrypt"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, dir, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(args, IO{
		In:     strings.NewReader(stdin),
		Out:    &out,
		ErrOut: &errOut,
	}, map[string]string{"NOTECRYPT_DIR": dir})
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func newNote(t *testing.T, dir, title, content string) string {
	t.Helper()
	res := runCLI(t, dir, "", "new", title)
	require.Equal(t, 0, res.code, res.stderr)
	id := strings.TrimSpace(res.stdout)

	res = runCLI(t, dir, "", "edit", id, "--text", content)
	require.Equal(t, 0, res.code, res.stderr)
	return id
}

func TestLockShowUnlock(t *testing.T) {
	dir := t.TempDir()
	id := newNote(t, dir, "Diary", "Hello <b>World</b>")

	res := runCLI(t, dir, "", "show", id)
	require.Equal(t, 0, res.code)
	assert.Equal(t, "Hello <b>World</b>\n", res.stdout)

	res = runCLI(t, dir, "correct-horse\ncorrect-horse\n", "lock", id)
	require.Equal(t, 0, res.code, res.stderr)

	res = runCLI(t, dir, "", "show", id)
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "is locked")
	assert.NotContains(t, res.stdout, "World")

	res = runCLI(t, dir, "", "edit", id, "--text", "overwrite")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, notecrypt.MessageNoteLocked)

	res = runCLI(t, dir, "wrong-horse\n", "unlock", id)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "wrong password")
	assert.NotContains(t, res.stderr, "wrong-horse")

	res = runCLI(t, dir, "correct-horse\n", "unlock", id)
	require.Equal(t, 0, res.code, res.stderr)

	res = runCLI(t, dir, "", "show", id)
	assert.Equal(t, "Hello <b>World</b>\n", res.stdout)
}

func TestLockRequiresMatchingConfirmation(t *testing.T) {
	dir := t.TempDir()
	id := newNote(t, dir, "n", "content")

	res := runCLI(t, dir, "one\ntwo\n", "lock", id)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "do not match")

	res = runCLI(t, dir, "", "show", id)
	assert.Equal(t, "content\n", res.stdout)
}

func TestRekey(t *testing.T) {
	dir := t.TempDir()
	id := newNote(t, dir, "n", "content")

	require.Equal(t, 0, runCLI(t, dir, "old\nold\n", "lock", id).code)

	res := runCLI(t, dir, "old\nnew\nnew\n", "rekey", id)
	require.Equal(t, 0, res.code, res.stderr)

	assert.Equal(t, 1, runCLI(t, dir, "old\n", "unlock", id).code)
	assert.Equal(t, 0, runCLI(t, dir, "new\n", "unlock", id).code)
}

func TestPassphraseFile(t *testing.T) {
	dir := t.TempDir()
	id := newNote(t, dir, "n", "content")

	passFile := filepath.Join(t.TempDir(), "pass")
	require.NoError(t, os.WriteFile(passFile, []byte("from-file\n"), 0o600))

	res := runCLI(t, dir, "", "--passphrase-file", passFile, "lock", id)
	require.Equal(t, 0, res.code, res.stderr)

	// Trailing newline is not part of the passphrase
	res = runCLI(t, dir, "from-file\n", "unlock", id)
	require.Equal(t, 0, res.code, res.stderr)

	res = runCLI(t, dir, "", "--passphrase-file", passFile, "rekey", id)
	assert.Equal(t, 1, res.code)
}

func TestListAndPin(t *testing.T) {
	dir := t.TempDir()
	first := newNote(t, dir, "First", "a")
	second := newNote(t, dir, "Second", "b")

	require.Equal(t, 0, runCLI(t, dir, "", "pin", first).code)
	require.Equal(t, 0, runCLI(t, dir, "pw\npw\n", "lock", second).code)

	res := runCLI(t, dir, "", "list")
	require.Equal(t, 0, res.code, res.stderr)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "TITLE")
	assert.Contains(t, lines[1], first)
	assert.Contains(t, lines[1], "yes")
	assert.Contains(t, lines[2], second)
	assert.Contains(t, lines[2], "encrypted")
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	id := newNote(t, dir, "n", "content")

	require.Equal(t, 0, runCLI(t, dir, "", "delete", id).code)

	res := runCLI(t, dir, "", "show", id)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, notecrypt.MessageNoteNotFound)
}

func TestEditFlags(t *testing.T) {
	dir := t.TempDir()
	id := newNote(t, dir, "n", "content")

	res := runCLI(t, dir, "", "edit", id)
	assert.Equal(t, 1, res.code)

	res = runCLI(t, dir, "", "edit", id, "--text", "x", "--file", "y")
	assert.Equal(t, 1, res.code)

	res = runCLI(t, dir, "from stdin", "edit", id, "--file", "-")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "from stdin\n", runCLI(t, dir, "", "show", id).stdout)
}

func TestProbe(t *testing.T) {
	pass := notecrypt.NewPassphrase("pw")
	defer pass.Destroy()
	envelope, err := notecrypt.EncryptContent("content", pass)
	require.NoError(t, err)

	res := runCLI(t, t.TempDir(), envelope, "probe")
	assert.Equal(t, 0, res.code)
	assert.Equal(t, "encrypted\n", res.stdout)

	res = runCLI(t, t.TempDir(), "Hello <b>World</b>", "probe")
	assert.Equal(t, 1, res.code)
	assert.Equal(t, "plain\n", res.stdout)
	assert.Empty(t, res.stderr)

	res = runCLI(t, t.TempDir(), "plain", "probe", "-q")
	assert.Equal(t, 1, res.code)
	assert.Empty(t, res.stdout)
}

func TestInvalidID(t *testing.T) {
	res := runCLI(t, t.TempDir(), "", "show", "../../etc/passwd")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "note id must be a UUID")
}

func TestNotesLandUnderDataDir(t *testing.T) {
	dir := t.TempDir()
	id := newNote(t, dir, "Diary", "Hello <b>World</b>")

	res := runCLI(t, dir, "correct-horse\ncorrect-horse\n", "lock", id)
	require.Equal(t, 0, res.code, res.stderr)

	raw, err := os.ReadFile(filepath.Join(dir, notesDir, id+".json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "World")
	assert.FileExists(t, filepath.Join(dir, notesDir, "index.json"))
}
