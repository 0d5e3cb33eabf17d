package notecrypt

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"sync"

	"github.com/absfs/absfs"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultStoreRoot is where notes live when no root is given
	DefaultStoreRoot = "/notes"

	indexFile = "index.json"
	noteExt   = ".json"
	tmpMarker = ".tmp-"
)

// Store persists notes on an absfs.FileSystem, which is treated as
// untrusted: content of encrypted notes only ever reaches it as envelopes.
//
// Each note is one JSON document named after its ID. An index document
// records the IDs so listing does not depend on directory support in the
// underlying file system.
type Store struct {
	fs   absfs.FileSystem
	root string
	gate *Gate
	log  zerolog.Logger

	mu    sync.Mutex // guards ids, locks and the index document
	ids   []string
	locks map[string]*sync.Mutex
}

type storeIndex struct {
	IDs []string `json:"ids"`
}

// NewStore opens (or initializes) a note store rooted at root
func NewStore(fs absfs.FileSystem, root string, opts ...Option) (*Store, error) {
	if fs == nil {
		return nil, ErrNilFileSystem
	}
	if root == "" {
		root = DefaultStoreRoot
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := fs.MkdirAll(root, 0o700); err != nil {
		return nil, NewIOError("mkdir", root, err)
	}

	s := &Store{
		fs:    fs,
		root:  root,
		gate:  NewGate(opts...),
		log:   o.log.With().Str("component", "store").Logger(),
		locks: make(map[string]*sync.Mutex),
	}

	if err := s.loadIndex(); err != nil {
		return nil, err
	}

	s.log.Debug().Str("root", root).Int("notes", len(s.ids)).Msg("store opened")
	return s, nil
}

// Gate returns the state gate the store runs transitions through
func (s *Store) Gate() *Gate {
	return s.gate
}

// Create makes a new plain note and persists it
func (s *Store) Create(title string) (*Note, error) {
	n := NewNote(title)
	if err := s.Save(n); err != nil {
		return nil, err
	}
	s.log.Info().Str("note_id", n.ID()).Msg("note created")
	return n, nil
}

// Get loads a note. A stored note whose encrypted flag disagrees with its
// content is refused with a CorruptionError.
func (s *Store) Get(id string) (*Note, error) {
	if err := validateNoteID(id); err != nil {
		return nil, err
	}
	return s.get(id)
}

func (s *Store) get(id string) (*Note, error) {
	p := s.notePath(id)
	f, err := s.fs.Open(p)
	if err != nil {
		if isNotExist(err) {
			return nil, fmt.Errorf("get note %s: %w", id, ErrNoteNotFound)
		}
		return nil, NewIOError("open", p, err)
	}
	defer f.Close()

	var snap NoteSnapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return nil, &CorruptionError{NoteID: id, Message: "unreadable note document", Err: err}
	}
	if snap.ID != id {
		return nil, NewCorruptionError(id, "stored identifier does not match")
	}
	if !snap.consistent() {
		s.log.Error().Str("note_id", id).Bool("encrypted", snap.Encrypted).Msg("stored note breaks encrypted invariant")
		return nil, NewCorruptionError(id, "encrypted flag does not match content")
	}

	return noteFromSnapshot(snap), nil
}

// Save writes a note. Notes that break the encrypted invariant are refused.
func (s *Store) Save(n *Note) error {
	if n == nil {
		return ErrNilNote
	}

	unlock := s.lockNote(n.ID())
	defer unlock()
	return s.save(n)
}

func (s *Store) save(n *Note) error {
	snap := n.Snapshot()
	if !snap.consistent() {
		return NewCorruptionError(snap.ID, "encrypted flag does not match content")
	}

	if err := s.writeJSON(s.notePath(snap.ID), snap); err != nil {
		return err
	}
	return s.addToIndex(snap.ID)
}

// Delete removes a note
func (s *Store) Delete(id string) error {
	if err := validateNoteID(id); err != nil {
		return err
	}

	unlock := s.lockNote(id)
	defer unlock()

	p := s.notePath(id)
	if err := s.fs.Remove(p); err != nil {
		if isNotExist(err) {
			return fmt.Errorf("delete note %s: %w", id, ErrNoteNotFound)
		}
		return NewIOError("remove", p, err)
	}

	if err := s.removeFromIndex(id); err != nil {
		return err
	}
	s.log.Info().Str("note_id", id).Msg("note deleted")
	return nil
}

// List returns all notes, pinned first, then most recently edited first
func (s *Store) List() ([]*Note, error) {
	s.mu.Lock()
	ids := append([]string{}, s.ids...)
	s.mu.Unlock()

	notes := make([]*Note, 0, len(ids))
	snaps := make(map[*Note]NoteSnapshot, len(ids))
	for _, id := range ids {
		n, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
		snaps[n] = n.Snapshot()
	}

	sort.SliceStable(notes, func(i, j int) bool {
		a, b := snaps[notes[i]], snaps[notes[j]]
		if a.Pinned != b.Pinned {
			return a.Pinned
		}
		return a.LastEdited.After(b.LastEdited)
	})
	return notes, nil
}

// Edit replaces the content of a stored plain note
func (s *Store) Edit(id, content string) error {
	return s.update(id, func(n *Note) error {
		return s.gate.Edit(n, content)
	})
}

// Lock encrypts a stored note. On failure the stored document is untouched.
func (s *Store) Lock(id string, passphrase *Passphrase) error {
	return s.update(id, func(n *Note) error {
		return s.gate.Encrypt(n, passphrase)
	})
}

// Unlock decrypts a stored note. On failure the stored document is
// untouched and the note stays locked.
func (s *Store) Unlock(id string, passphrase *Passphrase) error {
	return s.update(id, func(n *Note) error {
		return s.gate.Decrypt(n, passphrase)
	})
}

// Rekey changes the passphrase of a stored encrypted note
func (s *Store) Rekey(id string, oldPassphrase, newPassphrase *Passphrase) error {
	return s.update(id, func(n *Note) error {
		return s.gate.Rekey(n, oldPassphrase, newPassphrase)
	})
}

// update loads a note, applies fn and writes the result only if fn
// succeeded. The note lock is held from the read to the write so two
// updates of one note never work from the same stale document.
func (s *Store) update(id string, fn func(*Note) error) error {
	if err := validateNoteID(id); err != nil {
		return err
	}

	unlock := s.lockNote(id)
	defer unlock()

	n, err := s.get(id)
	if err != nil {
		return err
	}
	if err := fn(n); err != nil {
		return err
	}
	return s.save(n)
}

// lockNote acquires the per-note lock for id and returns its release.
// s.mu is only held to look the lock up, never while waiting on it.
func (s *Store) lockNote(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *Store) notePath(id string) string {
	return path.Join(s.root, id+noteExt)
}

func (s *Store) indexPath() string {
	return path.Join(s.root, indexFile)
}

func (s *Store) loadIndex() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.indexPath()
	f, err := s.fs.Open(p)
	if err != nil {
		if isNotExist(err) {
			s.ids = nil
			return nil
		}
		return NewIOError("open", p, err)
	}
	defer f.Close()

	var idx storeIndex
	if err := json.NewDecoder(f).Decode(&idx); err != nil {
		return &CorruptionError{Message: "unreadable note index", Err: err}
	}
	s.ids = idx.IDs
	return nil
}

func (s *Store) addToIndex(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.ids {
		if existing == id {
			return nil
		}
	}
	ids := append(append([]string{}, s.ids...), id)
	if err := s.writeJSON(s.indexPath(), storeIndex{IDs: ids}); err != nil {
		return err
	}
	s.ids = ids
	return nil
}

func (s *Store) removeFromIndex(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.ids))
	for _, existing := range s.ids {
		if existing != id {
			ids = append(ids, existing)
		}
	}
	if err := s.writeJSON(s.indexPath(), storeIndex{IDs: ids}); err != nil {
		return err
	}
	s.ids = ids
	return nil
}

// writeJSON encodes v to a sibling temporary file and renames it over p,
// so readers see either the previous document or the new one in full.
func (s *Store) writeJSON(p string, v any) error {
	tmp := p + tmpMarker + uuid.NewString()
	f, err := s.fs.Create(tmp)
	if err != nil {
		return NewIOError("create", tmp, err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		s.fs.Remove(tmp)
		return NewIOError("write", tmp, err)
	}
	if err := f.Close(); err != nil {
		s.fs.Remove(tmp)
		return NewIOError("close", tmp, err)
	}

	if err := s.fs.Rename(tmp, p); err != nil {
		s.fs.Remove(tmp)
		return NewIOError("rename", p, err)
	}
	return nil
}

// validateNoteID keeps caller-supplied IDs from naming arbitrary paths
func validateNoteID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &ValidationError{
			Field:   "id",
			Value:   id,
			Message: "note id must be a UUID",
			Err:     err,
		}
	}
	return nil
}

func isNotExist(err error) bool {
	return os.IsNotExist(err) || errors.Is(err, os.ErrNotExist)
}
