package notecrypt

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the lock state of a note
type State uint8

const (
	// StatePlain means the content is plaintext markup
	StatePlain State = iota
	// StateEncrypted means the content is an envelope
	StateEncrypted
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StatePlain:
		return "plain"
	case StateEncrypted:
		return "encrypted"
	default:
		return "unknown"
	}
}

// Note is a unit of user content that can be locked behind a passphrase.
//
// Content and the encrypted flag only change together, under the note's
// lock, through the Gate. Read them with Snapshot.
type Note struct {
	mu sync.Mutex

	id         string
	title      string
	content    string
	encrypted  bool
	pinned     bool
	tags       []string
	lastEdited time.Time
}

// NoteSnapshot is a consistent copy of a note's fields
type NoteSnapshot struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Encrypted  bool      `json:"encrypted"`
	Pinned     bool      `json:"pinned"`
	Tags       []string  `json:"tags"`
	LastEdited time.Time `json:"lastEdited"`
}

// DefaultTitle is given to notes created without a title
const DefaultTitle = "Untitled Note"

// NewNote creates an empty plain note with a fresh identifier. Content is
// set through Gate.Edit so it can never start out looking like an envelope.
func NewNote(title string) *Note {
	if title == "" {
		title = DefaultTitle
	}
	return &Note{
		id:         uuid.NewString(),
		title:      title,
		tags:       []string{},
		lastEdited: time.Now().UTC(),
	}
}

// noteFromSnapshot rebuilds a note from stored fields. The caller is
// responsible for checking the encrypted invariant first.
func noteFromSnapshot(s NoteSnapshot) *Note {
	tags := append([]string{}, s.Tags...)
	return &Note{
		id:         s.ID,
		title:      s.Title,
		content:    s.Content,
		encrypted:  s.Encrypted,
		pinned:     s.Pinned,
		tags:       tags,
		lastEdited: s.LastEdited,
	}
}

// ID returns the note identifier
func (n *Note) ID() string {
	return n.id
}

// State returns the current lock state
func (n *Note) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stateLocked()
}

func (n *Note) stateLocked() State {
	if n.encrypted {
		return StateEncrypted
	}
	return StatePlain
}

// Snapshot returns a consistent copy of the note
func (n *Note) Snapshot() NoteSnapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.snapshotLocked()
}

func (n *Note) snapshotLocked() NoteSnapshot {
	return NoteSnapshot{
		ID:         n.id,
		Title:      n.title,
		Content:    n.content,
		Encrypted:  n.encrypted,
		Pinned:     n.pinned,
		Tags:       append([]string{}, n.tags...),
		LastEdited: n.lastEdited,
	}
}

// SetTitle renames the note. Titles stay readable while a note is locked.
func (n *Note) SetTitle(title string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.title = title
	n.lastEdited = time.Now().UTC()
}

// SetPinned pins or unpins the note
func (n *Note) SetPinned(pinned bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pinned = pinned
}

// SetTags replaces the note's tags
func (n *Note) SetTags(tags []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tags = append([]string{}, tags...)
}

// consistent reports whether the flag agrees with the content
func (s NoteSnapshot) consistent() bool {
	return s.Encrypted == IsEnvelope(s.Content)
}
