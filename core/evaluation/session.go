package evaluation

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
)

// ClassDirectory supplies the names of the classes that can be selected.
type ClassDirectory interface {
	Names(ctx context.Context) ([]string, error)
}

// Session is one user's criterion set for the class they selected.
type Session struct {
	mu        sync.Mutex
	owner     int
	class     string
	editor    *Editor
	createdAt time.Time
}

func newSession(owner int, class string) *Session {
	return &Session{
		owner:     owner,
		class:     class,
		editor:    NewEditor(NewCriterionSet()),
		createdAt: time.Now().UTC(),
	}
}

func (s *Session) Owner() int { return s.owner }

func (s *Session) Class() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.class
}

// Do runs fn with exclusive access to the session's editor and returns the state fn left,
// before any other caller gets in.
func (s *Session) Do(fn func(*Editor) error) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := fn(s.editor)
	return s.snapshot(), err
}

type (
	EditorSnapshot struct {
		State     State  `json:"state"`
		EditingID int    `json:"editing_id,omitempty"`
		Form      Form   `json:"form"`
		Error     string `json:"error,omitempty"`
	}

	// Snapshot is what the presentation layer renders for a session.
	Snapshot struct {
		Class     string         `json:"class"`
		Criteria  []Criterion    `json:"criteria"`
		Summary   Summary        `json:"summary"`
		Editor    EditorSnapshot `json:"editor"`
		CreatedAt time.Time      `json:"created_at"`
	}
)

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() Snapshot {
	ed := EditorSnapshot{
		State:     s.editor.State(),
		EditingID: s.editor.EditingID(),
		Form:      s.editor.Form(),
	}
	if err := s.editor.LastError(); err != nil {
		ed.Error = err.Error()
	}
	return Snapshot{
		Class:     s.class,
		Criteria:  s.editor.Criteria(),
		Summary:   s.editor.Summary(),
		Editor:    ed,
		CreatedAt: s.createdAt,
	}
}

// Sessions keeps at most one editing session per user.
// Selecting another class, leaving or logging out discards the previous criterion set.
type Sessions struct {
	mu      sync.Mutex
	dir     ClassDirectory
	byOwner map[int]*Session
}

func NewSessions(dir ClassDirectory) *Sessions {
	return &Sessions{
		dir:     dir,
		byOwner: make(map[int]*Session),
	}
}

// Classes lists the classes available for selection.
func (ss *Sessions) Classes(ctx context.Context) ([]string, error) {
	names, err := ss.dir.Names(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing class names")
	}
	return names, nil
}

// Select returns owner's session for class, starting an empty one when owner had none
// or was working on another class.
func (ss *Sessions) Select(ctx context.Context, owner int, class string) (*Session, error) {
	class = core.CleanString(class)
	names, err := ss.Classes(ctx)
	if err != nil {
		return nil, err
	}
	if !contains(names, class) {
		return nil, core.NewValidationError(ErrUnknownClass, core.FieldError{Field: "class", Error: ErrUnknownClass.Error()})
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()

	if sess, ok := ss.byOwner[owner]; ok && sess.Class() == class {
		return sess, nil
	}
	sess := newSession(owner, class)
	ss.byOwner[owner] = sess
	return sess, nil
}

// Get returns owner's current session.
func (ss *Sessions) Get(owner int) (*Session, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if sess, ok := ss.byOwner[owner]; ok {
		return sess, nil
	}
	return nil, ErrNoSession
}

// Leave discards owner's session. It reports whether there was one.
func (ss *Sessions) Leave(owner int) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	_, ok := ss.byOwner[owner]
	delete(ss.byOwner, owner)
	return ok
}

// RenameClass points the sessions working on class from to its new name. Their criteria are kept.
func (ss *Sessions) RenameClass(from, to string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	for _, sess := range ss.byOwner {
		sess.mu.Lock()
		if sess.class == from {
			sess.class = to
		}
		sess.mu.Unlock()
	}
}

// Forget discards every session working on class and returns how many there were.
func (ss *Sessions) Forget(class string) int {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	var n int
	for owner, sess := range ss.byOwner {
		if sess.Class() == class {
			delete(ss.byOwner, owner)
			n++
		}
	}
	return n
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
