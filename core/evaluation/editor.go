package evaluation

import (
	"fmt"

	"github.com/trezcool/gradebook/core"
)

// State of the criterion form.
type State int

const (
	StateIdle State = iota
	StateCreating
	StateEditing
)

func (s State) String() string {
	switch s {
	case StateCreating:
		return "creating"
	case StateEditing:
		return "editing"
	default:
		return "idle"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = StateIdle
	case "creating":
		*s = StateCreating
	case "editing":
		*s = StateEditing
	default:
		return fmt.Errorf("unknown editor state %q", text)
	}
	return nil
}

// Form holds the pending values of the criterion being created or edited.
type Form struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
}

// ConfirmFunc is asked before a criterion is removed; removal only happens when it returns true.
type ConfirmFunc func(Criterion) bool

// Editor drives create/edit/remove of the criteria of one CriterionSet.
// Every mutation goes through Check first, except removal which can only lower the total.
// An Editor is not safe for concurrent use; see Session.Do.
type Editor struct {
	set       *CriterionSet
	state     State
	editingID int
	form      Form
	lastErr   error
}

func NewEditor(set *CriterionSet) *Editor {
	return &Editor{set: set}
}

func (e *Editor) State() State          { return e.state }
func (e *Editor) EditingID() int        { return e.editingID }
func (e *Editor) Form() Form            { return e.form }
func (e *Editor) LastError() error      { return e.lastErr }
func (e *Editor) Criteria() []Criterion { return e.set.Criteria() }
func (e *Editor) Summary() Summary      { return Summarize(e.set.criteria) }

// OpenCreate starts a new criterion with an empty form.
func (e *Editor) OpenCreate() error {
	if e.state != StateIdle {
		return ErrEditorBusy
	}
	e.state = StateCreating
	e.editingID = 0
	e.form = Form{}
	e.lastErr = nil
	return nil
}

// OpenEdit binds the form to an existing criterion and its current values.
func (e *Editor) OpenEdit(id int) error {
	if e.state != StateIdle {
		return ErrEditorBusy
	}
	c, ok := e.set.Get(id)
	if !ok {
		return ErrCriterionNotFound
	}
	e.state = StateEditing
	e.editingID = c.ID
	e.form = Form{Name: c.Name, Weight: c.Weight}
	e.lastErr = nil
	return nil
}

// SetForm replaces the pending form values.
func (e *Editor) SetForm(f Form) error {
	if e.state == StateIdle {
		return ErrEditorIdle
	}
	e.form = f
	return nil
}

// Submit commits the pending form. On a validation failure the editor keeps its state and
// the failure is both returned and kept as LastError.
func (e *Editor) Submit() (Criterion, error) {
	if e.state == StateIdle {
		return Criterion{}, ErrEditorIdle
	}

	name := core.CleanString(e.form.Name)
	if err := Check(e.set.criteria, e.editingID, name, e.form.Weight); err != nil {
		e.lastErr = err
		return Criterion{}, err
	}

	var c Criterion
	if e.state == StateCreating {
		c = e.set.add(name, e.form.Weight)
	} else {
		c = Criterion{ID: e.editingID, Name: name, Weight: e.form.Weight}
		if !e.set.replace(c) {
			e.lastErr = ErrCriterionNotFound
			return Criterion{}, ErrCriterionNotFound
		}
	}
	e.reset()
	return c, nil
}

// Cancel drops the pending form without touching the set.
func (e *Editor) Cancel() {
	e.reset()
}

// Remove deletes a criterion once confirm agrees, then returns the editor to idle.
// It does not go through Check: a removal can only lower the total.
func (e *Editor) Remove(id int, confirm ConfirmFunc) (Criterion, error) {
	c, ok := e.set.Get(id)
	if !ok {
		return Criterion{}, ErrCriterionNotFound
	}
	if confirm == nil || !confirm(c) {
		return Criterion{}, ErrRemovalNotConfirmed
	}
	e.set.remove(id)
	e.reset()
	return c, nil
}

// SetWeight changes a criterion's weight in place, without the form.
// It applies the same rules as Submit, with the criterion's own weight excluded from the base total.
func (e *Editor) SetWeight(id, weight int) (Criterion, error) {
	c, ok := e.set.Get(id)
	if !ok {
		return Criterion{}, ErrCriterionNotFound
	}
	if err := Check(e.set.criteria, id, c.Name, weight); err != nil {
		e.lastErr = err
		return Criterion{}, err
	}
	c.Weight = weight
	e.set.replace(c)
	e.lastErr = nil
	return c, nil
}

func (e *Editor) reset() {
	e.state = StateIdle
	e.editingID = 0
	e.form = Form{}
	e.lastErr = nil
}
