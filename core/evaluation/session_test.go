package evaluation

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core"
)

type fakeDirectory struct {
	names []string
	err   error
}

func (d fakeDirectory) Names(context.Context) ([]string, error) {
	return d.names, d.err
}

func newTestSessions() *Sessions {
	return NewSessions(fakeDirectory{names: []string{"Math 101", "Physics 201"}})
}

func TestSessions_select(t *testing.T) {
	ss := newTestSessions()
	ctx := context.Background()

	sess, err := ss.Select(ctx, 1, " Math 101 ")
	require.NoError(t, err)
	assert.Equal(t, 1, sess.Owner())
	assert.Equal(t, "Math 101", sess.Class())
	assert.Empty(t, sess.Snapshot().Criteria)

	snap, err := sess.Do(func(e *Editor) error {
		_, err := e.SetWeight(1, 10)
		assert.Equal(t, ErrCriterionNotFound, err)
		create(t, e, "Exam", 60)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, snap.Criteria, 1)

	// same class: same session
	again, err := ss.Select(ctx, 1, "Math 101")
	require.NoError(t, err)
	assert.Same(t, sess, again)
	assert.Len(t, again.Snapshot().Criteria, 1)

	// other class: a fresh, empty set
	other, err := ss.Select(ctx, 1, "Physics 201")
	require.NoError(t, err)
	assert.NotSame(t, sess, other)
	assert.Empty(t, other.Snapshot().Criteria)

	got, err := ss.Get(1)
	require.NoError(t, err)
	assert.Same(t, other, got)
}

func TestSessions_selectUnknownClass(t *testing.T) {
	ss := newTestSessions()

	_, err := ss.Select(context.Background(), 1, "Chemistry")
	require.Error(t, err)
	assert.True(t, core.IsValidationError(err))
	assert.True(t, errors.Is(err, ErrUnknownClass))

	_, err = ss.Get(1)
	assert.Equal(t, ErrNoSession, err)
}

func TestSessions_directoryFailure(t *testing.T) {
	boom := errors.New("boom")
	ss := NewSessions(fakeDirectory{err: boom})

	_, err := ss.Classes(context.Background())
	assert.Equal(t, boom, errors.Cause(err))

	_, err = ss.Select(context.Background(), 1, "Math 101")
	assert.Equal(t, boom, errors.Cause(err))
}

func TestSessions_ownersAreIsolated(t *testing.T) {
	ss := newTestSessions()
	ctx := context.Background()

	a, err := ss.Select(ctx, 1, "Math 101")
	require.NoError(t, err)
	b, err := ss.Select(ctx, 2, "Math 101")
	require.NoError(t, err)
	assert.NotSame(t, a, b)

	_, err = a.Do(func(e *Editor) error {
		create(t, e, "Exam", 50)
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, b.Snapshot().Criteria)
}

func TestSessions_leave(t *testing.T) {
	ss := newTestSessions()

	_, err := ss.Select(context.Background(), 1, "Math 101")
	require.NoError(t, err)
	assert.True(t, ss.Leave(1))
	assert.False(t, ss.Leave(1))

	_, err = ss.Get(1)
	assert.Equal(t, ErrNoSession, err)
}

func TestSession_snapshot(t *testing.T) {
	ss := newTestSessions()
	sess, err := ss.Select(context.Background(), 1, "Math 101")
	require.NoError(t, err)

	done, err := sess.Do(func(e *Editor) error {
		create(t, e, "Exam", 40)
		require.NoError(t, e.OpenCreate())
		require.NoError(t, e.SetForm(Form{Name: "Project", Weight: 70}))
		_, err := e.Submit()
		return err
	})
	var exceeds *ExceedsError
	assert.True(t, errors.As(err, &exceeds))

	snap := sess.Snapshot()
	assert.Equal(t, snap, done)
	assert.Equal(t, "Math 101", snap.Class)
	assert.Equal(t, StateCreating, snap.Editor.State)
	assert.Equal(t, Form{Name: "Project", Weight: 70}, snap.Editor.Form)
	assert.Equal(t, "the sum of weights cannot exceed 100% (current: 40%, new: 70%)", snap.Editor.Error)
	assert.Equal(t, Summary{Total: 40, Remaining: 60, Status: StatusIncomplete, Message: "Missing 60%"}, snap.Summary)
	assert.False(t, snap.CreatedAt.IsZero())
}

func TestSession_concurrentEdits(t *testing.T) {
	ss := newTestSessions()
	sess, err := ss.Select(context.Background(), 1, "Math 101")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = sess.Do(func(e *Editor) error {
				if err := e.OpenCreate(); err != nil {
					return err
				}
				_ = e.SetForm(Form{Name: "Quiz", Weight: 10})
				if _, err := e.Submit(); err != nil {
					e.Cancel()
					return err
				}
				return nil
			})
		}()
	}
	wg.Wait()

	// only ten quizzes of 10% fit
	snap := sess.Snapshot()
	assert.Len(t, snap.Criteria, 10)
	assert.Equal(t, 100, snap.Summary.Total)
}

func TestSession_doReturnsOwnResult(t *testing.T) {
	ss := newTestSessions()
	sess, err := ss.Select(context.Background(), 1, "Math 101")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(weight int) {
			defer wg.Done()
			snap, err := sess.Do(func(e *Editor) error {
				create(t, e, "Quiz", weight)
				return nil
			})
			assert.NoError(t, err)
			// the set seen by this call ends with its own criterion
			last := snap.Criteria[len(snap.Criteria)-1]
			assert.Equal(t, weight, last.Weight)
			assert.Equal(t, Sum(snap.Criteria), snap.Summary.Total)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 55, sess.Snapshot().Summary.Total)
}

func TestSessions_classRenamedOrDeleted(t *testing.T) {
	ss := newTestSessions()
	ctx := context.Background()

	a, err := ss.Select(ctx, 1, "Math 101")
	require.NoError(t, err)
	_, err = a.Do(func(e *Editor) error {
		create(t, e, "Exam", 50)
		return nil
	})
	require.NoError(t, err)
	_, err = ss.Select(ctx, 2, "Physics 201")
	require.NoError(t, err)

	ss.RenameClass("Math 101", "Math 102")
	assert.Equal(t, "Math 102", a.Snapshot().Class)
	assert.Len(t, a.Snapshot().Criteria, 1)

	assert.Equal(t, 1, ss.Forget("Physics 201"))
	_, err = ss.Get(2)
	assert.Equal(t, ErrNoSession, err)
	assert.Zero(t, ss.Forget("Physics 201"))

	got, err := ss.Get(1)
	require.NoError(t, err)
	assert.Same(t, a, got)
}
