package dummydb

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/class"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/core/user"
	"github.com/trezcool/gradebook/storage/seed"
)

func openSeeded(t *testing.T, latency time.Duration) *DB {
	t.Helper()
	data, err := seed.Default()
	require.NoError(t, err)
	db, err := Open(Options{Latency: latency, Seed: data})
	require.NoError(t, err)
	return db
}

func TestOpen_seed(t *testing.T) {
	db := openSeeded(t, 0)
	ctx := context.Background()

	classes, err := NewClassRepository(db).QueryClasses(ctx)
	require.NoError(t, err)
	require.Len(t, classes, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{classes[0].ID, classes[1].ID, classes[2].ID})
	assert.Equal(t, "Turma A", classes[0].Name)

	total, active, err := NewStudentRepository(db).CountStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, active)

	usr, err := NewUserRepository(db).GetUserByEmail(ctx, "professor@escola.com")
	require.NoError(t, err)
	assert.True(t, usr.IsActive)
	assert.NoError(t, usr.CheckPassword("professor123"))

	evals, err := NewEvaluationRepository(db).QueryUpcomingEvaluations(ctx)
	require.NoError(t, err)
	assert.Len(t, evals, 3)
}

func TestOpen_empty(t *testing.T) {
	db, err := Open(Options{})
	require.NoError(t, err)

	n, err := NewClassRepository(db).CountClasses(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDB_latency(t *testing.T) {
	db := openSeeded(t, 20*time.Millisecond)
	repo := NewClassRepository(db)

	start := time.Now()
	_, err := repo.QueryClasses(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, int64(time.Since(start)), int64(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = repo.QueryClasses(ctx)
	assert.Equal(t, context.Canceled, err)
}

func TestClassRepository(t *testing.T) {
	db := openSeeded(t, 0)
	repo := NewClassRepository(db)
	ctx := context.Background()

	assert.Equal(t, class.ErrNameExists, repo.CheckNameUniqueness(ctx, "Turma A", 0))
	assert.NoError(t, repo.CheckNameUniqueness(ctx, "Turma A", 1))
	assert.NoError(t, repo.CheckNameUniqueness(ctx, "Turma D", 0))

	c, err := repo.CreateClass(ctx, class.Class{Name: "Turma D", Capacity: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, c.ID)

	// ids are never reused
	require.NoError(t, repo.DeleteClass(ctx, c.ID))
	assert.Equal(t, class.ErrNotFound, repo.DeleteClass(ctx, c.ID))
	c, err = repo.CreateClass(ctx, class.Class{Name: "Turma D", Capacity: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, c.ID)

	c.Name, c.Capacity = "Turma E", 12
	got, err := repo.UpdateClass(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, "Turma E", got.Name)
	assert.Equal(t, 12, got.Capacity)

	_, err = repo.GetClassByID(ctx, 99)
	assert.Equal(t, class.ErrNotFound, err)
	_, err = repo.UpdateClass(ctx, class.Class{ID: 99})
	assert.Equal(t, class.ErrNotFound, err)
}

func TestClassRepository_ordering(t *testing.T) {
	db := openSeeded(t, 0)
	repo := NewClassRepository(db)

	names := func(ordering ...core.Ordering) []string {
		classes, err := repo.QueryClasses(context.Background(), ordering...)
		require.NoError(t, err)
		out := make([]string, 0, len(classes))
		for _, c := range classes {
			out = append(out, c.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Turma A", "Turma B", "Turma C"}, names())
	assert.Equal(t, []string{"Turma C", "Turma B", "Turma A"}, names(core.Ordering{Field: "name"}))
	assert.Equal(t, []string{"Turma B", "Turma A", "Turma C"}, names(core.Ordering{Field: "capacity", Ascending: true}))
	assert.Equal(t, []string{"Turma A", "Turma B", "Turma C"}, names(core.Ordering{Field: "lol"}))
}

func TestStudentRepository_filter(t *testing.T) {
	db := openSeeded(t, 0)
	repo := NewStudentRepository(db)

	emails := func(filter student.QueryFilter, ordering ...core.Ordering) []string {
		students, err := repo.FilterStudents(context.Background(), filter, ordering...)
		require.NoError(t, err)
		out := make([]string, 0, len(students))
		for _, s := range students {
			out = append(out, s.Email)
		}
		return out
	}

	tests := []struct {
		name     string
		filter   student.QueryFilter
		ordering []core.Ordering
		want     []string
	}{
		{name: "all", want: []string{"maria@escola.com", "joao@escola.com", "carla@escola.com"}},
		{name: "search name", filter: student.QueryFilter{Search: "SIL"}, want: []string{"maria@escola.com"}},
		{name: "search email", filter: student.QueryFilter{Search: "joao@"}, want: []string{"joao@escola.com"}},
		{name: "search unknown", filter: student.QueryFilter{Search: "lol"}, want: []string{}},
		{name: "class", filter: student.QueryFilter{Class: "Turma A"}, want: []string{"maria@escola.com", "carla@escola.com"}},
		{name: "status", filter: student.QueryFilter{Status: student.StatusInactive}, want: []string{"joao@escola.com"}},
		{
			name:   "combined",
			filter: student.QueryFilter{Search: "a", Class: "Turma A", Status: student.StatusActive},
			want:   []string{"maria@escola.com", "carla@escola.com"},
		},
		{
			name:     "order by name",
			ordering: []core.Ordering{{Field: "name", Ascending: true}},
			want:     []string{"carla@escola.com", "joao@escola.com", "maria@escola.com"},
		},
		{
			name:     "order by class,-name",
			ordering: []core.Ordering{{Field: "class", Ascending: true}, {Field: "name"}},
			want:     []string{"maria@escola.com", "carla@escola.com", "joao@escola.com"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, emails(tt.filter, tt.ordering...))
		})
	}
}

func TestStudentRepository_roster(t *testing.T) {
	db := openSeeded(t, 0)
	repo := NewStudentRepository(db)
	classes := NewClassRepository(db)
	ctx := context.Background()

	counts, err := repo.CountByClass(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Turma A": 2, "Turma B": 1}, counts)

	// renaming a class carries its students and evaluations along
	c, err := classes.GetClassByID(ctx, 1)
	require.NoError(t, err)
	c.Name = "Turma Z"
	_, err = classes.UpdateClass(ctx, c)
	require.NoError(t, err)

	counts, err = repo.CountByClass(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Turma Z": 2, "Turma B": 1}, counts)

	evals, err := NewEvaluationRepository(db).QueryUpcomingEvaluations(ctx)
	require.NoError(t, err)
	for _, e := range evals {
		assert.NotEqual(t, "Turma A", e.Class)
	}

	// a class with students cannot go
	err = classes.DeleteClass(ctx, 1)
	var neErr *class.NotEmptyError
	require.True(t, errors.As(err, &neErr))
	assert.Equal(t, 2, neErr.Students)
	assert.Equal(t, "class still has 2 student(s)", err.Error())
	_, err = classes.GetClassByID(ctx, 1)
	assert.NoError(t, err)
}

func TestStudentRepository_unknownClass(t *testing.T) {
	db := openSeeded(t, 0)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	_, err := repo.CreateStudent(ctx, student.Student{Name: "Ana", Email: "ana@escola.com", Class: "Turma Z"})
	assert.Equal(t, student.ErrUnknownClass, err)

	s, err := repo.GetStudentByID(ctx, 1)
	require.NoError(t, err)
	s.Class = "Turma Z"
	_, err = repo.UpdateStudent(ctx, s)
	assert.Equal(t, student.ErrUnknownClass, err)

	counts, err := repo.CountByClass(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Turma A": 2, "Turma B": 1}, counts)
}

func TestStudentRepository_createWhileDeletingClass(t *testing.T) {
	for i := 0; i < 20; i++ {
		db := openSeeded(t, 0)
		students := NewStudentRepository(db)
		classes := NewClassRepository(db)
		ctx := context.Background()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = classes.DeleteClass(ctx, 3)
		}()
		go func() {
			defer wg.Done()
			_, _ = students.CreateStudent(ctx, student.Student{Name: "Ana", Email: "ana@escola.com", Class: "Turma C"})
		}()
		wg.Wait()

		// either the class survived with its new student, or it is gone and the student was refused
		counts, err := students.CountByClass(ctx)
		require.NoError(t, err)
		_, getErr := classes.GetClassByID(ctx, 3)
		if getErr == nil {
			assert.Equal(t, 1, counts["Turma C"])
		} else {
			assert.Equal(t, class.ErrNotFound, getErr)
			assert.Zero(t, counts["Turma C"])
		}
	}
}

func TestStudentRepository_crud(t *testing.T) {
	db := openSeeded(t, 0)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	assert.Equal(t, student.ErrEmailExists, repo.CheckEmailUniqueness(ctx, "maria@escola.com", 0))
	assert.NoError(t, repo.CheckEmailUniqueness(ctx, "maria@escola.com", 1))

	s, err := repo.CreateStudent(ctx, student.Student{Name: "Ana", Email: "ana@escola.com", Class: "Turma C", Status: student.StatusActive})
	require.NoError(t, err)
	assert.Equal(t, 4, s.ID)

	s.Status = student.StatusInactive
	got, err := repo.UpdateStudent(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, student.StatusInactive, got.Status)

	require.NoError(t, repo.DeleteStudent(ctx, s.ID))
	_, err = repo.GetStudentByID(ctx, s.ID)
	assert.Equal(t, student.ErrNotFound, err)
	assert.Equal(t, student.ErrNotFound, repo.DeleteStudent(ctx, s.ID))
}

func TestUserRepository(t *testing.T) {
	db, err := Open(Options{})
	require.NoError(t, err)
	repo := NewUserRepository(db)
	ctx := context.Background()

	usr, err := repo.CreateUser(ctx, user.User{Name: "T", Email: "t@test.cd", IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, 1, usr.ID)
	assert.Equal(t, user.ErrEmailExists, repo.CheckEmailUniqueness(ctx, "t@test.cd"))

	now := time.Now().UTC()
	usr, err = repo.SetUserLastLogin(ctx, usr.ID, now)
	require.NoError(t, err)
	assert.Equal(t, now, usr.LastLogin)

	_, err = repo.SetUserPassword(ctx, 99, nil)
	assert.Equal(t, user.ErrNotFound, err)
	_, err = repo.GetUserByID(ctx, 99)
	assert.Equal(t, user.ErrNotFound, err)

	users, err := repo.QueryAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
