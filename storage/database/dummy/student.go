package dummydb

import (
	"context"
	"strings"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/class"
	"github.com/trezcool/gradebook/core/dashboard"
	"github.com/trezcool/gradebook/core/student"
)

type StudentRepository struct {
	db *DB
	t  *studentTable
}

var (
	_ student.Repository       = (*StudentRepository)(nil) // interface compliance check
	_ class.Roster             = (*StudentRepository)(nil)
	_ dashboard.StudentCounter = (*StudentRepository)(nil)
)

// NewStudentRepository returns the students repository. It is also the class roster
// and counts students for the dashboard.
func NewStudentRepository(db *DB) *StudentRepository {
	return &StudentRepository{db: db, t: db.student}
}

func (repo *StudentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.t.table))
	for _, s := range repo.t.table {
		students = append(students, *s)
	}
	return students
}

func (repo *StudentRepository) CheckEmailUniqueness(ctx context.Context, email string, excludeID int) error {
	if err := repo.db.wait(ctx); err != nil {
		return err
	}
	repo.t.RLock()
	defer repo.t.RUnlock()

	for _, s := range repo.t.table {
		if s.Email == email && s.ID != excludeID {
			return student.ErrEmailExists
		}
	}
	return nil
}

// CreateStudent inserts s, failing with student.ErrUnknownClass when its class does not exist.
func (repo *StudentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	if err := repo.db.wait(ctx); err != nil {
		return student.Student{}, err
	}
	repo.db.class.RLock()
	defer repo.db.class.RUnlock()
	repo.t.Lock()
	defer repo.t.Unlock()

	if !repo.db.class.hasName(s.Class) {
		return student.Student{}, student.ErrUnknownClass
	}
	return repo.t.insert(s), nil
}

// FilterStudents returns the students matching filter, by id unless ordering says otherwise.
// Supported ordering fields: id, name, email, class, status, created_at.
func (repo *StudentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter, ordering ...core.Ordering) ([]student.Student, error) {
	if err := repo.db.wait(ctx); err != nil {
		return nil, err
	}
	repo.t.RLock()
	defer repo.t.RUnlock()

	search := strings.ToLower(filter.Search)
	students := make([]student.Student, 0, len(repo.t.table))
	for _, s := range repo.query() {
		// search keyword matching Name or Email ?
		if search != "" &&
			!strings.Contains(strings.ToLower(s.Name), search) &&
			!strings.Contains(strings.ToLower(s.Email), search) {
			continue
		}
		if filter.Class != "" && s.Class != filter.Class {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		students = append(students, s)
	}
	sortBy(students, studentLess, ordering)
	return students, nil
}

func (repo *StudentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	if err := repo.db.wait(ctx); err != nil {
		return student.Student{}, err
	}
	repo.t.RLock()
	defer repo.t.RUnlock()

	if s, ok := repo.t.table[id]; ok {
		return *s, nil
	}
	return student.Student{}, student.ErrNotFound
}

// UpdateStudent saves s. Moving the student fails with student.ErrUnknownClass when the
// target class does not exist.
func (repo *StudentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	if err := repo.db.wait(ctx); err != nil {
		return student.Student{}, err
	}
	repo.db.class.RLock()
	defer repo.db.class.RUnlock()
	repo.t.Lock()
	defer repo.t.Unlock()

	orig, ok := repo.t.table[s.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if s.Class != orig.Class && !repo.db.class.hasName(s.Class) {
		return student.Student{}, student.ErrUnknownClass
	}
	orig.Name = s.Name
	orig.Email = s.Email
	orig.Class = s.Class
	orig.Status = s.Status
	orig.UpdatedAt = s.UpdatedAt
	return *orig, nil
}

func (repo *StudentRepository) DeleteStudent(ctx context.Context, id int) error {
	if err := repo.db.wait(ctx); err != nil {
		return err
	}
	repo.t.Lock()
	defer repo.t.Unlock()

	if _, ok := repo.t.table[id]; !ok {
		return student.ErrNotFound
	}
	delete(repo.t.table, id)
	return nil
}

func (repo *StudentRepository) CountByClass(ctx context.Context) (map[string]int, error) {
	if err := repo.db.wait(ctx); err != nil {
		return nil, err
	}
	repo.t.RLock()
	defer repo.t.RUnlock()

	counts := make(map[string]int)
	for _, s := range repo.t.table {
		counts[s.Class]++
	}
	return counts, nil
}

func (repo *StudentRepository) CountStudents(ctx context.Context) (total, active int, err error) {
	if err = repo.db.wait(ctx); err != nil {
		return 0, 0, err
	}
	repo.t.RLock()
	defer repo.t.RUnlock()

	for _, s := range repo.t.table {
		total++
		if s.IsActive() {
			active++
		}
	}
	return total, active, nil
}

func studentLess(a, b student.Student, field string) (less, equal, ok bool) {
	switch field {
	case "id":
		return a.ID < b.ID, a.ID == b.ID, true
	case "name":
		return a.Name < b.Name, a.Name == b.Name, true
	case "email":
		return a.Email < b.Email, a.Email == b.Email, true
	case "class":
		return a.Class < b.Class, a.Class == b.Class, true
	case "status":
		return a.Status < b.Status, a.Status == b.Status, true
	case "created_at":
		return a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt), true
	}
	return false, false, false
}
