package dummydb

import (
	"context"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/class"
	"github.com/trezcool/gradebook/core/dashboard"
)

type ClassRepository struct {
	db *DB
	t  *classTable
}

var (
	_ class.Repository       = (*ClassRepository)(nil) // interface compliance check
	_ dashboard.ClassCounter = (*ClassRepository)(nil)
)

// NewClassRepository returns the classes repository; it also counts classes for the dashboard.
func NewClassRepository(db *DB) *ClassRepository {
	return &ClassRepository{db: db, t: db.class}
}

func (repo *ClassRepository) query() []class.Class {
	classes := make([]class.Class, 0, len(repo.t.table))
	for _, c := range repo.t.table {
		classes = append(classes, *c)
	}
	return classes
}

func (repo *ClassRepository) CheckNameUniqueness(ctx context.Context, name string, excludeID int) error {
	if err := repo.db.wait(ctx); err != nil {
		return err
	}
	repo.t.RLock()
	defer repo.t.RUnlock()

	for _, c := range repo.t.table {
		if c.Name == name && c.ID != excludeID {
			return class.ErrNameExists
		}
	}
	return nil
}

func (repo *ClassRepository) CreateClass(ctx context.Context, c class.Class) (class.Class, error) {
	if err := repo.db.wait(ctx); err != nil {
		return class.Class{}, err
	}
	repo.t.Lock()
	defer repo.t.Unlock()
	return repo.t.insert(c), nil
}

// QueryClasses returns all classes, by id unless ordering says otherwise.
// Supported ordering fields: id, name, capacity, created_at.
func (repo *ClassRepository) QueryClasses(ctx context.Context, ordering ...core.Ordering) ([]class.Class, error) {
	if err := repo.db.wait(ctx); err != nil {
		return nil, err
	}
	repo.t.RLock()
	defer repo.t.RUnlock()

	classes := repo.query()
	sortBy(classes, classLess, ordering)
	return classes, nil
}

func (repo *ClassRepository) GetClassByID(ctx context.Context, id int) (class.Class, error) {
	if err := repo.db.wait(ctx); err != nil {
		return class.Class{}, err
	}
	repo.t.RLock()
	defer repo.t.RUnlock()

	if c, ok := repo.t.table[id]; ok {
		return *c, nil
	}
	return class.Class{}, class.ErrNotFound
}

// UpdateClass saves c. A new name is carried over to the students and upcoming
// evaluations of the class while every table involved is locked.
func (repo *ClassRepository) UpdateClass(ctx context.Context, c class.Class) (class.Class, error) {
	if err := repo.db.wait(ctx); err != nil {
		return class.Class{}, err
	}
	repo.t.Lock()
	defer repo.t.Unlock()

	orig, ok := repo.t.table[c.ID]
	if !ok {
		return class.Class{}, class.ErrNotFound
	}
	if c.Name != orig.Name {
		repo.db.student.moveClass(orig.Name, c.Name)
		repo.db.evaluation.moveClass(orig.Name, c.Name)
	}
	orig.Name = c.Name
	orig.Capacity = c.Capacity
	orig.UpdatedAt = c.UpdatedAt
	return *orig, nil
}

// DeleteClass removes the class with id unless students still sit in it.
func (repo *ClassRepository) DeleteClass(ctx context.Context, id int) error {
	if err := repo.db.wait(ctx); err != nil {
		return err
	}
	repo.t.Lock()
	defer repo.t.Unlock()

	c, ok := repo.t.table[id]
	if !ok {
		return class.ErrNotFound
	}
	if n := repo.db.student.countClass(c.Name); n > 0 {
		return &class.NotEmptyError{Students: n}
	}
	delete(repo.t.table, id)
	return nil
}

func (repo *ClassRepository) CountClasses(ctx context.Context) (int, error) {
	if err := repo.db.wait(ctx); err != nil {
		return 0, err
	}
	repo.t.RLock()
	defer repo.t.RUnlock()
	return len(repo.t.table), nil
}

// classLess compares a and b on field; ok is false for unknown fields.
func classLess(a, b class.Class, field string) (less, equal, ok bool) {
	switch field {
	case "id":
		return a.ID < b.ID, a.ID == b.ID, true
	case "name":
		return a.Name < b.Name, a.Name == b.Name, true
	case "capacity":
		return a.Capacity < b.Capacity, a.Capacity == b.Capacity, true
	case "created_at":
		return a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt), true
	}
	return false, false, false
}
