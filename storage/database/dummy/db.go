// Package dummydb is an in-memory database standing in for a real backend.
// Every repository call waits for Options.Latency, like a remote API would.
package dummydb

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/class"
	"github.com/trezcool/gradebook/core/dashboard"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/core/user"
	"github.com/trezcool/gradebook/storage/seed"
)

type (
	Options struct {
		Latency time.Duration
		Seed    *seed.Data // nil: empty database
	}

	DB struct {
		latency    time.Duration
		user       *userTable
		class      *classTable
		student    *studentTable
		evaluation *evaluationTable
	}

	userTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*user.User
	}

	classTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*class.Class
	}

	studentTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*student.Student
	}

	evaluationTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*dashboard.UpcomingEvaluation
	}
)

func Open(opts Options) (*DB, error) {
	db := &DB{
		latency:    opts.Latency,
		user:       &userTable{table: make(map[int]*user.User)},
		class:      &classTable{table: make(map[int]*class.Class)},
		student:    &studentTable{table: make(map[int]*student.Student)},
		evaluation: &evaluationTable{table: make(map[int]*dashboard.UpcomingEvaluation)},
	}
	if opts.Seed != nil {
		if err := db.load(opts.Seed); err != nil {
			return nil, errors.Wrap(err, "seeding database")
		}
	}
	return db, nil
}

// wait simulates the round trip to a remote store.
func (db *DB) wait(ctx context.Context) error {
	return core.Sleep(ctx, db.latency)
}

func (db *DB) load(data *seed.Data) error {
	now := time.Now().UTC()

	for _, rec := range data.Users {
		usr := user.User{
			Name:      rec.Name,
			Email:     core.CleanString(rec.Email, true /* lower */),
			IsActive:  true,
			Roles:     rec.Roles,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if rec.Password != "" {
			if err := usr.SetPassword(rec.Password); err != nil {
				return errors.Wrapf(err, "hashing password of %s", rec.Email)
			}
		}
		db.user.insert(usr)
	}
	for _, rec := range data.Classes {
		db.class.insert(class.Class{Name: rec.Name, Capacity: rec.Capacity, CreatedAt: now, UpdatedAt: now})
	}
	for _, rec := range data.Students {
		db.student.insert(student.Student{
			Name:      rec.Name,
			Email:     rec.Email,
			Class:     rec.Class,
			Status:    rec.Status,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	for _, rec := range data.Evaluations {
		db.evaluation.insert(dashboard.UpcomingEvaluation{Class: rec.Class, Date: rec.Date, Description: rec.Description})
	}
	return nil
}

// Cross-table helpers. Callers hold the class table lock first, then these take the
// lock of their own table.

func (t *classTable) hasName(name string) bool {
	for _, c := range t.table {
		if c.Name == name {
			return true
		}
	}
	return false
}

func (t *studentTable) countClass(name string) int {
	t.RLock()
	defer t.RUnlock()

	var n int
	for _, s := range t.table {
		if s.Class == name {
			n++
		}
	}
	return n
}

func (t *studentTable) moveClass(from, to string) {
	t.Lock()
	defer t.Unlock()

	for _, s := range t.table {
		if s.Class == from {
			s.Class = to
		}
	}
}

func (t *evaluationTable) moveClass(from, to string) {
	t.Lock()
	defer t.Unlock()

	for _, e := range t.table {
		if e.Class == from {
			e.Class = to
		}
	}
}

// insert helpers assign the next primary key; callers hold the write lock or own the table.

func (t *userTable) insert(usr user.User) user.User {
	t.pkCount++
	usr.ID = t.pkCount
	t.table[usr.ID] = &usr
	return usr
}

func (t *classTable) insert(c class.Class) class.Class {
	t.pkCount++
	c.ID = t.pkCount
	t.table[c.ID] = &c
	return c
}

func (t *studentTable) insert(s student.Student) student.Student {
	t.pkCount++
	s.ID = t.pkCount
	t.table[s.ID] = &s
	return s
}

func (t *evaluationTable) insert(e dashboard.UpcomingEvaluation) dashboard.UpcomingEvaluation {
	t.pkCount++
	e.ID = t.pkCount
	t.table[e.ID] = &e
	return e
}
