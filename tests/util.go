package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/gradebook/core/class"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/core/user"
	dummydb "github.com/trezcool/gradebook/storage/database/dummy"
	"github.com/trezcool/gradebook/storage/seed"
)

// OpenDB returns an empty in-memory database without latency.
func OpenDB(t *testing.T) *dummydb.DB {
	db, err := dummydb.Open(dummydb.Options{})
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	return db
}

// OpenSeededDB returns an in-memory database without latency, loaded with the demo dataset.
func OpenSeededDB(t *testing.T) *dummydb.DB {
	data, err := seed.Default()
	if err != nil {
		t.Fatalf("OpenSeededDB() failed: %v", err)
	}
	db, err := dummydb.Open(dummydb.Options{Seed: data})
	if err != nil {
		t.Fatalf("OpenSeededDB() failed: %v", err)
	}
	return db
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateClass(t *testing.T, repo class.Repository, name string, capacity int, createdAt ...time.Time) class.Class {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	c, err := repo.CreateClass(context.Background(), class.Class{
		Name:      name,
		Capacity:  capacity,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return c
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	name, email, className, status string,
	createdAt ...time.Time,
) student.Student {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	s, err := repo.CreateStudent(context.Background(), student.Student{
		Name:      name,
		Email:     email,
		Class:     className,
		Status:    status,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}
