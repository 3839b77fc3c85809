package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/gradebook/core/user"
)

type userRepository struct {
	db *DB
	t  *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db, t: db.user}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.t.table))
	for _, u := range repo.t.table {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string) error {
	if err := repo.db.wait(ctx); err != nil {
		return err
	}
	repo.t.RLock()
	defer repo.t.RUnlock()

	for _, usr := range repo.t.table {
		if usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if err := repo.db.wait(ctx); err != nil {
		return user.User{}, err
	}
	repo.t.Lock()
	defer repo.t.Unlock()
	return repo.t.insert(usr), nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	if err := repo.db.wait(ctx); err != nil {
		return nil, err
	}
	repo.t.RLock()
	defer repo.t.RUnlock()
	return repo.query(), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	if err := repo.db.wait(ctx); err != nil {
		return user.User{}, err
	}
	repo.t.RLock()
	defer repo.t.RUnlock()

	if usr, ok := repo.t.table[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	if err := repo.db.wait(ctx); err != nil {
		return user.User{}, err
	}
	repo.t.RLock()
	defer repo.t.RUnlock()

	for _, usr := range repo.t.table {
		if usr.Email == email {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) SetUserLastLogin(ctx context.Context, id int, at time.Time) (user.User, error) {
	return repo.update(ctx, id, func(usr *user.User) { usr.LastLogin = at })
}

func (repo *userRepository) SetUserPassword(ctx context.Context, id int, hash []byte) (user.User, error) {
	return repo.update(ctx, id, func(usr *user.User) {
		usr.PasswordHash = hash
		usr.UpdatedAt = time.Now().UTC()
	})
}

func (repo *userRepository) update(ctx context.Context, id int, apply func(*user.User)) (user.User, error) {
	if err := repo.db.wait(ctx); err != nil {
		return user.User{}, err
	}
	repo.t.Lock()
	defer repo.t.Unlock()

	usr, ok := repo.t.table[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	apply(usr)
	return *usr, nil
}
