package user

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account deactivated")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string) error
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		SetUserLastLogin(ctx context.Context, id int, at time.Time) (User, error)
		SetUserPassword(ctx context.Context, id int, hash []byte) (User, error)
	}

	Service struct {
		repo     Repository
		demoMode bool
		revoked  *revocationList
	}
)

// NewService returns the user service. In demo mode Login accepts any credentials.
func NewService(repo Repository, conf *core.Config) *Service {
	return &Service{
		repo:     repo,
		demoMode: conf.Auth.DemoMode,
		revoked:  newRevocationList(),
	}
}

func (svc *Service) DemoMode() bool { return svc.demoMode }

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := svc.repo.CheckEmailUniqueness(ctx, nu.Email); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return User{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return User{}, errors.Wrap(err, "checking email uniqueness")
	}

	now := time.Now().UTC()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		IsActive:  true,
		Roles:     nu.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if nu.Password != "" {
		if err := usr.SetPassword(nu.Password); err != nil {
			return User{}, errors.Wrap(err, "hashing password")
		}
	}
	return svc.repo.CreateUser(ctx, usr)
}

// Login checks creds and records the login time.
//
// In demo mode an unknown email is registered on the fly as a teacher named after the
// local part of the address, and the password is not checked. Otherwise the user must
// exist and the password must match its hash.
func (svc *Service) Login(ctx context.Context, creds Credentials) (User, error) {
	email := core.CleanString(creds.Email, true /* lower */)

	usr, err := svc.repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if !svc.demoMode && (usr.PasswordHash == nil || usr.CheckPassword(creds.Password) != nil) {
			return User{}, ErrInvalidCredentials
		}
	case errors.Cause(err) == ErrNotFound:
		if !svc.demoMode {
			return User{}, ErrInvalidCredentials
		}
		usr, err = svc.Create(ctx, NewUser{Name: NameFromEmail(email), Email: email, Roles: []string{RoleTeacher}})
		if err != nil {
			return User{}, errors.Wrap(err, "registering demo user")
		}
	default:
		return User{}, errors.Wrap(err, "finding user by email")
	}

	if !usr.IsActive {
		return User{}, ErrAccountDeactivated
	}
	usr, err = svc.repo.SetUserLastLogin(ctx, usr.ID, time.Now().UTC())
	if err != nil {
		return User{}, errors.Wrap(err, "setting lastLogin")
	}
	return usr, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) SetPassword(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.SetUserPassword(ctx, usr.ID, usr.PasswordHash)
}

// Revoke invalidates the token identified by jti until it expires.
func (svc *Service) Revoke(jti string, expiresAt time.Time) {
	svc.revoked.add(jti, expiresAt)
}

func (svc *Service) IsRevoked(jti string) bool {
	return svc.revoked.has(jti)
}
