package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/user"
	dummydb "github.com/trezcool/gradebook/storage/database/dummy"
	"github.com/trezcool/gradebook/tests"
)

func setup(t *testing.T, demo bool) (*user.Service, user.Repository) {
	conf := core.NewTestConfig()
	conf.Auth.DemoMode = demo
	repo := dummydb.NewUserRepository(testutil.OpenDB(t))
	return user.NewService(repo, conf), repo
}

func TestNameFromEmail(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{email: "maria@escola.com", want: "maria"},
		{email: "joao", want: "joao"},
		{email: "@escola.com", want: "Teacher"},
		{email: "", want: "Teacher"},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, user.NameFromEmail(tt.email))
		})
	}
}

func TestService_Login_demo(t *testing.T) {
	svc, repo := setup(t, true)
	ctx := context.Background()

	// unknown users are registered on the fly
	usr, err := svc.Login(ctx, user.Credentials{Email: " Maria@Escola.com ", Password: "anything"})
	require.NoError(t, err)
	assert.Equal(t, "maria", usr.Name)
	assert.Equal(t, "maria@escola.com", usr.Email)
	assert.True(t, usr.IsTeacher())
	assert.False(t, usr.LastLogin.IsZero())

	// and found again next time, whatever the password
	again, err := svc.Login(ctx, user.Credentials{Email: "maria@escola.com", Password: "other"})
	require.NoError(t, err)
	assert.Equal(t, usr.ID, again.ID)

	users, err := svc.QueryAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	naughty := testutil.CreateUser(t, repo, "N Dog", "ndog@test.cd", "", []string{user.RoleTeacher}, false)
	_, err = svc.Login(ctx, user.Credentials{Email: naughty.Email, Password: "x"})
	assert.Equal(t, user.ErrAccountDeactivated, err)
}

func TestService_Login_strict(t *testing.T) {
	svc, repo := setup(t, false)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, repo, "Teacher", "teacher@test.cd", "s3cret!", []string{user.RoleTeacher}, true)
	nopwd := testutil.CreateUser(t, repo, "No Pwd", "nopwd@test.cd", "", []string{user.RoleTeacher}, true)

	tests := []struct {
		name    string
		creds   user.Credentials
		wantErr error
	}{
		{name: "unknown user", creds: user.Credentials{Email: "lol@test.cd", Password: "s3cret!"}, wantErr: user.ErrInvalidCredentials},
		{name: "wrong password", creds: user.Credentials{Email: teacher.Email, Password: "lol"}, wantErr: user.ErrInvalidCredentials},
		{name: "user without password", creds: user.Credentials{Email: nopwd.Email, Password: "lol"}, wantErr: user.ErrInvalidCredentials},
		{name: "success", creds: user.Credentials{Email: "TEACHER@test.cd", Password: "s3cret!"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := svc.Login(ctx, tt.creds)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, teacher.ID, usr.ID)
		})
	}
}

func TestService_Create(t *testing.T) {
	svc, _ := setup(t, false)
	ctx := context.Background()
	validate := core.NewValidator(core.NewTranslator())

	nu := user.NewUser{Email: " Prof@Escola.com", Password: "s3cret!"}
	require.NoError(t, nu.Validate(validate))
	assert.Equal(t, "prof", nu.Name)
	assert.Equal(t, []string{user.RoleTeacher}, nu.Roles)

	usr, err := svc.Create(ctx, nu)
	require.NoError(t, err)
	assert.NoError(t, usr.CheckPassword("s3cret!"))

	_, err = svc.Create(ctx, nu)
	assert.True(t, core.IsValidationError(err))
	assert.True(t, errors.Is(err, user.ErrEmailExists))

	bad := user.NewUser{Email: "prof", Roles: []string{"student:"}}
	assert.Error(t, bad.Validate(validate))

	usr, err = svc.SetPassword(ctx, "PROF@escola.com", "n3w-pwd")
	require.NoError(t, err)
	assert.NoError(t, usr.CheckPassword("n3w-pwd"))

	_, err = svc.SetPassword(ctx, "lol@escola.com", "n3w-pwd")
	assert.Equal(t, user.ErrNotFound, err)
}

func TestService_Revoke(t *testing.T) {
	svc, _ := setup(t, true)

	assert.False(t, svc.IsRevoked("abc"))
	svc.Revoke("abc", time.Now().Add(time.Hour))
	assert.True(t, svc.IsRevoked("abc"))

	// expired entries are dropped on the next revocation
	svc.Revoke("old", time.Now().Add(-time.Minute))
	svc.Revoke("def", time.Now().Add(time.Hour))
	assert.False(t, svc.IsRevoked("old"))
	assert.True(t, svc.IsRevoked("abc"))

	svc.Revoke("", time.Now().Add(time.Hour))
	assert.False(t, svc.IsRevoked(""))
}
