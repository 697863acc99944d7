package authservice

import (
	"context"
	"testing"
	"time"

	"github.com/Leopold1975/stackit/internal/pkg/config"
	"github.com/Leopold1975/stackit/internal/pkg/jwtauth"
	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	"github.com/Leopold1975/stackit/internal/stackit/repository/userrepo"
	"github.com/Leopold1975/stackit/internal/stackit/services"
	"github.com/stretchr/testify/suite"
)

type fakeUsers struct {
	byID map[string]models.User
}

func (f *fakeUsers) CreateUser(_ context.Context, u models.User) error {
	f.byID[u.ID] = u

	return nil
}

func (f *fakeUsers) GetUser(_ context.Context, username string) (models.User, error) {
	for _, u := range f.byID {
		if u.Username == username {
			return u, nil
		}
	}

	return models.User{}, userrepo.ErrNotFound
}

func (f *fakeUsers) GetUserByID(_ context.Context, id string) (models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return models.User{}, userrepo.ErrNotFound
	}

	return u, nil
}

func (f *fakeUsers) FindConflict(_ context.Context, username, email, excludeID string) (models.User, error) {
	for _, u := range f.byID {
		if u.ID != excludeID && (u.Username == username || u.Email == email) {
			return u, nil
		}
	}

	return models.User{}, userrepo.ErrNotFound
}

func (f *fakeUsers) UpdateUser(_ context.Context, u models.User) error {
	f.byID[u.ID] = u

	return nil
}

type AuthSuite struct {
	suite.Suite
	users *fakeUsers
	as    *AuthService
}

func TestAuthService(t *testing.T) {
	suite.Run(t, new(AuthSuite))
}

func (as *AuthSuite) SetupTest() {
	as.users = &fakeUsers{byID: map[string]models.User{}}
	as.as = New(as.users, config.Auth{TTL: time.Hour, Secret: "secret"})
}

func (as *AuthSuite) register(username, email string) models.User {
	u, err := as.as.Register(context.Background(), RegisterRequest{
		Username: username, Email: email, FullName: "Ada L", Password: "hunter22",
	})
	as.Require().NoError(err, "expected %v\tactual %v", nil, err)

	return u
}

func (as *AuthSuite) TestRegisterAndLogin() {
	u := as.register("ada", "ada@example.com")
	as.Require().Equal(models.RoleUser, u.Role)
	as.Require().True(u.Active)
	as.Require().NotEqual("hunter22", u.PasswordHash)

	resp, err := as.as.Login(context.Background(), "ada", "hunter22")
	as.Require().NoError(err, "expected %v\tactual %v", nil, err)
	as.Require().Equal("bearer", resp.TokenType)
	as.Require().Equal(u.ID, resp.User.ID)

	claims, err := jwtauth.ValidateToken(resp.AccessToken, "secret")
	as.Require().NoError(err, "expected %v\tactual %v", nil, err)
	as.Require().Equal(u.ID, claims.Subject)

	got, err := as.as.Auth(context.Background(), resp.AccessToken)
	as.Require().NoError(err, "expected %v\tactual %v", nil, err)
	as.Require().Equal("ada", got.Username)
}

func (as *AuthSuite) TestRegisterConflicts() {
	as.register("ada", "ada@example.com")

	_, err := as.as.Register(context.Background(), RegisterRequest{Username: "ada", Email: "x@example.com", Password: "hunter22"})
	as.Require().ErrorIs(err, services.ErrConflict)
	as.Require().Equal("Username already registered", err.Error())

	_, err = as.as.Register(context.Background(), RegisterRequest{Username: "bob", Email: "ada@example.com", Password: "hunter22"})
	as.Require().ErrorIs(err, services.ErrConflict)
	as.Require().Equal("Email already registered", err.Error())
}

func (as *AuthSuite) TestLoginFailures() {
	u := as.register("ada", "ada@example.com")

	_, err := as.as.Login(context.Background(), "ada", "wrong")
	as.Require().ErrorIs(err, services.ErrUnauthorized)

	_, err = as.as.Login(context.Background(), "nobody", "hunter22")
	as.Require().ErrorIs(err, services.ErrUnauthorized)

	u.Active = false
	as.users.byID[u.ID] = u

	_, err = as.as.Login(context.Background(), "ada", "hunter22")
	as.Require().ErrorIs(err, services.ErrInactive)
}

func (as *AuthSuite) TestAuthRejects() {
	_, err := as.as.Auth(context.Background(), "garbage")
	as.Require().ErrorIs(err, services.ErrUnauthorized)

	ghost, err := jwtauth.GetToken(models.User{ID: "ghost"}, time.Hour, "secret")
	as.Require().NoError(err, "expected %v\tactual %v", nil, err)

	_, err = as.as.Auth(context.Background(), ghost)
	as.Require().ErrorIs(err, services.ErrUnauthorized)
}

func (as *AuthSuite) TestEnsureAdminOnce() {
	req := RegisterRequest{Username: "root", Email: "root@example.com", FullName: "Root", Password: "changeme"}

	as.Require().NoError(as.as.EnsureAdmin(context.Background(), req))
	as.Require().NoError(as.as.EnsureAdmin(context.Background(), req))
	as.Require().Len(as.users.byID, 1)

	admin, err := as.users.GetUser(context.Background(), "root")
	as.Require().NoError(err, "expected %v\tactual %v", nil, err)
	as.Require().True(admin.IsAdmin())
}

func (as *AuthSuite) TestUpdateMe() {
	u := as.register("ada", "ada@example.com")
	as.register("bob", "bob@example.com")

	_, err := as.as.UpdateMe(context.Background(), u, UpdateRequest{})
	as.Require().ErrorIs(err, services.ErrBadRequest)

	taken := "bob"
	_, err = as.as.UpdateMe(context.Background(), u, UpdateRequest{Username: &taken})
	as.Require().ErrorIs(err, services.ErrConflict)

	name := "Ada Lovelace"
	got, err := as.as.UpdateMe(context.Background(), u, UpdateRequest{FullName: &name})
	as.Require().NoError(err, "expected %v\tactual %v", nil, err)
	as.Require().Equal("Ada Lovelace", got.FullName)
	as.Require().Equal("ada", got.Username)
}
