package adminservice

import (
	"context"
	"errors"
	"testing"

	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	"github.com/Leopold1975/stackit/internal/stackit/repository/questionrepo"
	"github.com/Leopold1975/stackit/internal/stackit/repository/userrepo"
	"github.com/Leopold1975/stackit/internal/stackit/services"
	"github.com/Leopold1975/stackit/pkg/logger"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	users    map[string]models.User
	countErr error
}

func (f *fakeUsers) GetUserByID(_ context.Context, id string) (models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return models.User{}, userrepo.ErrNotFound
	}

	return u, nil
}

func (f *fakeUsers) SetActive(_ context.Context, id string, active bool) error {
	u := f.users[id]
	u.Active = active
	f.users[id] = u

	return nil
}

func (f *fakeUsers) ListUsers(context.Context, int, int) ([]models.User, error) {
	return nil, nil
}

func (f *fakeUsers) CountUsers(context.Context) (userrepo.Counts, error) {
	return userrepo.Counts{Total: 10, Active: 8}, f.countErr
}

type counters struct{}

func (counters) CountQuestions(context.Context) (questionrepo.Counts, error) {
	return questionrepo.Counts{Total: 7, Answered: 3}, nil
}

func (counters) CountAnswers(context.Context) (int, error) {
	return 12, nil
}

func newService() (*AdminService, *fakeUsers) {
	users := &fakeUsers{users: map[string]models.User{
		"u1": {ID: "u1", Username: "ada", Role: models.RoleUser, Active: true},
		"u2": {ID: "u2", Username: "root", Role: models.RoleAdmin, Active: true},
	}}

	return New(users, counters{}, counters{}, logger.NewNop()), users
}

func TestStats(t *testing.T) {
	as, users := newService()

	s, err := as.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, models.Stats{
		TotalUsers:          10,
		ActiveUsers:         8,
		BannedUsers:         2,
		TotalQuestions:      7,
		TotalAnswers:        12,
		AnsweredQuestions:   3,
		UnansweredQuestions: 4,
	}, s)

	users.countErr = errors.New("db down")

	_, err = as.Stats(context.Background())
	require.Error(t, err)
}

func TestBan(t *testing.T) {
	as, users := newService()
	admin := users.users["u2"]

	require.NoError(t, as.Ban(context.Background(), admin, "u1"))
	require.False(t, users.users["u1"].Active)

	require.NoError(t, as.Unban(context.Background(), admin, "u1"))
	require.True(t, users.users["u1"].Active)

	require.ErrorIs(t, as.Ban(context.Background(), admin, "u2"), services.ErrForbidden)
	require.ErrorIs(t, as.Ban(context.Background(), admin, "u9"), services.ErrNotFound)
}

func TestUsersBounds(t *testing.T) {
	as, _ := newService()

	_, err := as.Users(context.Background(), 0, 0)
	require.NoError(t, err)

	_, err = as.Users(context.Background(), 0, 101)
	require.ErrorIs(t, err, services.ErrBadRequest)
}
