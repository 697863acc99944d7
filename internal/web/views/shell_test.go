package views

import (
	"context"
	"errors"
	"testing"

	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	"github.com/Leopold1975/stackit/internal/web/session"
	"github.com/stretchr/testify/require"
)

func signedIn(role string) *session.Context {
	return session.NewAuthenticated(models.User{ID: "u1", Username: "ada", Role: role}, "tok")
}

func TestShellStart(t *testing.T) {
	api := &fakeAPI{unread: 3}
	s := NewShell(api, signedIn(models.RoleUser), NewPointerBus())

	s.Start(context.Background())
	s.Start(context.Background())

	require.Equal(t, 3, s.Snapshot().Unread)
	require.Equal(t, []string{"GET /notifications/unread-count"}, api.Calls())

	failing := NewShell(&fakeAPI{unread: 7, unreadErr: errors.New("down")}, signedIn(models.RoleUser), NewPointerBus())
	failing.Start(context.Background())
	require.Zero(t, failing.Snapshot().Unread)

	anon := &fakeAPI{unread: 7}
	NewShell(anon, session.NewContext(), NewPointerBus()).Start(context.Background())
	require.Empty(t, anon.Calls())
}

func TestShellOpenNotifications(t *testing.T) {
	api := &fakeAPI{
		unread:        2,
		notifications: []models.Notification{{ID: "n1", Title: "New answer"}, {ID: "n2", Title: "Upvote"}},
	}
	s := NewShell(api, signedIn(models.RoleUser), NewPointerBus())
	s.Start(context.Background())

	toast, err := s.ToggleNotifications(context.Background())
	require.NoError(t, err)
	require.Empty(t, toast)

	snap := s.Snapshot()
	require.True(t, snap.NotificationsOpen)
	require.Zero(t, snap.Unread)
	require.Len(t, snap.Notifications, 2)
	require.Equal(t, []string{
		"GET /notifications/unread-count",
		"GET /notifications/?limit=20",
		"POST /notifications/mark-all-read",
	}, api.Calls())

	_, err = s.ToggleNotifications(context.Background())
	require.NoError(t, err)
	require.False(t, s.Snapshot().NotificationsOpen)
	require.Len(t, api.Calls(), 3, "closing sends nothing")
}

func TestShellNotificationFailures(t *testing.T) {
	api := &fakeAPI{unread: 4, notificationsErr: errors.New("timeout")}
	s := NewShell(api, signedIn(models.RoleUser), NewPointerBus())
	s.Start(context.Background())

	toast, err := s.ToggleNotifications(context.Background())
	require.NoError(t, err)
	require.Equal(t, MsgNotificationsError, toast)
	require.True(t, s.Snapshot().NotificationsOpen)

	api = &fakeAPI{unread: 4, markErr: errors.New("timeout")}
	s = NewShell(api, signedIn(models.RoleUser), NewPointerBus())
	s.Start(context.Background())

	_, err = s.ToggleNotifications(context.Background())
	require.Error(t, err)

	snap := s.Snapshot()
	require.False(t, snap.NotificationsOpen)
	require.Equal(t, 4, snap.Unread)
}

func TestShellPointerDismissal(t *testing.T) {
	bus := NewPointerBus()
	s := NewShell(&fakeAPI{}, signedIn(models.RoleUser), bus)

	_, err := s.ToggleNotifications(context.Background())
	require.NoError(t, err)
	s.ToggleUserMenu()
	require.Equal(t, 2, bus.Len())

	s.Pointer(RegionUserMenu)

	snap := s.Snapshot()
	require.False(t, snap.NotificationsOpen, "click outside the panel closes it")
	require.True(t, snap.UserMenuOpen)
	require.Equal(t, 1, bus.Len())

	s.Pointer("page")
	require.False(t, s.Snapshot().UserMenuOpen)
	require.Zero(t, bus.Len())
}

func TestShellCloseUnobserves(t *testing.T) {
	bus := NewPointerBus()
	s := NewShell(&fakeAPI{}, signedIn(models.RoleUser), bus)

	s.ToggleUserMenu()
	require.Equal(t, 1, bus.Len())

	s.Close()
	require.Zero(t, bus.Len())
	require.False(t, s.Snapshot().UserMenuOpen)
}

func TestShellAskLink(t *testing.T) {
	require.True(t, NewShell(&fakeAPI{}, signedIn(models.RoleUser), NewPointerBus()).Snapshot().ShowAsk)

	admin := NewShell(&fakeAPI{}, signedIn(models.RoleAdmin), NewPointerBus()).Snapshot()
	require.False(t, admin.ShowAsk)
	require.True(t, admin.IsAdmin)

	require.False(t, NewShell(&fakeAPI{}, session.NewContext(), NewPointerBus()).Snapshot().ShowAsk)
}

func TestPointerBusUnsubscribeTwice(t *testing.T) {
	bus := NewPointerBus()

	var hits int

	unsub := bus.Observe(RegionUserMenu, func() { hits++ })

	bus.Dispatch(RegionUserMenu)
	require.Zero(t, hits)

	bus.Dispatch(RegionNotifications)
	require.Equal(t, 1, hits)

	unsub()
	unsub()
	bus.Dispatch("page")
	require.Equal(t, 1, hits)
	require.Zero(t, bus.Len())
}
