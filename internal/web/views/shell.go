package views

import (
	"context"
	"fmt"
	"sync"

	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	"github.com/Leopold1975/stackit/internal/web/session"
)

// NotificationsLimit is how many notifications the panel shows.
const NotificationsLimit = 20

type ShellSnapshot struct {
	User              models.User
	Authenticated     bool
	ShowAsk           bool
	IsAdmin           bool
	Unread            int
	NotificationsOpen bool
	UserMenuOpen      bool
	Notifications     []models.Notification
}

// Shell is the layout around every page: the notification bell and the user menu.
type Shell struct {
	api API
	c   *session.Context
	bus *PointerBus

	mu            sync.Mutex
	started       bool
	unread        int
	notifications []models.Notification
	notifOpen     bool
	menuOpen      bool
	unobserve     map[string]func()
}

func NewShell(api API, c *session.Context, bus *PointerBus) *Shell {
	return &Shell{
		api:       api,
		c:         c,
		bus:       bus,
		unobserve: make(map[string]func()),
	}
}

// Start loads the unread count for a signed in user once per shell. A failure
// shows zero.
func (s *Shell) Start(ctx context.Context) {
	s.mu.Lock()
	started := s.started
	s.started = true
	s.mu.Unlock()

	if started {
		return
	}

	if _, ok := s.c.User(); !ok {
		s.setUnread(0)

		return
	}

	n, err := s.api.UnreadCount(ctx)
	if err != nil {
		n = 0
	}

	s.setUnread(n)
}

// ToggleNotifications opens or closes the panel. Opening lists the latest
// notifications, marks them all read and zeroes the local counter. A failed list is
// reported with MsgNotificationsError while the panel still opens.
func (s *Shell) ToggleNotifications(ctx context.Context) (toast string, err error) {
	s.mu.Lock()
	open := s.notifOpen
	s.mu.Unlock()

	if open {
		s.closeRegion(RegionNotifications)

		return "", nil
	}

	if _, ok := s.c.User(); !ok {
		return "", nil
	}

	list, err := s.api.ListNotifications(ctx, NotificationsLimit)
	if err != nil {
		toast = MsgNotificationsError
	}

	if err := s.api.MarkAllRead(ctx); err != nil {
		return toast, fmt.Errorf("mark all read error: %w", err)
	}

	s.mu.Lock()
	if list != nil {
		s.notifications = list
	}

	s.unread = 0
	s.notifOpen = true
	s.mu.Unlock()

	s.observe(RegionNotifications)

	return toast, nil
}

func (s *Shell) ToggleUserMenu() {
	s.mu.Lock()
	open := s.menuOpen
	s.menuOpen = !open
	s.mu.Unlock()

	if open {
		s.closeRegion(RegionUserMenu)

		return
	}

	s.observe(RegionUserMenu)
}

// Pointer reports a pointer event on target. Open overlays elsewhere close.
func (s *Shell) Pointer(target string) {
	s.bus.Dispatch(target)
}

func (s *Shell) Snapshot() ShellSnapshot {
	u, ok := s.c.User()

	s.mu.Lock()
	defer s.mu.Unlock()

	return ShellSnapshot{
		User:              u,
		Authenticated:     ok,
		ShowAsk:           ok && !u.IsAdmin(),
		IsAdmin:           ok && u.IsAdmin(),
		Unread:            s.unread,
		NotificationsOpen: s.notifOpen,
		UserMenuOpen:      s.menuOpen,
		Notifications:     append([]models.Notification(nil), s.notifications...),
	}
}

// Close removes every observer the shell registered.
func (s *Shell) Close() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.unobserve))

	for _, fn := range s.unobserve {
		fns = append(fns, fn)
	}

	s.unobserve = make(map[string]func())
	s.notifOpen = false
	s.menuOpen = false
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (s *Shell) observe(region string) {
	unsub := s.bus.Observe(region, func() { s.closeRegion(region) })

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.unobserve[region]; ok {
		old()
	}

	s.unobserve[region] = unsub
}

func (s *Shell) closeRegion(region string) {
	s.mu.Lock()

	switch region {
	case RegionNotifications:
		s.notifOpen = false
	case RegionUserMenu:
		s.menuOpen = false
	}

	unsub := s.unobserve[region]
	delete(s.unobserve, region)
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

func (s *Shell) setUnread(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.unread = n
}
