package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Leopold1975/stackit/internal/pkg/jwtauth"
	"github.com/Leopold1975/stackit/internal/web/gateway"
	"github.com/Leopold1975/stackit/pkg/logger"
)

const SignedOutMessage = "Successfully signed out"

type Manager struct {
	store Store
	api   *gateway.Client
	lg    logger.Logger
	now   func() time.Time
}

func NewManager(store Store, api *gateway.Client, lg logger.Logger) *Manager {
	return &Manager{
		store: store,
		api:   api,
		lg:    lg,
		now:   time.Now,
	}
}

// Resolve moves c out of loading. An expired token is dropped without asking the API;
// otherwise GET /auth/me decides.
func (m *Manager) Resolve(ctx context.Context, sid string, c *Context) error {
	c.begin()

	rec, err := m.store.Load(ctx, sid)
	if err != nil {
		c.clear()

		if errors.Is(err, ErrNoSession) {
			return nil
		}

		return fmt.Errorf("load session error: %w", err)
	}

	exp, err := jwtauth.ExpiresAt(rec.Token)
	if err != nil || (!exp.IsZero() && !exp.After(m.now())) {
		c.clear()

		return m.drop(ctx, sid)
	}

	u, err := m.api.WithToken(rec.Token).Me(ctx)
	if err != nil {
		c.clear()

		if errors.Is(err, gateway.ErrUnauthorized) || errors.Is(err, gateway.ErrBadRequest) {
			return m.drop(ctx, sid)
		}

		return fmt.Errorf("me error: %w", err)
	}

	c.authenticate(u, rec.Token)

	return nil
}

func (m *Manager) Login(ctx context.Context, sid string, c *Context, username, password string) error {
	s, err := m.api.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	if err := m.store.Save(ctx, sid, Record{Token: s.AccessToken, CreatedAt: m.now()}); err != nil {
		return fmt.Errorf("save session error: %w", err)
	}

	c.authenticate(s.User, s.AccessToken)

	return nil
}

// Register creates the account and signs it in.
func (m *Manager) Register(ctx context.Context, sid string, c *Context, req gateway.RegisterRequest) error {
	if _, err := m.api.Register(ctx, req); err != nil {
		return fmt.Errorf("register error: %w", err)
	}

	return m.Login(ctx, sid, c, req.Username, req.Password)
}

func (m *Manager) Logout(ctx context.Context, sid string, c *Context) error {
	c.clear()

	if err := m.drop(ctx, sid); err != nil {
		return err
	}

	return m.Flash(ctx, sid, FlashSuccess, SignedOutMessage)
}

func (m *Manager) Flash(ctx context.Context, sid, kind, msg string) error {
	if err := m.store.PushFlash(ctx, sid, Flash{Kind: kind, Message: msg}); err != nil {
		return fmt.Errorf("push flash error: %w", err)
	}

	return nil
}

func (m *Manager) Flashes(ctx context.Context, sid string) []Flash {
	flashes, err := m.store.PopFlashes(ctx, sid)
	if err != nil {
		m.lg.Warnf("pop flashes error: %s", err.Error())

		return nil
	}

	return flashes
}

func (m *Manager) drop(ctx context.Context, sid string) error {
	if err := m.store.Delete(ctx, sid); err != nil && !errors.Is(err, ErrNoSession) {
		return fmt.Errorf("delete session error: %w", err)
	}

	return nil
}
