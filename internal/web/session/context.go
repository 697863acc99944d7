// Package session owns the per-browser auth context and its persistence.
package session

import (
	"sync"

	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
)

type State int

const (
	Uninitialized State = iota
	Loading
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "uninitialized"
	}
}

// Context is the auth state of one browser session. Views receive it explicitly
// and only read it; the Manager drives its transitions.
type Context struct {
	mu    sync.RWMutex
	state State
	user  models.User
	token string
}

func NewContext() *Context {
	return &Context{}
}

// NewAuthenticated returns a context already resolved to u.
func NewAuthenticated(u models.User, token string) *Context {
	c := &Context{}
	c.authenticate(u, token)

	return c
}

func (c *Context) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state
}

// Loading is true until the session has been resolved one way or the other.
func (c *Context) Loading() bool {
	s := c.State()

	return s == Uninitialized || s == Loading
}

func (c *Context) User() (models.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.user, c.state == Authenticated
}

func (c *Context) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.token
}

func (c *Context) IsAdmin() bool {
	u, ok := c.User()

	return ok && u.IsAdmin()
}

func (c *Context) begin() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = Loading
}

func (c *Context) authenticate(u models.User, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = Authenticated
	c.user = u
	c.token = token
}

func (c *Context) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = Anonymous
	c.user = models.User{}
	c.token = ""
}
