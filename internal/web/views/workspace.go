package views

import (
	"sync"
	"time"

	"github.com/Leopold1975/stackit/internal/pkg/validation"
	"github.com/Leopold1975/stackit/internal/web/session"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Deps are shared by every workspace.
type Deps struct {
	// API returns a client that authenticates with token; an empty token is anonymous.
	API         func(token string) API
	Validator   *validation.Validator
	SearchDelay time.Duration
}

// Workspace holds everything one browser session has mounted: its auth context, an
// API client carrying its token, the views and the shell.
type Workspace struct {
	ID      string
	Session *session.Context

	deps Deps

	mu     sync.Mutex
	token  string
	api    API
	bus    *PointerBus
	shell  *Shell
	list   *ListView
	stats  *StatsPanel
	search *SearchView
	detail *DetailView
	form   *QuestionForm
}

func NewWorkspace(id string, deps Deps) *Workspace {
	w := &Workspace{
		ID:      id,
		Session: session.NewContext(),
		deps:    deps,
		api:     deps.API(""),
		bus:     NewPointerBus(),
	}
	w.shell = NewShell(w.api, w.Session, w.bus)

	return w
}

// Bind points the workspace at the resolved session token. When the token changes
// every mounted view is closed, since its cached data belongs to another identity.
func (w *Workspace) Bind(token string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if token == w.token {
		return
	}

	w.closeLocked()

	w.token = token
	w.api = w.deps.API(token)
	w.bus = NewPointerBus()
	w.shell = NewShell(w.api, w.Session, w.bus)
}

func (w *Workspace) Shell() *Shell {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.shell
}

func (w *Workspace) List() *ListView {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.list == nil {
		w.list = NewListView(w.api)
	}

	return w.list
}

func (w *Workspace) Stats() *StatsPanel {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stats == nil {
		w.stats = NewStatsPanel(w.api)
	}

	return w.stats
}

func (w *Workspace) Search() *SearchView {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.search == nil {
		w.search = NewSearchView(w.api, w.deps.SearchDelay)
	}

	return w.search
}

// UnmountSearch stops the search view's timer and in-flight fetch.
func (w *Workspace) UnmountSearch() {
	w.mu.Lock()
	s := w.search
	w.search = nil
	w.mu.Unlock()

	if s != nil {
		s.Unmount()
	}
}

func (w *Workspace) Detail() *DetailView {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.detail == nil {
		w.detail = NewDetailView(w.api)
	}

	return w.detail
}

// AskForm returns the draft ask form, creating it if the last one was submitted.
func (w *Workspace) AskForm() *QuestionForm {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.form == nil || w.form.mode != AskMode {
		w.form = NewAskForm(w.api, w.deps.Validator)
	}

	return w.form
}

// EditForm returns the edit form for id. It starts unloaded.
func (w *Workspace) EditForm(id string) *QuestionForm {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.form == nil || w.form.mode != EditMode || w.form.questionID != id {
		w.form = NewEditForm(w.api, w.deps.Validator, id)
	}

	return w.form
}

// ResetForm drops the current form after a successful submit.
func (w *Workspace) ResetForm() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.form = nil
}

func (w *Workspace) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closeLocked()
}

func (w *Workspace) closeLocked() {
	if w.search != nil {
		w.search.Unmount()
	}

	if w.list != nil {
		w.list.Close()
	}

	if w.stats != nil {
		w.stats.Close()
	}

	if w.detail != nil {
		w.detail.Close()
	}

	w.shell.Close()

	w.search, w.list, w.stats, w.detail, w.form = nil, nil, nil, nil, nil
}

// Registry keeps workspaces by session id. Idle ones expire and are closed.
type Registry struct {
	deps Deps

	mu  sync.Mutex
	lru *expirable.LRU[string, *Workspace]
}

func NewRegistry(deps Deps, size int, ttl time.Duration) *Registry {
	return &Registry{
		deps: deps,
		lru: expirable.NewLRU(size, func(_ string, w *Workspace) {
			w.Close()
		}, ttl),
	}
}

// Get returns the workspace of id, creating it on first use.
func (r *Registry) Get(id string) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w, ok := r.lru.Get(id); ok {
		return w
	}

	w := NewWorkspace(id, r.deps)
	r.lru.Add(id, w)

	return w
}

// Drop closes the workspace of id and forgets it.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lru.Remove(id)
}

func (r *Registry) Len() int {
	return r.lru.Len()
}

// Close closes every workspace.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lru.Purge()
}
