package server

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/Leopold1975/stackit/internal/pkg/sanitize"
	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	"github.com/Leopold1975/stackit/internal/web/session"
	"github.com/Leopold1975/stackit/internal/web/views"
	"github.com/dustin/go-humanize"
)

const excerptLen = 100

//go:embed templates/*.html
var templatesFS embed.FS

var pageNames = []string{"home", "search", "question", "form", "login", "register"}

type pages struct {
	byName  map[string]*template.Template
	spinTpl *template.Template
}

// layoutData wraps every page with the shell state and pending toasts.
type layoutData struct {
	Title   string
	Path    string
	Shell   views.ShellSnapshot
	Flashes []session.Flash
	Page    any
}

func newPages(sz *sanitize.Sanitizer) (*pages, error) {
	funcs := template.FuncMap{
		"html": func(raw string) template.HTML {
			return template.HTML(sz.HTML(raw)) //nolint:gosec
		},
		"excerpt": func(raw string) string {
			return sz.Excerpt(raw, excerptLen)
		},
		"ago": func(t time.Time) string {
			return humanize.Time(t)
		},
		"plural": func(n int, word string) string {
			if n == 1 {
				return fmt.Sprintf("%d %s", n, word)
			}

			return fmt.Sprintf("%d %ss", n, word)
		},
		"join": strings.Join,
		"item": newQuestionItem,
		"dict": func(pairs ...any) map[string]any {
			m := make(map[string]any, len(pairs)/2)
			for i := 0; i+1 < len(pairs); i += 2 {
				m[fmt.Sprint(pairs[i])] = pairs[i+1]
			}

			return m
		},
	}

	p := &pages{byName: make(map[string]*template.Template, len(pageNames))}

	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).
			ParseFS(templatesFS, "templates/layout.html", "templates/partials.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s error: %w", name, err)
		}

		p.byName[name] = t
	}

	spin, err := template.ParseFS(templatesFS, "templates/spinner.html")
	if err != nil {
		return nil, fmt.Errorf("parse spinner error: %w", err)
	}

	p.spinTpl = spin

	return p, nil
}

// questionItem is one row of a question list with its vote form target.
type questionItem struct {
	Question models.Question
	Action   string
	Hidden   map[string]string
}

// newQuestionItem takes the hidden vote form fields as name, value pairs.
func newQuestionItem(q models.Question, action string, pairs ...any) questionItem {
	hidden := make(map[string]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		hidden[fmt.Sprint(pairs[i])] = fmt.Sprint(pairs[i+1])
	}

	return questionItem{Question: q, Action: action, Hidden: hidden}
}

func (p *pages) spinner(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	_ = p.spinTpl.Execute(w, nil)
}

// render writes page name inside the layout. Flashes queued for the session are
// consumed here.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name, title string, page any) {
	ws := workspace(r)

	if name != "search" {
		ws.UnmountSearch()
	}

	data := layoutData{
		Title:   title,
		Path:    r.URL.Path,
		Shell:   ws.Shell().Snapshot(),
		Flashes: s.sessions.Flashes(r.Context(), ws.ID),
		Page:    page,
	}

	var buf strings.Builder

	if err := s.pages.byName[name].ExecuteTemplate(&buf, "layout.html", data); err != nil {
		s.lg.Errorf("render %s error: %s", name, err.Error())
		http.Error(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if _, err := w.Write([]byte(buf.String())); err != nil {
		s.lg.Errorf("write %s error: %s", name, err.Error())
	}
}
