package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Leopold1975/stackit/internal/pkg/config"
	"github.com/Leopold1975/stackit/internal/pkg/jwtauth"
	"github.com/Leopold1975/stackit/internal/pkg/validation"
	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	"github.com/Leopold1975/stackit/internal/web/gateway"
	"github.com/Leopold1975/stackit/internal/web/session"
	"github.com/Leopold1975/stackit/internal/web/session/redisstore"
	"github.com/Leopold1975/stackit/internal/web/views"
	"github.com/Leopold1975/stackit/pkg/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

var ada = models.User{ID: "u1", Username: "ada", Email: "ada@example.com", Role: models.RoleUser, Active: true}

// fakeForum serves the slice of the forum API the web shell calls.
type fakeForum struct {
	mu    sync.Mutex
	calls []string
	token string
}

func (f *fakeForum) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
}

func (f *fakeForum) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.calls...)
}

func (f *fakeForum) count(call string) int {
	n := 0

	for _, c := range f.Calls() {
		if c == call {
			n++
		}
	}

	return n
}

func (f *fakeForum) authed(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer "+f.token
}

func (f *fakeForum) handler() http.Handler {
	question := models.Question{
		ID: "q1", Title: "Why is my map nil?", Description: "<p>Writing to it panics every time.</p>",
		Tags: []string{"go"}, AuthorID: ada.ID, AuthorUsername: ada.Username, CreatedAt: time.Now(),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("password") != "hunter22" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Incorrect username or password"}`)

			return
		}

		writeTestJSON(w, gateway.Session{AccessToken: f.token, TokenType: "bearer", User: ada})
	})

	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		if !f.authed(r) {
			w.WriteHeader(http.StatusUnauthorized)

			return
		}

		writeTestJSON(w, ada)
	})

	mux.HandleFunc("GET /questions/{$}", func(w http.ResponseWriter, _ *http.Request) {
		writeTestJSON(w, []models.Question{question})
	})

	mux.HandleFunc("GET /questions/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != question.ID {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"detail":"Question not found"}`)

			return
		}

		writeTestJSON(w, question)
	})

	mux.HandleFunc("GET /answers/question/{id}", func(w http.ResponseWriter, _ *http.Request) {
		writeTestJSON(w, []models.Answer{})
	})

	mux.HandleFunc("DELETE /questions/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !f.authed(r) {
			w.WriteHeader(http.StatusUnauthorized)

			return
		}

		writeTestJSON(w, map[string]string{"message": "Question deleted successfully"})
	})

	mux.HandleFunc("GET /notifications/unread-count", func(w http.ResponseWriter, _ *http.Request) {
		writeTestJSON(w, map[string]int{"unread_count": 2})
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		mux.ServeHTTP(w, r)
	})
}

func writeTestJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type WebSuite struct {
	suite.Suite
	forum      *fakeForum
	api        *httptest.Server
	web        *httptest.Server
	rdb        *redis.Client
	client     *http.Client
	workspaces *views.Registry
}

func TestWeb(t *testing.T) {
	suite.Run(t, new(WebSuite))
}

func (ws *WebSuite) SetupTest() {
	token, err := jwtauth.GetToken(ada, time.Hour, "secret")
	ws.Require().NoError(err, "expected %v\tactual %v", nil, err)

	ws.forum = &fakeForum{token: token}
	ws.api = httptest.NewServer(ws.forum.handler())

	mr := miniredis.RunT(ws.T())
	ws.rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()}) //nolint:exhaustruct

	api := gateway.New(ws.api.URL, time.Second)
	lg := logger.NewNop()

	sessions := session.NewManager(redisstore.New(ws.rdb, time.Hour), api, lg)
	ws.workspaces = views.NewRegistry(views.Deps{
		API:         func(token string) views.API { return api.WithToken(token) },
		Validator:   validation.New(),
		SearchDelay: 10 * time.Millisecond,
	}, 16, time.Hour)

	srv, err := New(config.Server{Addr: ":0", IdleTimeout: time.Second}, sessions, ws.workspaces, lg)
	ws.Require().NoError(err, "expected %v\tactual %v", nil, err)

	ws.web = httptest.NewServer(srv.Handler())

	jar, err := cookiejar.New(nil)
	ws.Require().NoError(err, "expected %v\tactual %v", nil, err)

	ws.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (ws *WebSuite) TearDownTest() {
	ws.web.Close()
	ws.api.Close()
	ws.rdb.Close()
}

func (ws *WebSuite) get(path string) (*http.Response, string) {
	resp, err := ws.client.Get(ws.web.URL + path)
	ws.Require().NoError(err, "expected %v\tactual %v", nil, err)

	return ws.read(resp)
}

func (ws *WebSuite) post(path string, form url.Values) (*http.Response, string) {
	resp, err := ws.client.PostForm(ws.web.URL+path, form)
	ws.Require().NoError(err, "expected %v\tactual %v", nil, err)

	return ws.read(resp)
}

func (ws *WebSuite) read(resp *http.Response) (*http.Response, string) {
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	ws.Require().NoError(err, "expected %v\tactual %v", nil, err)

	return resp, string(b)
}

func (ws *WebSuite) login() {
	resp, _ := ws.post("/login", url.Values{"username": {"ada"}, "password": {"hunter22"}})
	ws.Require().Equal(http.StatusSeeOther, resp.StatusCode)
	ws.Require().Equal("/", resp.Header.Get("Location"))
}

func (ws *WebSuite) TestHomeAnonymous() {
	resp, body := ws.get("/")

	ws.Require().Equal(http.StatusOK, resp.StatusCode)
	ws.Require().Contains(body, "Why is my map nil?")
	ws.Require().Contains(body, "Writing to it panics every time.")
	ws.Require().NotContains(body, "Ask Question")
	ws.Require().Zero(ws.forum.count("GET /notifications/unread-count"))

	var sid *http.Cookie

	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			sid = c
		}
	}

	ws.Require().NotNil(sid)
	ws.Require().True(sid.HttpOnly)
}

func (ws *WebSuite) TestProtectedRedirects() {
	resp, _ := ws.get("/ask")
	ws.Require().Equal(http.StatusSeeOther, resp.StatusCode)
	ws.Require().Equal("/login", resp.Header.Get("Location"))

	resp, _ = ws.get("/no/such/page")
	ws.Require().Equal(http.StatusFound, resp.StatusCode)
	ws.Require().Equal("/", resp.Header.Get("Location"))
}

func (ws *WebSuite) TestLoginFlow() {
	resp, body := ws.post("/login", url.Values{"username": {"ada"}, "password": {"wrong"}})
	ws.Require().Equal(http.StatusOK, resp.StatusCode)
	ws.Require().Contains(body, "Incorrect username or password")

	ws.login()

	_, body = ws.get("/")
	ws.Require().Contains(body, "Welcome back!")
	ws.Require().Contains(body, "Ask Question")
	ws.Require().Equal(1, ws.forum.count("GET /notifications/unread-count"))

	_, body = ws.get("/")
	ws.Require().NotContains(body, "Welcome back!", "flashes show once")

	resp, _ = ws.get("/login")
	ws.Require().Equal(http.StatusSeeOther, resp.StatusCode)
	ws.Require().Equal("/", resp.Header.Get("Location"))

	resp, _ = ws.post("/logout", nil)
	ws.Require().Equal("/login", resp.Header.Get("Location"))
	ws.Require().Zero(ws.workspaces.Len(), "logout closes the workspace")

	_, body = ws.get("/login")
	ws.Require().Contains(body, session.SignedOutMessage)
}

func (ws *WebSuite) TestMissingQuestion() {
	resp, _ := ws.get("/question/nope")
	ws.Require().Equal(http.StatusSeeOther, resp.StatusCode)
	ws.Require().Equal("/", resp.Header.Get("Location"))

	_, body := ws.get("/")
	ws.Require().Contains(body, views.MsgLoadFailed)
}

func (ws *WebSuite) TestDeleteNeedsConfirmation() {
	ws.login()

	resp, body := ws.get("/question/q1")
	ws.Require().Equal(http.StatusOK, resp.StatusCode)
	ws.Require().Contains(body, "Why is my map nil?")

	resp, _ = ws.post("/question/q1/delete", url.Values{"kind": {views.TargetQuestion}})
	ws.Require().Equal("/question/q1", resp.Header.Get("Location"))
	ws.Require().Zero(ws.forum.count("DELETE /questions/q1"))

	resp, _ = ws.post("/question/q1/delete/confirm", nil)
	ws.Require().Equal("/", resp.Header.Get("Location"))
	ws.Require().Equal(1, ws.forum.count("DELETE /questions/q1"))

	_, body = ws.get("/")
	ws.Require().Contains(body, "Question deleted successfully!")

	resp, _ = ws.post("/question/q1/delete/confirm", nil)
	ws.Require().Equal("/question/q1", resp.Header.Get("Location"))
	ws.Require().Equal(1, ws.forum.count("DELETE /questions/q1"), "nothing pending, nothing sent")
}

func (ws *WebSuite) TestAskSubmitNeedsTag() {
	ws.login()

	resp, body := ws.get("/ask")
	ws.Require().Equal(http.StatusOK, resp.StatusCode)
	ws.Require().Contains(body, `id="submit" disabled>Post Question`)

	_, body = ws.post("/ask", url.Values{
		"action":    {actionTag},
		"key":       {views.KeyEnter},
		"tag_input": {"go"},
		"title":     {"Why is my map nil?"},
	})
	ws.Require().Contains(body, `id="submit">Post Question`)
	ws.Require().Contains(body, "var hasTags = true")
}

func (ws *WebSuite) TestConfirmDeleteFromAnotherQuestion() {
	ws.login()

	ws.get("/question/q1")

	resp, _ := ws.post("/question/q1/delete", url.Values{"kind": {views.TargetQuestion}})
	ws.Require().Equal("/question/q1", resp.Header.Get("Location"))

	resp, _ = ws.post("/question/q2/delete/confirm", nil)
	ws.Require().Equal("/question/q2", resp.Header.Get("Location"))
	ws.Require().Zero(ws.forum.count("DELETE /questions/q1"))
	ws.Require().Zero(ws.forum.count("DELETE /questions/q2"))

	resp, _ = ws.post("/question/q1/delete/confirm", nil)
	ws.Require().Equal("/", resp.Header.Get("Location"))
	ws.Require().Equal(1, ws.forum.count("DELETE /questions/q1"))
}

func (ws *WebSuite) TestSearchStreamResetsWhenAnotherTabLeaves() {
	resp, _ := ws.get("/search?q=nil")
	ws.Require().Equal(http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ws.web.URL+"/search/events", nil)
	ws.Require().NoError(err, "expected %v\tactual %v", nil, err)

	stream, err := ws.client.Do(req)
	ws.Require().NoError(err, "expected %v\tactual %v", nil, err)
	defer stream.Body.Close()

	ws.Require().Equal("text/event-stream", stream.Header.Get("Content-Type"))

	// Another tab of the same session opens the home page.
	resp, _ = ws.get("/")
	ws.Require().Equal(http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(stream.Body)
	ws.Require().NoError(err, "stream did not end: %v", err)
	ws.Require().Contains(string(body), "retry: 500")
	ws.Require().Contains(string(body), "event: reset")

	// The reconnected stream follows the replacement view.
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, ws.web.URL+"/search/events", nil)
	ws.Require().NoError(err, "expected %v\tactual %v", nil, err)

	again, err := ws.client.Do(req)
	ws.Require().NoError(err, "expected %v\tactual %v", nil, err)
	defer again.Body.Close()

	resp, _ = ws.post("/search/live", url.Values{"q": {"nil map"}, "seq": {"7"}})
	ws.Require().Equal(http.StatusNoContent, resp.StatusCode)

	reader := bufio.NewReader(again.Body)

	for {
		line, err := reader.ReadString('\n')
		ws.Require().NoError(err, "no results on the reconnected stream: %v", err)

		if strings.HasPrefix(line, "event: results") {
			break
		}
	}
}

func (ws *WebSuite) TestHomeSearchRedirect() {
	resp, _ := ws.get("/?q=" + url.QueryEscape("nil map"))

	ws.Require().Equal(http.StatusSeeOther, resp.StatusCode)
	ws.Require().True(strings.HasPrefix(resp.Header.Get("Location"), "/search?q=nil"))
}
