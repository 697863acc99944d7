// Package gateway is the typed HTTP client the web shell uses to reach the forum API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	"github.com/oapi-codegen/runtime"
)

const (
	answersPageSize = 100
	// maxBodySize caps how much of a response is read.
	maxBodySize = 4 << 20
)

// Client is safe for concurrent use. WithToken derives a client bound to one session.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

type Session struct {
	AccessToken string      `json:"access_token"` //nolint:tagliatelle
	TokenType   string      `json:"token_type"`   //nolint:tagliatelle
	User        models.User `json:"user"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"` //nolint:tagliatelle
	Password string `json:"password"`
}

// ListParams selects a page of questions.
type ListParams struct {
	SortBy    string
	SortOrder string
	Limit     int
	Search    string
}

func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout}) //nolint:exhaustruct
}

func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token

	return &cp
}

func (c *Client) Token() string {
	return c.token
}

// Login posts the OAuth2 password form.
func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var s Session

	err := c.do(ctx, http.MethodPost, "/auth/login", nil,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &s)
	if err != nil {
		return Session{}, fmt.Errorf("login error: %w", err)
	}

	return s, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (models.User, error) {
	var u models.User

	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", nil, req, &u); err != nil {
		return models.User{}, fmt.Errorf("register error: %w", err)
	}

	return u, nil
}

func (c *Client) Me(ctx context.Context) (models.User, error) {
	var u models.User

	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, nil, &u); err != nil {
		return models.User{}, fmt.Errorf("me error: %w", err)
	}

	return u, nil
}

func (c *Client) ListQuestions(ctx context.Context, params ListParams) ([]models.Question, error) {
	query := url.Values{}

	styled := []struct {
		name  string
		value interface{}
		set   bool
	}{
		{"sort_by", params.SortBy, params.SortBy != ""},
		{"sort_order", params.SortOrder, params.SortOrder != ""},
		{"limit", params.Limit, params.Limit != 0},
		{"search", params.Search, params.Search != ""},
	}

	for _, p := range styled {
		if !p.set {
			continue
		}

		if err := addQuery(query, p.name, p.value); err != nil {
			return nil, err
		}
	}

	var questions []models.Question

	if err := c.doJSON(ctx, http.MethodGet, "/questions/", query, nil, &questions); err != nil {
		return nil, fmt.Errorf("list questions error: %w", err)
	}

	return questions, nil
}

func (c *Client) GetQuestion(ctx context.Context, id string) (models.Question, error) {
	path, err := pathWithID("/questions/%s", id)
	if err != nil {
		return models.Question{}, err
	}

	var q models.Question

	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &q); err != nil {
		return models.Question{}, fmt.Errorf("get question error: %w", err)
	}

	return q, nil
}

func (c *Client) CreateQuestion(ctx context.Context, in models.QuestionInput) (models.Question, error) {
	var q models.Question

	if err := c.doJSON(ctx, http.MethodPost, "/questions/", nil, in, &q); err != nil {
		return models.Question{}, fmt.Errorf("create question error: %w", err)
	}

	return q, nil
}

func (c *Client) UpdateQuestion(ctx context.Context, id string, in models.QuestionInput) (models.Question, error) {
	path, err := pathWithID("/questions/%s", id)
	if err != nil {
		return models.Question{}, err
	}

	var q models.Question

	if err := c.doJSON(ctx, http.MethodPut, path, nil, in, &q); err != nil {
		return models.Question{}, fmt.Errorf("update question error: %w", err)
	}

	return q, nil
}

func (c *Client) DeleteQuestion(ctx context.Context, id string) error {
	path, err := pathWithID("/questions/%s", id)
	if err != nil {
		return err
	}

	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("delete question error: %w", err)
	}

	return nil
}

func (c *Client) VoteQuestion(ctx context.Context, id string, vt models.VoteType) error {
	if err := c.vote(ctx, "/questions/%s/vote", id, vt); err != nil {
		return fmt.Errorf("vote question error: %w", err)
	}

	return nil
}

func (c *Client) ListAnswers(ctx context.Context, questionID string) ([]models.Answer, error) {
	path, err := pathWithID("/answers/question/%s", questionID)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	if err := addQuery(query, "limit", answersPageSize); err != nil {
		return nil, err
	}

	var answers []models.Answer

	if err := c.doJSON(ctx, http.MethodGet, path, query, nil, &answers); err != nil {
		return nil, fmt.Errorf("list answers error: %w", err)
	}

	return answers, nil
}

func (c *Client) CreateAnswer(ctx context.Context, questionID string, in models.AnswerInput) (models.Answer, error) {
	query := url.Values{}
	if err := addQuery(query, "question_id", questionID); err != nil {
		return models.Answer{}, err
	}

	var a models.Answer

	if err := c.doJSON(ctx, http.MethodPost, "/answers/", query, in, &a); err != nil {
		return models.Answer{}, fmt.Errorf("create answer error: %w", err)
	}

	return a, nil
}

func (c *Client) DeleteAnswer(ctx context.Context, id string) error {
	path, err := pathWithID("/answers/%s", id)
	if err != nil {
		return err
	}

	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("delete answer error: %w", err)
	}

	return nil
}

func (c *Client) VoteAnswer(ctx context.Context, id string, vt models.VoteType) error {
	if err := c.vote(ctx, "/answers/%s/vote", id, vt); err != nil {
		return fmt.Errorf("vote answer error: %w", err)
	}

	return nil
}

func (c *Client) AcceptAnswer(ctx context.Context, id string) error {
	path, err := pathWithID("/answers/%s/accept", id)
	if err != nil {
		return err
	}

	if err := c.doJSON(ctx, http.MethodPost, path, nil, nil, nil); err != nil {
		return fmt.Errorf("accept answer error: %w", err)
	}

	return nil
}

func (c *Client) ListNotifications(ctx context.Context, limit int) ([]models.Notification, error) {
	query := url.Values{}
	if err := addQuery(query, "limit", limit); err != nil {
		return nil, err
	}

	var list []models.Notification

	if err := c.doJSON(ctx, http.MethodGet, "/notifications/", query, nil, &list); err != nil {
		return nil, fmt.Errorf("list notifications error: %w", err)
	}

	return list, nil
}

func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var resp struct {
		UnreadCount int `json:"unread_count"` //nolint:tagliatelle
	}

	if err := c.doJSON(ctx, http.MethodGet, "/notifications/unread-count", nil, nil, &resp); err != nil {
		return 0, fmt.Errorf("unread count error: %w", err)
	}

	return resp.UnreadCount, nil
}

func (c *Client) MarkAllRead(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodPost, "/notifications/mark-all-read", nil, nil, nil); err != nil {
		return fmt.Errorf("mark all read error: %w", err)
	}

	return nil
}

func (c *Client) AdminStats(ctx context.Context) (models.Stats, error) {
	var s models.Stats

	if err := c.doJSON(ctx, http.MethodGet, "/admin/stats", nil, nil, &s); err != nil {
		return models.Stats{}, fmt.Errorf("admin stats error: %w", err)
	}

	return s, nil
}

func (c *Client) vote(ctx context.Context, pathFmt, id string, vt models.VoteType) error {
	path, err := pathWithID(pathFmt, id)
	if err != nil {
		return err
	}

	query := url.Values{}
	if err := addQuery(query, "vote_type", string(vt)); err != nil {
		return err
	}

	return c.doJSON(ctx, http.MethodPost, path, query, nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if in == nil {
		return c.do(ctx, method, path, query, nil, "", out)
	}

	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode body error: %w", err)
	}

	return c.do(ctx, method, path, query, bytes.NewReader(b), "application/json", out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, //nolint:cyclop
	body io.Reader, contentType string, out any,
) error {
	u := c.baseURL + path
	if len(query) != 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("new request error: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	if len(raw) > maxBodySize {
		return fmt.Errorf("%w: body exceeds %d bytes", ErrTransport, maxBodySize)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &APIError{Status: resp.StatusCode, Detail: parseDetail(raw)}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode body: %w", ErrTransport, err)
	}

	return nil
}

func addQuery(query url.Values, name string, value interface{}) error {
	frag, err := runtime.StyleParamWithLocation("form", true, name, runtime.ParamLocationQuery, value)
	if err != nil {
		return fmt.Errorf("style %s error: %w", name, err)
	}

	parsed, err := url.ParseQuery(frag)
	if err != nil {
		return fmt.Errorf("parse %s error: %w", name, err)
	}

	for k, vs := range parsed {
		for _, v := range vs {
			query.Add(k, v)
		}
	}

	return nil
}

func pathWithID(format, id string) (string, error) {
	p, err := runtime.StyleParamWithLocation("simple", false, "id", runtime.ParamLocationPath, id)
	if err != nil {
		return "", fmt.Errorf("style id error: %w", err)
	}

	return fmt.Sprintf(format, p), nil
}
