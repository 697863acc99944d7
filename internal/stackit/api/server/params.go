package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ListQuestionsParams defines parameters for ListQuestions.
type ListQuestionsParams struct {
	Skip      *int    `form:"skip,omitempty"       json:"skip,omitempty"`
	Limit     *int    `form:"limit,omitempty"      json:"limit,omitempty"`
	Search    *string `form:"search,omitempty"     json:"search,omitempty"`
	Tags      *string `form:"tags,omitempty"       json:"tags,omitempty"`
	SortBy    *string `form:"sort_by,omitempty"    json:"sort_by,omitempty"`    //nolint:tagliatelle
	SortOrder *string `form:"sort_order,omitempty" json:"sort_order,omitempty"` //nolint:tagliatelle
}

// PageParams defines skip/limit paging shared by list endpoints.
type PageParams struct {
	Skip  *int `form:"skip,omitempty"  json:"skip,omitempty"`
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}

// ListNotificationsParams defines parameters for ListNotifications.
type ListNotificationsParams struct {
	PageParams
	UnreadOnly *bool `form:"unread_only,omitempty" json:"unread_only,omitempty"` //nolint:tagliatelle
}

// VoteParams defines parameters for vote endpoints.
type VoteParams struct {
	VoteType string `form:"vote_type" json:"vote_type"` //nolint:tagliatelle
}

// CreateAnswerParams defines parameters for CreateAnswer.
type CreateAnswerParams struct {
	QuestionID string `form:"question_id" json:"question_id"` //nolint:tagliatelle
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

func bindPathID(r *http.Request, name string) (string, error) {
	var id string

	err := runtime.BindStyledParameterWithLocation("simple", false, name, runtime.ParamLocationPath,
		chi.URLParam(r, name), &id)
	if err != nil {
		return "", &InvalidParamFormatError{ParamName: name, Err: err}
	}

	return id, nil
}

func bindQuery(r *http.Request, name string, required bool, dest interface{}) error {
	if err := runtime.BindQueryParameter("form", true, required, name, r.URL.Query(), dest); err != nil {
		return &InvalidParamFormatError{ParamName: name, Err: err}
	}

	return nil
}

func bindPage(r *http.Request) (PageParams, error) {
	var p PageParams

	if err := bindQuery(r, "skip", false, &p.Skip); err != nil {
		return PageParams{}, err
	}

	if err := bindQuery(r, "limit", false, &p.Limit); err != nil {
		return PageParams{}, err
	}

	return p, nil
}

func bindListQuestions(r *http.Request) (ListQuestionsParams, error) {
	var p ListQuestionsParams

	page, err := bindPage(r)
	if err != nil {
		return ListQuestionsParams{}, err
	}

	p.Skip, p.Limit = page.Skip, page.Limit

	for name, dest := range map[string]**string{
		"search":     &p.Search,
		"tags":       &p.Tags,
		"sort_by":    &p.SortBy,
		"sort_order": &p.SortOrder,
	} {
		if err := bindQuery(r, name, false, dest); err != nil {
			return ListQuestionsParams{}, err
		}
	}

	return p, nil
}

func bindListNotifications(r *http.Request) (ListNotificationsParams, error) {
	var p ListNotificationsParams

	page, err := bindPage(r)
	if err != nil {
		return ListNotificationsParams{}, err
	}

	p.PageParams = page

	if err := bindQuery(r, "unread_only", false, &p.UnreadOnly); err != nil {
		return ListNotificationsParams{}, err
	}

	return p, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}

	return *p
}
