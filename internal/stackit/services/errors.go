// Package services holds the error kinds shared by every forum service. The API server
// maps them onto HTTP status codes.
package services

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("not enough permissions")
	ErrUnauthorized = errors.New("could not validate credentials")
	ErrInactive     = errors.New("inactive user")
	ErrConflict     = errors.New("already taken")
	ErrBadRequest   = errors.New("bad request")
)

// Error pairs an error kind with the message shown to API clients.
type Error struct {
	Kind   error
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func Fail(kind error, detail string) error {
	return &Error{Kind: kind, Detail: detail}
}
