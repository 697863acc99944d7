package userrepo

import "errors"

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
)

// Counts is the user part of the admin statistics.
type Counts struct {
	Total  int
	Active int
}
