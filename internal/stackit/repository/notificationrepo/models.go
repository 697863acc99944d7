package notificationrepo

import "errors"

var ErrNotFound = errors.New("notification not found")

type ListRequest struct {
	RecipientID string
	UnreadOnly  bool
	Offset      int
	Limit       int
}
