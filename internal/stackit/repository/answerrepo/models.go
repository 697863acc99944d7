package answerrepo

import "errors"

var ErrNotFound = errors.New("answer not found")
