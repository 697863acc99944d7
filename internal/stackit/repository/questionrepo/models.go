package questionrepo

import "errors"

var ErrNotFound = errors.New("question not found")

// Sort columns accepted by ListQuestions.
var SortColumns = map[string]struct{}{
	"created_at":    {},
	"votes":         {},
	"views":         {},
	"answers_count": {},
}

type ListRequest struct {
	Search   string
	Tags     []string
	SortBy   string
	SortDesc bool
	Offset   int
	Limit    int
}

type Counts struct {
	Total    int
	Answered int
}
