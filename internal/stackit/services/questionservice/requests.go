package questionservice

type ListRequest struct {
	Skip      int
	Limit     int
	Search    string
	Tags      string
	SortBy    string
	SortOrder string
}

const (
	defaultLimit = 10
	maxLimit     = 100
)
