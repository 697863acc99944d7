package views

import "github.com/Leopold1975/stackit/internal/web/gateway"

type Filter string

const (
	FilterNewest  Filter = "newest"
	FilterPopular Filter = "popular"
	FilterBest    Filter = "best"
)

var Filters = []Filter{FilterNewest, FilterPopular, FilterBest}

// ParseFilter falls back to newest for anything it does not know.
func ParseFilter(s string) Filter {
	switch f := Filter(s); f {
	case FilterPopular, FilterBest:
		return f
	default:
		return FilterNewest
	}
}

func (f Filter) Params() gateway.ListParams {
	p := gateway.ListParams{SortOrder: "desc", Limit: PageSize}

	switch f {
	case FilterPopular:
		p.SortBy = "votes"
	case FilterBest:
		p.SortBy = "answers_count"
	default:
		p.SortBy = "created_at"
	}

	return p
}
