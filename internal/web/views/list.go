package views

import (
	"context"
	"fmt"

	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
)

type ListSnapshot struct {
	Filter    Filter
	Status    Status
	Questions []models.Question
	Err       error
}

// Empty is true for a successful fetch that returned nothing.
func (s ListSnapshot) Empty() bool {
	return s.Status == Ready && len(s.Questions) == 0
}

// Pending is true when no fetch has settled for the snapshot's filter yet.
func (s ListSnapshot) Pending() bool {
	return s.Status == Idle || s.Status == Loading
}

// ListView is the home page question list.
type ListView struct {
	api   API
	query *Query[Filter, []models.Question]
}

func NewListView(api API) *ListView {
	v := &ListView{api: api}
	v.query = NewQuery(func(ctx context.Context, f Filter) ([]models.Question, error) {
		return api.ListQuestions(ctx, f.Params()) //nolint:wrapcheck
	})

	return v
}

// Mount loads the list for f. Switching filters goes through Mount as well.
func (v *ListView) Mount(ctx context.Context, f Filter) ListSnapshot {
	return listSnapshot(v.query.Load(ctx, f))
}

// Vote mutates and then refetches the whole list with the same filter. A failed vote
// leaves the current data untouched.
func (v *ListView) Vote(ctx context.Context, id string, vt models.VoteType) (ListSnapshot, error) {
	if err := v.api.VoteQuestion(ctx, id, vt); err != nil {
		return v.Snapshot(), fmt.Errorf("vote error: %w", err)
	}

	return listSnapshot(v.query.Refetch(ctx)), nil
}

// Ensure mounts f unless its data is already loaded.
func (v *ListView) Ensure(ctx context.Context, f Filter) ListSnapshot {
	return listSnapshot(v.query.Ensure(ctx, f))
}

func (v *ListView) Snapshot() ListSnapshot {
	return listSnapshot(v.query.Snapshot())
}

func (v *ListView) Close() {
	v.query.Close()
}

func listSnapshot(s Snapshot[Filter, []models.Question]) ListSnapshot {
	f := s.Key
	if f == "" {
		f = FilterNewest
	}

	return ListSnapshot{
		Filter:    f,
		Status:    s.Status,
		Questions: s.Data,
		Err:       s.Err,
	}
}

// StatsPanel loads admin statistics for the home page.
type StatsPanel struct {
	query *Query[struct{}, models.Stats]
}

func NewStatsPanel(api API) *StatsPanel {
	return &StatsPanel{
		query: NewQuery(func(ctx context.Context, _ struct{}) (models.Stats, error) {
			return api.AdminStats(ctx) //nolint:wrapcheck
		}),
	}
}

func (p *StatsPanel) Load(ctx context.Context) Snapshot[struct{}, models.Stats] {
	return p.query.Load(ctx, struct{}{})
}

func (p *StatsPanel) Close() {
	p.query.Close()
}
