package views

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Leopold1975/stackit/internal/pkg/validation"
	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	"github.com/Leopold1975/stackit/internal/web/gateway"
	"github.com/Leopold1975/stackit/internal/web/session"
	"github.com/stretchr/testify/require"
)

const validDescription = "I keep getting a nil map panic when I write to it."

func TestTitleBounds(t *testing.T) {
	tests := []struct {
		title string
		ok    bool
	}{
		{strings.Repeat("a", 9), false},
		{strings.Repeat("a", 10), true},
		{strings.Repeat("я", 10), true},
		{strings.Repeat("a", 300), true},
		{strings.Repeat("a", 301), false},
	}

	for _, tt := range tests {
		f := NewAskForm(&fakeAPI{}, validation.New())
		f.SetTitle(tt.title)
		f.SetDescription(validDescription)
		f.KeyTag(KeyEnter, "go")

		_, bad := f.Validate()["title"]
		require.Equal(t, tt.ok, !bad, "title of %d runes", len([]rune(tt.title)))
	}
}

func TestDescriptionTrimmedLength(t *testing.T) {
	f := NewAskForm(&fakeAPI{}, validation.New())
	f.SetTitle("A perfectly fine title")
	f.KeyTag(KeyComma, "go")

	f.SetDescription("   " + strings.Repeat("x", 19) + "    ")
	require.Equal(t, MsgShortDescription, f.Validate()["description"])

	f.SetDescription(strings.Repeat("x", 20))
	require.Nil(t, f.Validate())
}

func TestKeyTag(t *testing.T) {
	f := NewAskForm(&fakeAPI{}, validation.New())

	require.False(t, f.KeyTag("a", "Go"), "other keys do not commit")
	require.Equal(t, "Go", f.Snapshot().TagInput)

	require.True(t, f.KeyTag(KeyEnter, " Go "))
	require.Empty(t, f.Snapshot().TagInput)

	require.False(t, f.KeyTag(KeyComma, "go"))
	require.Equal(t, "go", f.Snapshot().TagInput, "refused input is kept")

	f.RemoveTag("go")
	require.Empty(t, f.Snapshot().Tags)
}

func TestTagsFullClosesInput(t *testing.T) {
	f := NewAskForm(&fakeAPI{}, validation.New())

	for i, tag := range []string{"go", "sql", "redis", "docker"} {
		require.True(t, f.KeyTag(KeyEnter, tag), "tag %d", i)
	}

	require.False(t, f.Snapshot().TagsFull)

	f.KeyTag(KeyEnter, "k8s")
	require.True(t, f.Snapshot().TagsFull)

	f.RemoveTag("sql")
	require.False(t, f.Snapshot().TagsFull)
}

func TestAskScenario(t *testing.T) {
	api := &fakeAPI{}
	f := NewAskForm(api, validation.New())

	f.SetTitle("How do I close a channel safely?")
	f.SetDescription(validDescription)

	res, err := f.Submit(context.Background())
	require.ErrorIs(t, err, ErrInvalid)
	require.Equal(t, MsgNeedTag, res.Toast)
	require.Empty(t, api.Calls())
	require.False(t, f.Snapshot().CanSubmit)

	f.KeyTag(KeyEnter, "Go")
	f.KeyTag(KeyComma, "channels")
	require.True(t, f.Snapshot().CanSubmit)

	res, err = f.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, Result{Redirect: "/", Toast: MsgQuestionPosted}, res)
	require.Equal(t, []string{"POST /questions/"}, api.Calls())
	require.Equal(t, []string{"go", "channels"}, api.created[0].Tags)
}

func TestAskFailureToast(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		toast string
	}{
		{"transport", errors.New("down"), MsgPostFailed},
		{"detail", &gateway.APIError{Status: 422, Detail: "Title already taken"}, "Title already taken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewAskForm(&fakeAPI{createErr: tt.err}, validation.New())
			f.SetTitle("How do I close a channel safely?")
			f.SetDescription(validDescription)
			f.KeyTag(KeyEnter, "go")

			res, err := f.Submit(context.Background())
			require.Error(t, err)
			require.Equal(t, tt.toast, res.Toast)
			require.Empty(t, res.Redirect)
			require.False(t, f.Snapshot().Busy)
		})
	}
}

func TestEditForbiddenLeavesFieldsEmpty(t *testing.T) {
	api := &fakeAPI{question: models.Question{
		ID: "q9", Title: "Someone else's question", Description: validDescription,
		Tags: []string{"go"}, AuthorID: "author",
	}}
	f := NewEditForm(api, validation.New(), "q9")
	stranger := session.NewAuthenticated(models.User{ID: "stranger", Role: models.RoleUser}, "t")

	err := f.LoadEditForm(context.Background(), stranger)
	require.ErrorIs(t, err, ErrForbidden)

	snap := f.Snapshot()
	require.False(t, snap.Loaded)
	require.Empty(t, snap.Title)
	require.Empty(t, snap.Description)
	require.Empty(t, snap.Tags)
}

func TestEditByAdmin(t *testing.T) {
	api := &fakeAPI{question: models.Question{
		ID: "q9", Title: "Someone else's question", Description: validDescription,
		Tags: []string{"go"}, AuthorID: "author",
	}}
	f := NewEditForm(api, validation.New(), "q9")
	admin := session.NewAuthenticated(models.User{ID: "root", Role: models.RoleAdmin}, "t")

	require.NoError(t, f.LoadEditForm(context.Background(), admin))
	require.Equal(t, "Someone else's question", f.Snapshot().Title)

	res, err := f.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, Result{Redirect: "/question/q9", Toast: MsgQuestionUpdated}, res)
	require.Equal(t, []string{"GET /questions/q9", "PUT /questions/q9"}, api.Calls())
}

func TestEditLoadFailure(t *testing.T) {
	f := NewEditForm(&fakeAPI{getErr: errors.New("gone")}, validation.New(), "q9")

	err := f.LoadEditForm(context.Background(), session.NewAuthenticated(models.User{ID: "u"}, "t"))
	require.ErrorIs(t, err, ErrLoadFailed)
}
