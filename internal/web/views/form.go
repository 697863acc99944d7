package views

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Leopold1975/stackit/internal/pkg/validation"
	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	"github.com/Leopold1975/stackit/internal/web/session"
)

type FormMode int

const (
	AskMode FormMode = iota
	EditMode
)

// Keys that commit the tag input.
const (
	KeyEnter = "Enter"
	KeyComma = ","
)

// FieldErrors maps a form field to the message shown under it.
type FieldErrors map[string]string

// Toast picks the message shown when submission is refused. Tags are checked
// before the description; a title problem is only shown inline.
func (fe FieldErrors) Toast() string {
	for _, k := range []string{"tags", "description", "title"} {
		if m, ok := fe[k]; ok {
			return m
		}
	}

	return ""
}

// Result tells the caller where to navigate and what to announce.
type Result struct {
	Redirect string
	Toast    string
}

type FormSnapshot struct {
	Mode        FormMode
	QuestionID  string
	Title       string
	Description string
	TagInput    string
	Tags        []string
	Errors      FieldErrors
	Busy        bool
	Loaded      bool
	// TagsFull closes the tag input.
	TagsFull bool
	// CanSubmit is false while busy or before the first tag.
	CanSubmit bool
}

// QuestionForm backs both the ask and the edit pages.
type QuestionForm struct {
	api API
	v   *validation.Validator

	mu          sync.Mutex
	mode        FormMode
	questionID  string
	title       string
	description string
	tagInput    string
	tags        TagSet
	busy        bool
	loaded      bool
}

func NewAskForm(api API, v *validation.Validator) *QuestionForm {
	return &QuestionForm{api: api, v: v, mode: AskMode, loaded: true}
}

func NewEditForm(api API, v *validation.Validator, id string) *QuestionForm {
	return &QuestionForm{api: api, v: v, mode: EditMode, questionID: id}
}

// LoadEditForm fetches the question and checks that c may edit it. An unauthorized
// user gets ErrForbidden and the fields stay empty.
func (f *QuestionForm) LoadEditForm(ctx context.Context, c *session.Context) error {
	q, err := f.api.GetQuestion(ctx, f.questionID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	u, ok := c.User()
	if !ok || !u.CanModify(q.AuthorID) {
		return ErrForbidden
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.title = q.Title
	f.description = q.Description
	f.tags = NewTagSet(q.Tags...)
	f.loaded = true

	return nil
}

func (f *QuestionForm) SetTitle(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.title = s
}

func (f *QuestionForm) SetDescription(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.description = s
}

// KeyTag handles a key pressed in the tag input holding input. Enter and comma
// commit; the input is cleared only when the tag was added.
func (f *QuestionForm) KeyTag(key, input string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tagInput = input

	if key != KeyEnter && key != KeyComma {
		return false
	}

	if !f.tags.Commit(input) {
		return false
	}

	f.tagInput = ""

	return true
}

func (f *QuestionForm) RemoveTag(tag string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tags.Remove(tag)
}

// Validate checks the current fields. It returns nil when the form may be submitted.
func (f *QuestionForm) Validate() FieldErrors {
	f.mu.Lock()
	in := f.inputLocked()
	f.mu.Unlock()

	return f.validate(in)
}

// Submit sends the form. It fails with ErrBusy while a request is in flight and
// with ErrInvalid, without a request, while fields are invalid.
func (f *QuestionForm) Submit(ctx context.Context) (Result, error) {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()

		return Result{}, ErrBusy
	}

	in := f.inputLocked()

	if fe := f.validate(in); fe != nil {
		f.mu.Unlock()

		return Result{Toast: fe.Toast()}, fmt.Errorf("%w: %s", ErrInvalid, fe.Toast())
	}

	f.busy = true
	mode, id := f.mode, f.questionID
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.busy = false
		f.mu.Unlock()
	}()

	if mode == EditMode {
		if _, err := f.api.UpdateQuestion(ctx, id, in); err != nil {
			return Result{Toast: Failure(err, MsgUpdateFailed)}, fmt.Errorf("update question error: %w", err)
		}

		return Result{Redirect: "/question/" + id, Toast: MsgQuestionUpdated}, nil
	}

	if _, err := f.api.CreateQuestion(ctx, in); err != nil {
		return Result{Toast: Failure(err, MsgPostFailed)}, fmt.Errorf("create question error: %w", err)
	}

	return Result{Redirect: "/", Toast: MsgQuestionPosted}, nil
}

func (f *QuestionForm) Snapshot() FormSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	return FormSnapshot{
		Mode:        f.mode,
		QuestionID:  f.questionID,
		Title:       f.title,
		Description: f.description,
		TagInput:    f.tagInput,
		Tags:        f.tags.Tags(),
		Busy:        f.busy,
		Loaded:      f.loaded,
		TagsFull:    f.tags.Full(),
		CanSubmit:   !f.busy && f.tags.Len() > 0,
	}
}

func (f *QuestionForm) inputLocked() models.QuestionInput {
	return models.QuestionInput{
		Title:       f.title,
		Description: f.description,
		Tags:        f.tags.Tags(),
	}
}

func (f *QuestionForm) validate(in models.QuestionInput) FieldErrors {
	err := f.v.Validate(in)
	if err == nil {
		return nil
	}

	var verr *validation.Error
	if !errors.As(err, &verr) {
		return FieldErrors{"form": err.Error()}
	}

	fe := make(FieldErrors, len(verr.Fields))

	for k, m := range verr.Fields {
		switch k {
		case "title":
			fe[k] = "Title " + m
		case "description":
			fe[k] = MsgShortDescription
		case "tags":
			fe[k] = MsgNeedTag
		default:
			fe[k] = m
		}
	}

	return fe
}
