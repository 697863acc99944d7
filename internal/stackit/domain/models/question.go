package models

import "time"

type Question struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Tags           []string  `json:"tags"`
	AuthorID       string    `json:"author_id"`       //nolint:tagliatelle
	AuthorUsername string    `json:"author_username"` //nolint:tagliatelle
	Votes          int       `json:"votes"`
	Views          int       `json:"views"`
	AnswersCount   int       `json:"answers_count"` //nolint:tagliatelle
	Answered       bool      `json:"is_answered"`   //nolint:tagliatelle
	CreatedAt      time.Time `json:"created_at"`    //nolint:tagliatelle
	UpdatedAt      time.Time `json:"updated_at"`    //nolint:tagliatelle
}

// QuestionInput is the body of question create and update calls.
type QuestionInput struct {
	Title       string   `json:"title"       validate:"required,min=10,max=300"`
	Description string   `json:"description" validate:"required,trimmedmin=20"`
	Tags        []string `json:"tags"        validate:"min=1,max=5,dive,required"`
}
