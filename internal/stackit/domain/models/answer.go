package models

import "time"

type Answer struct {
	ID             string    `json:"id"`
	QuestionID     string    `json:"question_id"` //nolint:tagliatelle
	Content        string    `json:"content"`
	AuthorID       string    `json:"author_id"`       //nolint:tagliatelle
	AuthorUsername string    `json:"author_username"` //nolint:tagliatelle
	Votes          int       `json:"votes"`
	Accepted       bool      `json:"is_accepted"` //nolint:tagliatelle
	CreatedAt      time.Time `json:"created_at"`  //nolint:tagliatelle
	UpdatedAt      time.Time `json:"updated_at"`  //nolint:tagliatelle
}

type AnswerInput struct {
	Content string `json:"content" validate:"required,trimmedmin=20"`
}
