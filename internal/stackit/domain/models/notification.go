package models

import "time"

const (
	NotificationAnswer  = "answer"
	NotificationComment = "comment"
	NotificationMention = "mention"
	NotificationVote    = "vote"
)

type Notification struct {
	ID                string    `json:"id"`
	RecipientID       string    `json:"recipient_id"` //nolint:tagliatelle
	Type              string    `json:"type"`
	Title             string    `json:"title"`
	Message           string    `json:"message"`
	RelatedQuestionID string    `json:"related_question_id,omitempty"` //nolint:tagliatelle
	RelatedAnswerID   string    `json:"related_answer_id,omitempty"`   //nolint:tagliatelle
	SenderUsername    string    `json:"sender_username,omitempty"`     //nolint:tagliatelle
	Read              bool      `json:"is_read"`                       //nolint:tagliatelle
	CreatedAt         time.Time `json:"created_at"`                    //nolint:tagliatelle
}
