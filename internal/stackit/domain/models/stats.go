package models

type Stats struct {
	TotalUsers          int `json:"total_users"`          //nolint:tagliatelle
	ActiveUsers         int `json:"active_users"`         //nolint:tagliatelle
	BannedUsers         int `json:"banned_users"`         //nolint:tagliatelle
	TotalQuestions      int `json:"total_questions"`      //nolint:tagliatelle
	TotalAnswers        int `json:"total_answers"`        //nolint:tagliatelle
	AnsweredQuestions   int `json:"answered_questions"`   //nolint:tagliatelle
	UnansweredQuestions int `json:"unanswered_questions"` //nolint:tagliatelle
}
