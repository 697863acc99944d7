package models

import "fmt"

type VoteType string

const (
	Upvote   VoteType = "upvote"
	Downvote VoteType = "downvote"
)

func ParseVoteType(s string) (VoteType, error) {
	switch VoteType(s) {
	case Upvote, Downvote:
		return VoteType(s), nil
	default:
		return "", fmt.Errorf("unknown vote type %q", s)
	}
}

// Value is the signed weight of the vote.
func (v VoteType) Value() int {
	if v == Downvote {
		return -1
	}

	return 1
}
