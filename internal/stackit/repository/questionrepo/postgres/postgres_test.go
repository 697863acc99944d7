package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	repo "github.com/Leopold1975/stackit/internal/stackit/repository/questionrepo"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/suite"
)

type RepoSuite struct {
	suite.Suite
	mock pgxmock.PgxPoolIface
	repo QuestionsPostgresRepo
}

func TestQuestionsRepo(t *testing.T) {
	suite.Run(t, new(RepoSuite))
}

func (rs *RepoSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	rs.Require().NoError(err, "expected %v\tactual %v", nil, err)

	rs.mock = mock
	rs.repo = New(mock)
}

func (rs *RepoSuite) TearDownTest() {
	rs.Require().NoError(rs.mock.ExpectationsWereMet())
	rs.mock.Close()
}

func (rs *RepoSuite) TestVoteNew() {
	rs.mock.ExpectBegin()
	rs.mock.ExpectQuery(`SELECT value FROM votes`).
		WithArgs("q1", "questions", "u1").
		WillReturnRows(pgxmock.NewRows([]string{"value"}))
	rs.mock.ExpectExec(`INSERT INTO votes`).
		WithArgs("questions", "q1", "u1", 1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	rs.mock.ExpectExec(`UPDATE questions SET votes = votes \+ \$1`).
		WithArgs(1, "q1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	rs.mock.ExpectCommit()

	removed, err := rs.repo.Vote(context.Background(), "q1", "u1", 1)
	rs.Require().NoError(err, "expected %v\tactual %v", nil, err)
	rs.Require().False(removed)
}

func (rs *RepoSuite) TestVoteRepeatRemoves() {
	rs.mock.ExpectBegin()
	rs.mock.ExpectQuery(`SELECT value FROM votes`).
		WithArgs("q1", "questions", "u1").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow(-1))
	rs.mock.ExpectExec(`DELETE FROM votes`).
		WithArgs("q1", "questions", "u1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	rs.mock.ExpectExec(`UPDATE questions SET votes = votes \+ \$1`).
		WithArgs(1, "q1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	rs.mock.ExpectCommit()

	removed, err := rs.repo.Vote(context.Background(), "q1", "u1", -1)
	rs.Require().NoError(err, "expected %v\tactual %v", nil, err)
	rs.Require().True(removed)
}

func (rs *RepoSuite) TestVoteSwitchMovesByTwo() {
	rs.mock.ExpectBegin()
	rs.mock.ExpectQuery(`SELECT value FROM votes`).
		WithArgs("q1", "questions", "u1").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow(-1))
	rs.mock.ExpectExec(`UPDATE votes SET value = \$1`).
		WithArgs(1, "q1", "questions", "u1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	rs.mock.ExpectExec(`UPDATE questions SET votes = votes \+ \$1`).
		WithArgs(2, "q1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	rs.mock.ExpectCommit()

	removed, err := rs.repo.Vote(context.Background(), "q1", "u1", 1)
	rs.Require().NoError(err, "expected %v\tactual %v", nil, err)
	rs.Require().False(removed)
}

func (rs *RepoSuite) TestGetQuestionCountsView() {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	rs.mock.ExpectBegin()
	rs.mock.ExpectQuery(`UPDATE questions SET views = views \+ 1 WHERE id = \$1 RETURNING id, title`).
		WithArgs("q1").
		WillReturnRows(pgxmock.NewRows(questionColumns).AddRow(
			"q1", "Nil map", "<p>why</p>", []string{"go"}, "u1", "ada", 3, 8, 1, false, now, now,
		))
	rs.mock.ExpectCommit()

	q, err := rs.repo.GetQuestion(context.Background(), "q1", true)
	rs.Require().NoError(err, "expected %v\tactual %v", nil, err)
	rs.Require().Equal(models.Question{
		ID: "q1", Title: "Nil map", Description: "<p>why</p>", Tags: []string{"go"},
		AuthorID: "u1", AuthorUsername: "ada", Votes: 3, Views: 8, AnswersCount: 1,
		CreatedAt: now, UpdatedAt: now,
	}, q)
}

func (rs *RepoSuite) TestGetQuestionNotFound() {
	rs.mock.ExpectBegin()
	rs.mock.ExpectQuery(`SELECT id, title, .* FROM questions WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(questionColumns))
	rs.mock.ExpectRollback()

	_, err := rs.repo.GetQuestion(context.Background(), "missing", false)
	rs.Require().ErrorIs(err, repo.ErrNotFound, "expected %v\tactual %v", repo.ErrNotFound, err)
}

func (rs *RepoSuite) TestDeleteQuestionCascades() {
	rs.mock.ExpectBegin()
	rs.mock.ExpectQuery(`DELETE FROM answers WHERE question_id = \$1 RETURNING id`).
		WithArgs("q1").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("a1").AddRow("a2"))
	rs.mock.ExpectExec(`DELETE FROM votes`).
		WithArgs("a1", "a2", "answers").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	rs.mock.ExpectExec(`DELETE FROM votes`).
		WithArgs("q1", "questions").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	rs.mock.ExpectExec(`DELETE FROM questions WHERE id = \$1`).
		WithArgs("q1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	rs.mock.ExpectCommit()

	err := rs.repo.DeleteQuestion(context.Background(), "q1")
	rs.Require().NoError(err, "expected %v\tactual %v", nil, err)
}

func (rs *RepoSuite) TestListRollsBackOnError() {
	rs.mock.ExpectBegin()
	rs.mock.ExpectQuery(`SELECT .* FROM questions ORDER BY votes DESC, id ASC LIMIT 10`).
		WillReturnError(errors.New("connection reset"))
	rs.mock.ExpectRollback()

	_, err := rs.repo.ListQuestions(context.Background(), repo.ListRequest{SortBy: "votes", SortDesc: true, Limit: 10})
	rs.Require().Error(err)
	rs.Require().Contains(err.Error(), "list error")
}
