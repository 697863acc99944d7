package postgres

import (
	"context"
	"testing"

	repo "github.com/Leopold1975/stackit/internal/stackit/repository/answerrepo"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/suite"
)

type RepoSuite struct {
	suite.Suite
	mock pgxmock.PgxPoolIface
	repo AnswersPostgresRepo
}

func TestAnswersRepo(t *testing.T) {
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

func (rs *RepoSuite) TestAcceptMarksQuestionAnswered() {
	rs.mock.ExpectBegin()
	rs.mock.ExpectExec(`UPDATE answers SET is_accepted = id = \$1 WHERE question_id = \$2`).
		WithArgs("a1", "q1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))
	rs.mock.ExpectExec(`UPDATE questions SET is_answered = \$1 WHERE id = \$2`).
		WithArgs(true, "q1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	rs.mock.ExpectCommit()

	err := rs.repo.Accept(context.Background(), "a1", "q1")
	rs.Require().NoError(err, "expected %v\tactual %v", nil, err)
}

func (rs *RepoSuite) TestDeleteDecrementsCount() {
	rs.mock.ExpectBegin()
	rs.mock.ExpectQuery(`DELETE FROM answers WHERE id = \$1 RETURNING question_id`).
		WithArgs("a1").
		WillReturnRows(pgxmock.NewRows([]string{"question_id"}).AddRow("q1"))
	rs.mock.ExpectExec(`DELETE FROM votes`).
		WithArgs("a1", "answers").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	rs.mock.ExpectExec(`UPDATE questions SET answers_count = answers_count \+ \$1`).
		WithArgs(-1, "q1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	rs.mock.ExpectCommit()

	err := rs.repo.DeleteAnswer(context.Background(), "a1")
	rs.Require().NoError(err, "expected %v\tactual %v", nil, err)
}

func (rs *RepoSuite) TestDeleteMissing() {
	rs.mock.ExpectBegin()
	rs.mock.ExpectQuery(`DELETE FROM answers`).
		WithArgs("nope").
		WillReturnRows(pgxmock.NewRows([]string{"question_id"}))
	rs.mock.ExpectRollback()

	err := rs.repo.DeleteAnswer(context.Background(), "nope")
	rs.Require().ErrorIs(err, repo.ErrNotFound, "expected %v\tactual %v", repo.ErrNotFound, err)
}
