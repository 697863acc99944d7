package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Leopold1975/stackit/internal/pkg/pgtools"
	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	"github.com/Leopold1975/stackit/internal/stackit/repository"
	repo "github.com/Leopold1975/stackit/internal/stackit/repository/answerrepo"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

const table = "answers"

var answerColumns = []string{
	"id", "question_id", "content", "author_id", "author_username",
	"votes", "is_accepted", "created_at", "updated_at",
}

type AnswersPostgresRepo struct {
	db pgtools.DB
}

func New(db pgtools.DB) AnswersPostgresRepo {
	return AnswersPostgresRepo{
		db: db,
	}
}

// CreateAnswer inserts the answer and bumps answers_count on its question.
func (ar AnswersPostgresRepo) CreateAnswer(ctx context.Context, a models.Answer) (err error) {
	tx, err := ar.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "create")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Insert(table).
		Columns(answerColumns...).
		Values(a.ID, a.QuestionID, a.Content, a.AuthorID, a.AuthorUsername,
			a.Votes, a.Accepted, a.CreatedAt, a.UpdatedAt).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	return bumpAnswersCount(ctx, tx, a.QuestionID, 1)
}

func (ar AnswersPostgresRepo) GetAnswer(ctx context.Context, id string) (a models.Answer, err error) {
	tx, err := ar.db.Begin(ctx)
	if err != nil {
		return models.Answer{}, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "get")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select(answerColumns...).
		From(table).
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return models.Answer{}, fmt.Errorf("to sql error: %w", err)
	}

	a, err = scanAnswer(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Answer{}, repo.ErrNotFound
		}

		return models.Answer{}, fmt.Errorf("scan error: %w", err)
	}

	return a, nil
}

// ListByQuestion returns a page of answers, best voted first.
func (ar AnswersPostgresRepo) ListByQuestion(ctx context.Context, questionID string,
	offset, limit int,
) (answers []models.Answer, err error) {
	tx, err := ar.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "list")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	sb := psql.Select(answerColumns...).
		From(table).
		Where(squirrel.Eq{"question_id": questionID}).
		OrderBy("votes DESC", "created_at ASC")

	if offset != 0 {
		sb = sb.Offset(uint64(offset))
	}

	if limit != 0 {
		sb = sb.Limit(uint64(limit))
	}

	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	answers = make([]models.Answer, 0, limit)

	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error %w", err)
		}

		answers = append(answers, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return answers, nil
}

func (ar AnswersPostgresRepo) UpdateAnswer(ctx context.Context, a models.Answer) (err error) {
	tx, err := ar.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "update")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Update(table).
		Set("content", a.Content).
		Set("updated_at", a.UpdatedAt).
		Where(squirrel.Eq{"id": a.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	return nil
}

// DeleteAnswer removes the answer with its votes and decrements answers_count.
func (ar AnswersPostgresRepo) DeleteAnswer(ctx context.Context, id string) (err error) {
	tx, err := ar.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "delete")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Delete(table).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING question_id").ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	var questionID string

	if err = tx.QueryRow(ctx, query, args...).Scan(&questionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}

		return fmt.Errorf("scan error: %w", err)
	}

	if err = repository.DeleteVotes(ctx, tx, table, id); err != nil {
		return fmt.Errorf("delete votes error: %w", err)
	}

	return bumpAnswersCount(ctx, tx, questionID, -1)
}

func (ar AnswersPostgresRepo) Vote(ctx context.Context, id, userID string, value int) (removed bool, err error) {
	tx, err := ar.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "vote")
	}()

	return repository.ApplyVote(ctx, tx, table, id, userID, value)
}

// Accept marks one answer accepted, clears the flag on its siblings and marks the
// question answered.
func (ar AnswersPostgresRepo) Accept(ctx context.Context, id, questionID string) (err error) {
	tx, err := ar.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "accept")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	stmts := []squirrel.Sqlizer{
		psql.Update(table).
			Set("is_accepted", squirrel.Expr("id = ?", id)).
			Where(squirrel.Eq{"question_id": questionID}),
		psql.Update("questions").
			Set("is_answered", true).
			Where(squirrel.Eq{"id": questionID}),
	}

	for _, stmt := range stmts {
		query, args, err := stmt.ToSql()
		if err != nil {
			return fmt.Errorf("to sql error: %w", err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("exec error: %w", err)
		}
	}

	return nil
}

func (ar AnswersPostgresRepo) CountAnswers(ctx context.Context) (n int, err error) {
	tx, err := ar.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "count")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select("count(*)").From(table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("to sql error: %w", err)
	}

	if err = tx.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("scan error: %w", err)
	}

	return n, nil
}

func bumpAnswersCount(ctx context.Context, tx pgx.Tx, questionID string, delta int) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Update("questions").
		Set("answers_count", squirrel.Expr("answers_count + ?", delta)).
		Where(squirrel.Eq{"id": questionID}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("exec answers count error: %w", err)
	}

	return nil
}

func scanAnswer(row pgx.Row) (models.Answer, error) {
	var a models.Answer

	err := row.Scan(&a.ID, &a.QuestionID, &a.Content, &a.AuthorID, &a.AuthorUsername,
		&a.Votes, &a.Accepted, &a.CreatedAt, &a.UpdatedAt)

	return a, err //nolint:wrapcheck
}
