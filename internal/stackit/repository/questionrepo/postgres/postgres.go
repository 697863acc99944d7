package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Leopold1975/stackit/internal/pkg/pgtools"
	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	"github.com/Leopold1975/stackit/internal/stackit/repository"
	repo "github.com/Leopold1975/stackit/internal/stackit/repository/questionrepo"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

const table = "questions"

var questionColumns = []string{
	"id", "title", "description", "tags", "author_id", "author_username",
	"votes", "views", "answers_count", "is_answered", "created_at", "updated_at",
}

type QuestionsPostgresRepo struct {
	db pgtools.DB
}

func New(db pgtools.DB) QuestionsPostgresRepo {
	return QuestionsPostgresRepo{
		db: db,
	}
}

func (qr QuestionsPostgresRepo) CreateQuestion(ctx context.Context, q models.Question) (err error) {
	tx, err := qr.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "create")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Insert(table).
		Columns(questionColumns...).
		Values(q.ID, q.Title, q.Description, q.Tags, q.AuthorID, q.AuthorUsername,
			q.Votes, q.Views, q.AnswersCount, q.Answered, q.CreatedAt, q.UpdatedAt).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	return nil
}

// GetQuestion loads a question. With countView set the views counter is bumped in the
// same transaction and the returned question reflects the new value.
func (qr QuestionsPostgresRepo) GetQuestion(ctx context.Context, id string, countView bool) (q models.Question, err error) {
	tx, err := qr.db.Begin(ctx)
	if err != nil {
		return models.Question{}, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "get")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	var sb squirrel.Sqlizer

	if countView {
		sb = psql.Update(table).
			Set("views", squirrel.Expr("views + 1")).
			Where(squirrel.Eq{"id": id}).
			Suffix("RETURNING " + strings.Join(questionColumns, ", "))
	} else {
		sb = psql.Select(questionColumns...).From(table).Where(squirrel.Eq{"id": id})
	}

	query, args, err := sb.ToSql()
	if err != nil {
		return models.Question{}, fmt.Errorf("to sql error: %w", err)
	}

	q, err = scanQuestion(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Question{}, repo.ErrNotFound
		}

		return models.Question{}, fmt.Errorf("scan error: %w", err)
	}

	return q, nil
}

func (qr QuestionsPostgresRepo) UpdateQuestion(ctx context.Context, q models.Question) (err error) {
	tx, err := qr.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "update")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Update(table).
		Set("title", q.Title).
		Set("description", q.Description).
		Set("tags", q.Tags).
		Set("updated_at", q.UpdatedAt).
		Where(squirrel.Eq{"id": q.ID}).ToSql()
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

// DeleteQuestion removes the question, its answers and every vote cast on either.
func (qr QuestionsPostgresRepo) DeleteQuestion(ctx context.Context, id string) (err error) {
	tx, err := qr.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "delete")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Delete("answers").
		Where(squirrel.Eq{"question_id": id}).
		Suffix("RETURNING id").ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	answerIDs, err := collectIDs(ctx, tx, query, args)
	if err != nil {
		return err
	}

	if err = repository.DeleteVotes(ctx, tx, "answers", answerIDs...); err != nil {
		return fmt.Errorf("delete answer votes error: %w", err)
	}

	if err = repository.DeleteVotes(ctx, tx, table, id); err != nil {
		return fmt.Errorf("delete question votes error: %w", err)
	}

	query, args, err = psql.Delete(table).Where(squirrel.Eq{"id": id}).ToSql()
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

func (qr QuestionsPostgresRepo) ListQuestions(ctx context.Context, //nolint:cyclop
	req repo.ListRequest,
) (questions []models.Question, err error) {
	tx, err := qr.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "list")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sb := psql.Select(questionColumns...).From(table)

	if req.Search != "" {
		sb = sb.Where("to_tsvector('english', title || ' ' || description) @@ plainto_tsquery('english', ?)", req.Search)
	}

	if len(req.Tags) != 0 {
		sb = sb.Where("(tags && ?)", req.Tags)
	}

	sortBy := req.SortBy
	if _, ok := repo.SortColumns[sortBy]; !ok {
		sortBy = "created_at"
	}

	order := " ASC"
	if req.SortDesc {
		order = " DESC"
	}

	sb = sb.OrderBy(sortBy+order, "id ASC")

	if req.Offset != 0 {
		sb = sb.Offset(uint64(req.Offset))
	}

	if req.Limit != 0 {
		sb = sb.Limit(uint64(req.Limit))
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

	questions = make([]models.Question, 0, req.Limit)

	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error %w", err)
		}

		questions = append(questions, q)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return questions, nil
}

func (qr QuestionsPostgresRepo) Vote(ctx context.Context, id, userID string, value int) (removed bool, err error) {
	tx, err := qr.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "vote")
	}()

	return repository.ApplyVote(ctx, tx, table, id, userID, value)
}

func (qr QuestionsPostgresRepo) CountQuestions(ctx context.Context) (c repo.Counts, err error) {
	tx, err := qr.db.Begin(ctx)
	if err != nil {
		return repo.Counts{}, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "count")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select("count(*)", "count(*) FILTER (WHERE is_answered)").
		From(table).ToSql()
	if err != nil {
		return repo.Counts{}, fmt.Errorf("to sql error: %w", err)
	}

	if err = tx.QueryRow(ctx, query, args...).Scan(&c.Total, &c.Answered); err != nil {
		return repo.Counts{}, fmt.Errorf("scan error: %w", err)
	}

	return c, nil
}

func (qr QuestionsPostgresRepo) Shutdown(ctx context.Context) error {
	return pgtools.Shutdown(ctx, qr.db)
}

func scanQuestion(row pgx.Row) (models.Question, error) {
	var q models.Question

	err := row.Scan(&q.ID, &q.Title, &q.Description, &q.Tags, &q.AuthorID, &q.AuthorUsername,
		&q.Votes, &q.Views, &q.AnswersCount, &q.Answered, &q.CreatedAt, &q.UpdatedAt)

	return q, err //nolint:wrapcheck
}

func collectIDs(ctx context.Context, tx pgx.Tx, query string, args []interface{}) ([]string, error) {
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var ids []string

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return ids, nil
}
