package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Leopold1975/stackit/internal/pkg/pgtools"
	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	repo "github.com/Leopold1975/stackit/internal/stackit/repository/notificationrepo"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

const table = "notifications"

var notificationColumns = []string{
	"id", "recipient_id", "notification_type", "title", "message",
	"related_question_id", "related_answer_id", "sender_username", "is_read", "created_at",
}

type NotificationsPostgresRepo struct {
	db pgtools.DB
}

func New(db pgtools.DB) NotificationsPostgresRepo {
	return NotificationsPostgresRepo{
		db: db,
	}
}

func (nr NotificationsPostgresRepo) CreateNotification(ctx context.Context, n models.Notification) (err error) {
	tx, err := nr.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "create")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Insert(table).
		Columns(notificationColumns...).
		Values(n.ID, n.RecipientID, n.Type, n.Title, n.Message,
			n.RelatedQuestionID, n.RelatedAnswerID, n.SenderUsername, n.Read, n.CreatedAt).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	return nil
}

func (nr NotificationsPostgresRepo) ListNotifications(ctx context.Context,
	req repo.ListRequest,
) (notifications []models.Notification, err error) {
	tx, err := nr.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "list")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	sb := psql.Select(notificationColumns...).
		From(table).
		Where(squirrel.Eq{"recipient_id": req.RecipientID}).
		OrderBy("created_at DESC", "id ASC")

	if req.UnreadOnly {
		sb = sb.Where(squirrel.Eq{"is_read": false})
	}

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

	notifications = make([]models.Notification, 0, req.Limit)

	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error %w", err)
		}

		notifications = append(notifications, n)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return notifications, nil
}

func (nr NotificationsPostgresRepo) GetNotification(ctx context.Context, id string) (n models.Notification, err error) {
	tx, err := nr.db.Begin(ctx)
	if err != nil {
		return models.Notification{}, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "get")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select(notificationColumns...).
		From(table).
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return models.Notification{}, fmt.Errorf("to sql error: %w", err)
	}

	n, err = scanNotification(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Notification{}, repo.ErrNotFound
		}

		return models.Notification{}, fmt.Errorf("scan error: %w", err)
	}

	return n, nil
}

func (nr NotificationsPostgresRepo) UnreadCount(ctx context.Context, recipientID string) (n int, err error) {
	tx, err := nr.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "unread count")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select("count(*)").
		From(table).
		Where(squirrel.Eq{"recipient_id": recipientID, "is_read": false}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("to sql error: %w", err)
	}

	if err = tx.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("scan error: %w", err)
	}

	return n, nil
}

// MarkRead flags a single notification of recipientID as read.
func (nr NotificationsPostgresRepo) MarkRead(ctx context.Context, id, recipientID string) error {
	ct, err := nr.markRead(ctx, squirrel.Eq{"id": id, "recipient_id": recipientID})
	if err != nil {
		return err
	}

	if ct == 0 {
		return repo.ErrNotFound
	}

	return nil
}

// MarkAllRead flags every unread notification of recipientID and returns how many changed.
func (nr NotificationsPostgresRepo) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	return nr.markRead(ctx, squirrel.Eq{"recipient_id": recipientID, "is_read": false})
}

func (nr NotificationsPostgresRepo) markRead(ctx context.Context, where squirrel.Sqlizer) (n int64, err error) {
	tx, err := nr.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "mark read")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Update(table).
		Set("is_read", true).
		Where(where).ToSql()
	if err != nil {
		return 0, fmt.Errorf("to sql error: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("exec error: %w", err)
	}

	return ct.RowsAffected(), nil
}

func (nr NotificationsPostgresRepo) DeleteNotification(ctx context.Context, id, recipientID string) (err error) {
	tx, err := nr.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "delete")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Delete(table).
		Where(squirrel.Eq{"id": id, "recipient_id": recipientID}).ToSql()
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

func scanNotification(row pgx.Row) (models.Notification, error) {
	var n models.Notification

	err := row.Scan(&n.ID, &n.RecipientID, &n.Type, &n.Title, &n.Message,
		&n.RelatedQuestionID, &n.RelatedAnswerID, &n.SenderUsername, &n.Read, &n.CreatedAt)

	return n, err //nolint:wrapcheck
}
