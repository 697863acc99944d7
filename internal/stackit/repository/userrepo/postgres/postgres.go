package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Leopold1975/stackit/internal/pkg/pgtools"
	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	"github.com/Leopold1975/stackit/internal/stackit/repository/userrepo"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var userColumns = []string{
	"id", "username", "email", "full_name", "password_hash", "user_role",
	"reputation", "is_active", "created_at", "updated_at",
}

type UsersPostgresRepo struct {
	db pgtools.DB
}

func New(db pgtools.DB) UsersPostgresRepo {
	return UsersPostgresRepo{
		db: db,
	}
}

func (ur UsersPostgresRepo) CreateUser(ctx context.Context, u models.User) (err error) {
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "create")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Insert("users").
		Columns(userColumns...).
		Values(u.ID, u.Username, u.Email, u.FullName, u.PasswordHash, u.Role,
			u.Reputation, u.Active, u.CreatedAt, u.UpdatedAt).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	_, err = tx.Exec(ctx, query, args...)
	if err != nil {
		target := new(pgconn.PgError)
		if errors.As(err, &target) {
			switch target.Code { //nolint:gocritic
			case "23505":
				return userrepo.ErrAlreadyExists
			}
		}

		return fmt.Errorf("exec error: %w", err)
	}

	return nil
}

func (ur UsersPostgresRepo) GetUser(ctx context.Context, username string) (models.User, error) {
	return ur.getUser(ctx, squirrel.Eq{"username": username})
}

func (ur UsersPostgresRepo) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return ur.getUser(ctx, squirrel.Eq{"id": id})
}

// FindConflict returns the first existing user holding username or email, skipping excludeID.
func (ur UsersPostgresRepo) FindConflict(ctx context.Context, username, email, excludeID string) (models.User, error) {
	where := squirrel.And{
		squirrel.Or{squirrel.Eq{"username": username}, squirrel.Eq{"email": email}},
	}

	if excludeID != "" {
		where = append(where, squirrel.NotEq{"id": excludeID})
	}

	return ur.getUser(ctx, where)
}

func (ur UsersPostgresRepo) getUser(ctx context.Context, where squirrel.Sqlizer) (u models.User, err error) {
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "get")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select(userColumns...).
		From("users").
		Where(where).
		Limit(1).ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("to sql error: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash, &u.Role,
		&u.Reputation, &u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, userrepo.ErrNotFound
		}

		return models.User{}, fmt.Errorf("scan error: %w", err)
	}

	return u, nil
}

func (ur UsersPostgresRepo) UpdateUser(ctx context.Context, u models.User) (err error) {
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "update")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Update("users").
		Set("username", u.Username).
		Set("email", u.Email).
		Set("full_name", u.FullName).
		Set("password_hash", u.PasswordHash).
		Set("updated_at", u.UpdatedAt).
		Where(squirrel.Eq{"id": u.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		target := new(pgconn.PgError)
		if errors.As(err, &target) && target.Code == "23505" {
			return userrepo.ErrAlreadyExists
		}

		return fmt.Errorf("exec error: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return userrepo.ErrNotFound
	}

	return nil
}

func (ur UsersPostgresRepo) SetActive(ctx context.Context, id string, active bool) (err error) {
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "set active")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Update("users").
		Set("is_active", active).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return userrepo.ErrNotFound
	}

	return nil
}

func (ur UsersPostgresRepo) ListUsers(ctx context.Context, offset, limit int) (users []models.User, err error) {
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "list")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select(userColumns...).
		From("users").
		OrderBy("created_at DESC").
		Offset(uint64(offset)).
		Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	users = make([]models.User, 0, limit)

	for rows.Next() {
		var u models.User

		if err = rows.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash, &u.Role,
			&u.Reputation, &u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		users = append(users, u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return users, nil
}

func (ur UsersPostgresRepo) CountUsers(ctx context.Context) (c userrepo.Counts, err error) {
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return userrepo.Counts{}, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "count")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select("count(*)", "count(*) FILTER (WHERE is_active)").
		From("users").ToSql()
	if err != nil {
		return userrepo.Counts{}, fmt.Errorf("to sql error: %w", err)
	}

	if err = tx.QueryRow(ctx, query, args...).Scan(&c.Total, &c.Active); err != nil {
		return userrepo.Counts{}, fmt.Errorf("scan error: %w", err)
	}

	return c, nil
}
