// Package repository holds SQL shared by the per-entity postgres repositories.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// ApplyVote records userID's vote on a row of table and adjusts its votes column.
// Repeating the same vote removes it; switching direction moves the tally by two.
// It reports whether the vote was removed.
func ApplyVote(ctx context.Context, tx pgx.Tx, table, targetID, userID string, value int) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	target := squirrel.Eq{"target_type": table, "target_id": targetID, "user_id": userID}

	query, args, err := psql.Select("value").From("votes").Where(target).ToSql()
	if err != nil {
		return false, fmt.Errorf("to sql error: %w", err)
	}

	var existing int

	err = tx.QueryRow(ctx, query, args...).Scan(&existing)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("scan error: %w", err)
	}

	var (
		delta   int
		removed bool
		stmt    squirrel.Sqlizer
	)

	switch {
	case existing == value:
		delta = -value
		removed = true
		stmt = psql.Delete("votes").Where(target)
	case existing == 0:
		delta = value
		stmt = psql.Insert("votes").
			Columns("target_type", "target_id", "user_id", "value").
			Values(table, targetID, userID, value)
	default:
		delta = value - existing
		stmt = psql.Update("votes").Set("value", value).Where(target)
	}

	query, args, err = stmt.ToSql()
	if err != nil {
		return false, fmt.Errorf("to sql error: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return false, fmt.Errorf("exec vote error: %w", err)
	}

	query, args, err = psql.Update(table).
		Set("votes", squirrel.Expr("votes + ?", delta)).
		Where(squirrel.Eq{"id": targetID}).ToSql()
	if err != nil {
		return false, fmt.Errorf("to sql error: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return false, fmt.Errorf("exec tally error: %w", err)
	}

	return removed, nil
}

// DeleteVotes drops every vote cast on the given rows.
func DeleteVotes(ctx context.Context, tx pgx.Tx, table string, targetIDs ...string) error {
	if len(targetIDs) == 0 {
		return nil
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Delete("votes").
		Where(squirrel.Eq{"target_type": table, "target_id": targetIDs}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	return nil
}
