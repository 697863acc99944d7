package pgtools

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"github.com/Leopold1975/stackit/internal/pkg/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // driver for migrations
	"github.com/pressly/goose/v3"
)

// DB is the subset of *pgxpool.Pool the repositories use. pgxmock pools satisfy it too.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

const maxPingDelay = 10 * time.Second

// Connect opens the forum pool and pings it with a growing delay until the database
// answers, the delay passes maxPingDelay or ctx is done.
func Connect(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	db, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("cannot create db pool error: %w", err)
	}

	for delay := time.Second; ; delay += time.Second {
		err := db.Ping(ctx)
		if err == nil {
			return db, nil
		}

		if delay > maxPingDelay {
			db.Close()

			return nil, fmt.Errorf("cannot ping db error: %w", err)
		}

		t := time.NewTimer(delay)

		select {
		case <-ctx.Done():
			t.Stop()
			db.Close()

			return nil, fmt.Errorf("context error: %w", ctx.Err())
		case <-t.C:
		}
	}
}

// ApplyMigration runs the embedded goose migrations up to cfg.Version (0 means latest).
func ApplyMigration(cfg config.PostgresDB, migrations fs.FS) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose set dialect error: %w", err)
	}

	dbM, err := goose.OpenDBWithDriver("pgx", cfg.MigrationConnString())
	if err != nil {
		return fmt.Errorf("goose open pgx db error: %w", err)
	}
	defer dbM.Close()

	if cfg.Reload {
		if err := goose.DownTo(dbM, ".", 0); err != nil {
			return fmt.Errorf("goose down error: %w", err)
		}
	}

	if cfg.Version == 0 {
		if err := goose.Up(dbM, "."); err != nil {
			return fmt.Errorf("goose up error: %w", err)
		}

		return nil
	}

	if err := goose.UpTo(dbM, ".", int64(cfg.Version)); err != nil {
		return fmt.Errorf("goose up error: %w", err)
	}

	return nil
}

func CommitOrRollback(ctx context.Context, tx pgx.Tx, err error, where string) error {
	if err == nil {
		if errT := tx.Commit(ctx); errT != nil {
			err = fmt.Errorf("commit error: %w", errT)
		}
	} else {
		if errT := tx.Rollback(ctx); errT != nil {
			err = fmt.Errorf("%s error: %w rollback error: %w", where, err, errT)
		} else {
			err = fmt.Errorf("%s error: %w", where, err)
		}
	}

	return err
}

// Shutdown closes the pool, giving up when ctx expires first.
func Shutdown(ctx context.Context, db DB) error {
	done := make(chan struct{})

	go func() {
		db.Close()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("context error: %w", ctx.Err())
	case <-done:
		return nil
	}
}
