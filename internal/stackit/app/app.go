package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Leopold1975/stackit/internal/pkg/config"
	"github.com/Leopold1975/stackit/internal/pkg/pgtools"
	"github.com/Leopold1975/stackit/internal/pkg/sanitize"
	"github.com/Leopold1975/stackit/internal/pkg/validation"
	"github.com/Leopold1975/stackit/internal/stackit/api/server"
	"github.com/Leopold1975/stackit/internal/stackit/migrations"
	ar "github.com/Leopold1975/stackit/internal/stackit/repository/answerrepo/postgres"
	nr "github.com/Leopold1975/stackit/internal/stackit/repository/notificationrepo/postgres"
	qr "github.com/Leopold1975/stackit/internal/stackit/repository/questionrepo/postgres"
	ur "github.com/Leopold1975/stackit/internal/stackit/repository/userrepo/postgres"
	"github.com/Leopold1975/stackit/internal/stackit/services/adminservice"
	"github.com/Leopold1975/stackit/internal/stackit/services/answerservice"
	"github.com/Leopold1975/stackit/internal/stackit/services/authservice"
	"github.com/Leopold1975/stackit/internal/stackit/services/notificationservice"
	"github.com/Leopold1975/stackit/internal/stackit/services/questionservice"
	"github.com/Leopold1975/stackit/pkg/logger"
)

type Server interface {
	Start(context.Context) error
	Shutdown(context.Context) error
}

type StackitApp struct {
	s   Server
	lg  logger.Logger
	cfg config.Config
}

func New(ctx context.Context, cfg config.Config) (StackitApp, error) {
	lg, err := logger.New(cfg.Logger)
	if err != nil {
		return StackitApp{}, fmt.Errorf("can't get logger error: %w", err)
	}

	if err := pgtools.ApplyMigration(cfg.PostgresDB, migrations.FS); err != nil {
		return StackitApp{}, fmt.Errorf("apply migration error: %w", err)
	}

	db, err := pgtools.Connect(ctx, cfg.PostgresDB.ConnString())
	if err != nil {
		return StackitApp{}, fmt.Errorf("postgres connect error: %w", err)
	}

	userRepo := ur.New(db)
	questionRepo := qr.New(db)
	answerRepo := ar.New(db)
	notificationRepo := nr.New(db)

	sanitizer := sanitize.New()
	validator := validation.New()

	authService := authservice.New(userRepo, cfg.Auth)

	if admin := cfg.Auth.Admin; admin.Username != "" {
		err := authService.EnsureAdmin(ctx, authservice.RegisterRequest{
			Username: admin.Username,
			Email:    admin.Email,
			FullName: admin.Username,
			Password: admin.Password,
		})
		if err != nil {
			db.Close()

			return StackitApp{}, fmt.Errorf("ensure admin error: %w", err)
		}
	}

	notificationService := notificationservice.New(notificationRepo)

	s := server.New(cfg.Server, server.Services{
		Auth:         authService,
		Questions:    questionservice.New(questionRepo, sanitizer, validator, lg),
		Answers:      answerservice.New(answerRepo, questionRepo, notificationService, sanitizer, validator, lg),
		Notification: notificationService,
		Admin:        adminservice.New(userRepo, questionRepo, answerRepo, lg),
	}, lg)

	return StackitApp{
		s:   s,
		lg:  lg,
		cfg: cfg,
	}, nil
}

func (sa *StackitApp) Run(ctx context.Context) {
	sa.lg.Infof("STARTED SERVER ON %s", sa.cfg.Server.Addr)

	go func() {
		if err := sa.s.Start(ctx); err != nil {
			sa.lg.Errorf("server start error: %s", err.Error())

			return
		}
	}()

	<-ctx.Done()

	ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	if err := sa.Stop(ctxS); err != nil { //nolint:contextcheck
		sa.lg.Errorf("server shutdown error: %s", err.Error())
	}
}

func (sa *StackitApp) Stop(ctx context.Context) error {
	if err := sa.s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	sa.lg.Info("Shutdowned successfully")
	_ = sa.lg.Sync()

	return nil
}
