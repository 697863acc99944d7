package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Leopold1975/stackit/internal/pkg/config"
	"github.com/Leopold1975/stackit/internal/pkg/redistools"
	"github.com/Leopold1975/stackit/internal/pkg/validation"
	"github.com/Leopold1975/stackit/internal/web/gateway"
	"github.com/Leopold1975/stackit/internal/web/server"
	"github.com/Leopold1975/stackit/internal/web/session"
	"github.com/Leopold1975/stackit/internal/web/session/redisstore"
	"github.com/Leopold1975/stackit/internal/web/views"
	"github.com/Leopold1975/stackit/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type Server interface {
	Start(context.Context) error
	Shutdown(context.Context) error
}

type WebApp struct {
	s   Server
	rdb *redis.Client
	lg  logger.Logger
	cfg config.WebConfig
}

func New(ctx context.Context, cfg config.WebConfig) (WebApp, error) {
	lg, err := logger.New(cfg.Logger)
	if err != nil {
		return WebApp{}, fmt.Errorf("can't get logger error: %w", err)
	}

	rdb, err := redistools.NewClient(ctx, cfg.RedisCache)
	if err != nil {
		return WebApp{}, fmt.Errorf("redis connect error: %w", err)
	}

	api := gateway.New(cfg.Gateway.BaseURL, cfg.Gateway.Timeout)
	sessions := session.NewManager(redisstore.New(rdb, cfg.RedisCache.ExpTime), api, lg)

	workspaces := views.NewRegistry(views.Deps{
		API: func(token string) views.API {
			return api.WithToken(token)
		},
		Validator:   validation.New(),
		SearchDelay: cfg.Views.SearchDelay,
	}, cfg.Views.MaxWorkspaces, cfg.Views.WorkspaceTTL)

	s, err := server.New(cfg.Server, sessions, workspaces, lg)
	if err != nil {
		rdb.Close()

		return WebApp{}, fmt.Errorf("server error: %w", err)
	}

	return WebApp{
		s:   s,
		rdb: rdb,
		lg:  lg,
		cfg: cfg,
	}, nil
}

func (wa *WebApp) Run(ctx context.Context) {
	wa.lg.Infof("STARTED WEB SERVER ON %s, API %s", wa.cfg.Server.Addr, wa.cfg.Gateway.BaseURL)

	go func() {
		if err := wa.s.Start(ctx); err != nil {
			wa.lg.Errorf("server start error: %s", err.Error())

			return
		}
	}()

	<-ctx.Done()

	ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	if err := wa.Stop(ctxS); err != nil { //nolint:contextcheck
		wa.lg.Errorf("server shutdown error: %s", err.Error())
	}
}

func (wa *WebApp) Stop(ctx context.Context) error {
	if err := wa.s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if err := wa.rdb.Close(); err != nil {
		return fmt.Errorf("redis close error: %w", err)
	}

	wa.lg.Info("Shutdowned successfully")
	_ = wa.lg.Sync()

	return nil
}
