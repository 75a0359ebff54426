package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexedwards/scs/v2"
	"gorm.io/gorm"

	"foodgram/internal/authz"
	"foodgram/internal/config"
	"foodgram/internal/db"
	"foodgram/internal/db/mock"
	"foodgram/internal/images"
	applog "foodgram/internal/log"
	"foodgram/internal/server"
	"foodgram/internal/service"
	"foodgram/internal/sessions"
	"foodgram/internal/store"
)

type serverLifecycle interface {
	Start() error
	Stop() error
}

var (
	loadConfigFunc      = config.Load
	setLogLevelFunc     = applog.SetLevel
	newMockDatabaseFunc = mock.New
	configureDatabase   = db.Configure
	newImageStoreFunc   = images.New
	newSessionStoreFunc = func(ctx context.Context, url string) (scs.Store, error) {
		return sessions.NewRedisStore(ctx, url)
	}
	newServerFunc = func(cfg server.Config) (serverLifecycle, error) {
		return server.New(cfg)
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		return ch, func() { signal.Stop(ch) }
	}
)

func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	cfg, err := loadConfigFunc()
	if err != nil {
		applog.Error(ctx, "failed to load configuration", "error", err)
		return 1
	}
	if err := setLogLevelFunc(cfg.Logging.Level); err != nil {
		applog.Error(ctx, "invalid log level", "level", cfg.Logging.Level, "error", err)
		return 1
	}

	var database *gorm.DB
	if cfg.Database.UseMock {
		applog.Info(ctx, "using seeded in-memory database")
		database, err = newMockDatabaseFunc(ctx)
	} else {
		database, err = configureDatabase(cfg.Database)
	}
	if err != nil {
		applog.Error(ctx, "failed to configure database", "error", err)
		return 1
	}

	srvCfg, err := buildServerConfig(ctx, cfg, database)
	if err != nil {
		applog.Error(ctx, "failed to assemble application", "error", err)
		return 1
	}

	srv, err := newServerFunc(srvCfg)
	if err != nil {
		applog.Error(ctx, "failed to create server", "error", err)
		return 1
	}

	shutdown, unsubscribe := subscribeShutdownSig()
	defer unsubscribe()

	errCh := make(chan error, 1)
	go func() {
		applog.Info(ctx, "starting http server", "addr", cfg.Server.Addr)
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error(ctx, "server encountered an error", "error", err)
			return 1
		}
		return 0
	case sig := <-shutdown:
		applog.Info(ctx, "shutting down http server", "signal", sig.String())
	}

	if err := srv.Stop(); err != nil {
		applog.Error(ctx, "graceful shutdown failed", "error", err)
		return 1
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		applog.Error(ctx, "server exited with error", "error", err)
		return 1
	}
	return 0
}

// buildServerConfig wires the store, image backend, authorization and
// service layers on top of an open database.
func buildServerConfig(ctx context.Context, cfg config.Config, database *gorm.DB) (server.Config, error) {
	st, err := store.New(database)
	if err != nil {
		return server.Config{}, err
	}
	imageStore, err := newImageStoreFunc(ctx, cfg.Images)
	if err != nil {
		return server.Config{}, err
	}
	enforcer, err := authz.NewEnforcer()
	if err != nil {
		return server.Config{}, err
	}
	svc, err := service.New(st, imageStore, enforcer, service.Options{
		RecipesLimit: cfg.Recipes.RecipesLimit,
		PageSize:     cfg.Recipes.PageSize,
	})
	if err != nil {
		return server.Config{}, err
	}

	srvCfg := server.Config{
		Addr:              cfg.Server.Addr,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		CORSOrigins:       cfg.Server.CORSOrigins,
		RateLimitRequests: cfg.Server.RateLimitRequests,
		RateLimitWindow:   cfg.Server.RateLimitWindow,
		Session: server.SessionConfig{
			Lifetime:     cfg.Auth.Session.Lifetime,
			CookieName:   cfg.Auth.Session.CookieName,
			CookieDomain: cfg.Auth.Session.CookieDomain,
			CookieSecure: cfg.Auth.Session.CookieSecure,
		},
		Service: svc,
		Ping:    pinger(st.DB()),
	}
	if url := cfg.Auth.Session.RedisURL; url != "" {
		sessionStore, err := newSessionStoreFunc(ctx, url)
		if err != nil {
			return server.Config{}, fmt.Errorf("session store: %w", err)
		}
		srvCfg.Session.Store = sessionStore
	}
	if disk, ok := imageStore.(*images.DiskStore); ok {
		srvCfg.MediaDir = disk.Dir()
		srvCfg.MediaURL = cfg.Images.BaseURL
	}
	return srvCfg, nil
}

func pinger(database *gorm.DB) func(context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := database.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
