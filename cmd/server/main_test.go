package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"gorm.io/gorm"

	"foodgram/internal/config"
	"foodgram/internal/db/mock"
	"foodgram/internal/images"
	"foodgram/internal/server"
)

type stubServer struct {
	startErr       error
	stopErr        error
	blockUntilStop bool

	startCalled bool
	stopCalled  bool

	startGate   chan struct{}
	startNotify chan struct{}
}

func newStubServer(startErr, stopErr error, block bool) *stubServer {
	s := &stubServer{
		startErr:       startErr,
		stopErr:        stopErr,
		blockUntilStop: block,
		startNotify:    make(chan struct{}),
	}
	if block {
		s.startGate = make(chan struct{})
	}
	return s
}

func (s *stubServer) Start() error {
	s.startCalled = true
	close(s.startNotify)
	if s.blockUntilStop {
		<-s.startGate
	}
	return s.startErr
}

func (s *stubServer) Stop() error {
	s.stopCalled = true
	if s.blockUntilStop {
		close(s.startGate)
	}
	return s.stopErr
}

func restoreGlobals(t *testing.T) {
	t.Helper()
	originalLoadConfig := loadConfigFunc
	originalSetLogLevel := setLogLevelFunc
	originalMock := newMockDatabaseFunc
	originalConfigure := configureDatabase
	originalImages := newImageStoreFunc
	originalSessions := newSessionStoreFunc
	originalNewServer := newServerFunc
	originalSubscribe := subscribeShutdownSig
	t.Cleanup(func() {
		loadConfigFunc = originalLoadConfig
		setLogLevelFunc = originalSetLogLevel
		newMockDatabaseFunc = originalMock
		configureDatabase = originalConfigure
		newImageStoreFunc = originalImages
		newSessionStoreFunc = originalSessions
		newServerFunc = originalNewServer
		subscribeShutdownSig = originalSubscribe
	})
}

func testConfig(t *testing.T) config.Config {
	return config.Config{
		Server:   config.ServerConfig{Addr: ":8080"},
		Database: config.DatabaseConfig{UseMock: true},
		Logging:  config.LoggingConfig{Level: "debug"},
		Auth: config.AuthConfig{
			Session: config.SessionConfig{
				Lifetime:     time.Hour,
				CookieName:   "test",
				CookieSecure: true,
			},
		},
		Images: config.ImagesConfig{
			Backend: config.ImageBackendDisk,
			Dir:     t.TempDir(),
			BaseURL: "/media/recipes",
		},
		Recipes: config.RecipesConfig{RecipesLimit: 3, PageSize: 6},
	}
}

func TestRunUsesMockDatabaseWhenConfigured(t *testing.T) {
	restoreGlobals(t)
	cfg := testConfig(t)

	var mockCalled bool
	var captured server.Config
	loadConfigFunc = func() (config.Config, error) { return cfg, nil }
	setLogLevelFunc = func(level string) error { return nil }
	newMockDatabaseFunc = func(ctx context.Context) (*gorm.DB, error) {
		mockCalled = true
		return mock.Open(ctx)
	}
	configureDatabase = func(config.DatabaseConfig) (*gorm.DB, error) {
		t.Fatal("configureDatabase should not be called when mock is enabled")
		return nil, nil
	}

	serverStub := newStubServer(http.ErrServerClosed, nil, true)
	newServerFunc = func(c server.Config) (serverLifecycle, error) {
		captured = c
		return serverStub, nil
	}

	shutdownCh := make(chan os.Signal, 1)
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		return shutdownCh, func() {}
	}

	go func() {
		<-serverStub.startNotify
		shutdownCh <- syscall.SIGTERM
	}()

	code := run(context.Background())
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !mockCalled {
		t.Fatal("expected mock database to be used")
	}
	if !serverStub.startCalled || !serverStub.stopCalled {
		t.Fatal("expected server start and stop to be invoked")
	}
	if captured.Service == nil || captured.Session.CookieName != "test" {
		t.Fatalf("unexpected server config %+v", captured)
	}
	if captured.MediaDir != cfg.Images.Dir || captured.MediaURL != "/media/recipes" {
		t.Fatalf("expected disk media to be served, got %q %q", captured.MediaDir, captured.MediaURL)
	}
	if err := captured.Ping(context.Background()); err != nil {
		t.Fatalf("expected ping to succeed: %v", err)
	}
}

func TestRunReturnsErrorWhenServerStartFails(t *testing.T) {
	restoreGlobals(t)
	cfg := testConfig(t)

	loadConfigFunc = func() (config.Config, error) { return cfg, nil }
	setLogLevelFunc = func(string) error { return nil }
	newMockDatabaseFunc = mock.Open

	serverStub := newStubServer(errors.New("listener failure"), nil, false)
	newServerFunc = func(server.Config) (serverLifecycle, error) {
		return serverStub, nil
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		return make(chan os.Signal), func() {}
	}

	code := run(context.Background())
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if serverStub.stopCalled {
		t.Fatal("server stop should not be called on start error")
	}
}

func TestRunHandlesDatabaseConfigurationError(t *testing.T) {
	restoreGlobals(t)
	cfg := testConfig(t)
	cfg.Database = config.DatabaseConfig{URL: "postgres://example", UseMock: false}

	loadConfigFunc = func() (config.Config, error) { return cfg, nil }
	setLogLevelFunc = func(string) error { return nil }
	newMockDatabaseFunc = func(context.Context) (*gorm.DB, error) {
		t.Fatal("mock database should not be used when URL is configured")
		return nil, nil
	}
	configureDatabase = func(config.DatabaseConfig) (*gorm.DB, error) {
		return nil, errors.New("db connection refused")
	}

	code := run(context.Background())
	if code != 1 {
		t.Fatalf("expected exit code 1 on database configuration failure, got %d", code)
	}
}

func TestRunHandlesImageStoreError(t *testing.T) {
	restoreGlobals(t)
	cfg := testConfig(t)

	loadConfigFunc = func() (config.Config, error) { return cfg, nil }
	setLogLevelFunc = func(string) error { return nil }
	newMockDatabaseFunc = mock.Open
	newImageStoreFunc = func(context.Context, config.ImagesConfig) (images.Store, error) {
		return nil, errors.New("bucket unreachable")
	}
	newServerFunc = func(server.Config) (serverLifecycle, error) {
		t.Fatal("server should not be created when image storage fails")
		return nil, nil
	}

	if code := run(context.Background()); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestBuildServerConfigUsesSharedSessionStore(t *testing.T) {
	restoreGlobals(t)
	cfg := testConfig(t)
	cfg.Auth.Session.RedisURL = "redis://cache:6379/0"

	store := memstore.New()
	var requested string
	newSessionStoreFunc = func(_ context.Context, url string) (scs.Store, error) {
		requested = url
		return store, nil
	}

	database, err := mock.Open(context.Background())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	srvCfg, err := buildServerConfig(context.Background(), cfg, database)
	if err != nil {
		t.Fatalf("buildServerConfig: %v", err)
	}
	if requested != cfg.Auth.Session.RedisURL || srvCfg.Session.Store != store {
		t.Fatalf("expected shared session store for %q, got %q", cfg.Auth.Session.RedisURL, requested)
	}

	newSessionStoreFunc = func(context.Context, string) (scs.Store, error) {
		return nil, errors.New("redis unreachable")
	}
	if _, err := buildServerConfig(context.Background(), cfg, database); err == nil {
		t.Fatal("expected error when the session store cannot be reached")
	}
}

func TestRunReturnsErrorWhenLogLevelInvalid(t *testing.T) {
	restoreGlobals(t)

	cfg := config.Config{Logging: config.LoggingConfig{Level: "invalid"}}
	loadConfigFunc = func() (config.Config, error) { return cfg, nil }
	setLogLevelFunc = func(string) error { return errors.New("invalid level") }

	code := run(context.Background())
	if code != 1 {
		t.Fatalf("expected exit code 1 for invalid log level, got %d", code)
	}
}
