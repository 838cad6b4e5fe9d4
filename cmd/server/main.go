package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"sitecms/docs"
	"sitecms/internal/auth"
	"sitecms/internal/cache"
	"sitecms/internal/config"
	"sitecms/internal/db"
	"sitecms/internal/handler"
	"sitecms/internal/logging"
	"sitecms/internal/repository"
	"sitecms/internal/router"
	"sitecms/internal/service"
	"sitecms/internal/session"
)

// @title Site CMS API
// @version 1.0
// @description Draft and published page content with backups, undo and a publish audit log.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name session
func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	gormDB, err := db.Open(cfg.DBDriver, cfg.MySQLDSN, cfg.SQLitePath)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		return err
	}
	repos := repository.New(gormDB)

	var cacheClient *cache.Client
	if cfg.UseRedis() {
		cacheClient = cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer cacheClient.Close()
	}

	store, err := newSessionStore(cfg, repos, cacheClient)
	if err != nil {
		return err
	}
	if purger, ok := store.(session.Purger); ok {
		janitor, err := session.NewJanitor(purger, cfg.SessionPurgeSchedule)
		if err != nil {
			return err
		}
		janitor.Start()
		defer janitor.Stop()
	}

	creds, err := auth.ResolveAdminCredentials(cfg)
	if err != nil {
		return err
	}
	if creds.UsesDefaults() {
		if cfg.IsProduction() {
			return errors.New("ADMIN_USERNAME and ADMIN_PASSWORD (or ADMIN_PASSWORD_HASH) must be set in production")
		}
		slog.Warn("using default admin credentials; set ADMIN_USERNAME and ADMIN_PASSWORD")
	}

	// Initialize auth components
	sessions := auth.NewSessionManager(store, creds, cfg.SessionMaxAge)
	gate := auth.NewGate(sessions, auth.NewCookieSigner(cfg.SessionSecret), cfg.IsProduction())

	// Initialize services
	live := service.NewHTTPLiveSource(cfg.LiveSiteURL, cfg.LiveFetchTimeout)
	authService := service.NewAuthService(sessions)
	contentService := service.NewContentService(repos.Content, live, cacheClient, cfg.CacheTTL)
	versioningService := service.NewVersioningService(repos, cacheClient)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, gate, router.Handlers{
		Auth:       handler.NewAuthHandler(authService, gate),
		Content:    handler.NewContentHandler(contentService),
		Versioning: handler.NewVersioningHandler(versioningService),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	slog.Info("swagger documentation available", "url", swaggerURL(cfg))
	if !cfg.ProtectDraftWrites {
		slog.Warn("draft write routes are public; set PROTECT_DRAFT_WRITES=true to require a session")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.ServerPort
		slog.Info("server listening", "addr", addr, "session_backend", cfg.SessionBackend, "db_driver", cfg.DBDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newSessionStore(cfg *config.Config, repos *repository.Repositories, cacheClient *cache.Client) (session.Store, error) {
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		return session.NewRedisStore(cacheClient.Redis()), nil
	case config.SessionBackendDatabase:
		return session.NewDatabaseStore(repos.Sessions), nil
	case config.SessionBackendMemory:
		return session.NewMemoryStore(), nil
	default:
		return nil, errors.New("unknown session backend " + cfg.SessionBackend)
	}
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
