// Package app assembles the stores, services and HTTP stack from a Config
// and runs the server until its context is cancelled.
package app

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wikicms/db"
	"wikicms/internal/article"
	"wikicms/internal/auth"
	"wikicms/internal/config"
	"wikicms/internal/eventlog"
	"wikicms/internal/session"
	"wikicms/internal/user"
	"wikicms/internal/web"
	"wikicms/middleware"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Config   *config.Config
	Articles *article.ArticleService
	Users    *user.UserService
	Events   *eventlog.EventLogService
	Router   *mux.Router
	Handler  http.Handler

	logger    *zap.SugaredLogger
	dbManager *db.DBManager
	sqliteDB  *sql.DB
	tlsConfig *tls.Config
}

// New builds the application and seeds its stores. TLS key material is read
// here, once, so a bad certificate stops startup before anything listens.
func New(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*App, error) {
	a := &App{Config: cfg, logger: logger}

	if cfg.TLSEnabled() {
		cert, err := tls.LoadX509KeyPair(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
		}
		a.tlsConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
	}

	if cfg.StoreDriver == config.SQLite {
		sqliteDB, err := db.ConnectToSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := db.InitializeSchema(sqliteDB); err != nil {
			sqliteDB.Close()
			return nil, err
		}
		a.sqliteDB = sqliteDB
	}

	repoFactory := db.NewRepositoryFactory(a.sqliteDB)
	a.dbManager = db.NewDBManager()

	a.Events = eventlog.NewEventLogService(repoFactory.NewEventLogRepository(), a.dbManager, logger)
	a.Articles = article.NewArticleService(repoFactory.NewArticleRepository(), a.dbManager, a.Events, logger)
	a.Users = user.NewUserService(repoFactory.NewUserRepository(), a.dbManager, logger)

	if err := a.Articles.Seed(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.Users.Seed(ctx); err != nil {
		a.Close()
		return nil, err
	}

	renderer, err := web.NewTemplateRenderer()
	if err != nil {
		a.Close()
		return nil, err
	}

	authService := auth.NewAuthService(a.Users, a.Events, logger)
	carrier := session.NewCarrier(cfg.SessionKeys, cfg.SessionMaxAge, cfg.SecureCookie, logger)
	webHandler := web.NewWebHandler(a.Articles, authService, carrier, renderer, cfg, logger)

	a.Router = webHandler.SetupRoutes()
	eventlog.NewEventLogHandlers(a.Events).Register(a.Router)
	a.Handler = middleware.Chain(a.Router, logger)

	return a, nil
}

// Run listens on the configured port and serves until ctx is done
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+a.Config.Port)
	if err != nil {
		return fmt.Errorf("port %s is not available: %w", a.Config.Port, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           a.Handler,
		TLSConfig:         a.tlsConfig,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Infow("Server listening", "addr", ln.Addr().String(), "tls", a.tlsConfig != nil)
		var err error
		if a.tlsConfig != nil {
			err = server.ServeTLS(ln, "", "")
		} else {
			err = server.Serve(ln)
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Shutting down the server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Close stops the store worker and releases the database
func (a *App) Close() error {
	if a.dbManager != nil {
		a.dbManager.Stop()
	}
	if a.sqliteDB != nil {
		return a.sqliteDB.Close()
	}
	return nil
}
