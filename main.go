package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"

	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/abdullah0325/crud-neon/config"
	"github.com/abdullah0325/crud-neon/database"
	"github.com/abdullah0325/crud-neon/handlers"
	"github.com/abdullah0325/crud-neon/logger"
	"github.com/abdullah0325/crud-neon/middleware"
	"github.com/abdullah0325/crud-neon/store"
)

func main() {
	fx.New(
		fx.Provide(
			loadConfig,
			newLogger,
			newDB,
			store.New,
			func(s *store.Store) handlers.StudentStore { return s },
			func(s *store.Store) handlers.Pinger { return s },
			handlers.NewStudentHandler,
			handlers.NewHealthHandler,
			newRouter,
			newHTTPServer,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(migrate, func(*http.Server) {}),
	).Run()
}

func loadConfig() (*config.Config, error) {
	path, ok := os.LookupEnv("CONFIG_PATH")
	if !ok {
		path = "config.yaml"
	}
	return config.Load(path)
}

func newLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(func() {
		_ = log.Sync()
	}))
	return log, nil
}

func newDB(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*sqlx.DB, error) {
	db, err := database.InitDB(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(func() error {
		log.Info("closing database pool")
		return db.Close()
	}))
	return db, nil
}

func migrate(cfg *config.Config, db *sqlx.DB, log *zap.Logger) error {
	if !cfg.AutoMigrate {
		log.Info("auto migration disabled")
		return nil
	}
	return database.Migrate(db, log)
}

func newRouter(students *handlers.StudentHandler, health *handlers.HealthHandler, cfg *config.Config, log *zap.Logger) http.Handler {
	cors := middleware.CORSConfig{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowCredentials: true,
	}
	return handlers.NewRouter(students, health, cors, log)
}

func newHTTPServer(lc fx.Lifecycle, sd fx.Shutdowner, cfg *config.Config, handler http.Handler, log *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("server started", zap.String("addr", srv.Addr))
			go serve(srv, ln, sd, log)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
			defer cancel()
			log.Info("shutting down server")
			return srv.Shutdown(ctx)
		},
	})
	return srv
}

// serve blocks until the server stops. An unexpected failure shuts the
// whole application down instead of leaving it running without a listener.
func serve(srv *http.Server, ln net.Listener, sd fx.Shutdowner, log *zap.Logger) {
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", zap.Error(err))
		if err := sd.Shutdown(fx.ExitCode(1)); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}
}
