package main

import (
	"context"
	"errors"
	"io/fs"
	"os/signal"
	"syscall"
	"time"

	_ "expense_tracker/docs" // swagger spec
	"expense_tracker/internal/config"
	"expense_tracker/internal/handlers"
	"expense_tracker/internal/logger"
	"expense_tracker/internal/notify"
	"expense_tracker/internal/repository"
	"expense_tracker/internal/repository/db"
	"expense_tracker/internal/repository/postgres"
	"expense_tracker/internal/server"
	"expense_tracker/internal/service"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const storeConnectTimeout = 10 * time.Second

// @title                       Expense Tracker API
// @version                     1.0
// @description                 Personal expense tracking: accounts, owner-scoped expenses and a live feed.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Get(logger.InfoLevel).Warnw("failed to read .env", "err", err)
	}

	cfg, err := config.Load("configs")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Init(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to init store", "driver", cfg.DBDriver, "err", err)
	}
	defer closeStore()

	notifier := openNotifier(cfg, log)
	defer func() {
		if err := notifier.Close(); err != nil {
			log.Warnw("failed to close notifier", "err", err)
		}
	}()

	// wire dependencies
	tokens := service.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	services := service.NewService(repos, tokens, notifier, log)
	apiHandler := handlers.NewHandler(services, log, handlers.Options{AllowedOrigins: cfg.CORSOrigins})
	srv := server.New(cfg.HTTPAddress(), apiHandler.InitRoutes())

	if err := serve(ctx, srv, cfg.ShutdownTimeout, log); err != nil {
		log.Errorw("server stopped with error", "err", err)
		return
	}
	log.Infow("server stopped")
}

// openStore opens the configured backend and returns its repositories and a closer.
func openStore(ctx context.Context, cfg config.Config, log *logger.Logger) (*repository.Repository, func(), error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		ctx, cancel := context.WithTimeout(ctx, storeConnectTimeout)
		defer cancel()

		store, err := postgres.New(ctx, cfg.DBDSN)
		if err != nil {
			return nil, nil, err
		}
		log.Infow("database connected", "driver", cfg.DBDriver)
		return store.Repository(), store.Close, nil
	default:
		conn, err := db.InitDB(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		log.Infow("database connected", "driver", cfg.DBDriver, "path", cfg.DBPath)
		return repository.NewRepository(conn), func() {
			if err := conn.Close(); err != nil {
				log.Errorw("failed to close sqlite", "err", err)
			}
		}, nil
	}
}

// openNotifier falls back to a no-op notifier when the broker is unset or unreachable.
func openNotifier(cfg config.Config, log *logger.Logger) notify.Notifier {
	if cfg.AMQPURL == "" {
		return notify.Noop{}
	}
	n, err := notify.NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
	if err != nil {
		log.Warnw("amqp unavailable, change notifications disabled", "err", err)
		return notify.Noop{}
	}
	log.Infow("amqp notifier ready", "exchange", cfg.AMQPExchange, "routing_key", cfg.AMQPRoutingKey)
	return n
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, srv *server.Server, shutdownTimeout time.Duration, log *logger.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infow("server started", "addr", srv.Addr())
		return srv.Run()
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Infow("shutting down server...")

		// allow in-flight requests to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
