// Package main реализует точку входа сервиса учетных записей.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"goaccounts/internal/accounts/adapters/grpc"
	"goaccounts/internal/accounts/adapters/health"
	httpServer "goaccounts/internal/accounts/adapters/http"
	"goaccounts/internal/accounts/adapters/http/middleware"
	"goaccounts/internal/accounts/adapters/postgres"
	"goaccounts/internal/accounts/adapters/services"
	"goaccounts/internal/accounts/adapters/session"
	"goaccounts/internal/accounts/app"
	"goaccounts/internal/accounts/config"
	"goaccounts/internal/accounts/db"
	redisdb "goaccounts/pkg/db/redis"
	"goaccounts/pkg/logger"
	"goaccounts/pkg/retry"
	"goaccounts/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "ACCOUNTS_LOGGER_MODE"
	EnvLoggerLevel = "ACCOUNTS_LOGGER_LEVEL"
	EnvFile        = "ACCOUNTS_ENV_FILE"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrInitDB               = "failed to initialize database"
	ErrInitRedis            = "failed to connect to session store"
	ErrInitServices         = "failed to initialize services"
	ErrStartGRPC            = "failed to start gRPC server"
	ErrStartHTTPServer      = "failed to start HTTP server"
	ErrCloseRedis           = "failed to close session store connection"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "accounts service started"
	LogServiceShutdownDone = "accounts service shutdown complete"
	LogClosingDB           = "closing database connections"
	LogClosingRedis        = "closing session store connection"
	LogStoppingGRPC        = "stopping gRPC server"
	LogStoppingHTTP        = "stopping HTTP server"
	LogInitRepo            = "initializing repositories"
	LogInitServices        = "initializing services"
	LogInitUseCases        = "initializing use cases"
	LogInitHTTPServer      = "initializing HTTP server"
	LogStartingHTTP        = "starting HTTP server"
	LogStartingGRPC        = "starting gRPC health server"
)

const healthCheckInterval = 10 * time.Second

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := logger.Log(ctx).Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		envFile := os.Getenv(EnvFile)
		if envFile == "" {
			envFile = config.DefaultEnvFile
		}

		cfg, err := config.Load(ctx, envFile)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		var database *db.DB
		err = retry.Do(ctx, "postgres", cfg.Startup.Policy(), func(ctx context.Context) error {
			var dbErr error
			database, dbErr = db.New(ctx, &cfg.Postgres, cfg.Postgres.MigrationsDir)
			return dbErr
		})
		if err != nil {
			log.Error(ctx, ErrInitDB, zap.Error(err))
			exitCode = 1
			return
		}

		var redisClient *redisdb.Client
		err = retry.Do(ctx, "redis", cfg.Startup.Policy(), func(ctx context.Context) error {
			var redisErr error
			redisClient, redisErr = redisdb.NewClient(ctx, cfg.Redis.ClientConfig())
			return redisErr
		})
		if err != nil {
			log.Error(ctx, ErrInitRedis, zap.Error(err))
			database.Close(ctx)
			exitCode = 1
			return
		}

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(cfg.Logging.GetEnvironment())),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		log.Info(ctx, LogInitRepo)
		repoFactory := postgres.NewRepositoryFactory(database.Pool())
		userRepo := repoFactory.UserRepository()
		sessionStore := session.NewRedisStore(redisClient.RawClient(), cfg.Session.KeyPrefix)

		log.Info(ctx, LogInitServices)
		serviceFactory, err := services.NewServiceFactory(
			cfg.Hasher.Algorithm,
			cfg.Hasher.Argon2Params(),
			cfg.Hasher.BCryptCost,
			cfg.Session.Secret,
			cfg.Session.Issuer,
			cfg.Session.MaxAge,
		)
		if err != nil {
			log.Error(ctx, ErrInitServices, zap.Error(err))
			database.Close(ctx)
			_ = redisClient.Close(ctx)
			exitCode = 1
			return
		}

		log.Info(ctx, LogInitUseCases)
		accountUseCase := app.NewAccountUseCase(userRepo, serviceFactory.PasswordService(), cfg.Session.CookieName)

		checker := health.NewChecker(time.Second).
			Register("postgres", database).
			Register("sessions", sessionStore)

		log.Info(ctx, LogInitHTTPServer)
		httpApp := httpServer.NewApp(fiber.Config{
			AppName:      "goaccounts",
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
			IdleTimeout:  cfg.HTTP.IdleTimeout,
		}, httpServer.RouterDeps{
			Accounts: accountUseCase,
			Session: middleware.SessionConfig{
				Store:  sessionStore,
				Signer: serviceFactory.CookieSigner(),
				Cookie: cfg.Session.Cookie(),
			},
			Health: checker,
		})

		log.Info(ctx, LogStartingGRPC)
		grpcServer := grpc.New(&cfg.GRPC)
		if err := grpcServer.Start(ctx); err != nil {
			log.Error(ctx, ErrStartGRPC, zap.Error(err))
			database.Close(ctx)
			_ = redisClient.Close(ctx)
			exitCode = 1
			return
		}

		watchCtx, stopWatch := context.WithCancel(ctx)
		go grpcServer.WatchHealth(watchCtx, checker, healthCheckInterval)

		log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
		go func() {
			if err := httpApp.Listen(cfg.HTTP.GetAddress(), fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
				log.Error(ctx, ErrStartHTTPServer, zap.Error(err))
			}
		}()

		shutdown.Wait(ctx, cfg.Shutdown.GetTimeout(),
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingHTTP)
				return httpApp.ShutdownWithContext(ctx)
			},
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingGRPC)
				stopWatch()
				grpcServer.Stop(ctx)
				return nil
			},
		)

		// Хранилища закрываются после остановки серверов.
		log.Info(ctx, LogClosingDB)
		database.Close(ctx)
		log.Info(ctx, LogClosingRedis)
		if err := redisClient.Close(ctx); err != nil {
			log.Error(ctx, ErrCloseRedis, zap.Error(err))
		}

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
