// @title           GBR Security Service API
// @version         1.0
// @description     Residential security dashboard backend: sessions, arm/disarm and emergency calls.

// @BasePath  /api

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter the token with the `Bearer ` prefix
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"gbr-security-service/internal/app/routes"
	"gbr-security-service/internal/domain/services"
	"gbr-security-service/internal/domain/services/container"
	"gbr-security-service/internal/infrastructure/config"
	"gbr-security-service/internal/infrastructure/database"
	"gbr-security-service/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	// 加载.env文件，失败时继续使用已有的环境变量
	envErr := godotenv.Load()

	root := &cli.Command{
		Name:  "gbr-security-service",
		Usage: "Residential security dashboard backend",
		Flags: serveFlags(),
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			cfg := config.GetConfig()
			if err := logger.SetupLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogDir); err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			if envErr != nil {
				logger.Warning("could not load .env: %v", envErr)
			}
			return ctx, nil
		},
		After: func(ctx context.Context, cmd *cli.Command) error {
			logger.Sync()
			return nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServer(ctx, applyFlags(cmd))
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		logger.Error("%v", err)
		logger.Sync()
		os.Exit(1)
	}
}

// serveFlags are declared on the root command and inherited by serve
func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "port", Usage: "HTTP listen port, overrides SERVER_PORT"},
		&cli.StringFlag{Name: "migration-mode", Usage: "auto or drop, overrides DB_MIGRATION_MODE"},
	}
}

func applyFlags(cmd *cli.Command) *config.Config {
	cfg := config.GetConfig()
	if port := cmd.String("port"); port != "" {
		cfg.ServerPort = port
	}
	if mode := cmd.String("migration-mode"); mode != "" {
		cfg.DBMigrationMode = mode
	}
	return cfg
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API (default)",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServer(ctx, applyFlags(cmd))
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create the schema and seed the demo properties, then exit",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Value: "auto", Usage: "auto or drop"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.GetConfig()
			cfg.DBMigrationMode = cmd.String("mode")

			pool, err := openDatabase(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			logger.Info("migration finished in %s mode", cfg.DBMigrationMode)
			return nil
		},
	}
}

// openDatabase connects, migrates and seeds the property registry
func openDatabase(ctx context.Context, cfg *config.Config) (*database.ConnectionPool, error) {
	pool, err := database.NewConnectionPool(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.Migrate(pool.GetDB(), cfg.DBMigrationMode); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	registry := services.NewPropertyService(pool.GetDB(), logger.L())
	if err := registry.SeedIfEmpty(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return pool, nil
}

func runServer(ctx context.Context, cfg *config.Config) error {
	// 设置最大处理器数量
	runtime.GOMAXPROCS(runtime.NumCPU())

	pool, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	// 不可用时容器会退回内存会话
	redisClient := services.NewRedisService(cfg).Client

	serviceContainer := container.NewServiceContainer(pool.GetDB(), cfg, redisClient, logger.L())
	router := routes.SetupRouter(serviceContainer, cfg)

	printSystemInfo(pool)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening on http://%s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var serveErr error
	select {
	case sig := <-sigCh:
		logger.Info("received signal %s, shutting down", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown: %v", err)
	}
	if err := serviceContainer.Close(shutdownCtx); err != nil {
		logger.Error("service shutdown: %v", err)
	}
	return serveErr
}

// printSystemInfo 打印系统信息
func printSystemInfo(pool *database.ConnectionPool) {
	fields := []zap.Field{
		zap.Int("cpu", runtime.NumCPU()),
		zap.Int("goroutines", runtime.NumGoroutine()),
	}
	if stats, err := pool.Stats(); err == nil {
		fields = append(fields, zap.Any("db_pool", stats))
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	fields = append(fields, zap.Uint64("alloc_mib", m.Alloc/1024/1024), zap.Uint64("sys_mib", m.Sys/1024/1024))

	logger.L().Info("system info", fields...)
}
