package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/kanna-admin/kanna/internal/api"
	"github.com/kanna-admin/kanna/internal/config"
	"github.com/kanna-admin/kanna/internal/pkg/distlock"
	"github.com/kanna-admin/kanna/internal/pkg/logger"
	"github.com/kanna-admin/kanna/internal/render"
	"github.com/kanna-admin/kanna/internal/repository/memory"
	"github.com/kanna-admin/kanna/internal/repository/postgres"
	"github.com/kanna-admin/kanna/internal/service/user"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("address %s is already in use: %w", addr, err)
	}
	return ln.Close()
}

// extractHost returns the host portion of a postgres DSN for logging
// without leaking credentials.
func extractHost(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return "(unknown)"
	}
	rest := dsn[at+1:]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

// withConnectTimeout appends connect_timeout to a DSN unless it is set.
func withConnectTimeout(dsn string, seconds int) string {
	if strings.Contains(dsn, "connect_timeout") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%sconnect_timeout=%d", dsn, sep, seconds)
}

func openDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := withConnectTimeout(cfg.URL, 5)
	logger.Info("connecting to database", "host", extractHost(dsn))

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime())

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// openRedis returns nil when Redis is not configured or unreachable; the
// server then runs without email locks.
func openRedis(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if !cfg.Enabled() {
		logger.Info("redis not configured, email locks disabled")
		return nil
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		opts = &redis.Options{Addr: cfg.URL}
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis connection failed, email locks disabled", "addr", opts.Addr, "error", err)
		client.Close()
		return nil
	}
	logger.Info("redis connected", "addr", opts.Addr)
	return client
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	logger.SetRedactPII(cfg.Log.Redact())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		db   *sql.DB
		repo user.Repository
	)
	switch cfg.Storage.Type {
	case config.StoragePostgres:
		db, err = openDB(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		repo = postgres.NewUserRepo(db)
	default:
		logger.Warn("using in-memory storage, data is lost on restart")
		repo = memory.NewUserRepo()
	}

	redisClient := openRedis(ctx, cfg.Redis)
	if redisClient != nil {
		defer redisClient.Close()
	}

	var opts []user.Option
	if redisClient != nil {
		opts = append(opts, user.WithLocker(distlock.Factory(redisClient, cfg.Redis.LockTTL())))
	}
	users := user.NewService(repo, opts...)

	renderer, err := render.New()
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	server := api.NewServer(cfg, api.Deps{
		Users:    users,
		Renderer: renderer,
		Assets:   render.Assets(),
		DB:       db,
		Redis:    redisClient,
	})

	addr := cfg.Server.Addr()
	if err := checkPortAvailable(addr); err != nil {
		return err
	}

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", addr, "storage", cfg.Storage.Type, "env", cfg.App.Environment)
		if err := server.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-done:
		logger.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
