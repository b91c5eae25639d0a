package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/auth"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/config"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/database"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/logging"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/repository"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/server"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/storage"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	stdout := logging.Setup(cfg.IsProduction())

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Token verification
	decoder, closeDecoder, err := newDecoder(cfg)
	if err != nil {
		slog.Error("token decoder setup failed", "mode", cfg.AuthMode, "error", err)
		os.Exit(1)
	}
	defer closeDecoder()
	authn := auth.NewAuthenticator(decoder, slog.Default())

	// Persistence and object storage
	deps := server.Deps{Authenticator: authn}
	var stopLogging func()

	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		slog.Warn("using in-memory storage; data is lost on restart")
		repo := repository.NewMemory()
		deps.ReportCards, deps.Profiles, deps.DB = repo, repo, repo
		deps.Store = storage.NewMemoryStore("http://localhost:" + cfg.Port + "/files")
		stopLogging = func() {}

	default:
		db, err := database.Connect(cfg)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := database.Close(db); err != nil {
				slog.Error("database close error", "error", err)
			}
		}()

		if err := database.Migrate(db); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}

		// PostgreSQL log handler (ERROR+ async batch)
		pgLogHandler := logging.NewPGHandler(db)
		slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, pgLogHandler)))

		cleanupDone := make(chan struct{})
		logging.StartCleanup(db, cfg.LogRetentionDays, cleanupDone)
		stopLogging = func() {
			close(cleanupDone)
			pgLogHandler.Stop()
		}

		repo := repository.NewPostgres(db)
		deps.ReportCards, deps.Profiles, deps.DB = repo, repo, repo

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:     cfg.S3Bucket,
			Region:     cfg.S3Region,
			Endpoint:   cfg.S3Endpoint,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			PublicURL:  cfg.S3PublicURL,
			PresignTTL: cfg.S3PresignTTL,
		})
		if err == nil {
			if pingErr := store.Ping(ctx); pingErr != nil {
				slog.Warn("object store not reachable at startup", "bucket", cfg.S3Bucket, "error", pingErr)
			}
		}
		cancel()
		if err != nil {
			slog.Error("object store setup failed", "error", err)
			os.Exit(1)
		}
		deps.Store = store
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	app := server.New(cfg, deps)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "auth_mode", cfg.AuthMode, "store", cfg.StoreBackend)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	stopLogging()
	sentry.Flush(2 * time.Second)

	slog.Info("server stopped")
}

// newDecoder picks token verification from AUTH_MODE. The returned func
// releases background key refresh.
func newDecoder(cfg *config.Config) (auth.Decoder, func(), error) {
	var opts []auth.SignedOption
	if cfg.AuthIssuer != "" {
		opts = append(opts, auth.WithIssuer(cfg.AuthIssuer))
	}
	if cfg.AuthAudience != "" {
		opts = append(opts, auth.WithAudience(cfg.AuthAudience))
	}

	switch cfg.AuthMode {
	case config.AuthModeJWKS:
		d, err := auth.NewJWKSDecoder(cfg.AuthJWKSURL, opts...)
		if err != nil {
			return nil, nil, err
		}
		return d, d.Close, nil
	case config.AuthModeSecret:
		d := auth.NewSecretDecoder([]byte(cfg.JWTSecret), opts...)
		return d, d.Close, nil
	default:
		slog.Warn("AUTH_MODE=claims: token signatures are NOT verified")
		return auth.NewClaimsDecoder(), func() {}, nil
	}
}
