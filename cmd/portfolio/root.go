package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Lydell2627/portfolio-sub000/internal/api"
	"github.com/Lydell2627/portfolio-sub000/internal/cms"
	"github.com/Lydell2627/portfolio-sub000/internal/config"
	"github.com/Lydell2627/portfolio-sub000/internal/contact"
	"github.com/Lydell2627/portfolio-sub000/internal/content"
	"github.com/Lydell2627/portfolio-sub000/internal/fallback"
	"github.com/Lydell2627/portfolio-sub000/internal/imageurl"
	"github.com/Lydell2627/portfolio-sub000/internal/richtext"
	"github.com/Lydell2627/portfolio-sub000/internal/store"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

// sweepInterval is how often idle rate limit buckets are dropped.
const sweepInterval = time.Minute

var rootCmd = &cobra.Command{
	Use:          "portfolio",
	Short:        "Portfolio - agency website server",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.AddCommand(contentCmd)
}

func run(cmd *cobra.Command, args []string) error {
	// 1. Signal handling
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// 2. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("configuration loaded")

	// 3. Initialize logger
	logger := newLogger(os.Stdout, cfg.Log)
	slog.SetDefault(logger)
	slog.Info("logger initialized", "level", cfg.Log.Level)

	// 4. Initialize content source
	source, closeSource, err := newSource(cfg)
	if err != nil {
		return err
	}
	slog.Info("content source initialized", "provider", cfg.CMS.Provider)

	// 5. Initialize image URL builder
	images, err := imageurl.NewBuilder(cfg.Images, cfg.CMS)
	if err != nil {
		closeSource()
		return err
	}
	slog.Info("image builder initialized", "provider", images.Name())

	// 6. Initialize HTTP router
	static, err := fallback.Default()
	if err != nil {
		closeSource()
		return fmt.Errorf("load fallback content: %w", err)
	}
	resolver := content.NewResolver(source, static, images, richtext.New(), logger)
	notifier := newNotifier(cfg.Contact, logger)
	handler, err := api.NewHandler(api.Deps{
		Resolver:      resolver,
		Dispatcher:    newDispatcher(cfg.Contact, notifier),
		Notifier:      notifier,
		Version:       Version,
		ContentSource: cfg.CMS.Provider,
		ImageProvider: images.Name(),
		BaseURL:       cfg.Server.BaseURL,
		Logger:        logger,
	})
	if err != nil {
		closeSource()
		return err
	}
	limiter := api.NewRateLimiter(cfg.Contact.RateLimitBurst, time.Duration(cfg.Contact.RateLimitRefill))
	router := api.NewRouter(handler, api.RouterOptions{
		SubmitLimiter: limiter,
		PublicDir:     cfg.Server.PublicDir,
	})
	slog.Info("router initialized")

	// 7. Configure HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	// 8. Background workers
	var wg sync.WaitGroup
	startWorker(ctx, &wg, "rate-limit-sweeper", func(ctx context.Context) {
		sweep(ctx, limiter, sweepInterval)
	})

	// 9. Start HTTP server in goroutine
	go func() {
		slog.Info("server starting", "address", addr)
		// Any error other than ErrServerClosed should trigger shutdown.
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	// 10. Block until signal received
	<-ctx.Done()
	slog.Info("shutdown initiated")

	// 11. Graceful shutdown sequence
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	// 11a. Stop HTTP server (drains in-flight requests)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// 11b. Wait for workers to complete
	wg.Wait()

	// 11c. Close content source
	if err := closeSource(); err != nil {
		slog.Error("content source close error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// newSource creates the content source selected by cms.provider. The
// returned close function releases it.
func newSource(cfg *config.Config) (content.Source, func() error, error) {
	noop := func() error { return nil }

	switch cfg.CMS.Provider {
	case config.CMSProviderSanity:
		c, err := cms.NewClient(cfg.CMS)
		if err != nil {
			return nil, nil, err
		}
		return c, noop, nil
	case config.CMSProviderSQLite:
		db, err := store.NewSQLiteStore(cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	default:
		return content.EmptySource{}, noop, nil
	}
}

// newNotifier posts to the webhook when one is configured and logs
// submissions otherwise.
func newNotifier(cfg config.ContactConfig, logger *slog.Logger) contact.Notifier {
	if cfg.WebhookURL != "" {
		return contact.NewWebhookNotifier(cfg.WebhookURL, time.Duration(cfg.Timeout))
	}
	logger.Warn("no contact webhook configured, submissions will only be logged")
	return contact.NewLogNotifier(logger)
}

// newDispatcher sends form submissions to the external endpoint when one is
// configured and straight to the notifier otherwise.
func newDispatcher(cfg config.ContactConfig, n contact.Notifier) contact.Dispatcher {
	if cfg.Endpoint != "" {
		return contact.NewHTTPDispatcher(cfg.Endpoint, time.Duration(cfg.Timeout))
	}
	return contact.NewNotifierDispatcher(n)
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// sweep drops idle rate limit buckets every interval until ctx is done.
func sweep(ctx context.Context, l *api.RateLimiter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// startWorker launches a background worker goroutine that respects context cancellation.
// Workers are tracked via WaitGroup for graceful shutdown.
func startWorker(ctx context.Context, wg *sync.WaitGroup, name string, fn func(ctx context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("worker started", "worker", name)
		fn(ctx)
		slog.Info("worker stopped", "worker", name)
	}()
}
