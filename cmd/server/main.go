package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/familyspend/internal/auth"
	"github.com/mmynk/familyspend/internal/config"
	"github.com/mmynk/familyspend/internal/ledger"
	"github.com/mmynk/familyspend/internal/middleware"
	"github.com/mmynk/familyspend/internal/service"
	"github.com/mmynk/familyspend/internal/storage"
	"github.com/mmynk/familyspend/internal/storage/sqlite"
	"github.com/mmynk/familyspend/pkg/logging"
)

const sessionPurgeInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	sessions := auth.NewSessionManager(auth.NewJWTManager(cfg.JWTSecret), store, cfg.SessionTTL)

	mux := http.NewServeMux()

	deps := service.Deps{
		Authenticator: auth.NewPasswordAuthenticator(store),
		Sessions:      sessions,
		Accounts:      store,
		Ledger:        ledger.New(store),
		Logger:        slog.Default(),
	}

	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		deps.Metrics = middleware.NewMetrics(reg)
		mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	// Register Connect services and the export route
	service.Register(mux, deps)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Add logging and CORS middleware, then wrap with h2c for HTTP/2
	// without TLS (required for Connect)
	handler := h2c.NewHandler(middleware.Logging(corsMiddleware(cfg.CORSOrigin, mux)), &http2.Server{})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64KB
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Connect server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		purgeSessions(gctx, store, sessionPurgeInterval)
		return nil
	})

	return g.Wait()
}

// purgeSessions deletes expired sessions until ctx is done.
func purgeSessions(ctx context.Context, store storage.SessionStore, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		n, err := store.PurgeExpiredSessions(ctx, time.Now().Unix())
		if err != nil && ctx.Err() == nil {
			slog.Warn("Failed to purge sessions", "error", err)
		} else if n > 0 {
			slog.Info("Purged expired sessions", "count", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms, X-Domain-Code, X-Validation-Field, X-Partial")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
