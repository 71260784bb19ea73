package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/relaybridge/relaybridge"
	"github.com/relaybridge/relaybridge/internal/admin"
	"github.com/relaybridge/relaybridge/internal/logging"
	"github.com/relaybridge/relaybridge/internal/requestlog"
	"github.com/relaybridge/relaybridge/internal/version"
)

func main() {
	logging.Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	cfg, err := relaybridge.LoadConfig(relaybridge.ConfigPathFromEnv())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	reqLog, closeReqLog, err := newRequestLogWriter(cfg.Gateway.RequestLog)
	if err != nil {
		log.Fatalf("Failed to open request log: %v", err)
	}
	defer closeReqLog()

	gw := relaybridge.New(*cfg, reqLog)

	r := newRouter(gw)

	addr := ":8080"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // streaming responses may run far longer than any fixed write budget
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Println("Shutting down gracefully…")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("RelayBridge %s listening on %s (%d provider(s))", version.Short(), addr, len(cfg.Providers))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stop()
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped.")
}

// newRouter builds the HTTP router: structured-logging/recovery middleware,
// the admin surface, and the catch-all proxy route.
func newRouter(gw *relaybridge.Gateway) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(logging.Middleware)

	r.Get("/_health", admin.HealthHandler(gw))
	r.Post("/_reset_circuit", admin.ResetCircuitHandler(gw))

	r.Handle("/*", gw)

	return r
}

// newRequestLogWriter opens the configured audit log backend. A driver of
// "none" discards every entry.
func newRequestLogWriter(cfg relaybridge.RequestLogConfig) (requestlog.Writer, func(), error) {
	switch cfg.Driver {
	case "none":
		return requestlog.NoopWriter{}, func() {}, nil
	case "postgres":
		w, err := requestlog.NewPostgresWriter(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return w, func() { _ = w.Close() }, nil
	default:
		w, err := requestlog.NewSQLiteWriter(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return w, func() { _ = w.Close() }, nil
	}
}
