/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the campus ledger server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, flags)
  2. Open the SQL store (SQLite or PostgreSQL)
  3. Connect Redis for receipt numbers when REDIS_ADDR is set
  4. Create API handler with dependencies
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: $PORT or 8080)
  -driver  sqlite or postgres (default: $DB_DRIVER or sqlite)
  -db      SQLite path or PostgreSQL URL (default: $DB_DSN or ledger.db)
           Use ":memory:" for an in-memory SQLite database

ENVIRONMENT:
  REDIS_ADDR       host:port of Redis; random receipt suffixes without it
  JWT_SIGNING_KEY  HS256 key; when empty, X-Actor-ID headers are trusted
  JWT_ISSUER       expected token issuer (default: campus-ledger)
  TAX_RATE         flat withholding rate in [0, 1) (default: 0)
  CORS_ORIGINS     comma separated allowed origins

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close Redis and database connections
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/ledger.db"

  # Run against PostgreSQL
  ./server -driver=postgres -db="postgres://ledger@localhost/ledger"

SEE ALSO:
  - config/config.go: Settings
  - api/server.go: Router configuration
  - store/sqldb/sqldb.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/warp/campus-ledger/api"
	"github.com/warp/campus-ledger/config"
	"github.com/warp/campus-ledger/payroll"
	"github.com/warp/campus-ledger/store/sqldb"
	"github.com/warp/campus-ledger/tuition"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize store
	dialect, err := sqldb.ParseDialect(cfg.DBDriver)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	store, err := sqldb.Open(dialect, cfg.DBDSN)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Receipt numbers come from a Redis counter when available
	var receipts tuition.ReceiptNumberer = tuition.RandomReceipts{}
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		receipts = tuition.NewRedisReceipts(rdb, "")
		log.Printf("Receipt numbers from redis at %s", cfg.RedisAddr)
	}

	// Initialize handler
	handler := api.NewHandler(store, payroll.PolicyFromRate(cfg.TaxRate), receipts)
	handler.Checks["database"] = store.Ping
	if rdb != nil {
		handler.Checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// Create router
	router := api.NewRouter(handler, api.RouterOptions{
		CORSOrigins:   cfg.CORSOrigins,
		JWTIssuer:     cfg.JWTIssuer,
		JWTSigningKey: cfg.JWTSigningKey,
	})
	if cfg.JWTSigningKey == "" {
		log.Printf("Warning: JWT_SIGNING_KEY not set, trusting X-Actor-ID headers")
	}

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d (%s)", cfg.Port, dialect)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
