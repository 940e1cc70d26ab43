/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the election tally server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Open the SQLite vote ledger (optionally seeding it)
  3. Build counter store, view cache, tally engine, aggregator
  4. Rebuild live counters from the ledger
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS (env fallback in parentheses):
  -port             HTTP server port (PORT, default 8080)
  -db               SQLite database path (DB_PATH, default election.db)
                    Use ":memory:" for an in-memory database
  -seed             YAML fixture path, or "demo" for the built-in fixture
  -cache-ttl        Rendered-view cache TTL (CACHE_TTL, default 30s)
  -cache-threshold  Vote volume that activates the cache (default 200)

EXAMPLES:
  # Run with the demo election
  ./server -db=":memory:" -seed=demo

  # Run against an existing ledger
  ./server -db=./data/election.db

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Ledger implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/warp/vote-engine/api"
	"github.com/warp/vote-engine/cache"
	"github.com/warp/vote-engine/store/sqlite"
	"github.com/warp/vote-engine/tally"
	"github.com/warp/vote-engine/tally/counter"
	"github.com/warp/vote-engine/views"
)

func main() {
	// .env is optional; flags still win over the environment.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DB_PATH", "election.db"), "SQLite database path")
	seed := flag.String("seed", "", `YAML fixture path, or "demo" for the built-in fixture`)
	cacheTTL := flag.Duration("cache-ttl", envDuration("CACHE_TTL", 30*time.Second), "rendered-view cache TTL")
	cacheThreshold := flag.Int64("cache-threshold", 200, "vote volume that activates the cache")
	flag.Parse()

	// Ledger
	ledger, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer ledger.Close()

	if *seed != "" {
		fixture := sqlite.DemoFixture()
		if *seed != "demo" {
			fixture, err = sqlite.LoadFixture(*seed)
			if err != nil {
				log.Fatalf("Failed to load seed fixture: %v", err)
			}
		}
		if err := ledger.Seed(context.Background(), fixture); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
		log.Printf("Seeded %s", *dbPath)
	}

	// Live state
	counters := counter.NewMemory()
	viewCache := cache.New(*cacheTTL, *cacheThreshold, func() int64 {
		return counters.Get(tally.TotalKey)
	})
	engine := tally.NewEngine(ledger, counters, viewCache)
	if err := engine.Load(context.Background()); err != nil {
		log.Fatalf("Failed to rebuild counters: %v", err)
	}
	agg := tally.NewAggregator(counters, engine.Roster)

	handler, err := api.NewHandler(engine, agg, viewCache, views.New())
	if err != nil {
		log.Fatalf("Failed to initialize handlers: %v", err)
	}
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🗳️  Server starting on http://localhost:%d", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

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

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
