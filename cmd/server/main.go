/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the vacation tracker server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Select the user store (in-memory or SQLite)
  3. Build the auth service, tenant registry, and data-source factory
  4. Configure the HTTP router
  5. Start the server with graceful shutdown

CONFIGURATION:
  Flags take precedence; each falls back to an environment variable:
  -port       / PORT          HTTP server port (default: 8080)
  -tenants    / TENANTS_FILE  Tenant registry JSON (default: tenants.json)
  -jwt-secret / JWT_SECRET    Token signing secret (default: dev secret)
  -token-ttl  / TOKEN_TTL     Token lifetime, Go duration (default: 24h)
  -users-db   / USERS_DB      SQLite user database path. Empty selects
                              the in-memory store with demo accounts.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the user store
  4. Exit

EXAMPLES:
  # Development: in-memory users, bundled tenants file
  ./server

  # Persistent users
  ./server -users-db="./data/users.db"

  # Different port and registry
  ./server -port=3000 -tenants="/etc/vacation-tracker/tenants.json"

SEE ALSO:
  - api/server.go: Router configuration
  - tenancy/tenancy.go: Tenant registry and connector factory
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/warp/vacation-tracker/api"
	"github.com/warp/vacation-tracker/auth"
	"github.com/warp/vacation-tracker/store/sqlite"
	"github.com/warp/vacation-tracker/tenancy"
)

func main() {
	// .env is optional; flags and real environment still win.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	tenantsFile := flag.String("tenants", envStr("TENANTS_FILE", "tenants.json"), "tenant registry JSON path")
	jwtSecret := flag.String("jwt-secret", envStr("JWT_SECRET", "dev-secret-change-me"), "token signing secret")
	tokenTTL := flag.Duration("token-ttl", envDuration("TOKEN_TTL", 24*time.Hour), "token lifetime")
	usersDB := flag.String("users-db", envStr("USERS_DB", ""), "SQLite user database path (empty: in-memory)")
	logLevel := flag.String("log-level", envStr("LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(*logLevel); err == nil {
		log.SetLevel(level)
	}

	// User store selection
	var userStore auth.UserStore
	var closeStore func() error
	if *usersDB != "" {
		store, err := sqlite.New(*usersDB)
		if err != nil {
			log.WithError(err).Fatal("failed to open user database")
		}
		if err := store.SeedDefaults(context.Background()); err != nil {
			log.WithError(err).Fatal("failed to seed user database")
		}
		userStore = store
		closeStore = store.Close
		log.WithField("path", *usersDB).Info("using SQLite user store")
	} else {
		userStore = auth.NewMemoryStoreWithDefaults()
		closeStore = func() error { return nil }
		log.Info("using in-memory user store with demo accounts")
	}
	defer closeStore()

	authSvc := auth.NewService(*jwtSecret, *tokenTTL, userStore)

	registry := tenancy.NewRegistry(*tenantsFile)
	factory := tenancy.NewFactory(registry, log)

	handler := api.NewHandler(factory, authSvc, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":    *port,
			"tenants": *tenantsFile,
		}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
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
