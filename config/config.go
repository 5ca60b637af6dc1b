// Package config loads server settings from .env, the environment and flags.
package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// App holds the runtime configuration.
type App struct {
	Port          int
	DBDriver      string
	DBDSN         string
	RedisAddr     string
	JWTSigningKey string
	JWTIssuer     string
	TaxRate       decimal.Decimal
	CORSOrigins   []string
}

// Load reads ".env" when present, then the environment, then args. Flags
// win over the environment.
func Load(args []string) (App, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not read .env: %v", err)
	}
	return parse(args)
}

func parse(args []string) (App, error) {
	cfg := App{
		Port:          intEnv("PORT", 8080),
		DBDriver:      getEnv("DB_DRIVER", "sqlite"),
		DBDSN:         getEnv("DB_DSN", "ledger.db"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		JWTSigningKey: getEnv("JWT_SIGNING_KEY", ""),
		JWTIssuer:     getEnv("JWT_ISSUER", "campus-ledger"),
		CORSOrigins:   listEnv("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:8080"}),
	}

	rate, err := decimal.NewFromString(getEnv("TAX_RATE", "0"))
	if err != nil {
		return App{}, fmt.Errorf("invalid TAX_RATE: %w", err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return App{}, fmt.Errorf("invalid TAX_RATE %s: must be in [0, 1)", rate)
	}
	cfg.TaxRate = rate

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	fs.StringVar(&cfg.DBDriver, "driver", cfg.DBDriver, "database driver: sqlite or postgres")
	fs.StringVar(&cfg.DBDSN, "db", cfg.DBDSN, "database path (sqlite) or connection URL (postgres)")
	if err := fs.Parse(args); err != nil {
		return App{}, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}

func listEnv(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
