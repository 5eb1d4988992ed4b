// Package config loads the server configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every tunable the server reads at startup.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
	// Debug switches to the short phase time table, auto-generated player
	// identities, and deterministic seating.
	Debug bool
	// DBPath is the sqlite database file.
	DBPath string
	// JWTSecret signs admin API tokens.
	JWTSecret string
	// AdminUser and AdminPass guard POST /api/login.
	AdminUser string
	AdminPass string
	// AllowedOrigins is the CORS allow-list for the browser client.
	AllowedOrigins []string
}

// Load reads .env (if present) and the process environment. Environment
// variables win over .env entries.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:      getenv("SALEM_ADDR", ":8080"),
		Debug:     isTruthy(os.Getenv("SALEM_DEBUG")),
		DBPath:    getenv("SALEM_DB", "salem.db"),
		JWTSecret: os.Getenv("SALEM_JWT_SECRET"),
		AdminUser: getenv("SALEM_ADMIN_USER", "admin"),
		AdminPass: os.Getenv("SALEM_ADMIN_PASS"),
	}

	origins := getenv("SALEM_ALLOWED_ORIGINS", "*")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	if cfg.JWTSecret == "" && !cfg.Debug {
		return nil, fmt.Errorf("SALEM_JWT_SECRET is required outside debug mode")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "debug-only-secret"
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
