package config

import (
	"os"
)

type Config struct {
	Port        string
	Environment string
	AuthURL     string // identity provider base URL
	AuthKey     string // service role key, used by the seed tool only
	AuthJWKSURL string // constructed from AuthURL + /auth/v1/.well-known/jwks.json
	DatabaseURL string
	CORSOrigins string
	TablePrefix string
	// ScannerToken authenticates the antivirus scanner's callback.
	ScannerToken string
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	authURL := getEnv("AUTH_URL", "")

	// Construct JWKS URL from the identity provider URL
	jwksURL := authURL + "/auth/v1/.well-known/jwks.json"

	return &Config{
		Port:         getEnv("PORT", "8080"),
		Environment:  env,
		AuthURL:      authURL,
		AuthKey:      getEnv("AUTH_KEY", ""),
		AuthJWKSURL:  jwksURL,
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:  tablePrefix,
		ScannerToken: getEnv("SCANNER_TOKEN", ""),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true" // Enable DEBUG in dev/test by default
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	// Auto-generate based on environment
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	case "dev":
		return "dev_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
