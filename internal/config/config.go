package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	TrustProxyHeaders    bool

	JWTSecret string
	TokenTTL  time.Duration

	PasswordHasher string
	BcryptCost     int

	LoginRatePerMinute int
	LoginRateBurst     int

	LogLevel       string
	MigrateOnStart bool
}

// Load reads a .env file if present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:          getenv("DATABASE_URL", ""),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",
		TrustProxyHeaders:    getenv("TRUST_PROXY_HEADERS", "false") == "true",
		JWTSecret:            getenv("JWT_SECRET", ""),
		PasswordHasher:       strings.ToLower(getenv("PASSWORD_HASHER", "bcrypt")),
		LogLevel:             strings.ToLower(getenv("LOG_LEVEL", "info")),
		MigrateOnStart:       getenv("MIGRATE_ON_START", "true") == "true",
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing env: DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("missing env: JWT_SECRET")
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(getenv("TOKEN_TTL", "24h")); err != nil || cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("invalid TOKEN_TTL: %q", getenv("TOKEN_TTL", ""))
	}
	if cfg.BcryptCost, err = getint("BCRYPT_COST", 10); err != nil {
		return Config{}, err
	}
	if cfg.LoginRatePerMinute, err = getint("LOGIN_RATE_PER_MINUTE", 30); err != nil {
		return Config{}, err
	}
	if cfg.LoginRateBurst, err = getint("LOGIN_RATE_BURST", 10); err != nil {
		return Config{}, err
	}

	switch cfg.PasswordHasher {
	case "bcrypt", "argon2id":
	default:
		return Config{}, fmt.Errorf("invalid PASSWORD_HASHER: %q", cfg.PasswordHasher)
	}

	for _, o := range strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getint(key string, def int) (int, error) {
	v := getenv(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}
