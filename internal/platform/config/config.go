package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Server captures process-level configuration.
type Server struct {
	Addr        string `validate:"required"`
	Environment string `validate:"oneof=dev test prod"`
	LogLevel    string `validate:"oneof=debug info warn error"`
	LogFormat   string `validate:"oneof=json text console"`

	AuthServer AuthServerConfig
	Memory     MemoryConfig
	Redis      RedisConfig
	Database   DatabaseConfig
	Audit      AuditConfig
	Admin      AdminConfig

	// ClaimRulesPath points at a YAML rule file; empty uses the built-in rules.
	ClaimRulesPath string
}

// AuthServerConfig locates the authorization server's admin API.
type AuthServerConfig struct {
	AdminURL      string        `validate:"required,url"`
	Timeout       time.Duration `validate:"gt=0"`
	FetchAttempts int           `validate:"min=1,max=10"`
}

// MemoryConfig selects the remember-cache backend.
type MemoryConfig struct {
	Backend string `validate:"oneof=memory redis postgres"`
	// LocalRemember lets a covering local record skip the prompt when the
	// authorization server does not.
	LocalRemember bool
	SweepInterval time.Duration `validate:"gte=0"`
}

type RedisConfig struct {
	URL          string `validate:"required_if=Enabled true"`
	Enabled      bool
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	URL             string `validate:"required_if=Enabled true"`
	Enabled         bool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuditConfig struct {
	Backend    string   `validate:"oneof=log memory kafka"`
	Brokers    []string `validate:"required_if=Backend kafka"`
	Topic      string   `validate:"required_if=Backend kafka"`
	BufferSize int      `validate:"gte=0"`
}

// AdminConfig protects the consent-memory admin routes.
type AdminConfig struct {
	JWTSigningKey string `validate:"required,min=16"`
	JWTIssuer     string `validate:"required"`
	JWTAudience   string `validate:"required"`
}

// LoadDotEnv reads a .env file if one exists. Values already in the
// environment win.
func LoadDotEnv(paths ...string) {
	_ = godotenv.Load(paths...)
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:        envString("CONSENTD_ADDR", ":8080"),
		Environment: envString("CONSENTD_ENV", "dev"),
		LogLevel:    strings.ToLower(envString("LOG_LEVEL", "info")),
		LogFormat:   strings.ToLower(envString("LOG_FORMAT", "json")),
		AuthServer: AuthServerConfig{
			AdminURL:      envString("AUTHSERVER_ADMIN_URL", "http://localhost:4445"),
			Timeout:       envDuration("AUTHSERVER_TIMEOUT", 5*time.Second),
			FetchAttempts: envInt("AUTHSERVER_FETCH_ATTEMPTS", 3),
		},
		Memory: MemoryConfig{
			Backend:       envString("CONSENT_MEMORY_BACKEND", "memory"),
			LocalRemember: envBool("CONSENT_LOCAL_REMEMBER", false),
			SweepInterval: envDuration("CONSENT_SWEEP_INTERVAL", 10*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Audit: AuditConfig{
			Backend:    envString("AUDIT_BACKEND", "log"),
			Brokers:    envList("KAFKA_BROKERS"),
			Topic:      envString("AUDIT_TOPIC", "consent-audit"),
			BufferSize: envInt("AUDIT_BUFFER_SIZE", 256),
		},
		Admin: AdminConfig{
			JWTSigningKey: os.Getenv("ADMIN_JWT_SIGNING_KEY"),
			JWTIssuer:     envString("ADMIN_JWT_ISSUER", "consentd"),
			JWTAudience:   envString("ADMIN_JWT_AUDIENCE", "consentd-admin"),
		},
		ClaimRulesPath: os.Getenv("CLAIM_RULES_PATH"),
	}
	cfg.Redis.Enabled = cfg.Memory.Backend == "redis"
	cfg.Database.Enabled = cfg.Memory.Backend == "postgres"

	if cfg.Admin.JWTSigningKey == "" && cfg.Environment != "prod" {
		// Development default; prod must set ADMIN_JWT_SIGNING_KEY.
		cfg.Admin.JWTSigningKey = "dev-admin-key-change-in-production"
	}

	if err := Validate(cfg); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate checks struct constraints on cfg.
func Validate(cfg Server) error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
