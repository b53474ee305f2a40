package config

import (
	"log/slog"
	"os"
)

// Server captures process-level configuration for the registry service.
type Server struct {
	Addr string

	// Owner is the principal fixed as registry owner at startup. It can never
	// be reassigned while the process runs.
	Owner string

	// AdminsMayIssue extends issuance rights to identities holding the admin
	// role, on top of owner and trusted issuers.
	AdminsMayIssue bool

	// StoreBackend selects the certificate store: memory, postgres or redis.
	StoreBackend string
	PostgresDSN  string
	RedisAddr    string

	JWTSigningKey string

	// AllowHeaderIdentity accepts X-Caller-Identity as the principal when no
	// bearer token is present. Development convenience only.
	AllowHeaderIdentity bool

	LogLevel slog.Level
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CERTLEDGER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	owner := os.Getenv("CERTLEDGER_OWNER")
	if owner == "" {
		owner = "certledger-owner"
	}

	backend := os.Getenv("CERTLEDGER_STORE")
	if backend == "" {
		backend = "memory"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	level := slog.LevelInfo
	if os.Getenv("CERTLEDGER_DEBUG") == "true" {
		level = slog.LevelDebug
	}

	return Server{
		Addr:           addr,
		Owner:          owner,
		AdminsMayIssue: os.Getenv("CERTLEDGER_ADMIN_ISSUANCE") == "true",
		StoreBackend:   backend,
		PostgresDSN:    os.Getenv("CERTLEDGER_POSTGRES_DSN"),
		RedisAddr:      os.Getenv("CERTLEDGER_REDIS_ADDR"),
		JWTSigningKey:  jwtSigningKey,

		AllowHeaderIdentity: os.Getenv("CERTLEDGER_HEADER_IDENTITY") == "true",

		LogLevel: level,
	}
}
