package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Token     TokenConfig
	Anonymous AnonymousConfig
	Bootstrap BootstrapConfig
	Mongo     MongoConfig
	Redis     RedisConfig
}

// TokenConfig carries the per-type signing settings. Access and refresh
// tokens must use different secrets; sharing one would let a refresh token
// pass as an access token.
type TokenConfig struct {
	Access  TokenTypeConfig
	Refresh RefreshTokenTypeConfig
	Issuer  string `env:"TOKEN_ISSUER"`
}

type TokenTypeConfig struct {
	Secret string        `env:"ACCESS_TOKEN_SECRET"`
	TTL    time.Duration `env:"ACCESS_TOKEN_TTL, default=15m"`
}

type RefreshTokenTypeConfig struct {
	Secret string        `env:"REFRESH_TOKEN_SECRET"`
	TTL    time.Duration `env:"REFRESH_TOKEN_TTL, default=720h"`
}

// AnonymousConfig fixes the sentinel identity assigned to unauthenticated
// callers. The backing row is ensured at startup.
type AnonymousConfig struct {
	ID   int64  `env:"ANONYMOUS_ID,   default=1"`
	Name string `env:"ANONYMOUS_NAME, default=anonymous"`
}

// BootstrapConfig seeds the first admin account. Skipped when the password
// is unset.
type BootstrapConfig struct {
	AdminName     string `env:"BOOTSTRAP_ADMIN_NAME,  default=admin"`
	AdminEmail    string `env:"BOOTSTRAP_ADMIN_EMAIL, default=admin@example.com"`
	AdminPassword string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=account_api"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(logger *slog.Logger) *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		logger.Error("Failed to load configuration", "error", err)
		panic(err)
	}
	return &cfg
}
