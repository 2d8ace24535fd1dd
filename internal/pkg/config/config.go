package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Leopard   LeopardConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	SMTP      SMTPConfig
	Reconcile ReconcileConfig
}

type LeopardConfig struct {
	Endpoint    string        `env:"LEOPARD_ENDPOINT,     default=https://merchantapi.leopardscourier.com/api"`
	APIKey      string        `env:"LEOPARD_API_KEY"`
	APIPassword string        `env:"LEOPARD_API_PASSWORD"`
	Timeout     time.Duration `env:"LEOPARD_TIMEOUT,      default=20s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=courier_backoffice"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST, default=localhost"`
	Port     int    `env:"SMTP_PORT, default=587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM, default=noreply@zebtan.com"`
	To       string `env:"SMTP_TO"`
}

type ReconcileConfig struct {
	Interval     time.Duration `env:"RECONCILE_INTERVAL,     default=1m"`
	CityCacheTTL time.Duration `env:"CITY_CACHE_TTL,         default=24h"`
	Workers      int           `env:"NOTIFICATION_WORKERS,   default=4"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
