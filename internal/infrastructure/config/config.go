package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is shared by the gateway and the catalog binaries; each reads the
// sections it needs.
type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	EnableSwagger bool `env:"ENABLE_SWAGGER, default=true"`
	EnableGraphQL bool `env:"ENABLE_GRAPHQL, default=true"`

	JWT      JWTConfig
	Postgres PostgresConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Search   SearchConfig
	Kafka    KafkaConfig
	Catalog  CatalogConfig
	Limits   LimitsConfig
}

type JWTConfig struct {
	Secret string        `env:"JWT_SECRET"`
	TTL    time.Duration `env:"JWT_TTL,    default=24h"`
	Issuer string        `env:"JWT_ISSUER, default=storefront"`
}

type PostgresConfig struct {
	DSN string `env:"POSTGRES_DSN, default=host=localhost user=postgres password=postgres dbname=commerce port=5432 sslmode=disable"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=catalog"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR, default=localhost:6379"`
	DB       int           `env:"REDIS_DB,   default=0"`
	CacheTTL time.Duration `env:"CACHE_TTL,  default=10m"`
}

type SearchConfig struct {
	URL   string `env:"ES_URL,   default=http://localhost:9200"`
	Index string `env:"ES_INDEX, default=products"`
}

type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS, default=localhost:9092"`
	Topic   string   `env:"KAFKA_TOPIC,   default=commerce.events"`
	Workers int      `env:"EVENT_WORKERS, default=8"`
}

type CatalogConfig struct {
	URL     string        `env:"CATALOG_URL,     default=http://localhost:8081"`
	Timeout time.Duration `env:"CATALOG_TIMEOUT, default=5s"`
}

type LimitsConfig struct {
	// LoginRate is the sustained number of login attempts per second per client IP.
	LoginRate      float64       `env:"LOGIN_RATE,      default=1"`
	LoginBurst     int           `env:"LOGIN_BURST,     default=5"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL, default=24h"`
}

// Development reports whether human-friendly console logging should be used.
func (c *Config) Development() bool {
	return c.Env == "development"
}

// Validate rejects configurations the services cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.Kafka.Workers < 0 {
		errs = append(errs, errors.New("EVENT_WORKERS must not be negative"))
	}
	return errors.Join(errs...)
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration through an arbitrary lookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	return &cfg, nil
}
