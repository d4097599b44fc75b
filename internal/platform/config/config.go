package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	platformstrings "prevplan/pkg/platform/strings"
)

// Server captures process level configuration loaded from the environment.
type Server struct {
	Addr            string        `env:"PREVPLAN_ADDR" envDefault:":8080"`
	LogLevel        string        `env:"PREVPLAN_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"PREVPLAN_LOG_FORMAT" envDefault:"json"`
	DatabaseURL     string        `env:"PREVPLAN_DATABASE_URL"`
	AdminToken      string        `env:"PREVPLAN_ADMIN_TOKEN"`
	TxTimeout       time.Duration `env:"PREVPLAN_TX_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout time.Duration `env:"PREVPLAN_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Redis RedisConfig
	Kafka KafkaConfig
}

// RedisConfig configures the product cache. An empty URL disables it.
type RedisConfig struct {
	URL             string        `env:"PREVPLAN_REDIS_URL"`
	PoolSize        int           `env:"PREVPLAN_REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns    int           `env:"PREVPLAN_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout     time.Duration `env:"PREVPLAN_REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout     time.Duration `env:"PREVPLAN_REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout    time.Duration `env:"PREVPLAN_REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	ProductCacheTTL time.Duration `env:"PREVPLAN_PRODUCT_CACHE_TTL" envDefault:"5m"`
}

// KafkaConfig configures the lifecycle event topic. No brokers disables it.
type KafkaConfig struct {
	Brokers []string `env:"PREVPLAN_KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"PREVPLAN_KAFKA_TOPIC" envDefault:"prevplan.lifecycle"`
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Kafka.Brokers = platformstrings.DedupeAndTrim(cfg.Kafka.Brokers)
	return cfg, nil
}
