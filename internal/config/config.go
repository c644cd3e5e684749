package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Quote provider keys, read at startup. Adapters carry them per request.
	FinnhubAPIKey   string `env:"FINNHUB_API_KEY"`
	AlphaVantageKey string `env:"ALPHA_VANTAGE_API_KEY"`

	// When set, the refresh scheduler fetches portfolios from this remote
	// backend instead of the local store.
	PortfolioBaseURL string `env:"PORTFOLIO_BASE_URL"`

	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"30s"`

	// Kafka is optional; with no brokers configured the transaction
	// consumer is not started.
	KafkaBrokers string `env:"KAFKA_BROKERS"`
	KafkaTopic   string `env:"KAFKA_TOPIC" envDefault:"transactions"`
	KafkaGroupID string `env:"KAFKA_GROUP_ID" envDefault:"portfolio-dashboard"`

	CORSOrigin string        `env:"CORS_ORIGIN" envDefault:"*"`
	CacheTTL   time.Duration `env:"CACHE_TTL" envDefault:"60s"`
}

func Load() (Config, error) {
	var cfg Config
	return cfg, env.Parse(&cfg)
}
