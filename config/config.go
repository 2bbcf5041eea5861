package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env           string        `yaml:"env" env:"APP_ENV" env-default:"dev"`
	ListenAddr    string        `yaml:"listen_addr" env:"LISTEN_ADDR" env-default:":3130"`
	API           API           `yaml:"api"`
	Redis         Redis         `yaml:"redis"`
	Kafka         Kafka         `yaml:"kafka"`
	Observability Observability `yaml:"observability"`
}

// API points at the remote lesson/order service this storefront fronts.
type API struct {
	BaseURL        string        `yaml:"base_url" env:"API_BASE_URL" env-default:"http://localhost:3000"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"API_REQUEST_TIMEOUT" env-default:"10s"`
}

type Redis struct {
	Addr string `yaml:"addr" env:"REDIS_ADDR"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS"`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"storefront.events"`
}

type Observability struct {
	LokiURL      string `yaml:"loki_url" env:"LOKI_URL"`
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads CONFIG_PATH yaml when set, environment variables otherwise.
func Load() (Config, error) {
	var cfg Config
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
