package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type DealregConfig struct {
	Env        string `yaml:"env" env:"DEALREG_ENV" env-default:"local"`
	HTTPServer `yaml:"http_server"`
	DealDB     `yaml:"deal_db"`
	Rules      `yaml:"rules"`
	Kafka      `yaml:"kafka"`
	LogConfig  `yaml:"log_config"`
}

type HTTPServer struct {
	Host string `yaml:"host" env-default:"0.0.0.0"`
	Port string `yaml:"port" env-default:"8080"`
}

type DealDB struct {
	Dsn            string        `yaml:"dsn" env:"DEALREG_DB_DSN"`
	MigrationsPath string        `yaml:"migrations_path" env-default:"migrations"`
	QueryTimeout   time.Duration `yaml:"query_timeout" env-default:"5s"`
	MaxRetries     int           `yaml:"max_retries" env-default:"3"`
	RetryBackoff   time.Duration `yaml:"retry_backoff" env-default:"200ms"`
}

// Rules carries the conflict matching windows and thresholds. Injected into
// the rule set so tests can fix them deterministically.
type Rules struct {
	TerritoryWindow    time.Duration `yaml:"territory_window" env-default:"2160h"` // 90 days
	TimingWindow       time.Duration `yaml:"timing_window" env-default:"168h"`     // 7 days
	ValueBandThreshold float64       `yaml:"value_band_threshold" env-default:"0.2"`
}

type Kafka struct {
	Brokers    []string `yaml:"brokers" env:"DEALREG_KAFKA_BROKERS" env-separator:","`
	Topic      string   `yaml:"topic" env-default:"conflict-events"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	Mechanism  string   `yaml:"mechanism"`
	TLSEnabled bool     `yaml:"tls_enabled"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env-default:"info"`
	LogFormat string `yaml:"log_format" env-default:"json"`
}

func MustLoad() *DealregConfig {
	configPath := os.Getenv("DEALREG_CONFIG_PATH")
	if configPath == "" {
		log.Fatalf("DEALREG_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	var cfg DealregConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
