package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level     string `yaml:"level"`
		Format    string `yaml:"format"`
		Output    string `yaml:"output"`
		Collector struct {
			Enabled   bool          `yaml:"enabled"`
			Interval  time.Duration `yaml:"interval"`
			Threshold int           `yaml:"threshold"`
			Topic     string        `yaml:"topic"`
		} `yaml:"collector"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Strategy struct {
		Seed         int64         `yaml:"seed"`
		ArtifactsDir string        `yaml:"artifacts_dir"`
		SeriesTTL    time.Duration `yaml:"series_ttl"`
	} `yaml:"strategy"`
	Provider struct {
		RateBurst     float64       `yaml:"rate_burst"`
		RatePerSecond float64       `yaml:"rate_per_second"`
		Retries       int           `yaml:"retries"`
		RetryDelay    time.Duration `yaml:"retry_delay"`
	} `yaml:"provider"`
	Archive struct {
		Enabled bool   `yaml:"enabled"`
		Backend string `yaml:"backend"` // kafka or clickhouse
	} `yaml:"archive"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		Table            string        `yaml:"table"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Queue struct {
		Enabled    bool          `yaml:"enabled"`
		Workers    int           `yaml:"workers"`
		QueueSize  int           `yaml:"queue_size"`
		RetryLimit int           `yaml:"retry_limit"`
		RetryDelay time.Duration `yaml:"retry_delay"`
	} `yaml:"queue"`
	Dialogue struct {
		SessionTTL time.Duration `yaml:"session_ttl"`
	} `yaml:"dialogue"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("ARCHIVE_BACKEND"); v != "" {
		c.Archive.Backend = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Logging.Collector.Interval == 0 {
		c.Logging.Collector.Interval = 30 * time.Second
	}
	if c.Logging.Collector.Threshold == 0 {
		c.Logging.Collector.Threshold = 100
	}
	if c.Logging.Collector.Topic == "" {
		c.Logging.Collector.Topic = "quantease.logs"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Strategy.Seed == 0 {
		c.Strategy.Seed = 42
	}
	if c.Strategy.ArtifactsDir == "" {
		c.Strategy.ArtifactsDir = "artifacts"
	}
	if c.Strategy.SeriesTTL == 0 {
		c.Strategy.SeriesTTL = 15 * time.Minute
	}
	if c.Provider.RateBurst == 0 {
		c.Provider.RateBurst = 5
	}
	if c.Provider.RatePerSecond == 0 {
		c.Provider.RatePerSecond = 1
	}
	if c.Provider.RetryDelay == 0 {
		c.Provider.RetryDelay = time.Second
	}
	if c.ClickHouse.Table == "" {
		c.ClickHouse.Table = "strategy_runs"
	}
	if c.Dialogue.SessionTTL == 0 {
		c.Dialogue.SessionTTL = time.Hour
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Archive.Enabled {
		switch c.Archive.Backend {
		case "kafka":
			if len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "" {
				return fmt.Errorf("archive backend 'kafka' needs kafka.brokers and kafka.topic")
			}
		case "clickhouse":
		default:
			return fmt.Errorf("archive.backend must be 'kafka' or 'clickhouse', got '%s'", c.Archive.Backend)
		}
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("archive requires clickhouse.host")
		}
	}
	if c.Queue.Enabled && !c.Redis.Enabled {
		return fmt.Errorf("queue.enabled requires redis.enabled")
	}
	if c.Logging.Collector.Enabled {
		// aggregated logs ride the Kafka producer from the archive path
		if !c.Archive.Enabled || c.Archive.Backend != "kafka" {
			return fmt.Errorf("logging.collector requires the 'kafka' archive backend")
		}
	}
	return nil
}
