package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConfig     `yaml:"redis"`
	Messaging MessagingConfig `yaml:"messaging"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	RabbitMQ  RabbitMQConfig  `yaml:"rabbitmq"`
	Booking   BookingConfig   `yaml:"booking"`
	Log       LogConfig       `yaml:"log"`
}

type HTTPConfig struct {
	Address         string   `yaml:"address"`
	SwaggerDir      string   `yaml:"swagger_dir"`
	CORSOrigins     []string `yaml:"cors_origins"`
	ShutdownSeconds int      `yaml:"shutdown_seconds"`
}

type DatabaseConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	Name        string `yaml:"name"`
	SSLMode     string `yaml:"ssl_mode"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type StorageConfig struct {
	Driver   string `yaml:"driver"`
	SeedFile string `yaml:"seed_file"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

const (
	BrokerKafka    = "kafka"
	BrokerRabbitMQ = "rabbitmq"
	BrokerNone     = "none"
)

type MessagingConfig struct {
	Broker string `yaml:"broker"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type RabbitMQConfig struct {
	URL string `yaml:"url"`
}

type BookingConfig struct {
	FleetCacheTTL  int `yaml:"fleet_cache_ttl_seconds"`
	TripLockTTL    int `yaml:"trip_lock_ttl_seconds"`
	TripLockWaitMs int `yaml:"trip_lock_wait_ms"`
}

func (b BookingConfig) FleetCacheTTLDuration() time.Duration {
	return time.Duration(b.FleetCacheTTL) * time.Second
}

func (b BookingConfig) TripLockTTLDuration() time.Duration {
	return time.Duration(b.TripLockTTL) * time.Second
}

func (b BookingConfig) TripLockWaitDuration() time.Duration {
	return time.Duration(b.TripLockWaitMs) * time.Millisecond
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadConfig reads the YAML file at path. A .env file next to the process is
// loaded first, and ${VAR} references in the file are expanded from the
// environment.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a YAML config document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.ShutdownSeconds == 0 {
		c.HTTP.ShutdownSeconds = 5
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = StoragePostgres
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Messaging.Broker == "" {
		c.Messaging.Broker = BrokerKafka
	}
	if c.Kafka.BookingEventsTopic == "" {
		c.Kafka.BookingEventsTopic = "booking-events"
	}
	if c.Booking.FleetCacheTTL == 0 {
		c.Booking.FleetCacheTTL = 30
	}
	if c.Booking.TripLockTTL == 0 {
		c.Booking.TripLockTTL = 10
	}
	if c.Booking.TripLockWaitMs == 0 {
		c.Booking.TripLockWaitMs = 2000
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StoragePostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			return errors.New("config: database host and name are required for postgres storage")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Messaging.Broker {
	case BrokerKafka:
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("config: kafka.brokers is required for the kafka broker")
		}
	case BrokerRabbitMQ:
		if c.RabbitMQ.URL == "" {
			return errors.New("config: rabbitmq.url is required for the rabbitmq broker")
		}
	case BrokerNone:
	default:
		return fmt.Errorf("config: unknown messaging broker %q", c.Messaging.Broker)
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}
