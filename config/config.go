package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"authnet-cim/database"
	"authnet-cim/services/payment/authorizenet"
)

type Config struct {
	Database database.DatabaseConfig
	AuthNet  authorizenet.Config
	Server   ServerConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
}

type ServerConfig struct {
	Port string
}

// RedisConfig configures the event queue. An empty URL disables it.
type RedisConfig struct {
	URL               string
	EventQueue        string
	WorkerConcurrency int
}

// KafkaConfig configures the event stream. No brokers disables it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type JWTConfig struct {
	Secret string
	Issuer string
}

// Load reads .env (if present) and the process environment.
func Load(logger *zap.Logger) *Config {
	if err := godotenv.Load(); err != nil {
		logger.Warn("Error loading .env file", zap.Error(err))
	}

	cfg := &Config{
		Database: database.DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
		},
		AuthNet: authorizenet.Config{
			LoginID:        os.Getenv("AUTHNET_LOGIN_ID"),
			TransactionKey: os.Getenv("AUTHNET_TRANSACTION_KEY"),
			Debug:          getBool(logger, "AUTHNET_DEBUG", true),
			DelimChar:      getString("AUTHNET_DELIM_CHAR", authorizenet.DefaultDelimiter),
			Timeout:        getDuration(logger, "AUTHNET_TIMEOUT", authorizenet.RequestTimeout),
			Endpoint:       os.Getenv("AUTHNET_ENDPOINT"),
		},
		Server: ServerConfig{
			Port: getString("SERVER_PORT", "8080"),
		},
		Redis: RedisConfig{
			URL:               os.Getenv("REDIS_URL"),
			EventQueue:        getString("EVENT_QUEUE", "cim:events"),
			WorkerConcurrency: getInt(logger, "WORKER_CONCURRENCY", 2),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getString("KAFKA_TOPIC", "cim-events"),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			Issuer: getString("JWT_ISSUER", "authnet-cim"),
		},
	}

	if cfg.AuthNet.LoginID == "" || cfg.AuthNet.TransactionKey == "" {
		logger.Warn("Authorize.net credentials are not set")
	}

	logger.Info("Config loaded",
		zap.Bool("authnet_debug", cfg.AuthNet.Debug),
		zap.Bool("database", cfg.Database.Configured()),
		zap.Bool("redis", cfg.Redis.URL != ""),
		zap.Strings("kafka_brokers", cfg.Kafka.Brokers),
		zap.String("port", cfg.Server.Port),
	)

	return cfg
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(logger *zap.Logger, key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger.Warn("Invalid boolean, using default", zap.String("key", key), zap.String("value", v))
		return fallback
	}
	return b
}

func getInt(logger *zap.Logger, key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		logger.Warn("Invalid integer, using default", zap.String("key", key), zap.String("value", v))
		return fallback
	}
	return n
}

func getDuration(logger *zap.Logger, key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		logger.Warn("Invalid duration, using default", zap.String("key", key), zap.String("value", v))
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
