package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// HTTP holds HTTP server configuration.
type HTTP struct {
	Host string
	Port int
}

// GRPC holds gRPC server configuration.
type GRPC struct {
	Host string
	Port int
}

// Cache configures caching behavior and backend selection.
type Cache struct {
	Enabled    bool
	Driver     string
	DefaultTTL time.Duration
	Redis      Redis
}

// Redis contains redis-specific connection settings.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Messaging configures the message bus used by the application.
type Messaging struct {
	Driver        string
	Enabled       bool
	Kafka         Kafka
	ConsumerGroup string
	Workers       Worker
}

// Kafka holds Kafka connection details.
type Kafka struct {
	Brokers        []string
	ClientID       string
	Topic          string
	CommitInterval time.Duration
	MinBytes       int
	MaxBytes       int
	ConnectTimeout time.Duration
}

// Worker configures background worker concurrency and polling.
type Worker struct {
	Enabled      bool
	PollInterval time.Duration
	Concurrency  int
}

// App carries values used to build links handed back to clients.
type App struct {
	BaseURL     string
	FrontendURL string
}

// Mongo holds document store connection settings.
type Mongo struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
}

// Storage configures where uploaded attachments are written.
type Storage struct {
	Driver   string
	Dir      string
	MaxFiles int
	MaxBytes int64
	MinIO    MinIO
}

// MinIO holds S3-compatible object store settings.
type MinIO struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Mail configures outbound SMTP delivery.
type Mail struct {
	Enabled         bool
	Host            string
	Port            int
	Username        string
	Password        string
	From            string
	BreakerTimeout  time.Duration
	BreakerFailures uint32
}

// Auth configures bearer token verification.
type Auth struct {
	JWTSecret string
	Issuer    string
	AdminRole string
}

// Observability contains logging, tracing, and metrics configuration.
type Observability struct {
	ServiceName     string
	Environment     string
	LogLevel        string
	LogEncoding     string
	LogFile         string
	LogMaxSizeMB    int
	LogMaxBackups   int
	LogMaxAgeDays   int
	EnableTracing   bool
	TraceExporter   string
	TraceEndpoint   string
	TraceInsecure   bool
	EnableMetrics   bool
	MetricsExporter string
	PrometheusPath  string
}

// Config wraps all application configuration knobs.
type Config struct {
	HTTP          HTTP
	GRPC          GRPC
	App           App
	Mongo         Mongo
	Cache         Cache
	Messaging     Messaging
	Storage       Storage
	Mail          Mail
	Auth          Auth
	Observability Observability
}

// Module wires the configuration loader into the Fx graph.
var Module = fx.Provide(New)

var loadEnvOnce sync.Once

// New builds a Config from environment variables or defaults.
func New() (Config, error) {
	loadEnvOnce.Do(func() {
		_ = godotenv.Load()
	})

	cfg := Config{
		HTTP: HTTP{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnvAsInt("HTTP_PORT", 8080),
		},
		GRPC: GRPC{
			Host: getEnv("GRPC_HOST", "0.0.0.0"),
			Port: getEnvAsInt("GRPC_PORT", 9090),
		},
		App: App{
			BaseURL:     getEnv("APP_BASE_URL", ""),
			FrontendURL: getEnv("APP_FRONTEND_URL", ""),
		},
		Mongo: Mongo{
			URI:            getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
			Database:       getEnv("MONGO_DATABASE", "buyerdesk"),
			ConnectTimeout: getEnvAsDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
			MaxPoolSize:    uint64(getEnvAsInt("MONGO_MAX_POOL_SIZE", 50)),
		},
		Cache: Cache{
			Enabled:    getEnvAsBool("CACHE_ENABLED", true),
			Driver:     getEnv("CACHE_DRIVER", "redis"),
			DefaultTTL: getEnvAsDuration("CACHE_DEFAULT_TTL", time.Minute*5),
			Redis: Redis{
				Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
				Password: getEnv("REDIS_PASSWORD", ""),
				DB:       getEnvAsInt("REDIS_DB", 0),
			},
		},
		Messaging: Messaging{
			Driver:  getEnv("MESSAGING_DRIVER", "kafka"),
			Enabled: getEnvAsBool("MESSAGING_ENABLED", true),
			Kafka: Kafka{
				Brokers:        getEnvAsStringSlice("KAFKA_BROKERS", []string{"127.0.0.1:9092"}),
				ClientID:       getEnv("KAFKA_CLIENT_ID", "buyerdesk-service"),
				Topic:          getEnv("KAFKA_TOPIC", "procurement.notifications"),
				CommitInterval: getEnvAsDuration("KAFKA_COMMIT_INTERVAL", time.Second),
				MinBytes:       getEnvAsInt("KAFKA_MIN_BYTES", 10e3),
				MaxBytes:       getEnvAsInt("KAFKA_MAX_BYTES", 10e6),
				ConnectTimeout: getEnvAsDuration("KAFKA_CONNECT_TIMEOUT", 5*time.Second),
			},
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "buyerdesk-worker"),
			Workers: Worker{
				Enabled:      getEnvAsBool("WORKER_ENABLED", true),
				PollInterval: getEnvAsDuration("WORKER_POLL_INTERVAL", time.Second),
				Concurrency:  getEnvAsInt("WORKER_CONCURRENCY", 4),
			},
		},
		Storage: Storage{
			Driver:   getEnv("STORAGE_DRIVER", "local"),
			Dir:      getEnv("STORAGE_DIR", "uploads"),
			MaxFiles: getEnvAsInt("STORAGE_MAX_FILES", 10),
			MaxBytes: int64(getEnvAsInt("STORAGE_MAX_BYTES", 20<<20)),
			MinIO: MinIO{
				Endpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", "buyerdesk"),
				UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
			},
		},
		Mail: Mail{
			Enabled:         getEnvAsBool("MAIL_ENABLED", true),
			Host:            getEnv("SMTP_HOST", "127.0.0.1"),
			Port:            getEnvAsInt("SMTP_PORT", 587),
			Username:        getEnv("SMTP_USERNAME", ""),
			Password:        getEnv("SMTP_PASSWORD", ""),
			From:            getEnv("MAIL_FROM", "noreply@buyerdesk.local"),
			BreakerTimeout:  getEnvAsDuration("MAIL_BREAKER_TIMEOUT", 30*time.Second),
			BreakerFailures: uint32(getEnvAsInt("MAIL_BREAKER_FAILURES", 3)),
		},
		Auth: Auth{
			JWTSecret: getEnv("JWT_SECRET", ""),
			Issuer:    getEnv("JWT_ISSUER", "buyerdesk"),
			AdminRole: getEnv("AUTH_ADMIN_ROLE", "admin"),
		},
		Observability: Observability{
			ServiceName:     getEnv("OBS_SERVICE_NAME", "buyerdesk"),
			Environment:     getEnv("OBS_ENVIRONMENT", "local"),
			LogLevel:        getEnv("OBS_LOG_LEVEL", "info"),
			LogEncoding:     getEnv("OBS_LOG_ENCODING", "json"),
			LogFile:         getEnv("OBS_LOG_FILE", ""),
			LogMaxSizeMB:    getEnvAsInt("OBS_LOG_MAX_SIZE_MB", 10),
			LogMaxBackups:   getEnvAsInt("OBS_LOG_MAX_BACKUPS", 3),
			LogMaxAgeDays:   getEnvAsInt("OBS_LOG_MAX_AGE_DAYS", 28),
			EnableTracing:   getEnvAsBool("OBS_ENABLE_TRACING", true),
			TraceExporter:   getEnv("OBS_TRACE_EXPORTER", "stdout"),
			TraceEndpoint:   getEnv("OBS_OTLP_ENDPOINT", "localhost:4317"),
			TraceInsecure:   getEnvAsBool("OBS_OTLP_INSECURE", true),
			EnableMetrics:   getEnvAsBool("OBS_ENABLE_METRICS", true),
			MetricsExporter: getEnv("OBS_METRICS_EXPORTER", "prometheus"),
			PrometheusPath:  getEnv("OBS_PROMETHEUS_PATH", "/metrics"),
		},
	}

	if cfg.HTTP.Port <= 0 {
		return Config{}, fmt.Errorf("invalid HTTP port: %d", cfg.HTTP.Port)
	}

	if cfg.GRPC.Port <= 0 {
		return Config{}, fmt.Errorf("invalid gRPC port: %d", cfg.GRPC.Port)
	}

	if !cfg.Cache.Enabled {
		cfg.Cache.Driver = "noop"
	}

	switch cfg.Cache.Driver {
	case "redis", "noop":
		// supported
	default:
		return Config{}, fmt.Errorf("unsupported cache driver: %s", cfg.Cache.Driver)
	}

	if cfg.Cache.Driver == "redis" && cfg.Cache.Redis.Addr == "" {
		return Config{}, fmt.Errorf("missing REDIS_ADDR for redis cache")
	}

	if cfg.Cache.DefaultTTL < 0 {
		cfg.Cache.DefaultTTL = time.Minute * 5
	}

	cfg.Observability.LogLevel = strings.ToLower(strings.TrimSpace(cfg.Observability.LogLevel))
	if cfg.Observability.LogLevel == "" {
		cfg.Observability.LogLevel = "info"
	}
	cfg.Observability.LogEncoding = strings.ToLower(strings.TrimSpace(cfg.Observability.LogEncoding))
	if cfg.Observability.LogEncoding == "" {
		cfg.Observability.LogEncoding = "json"
	}
	cfg.Observability.TraceExporter = strings.ToLower(strings.TrimSpace(cfg.Observability.TraceExporter))
	if cfg.Observability.TraceExporter == "" {
		cfg.Observability.TraceExporter = "stdout"
	}
	cfg.Observability.MetricsExporter = strings.ToLower(strings.TrimSpace(cfg.Observability.MetricsExporter))
	if cfg.Observability.MetricsExporter == "" {
		cfg.Observability.MetricsExporter = "prometheus"
	}

	if cfg.Observability.PrometheusPath == "" {
		cfg.Observability.PrometheusPath = "/metrics"
	} else if !strings.HasPrefix(cfg.Observability.PrometheusPath, "/") {
		cfg.Observability.PrometheusPath = "/" + cfg.Observability.PrometheusPath
	}

	if !cfg.Messaging.Enabled {
		cfg.Messaging.Driver = "noop"
	}

	switch cfg.Messaging.Driver {
	case "kafka", "noop":
		// supported
	default:
		return Config{}, fmt.Errorf("unsupported messaging driver: %s", cfg.Messaging.Driver)
	}

	if cfg.Messaging.Driver == "kafka" {
		if len(cfg.Messaging.Kafka.Brokers) == 0 {
			return Config{}, fmt.Errorf("KAFKA_BROKERS must be provided")
		}
		if cfg.Messaging.Kafka.Topic == "" {
			return Config{}, fmt.Errorf("KAFKA_TOPIC must be provided")
		}
		if cfg.Messaging.ConsumerGroup == "" {
			return Config{}, fmt.Errorf("KAFKA_CONSUMER_GROUP must be provided")
		}
	}

	if cfg.Messaging.Workers.Concurrency <= 0 {
		cfg.Messaging.Workers.Concurrency = 1
	}
	if cfg.Messaging.Workers.PollInterval <= 0 {
		cfg.Messaging.Workers.PollInterval = time.Second
	}

	cfg.App.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.App.BaseURL), "/")
	if cfg.App.BaseURL == "" {
		return Config{}, fmt.Errorf("missing APP_BASE_URL")
	}
	if cfg.App.FrontendURL == "" {
		cfg.App.FrontendURL = cfg.App.BaseURL
	}

	if cfg.Mongo.URI == "" {
		return Config{}, fmt.Errorf("missing MONGO_URI")
	}
	if cfg.Mongo.Database == "" {
		return Config{}, fmt.Errorf("missing MONGO_DATABASE")
	}
	if cfg.Mongo.ConnectTimeout <= 0 {
		cfg.Mongo.ConnectTimeout = 10 * time.Second
	}

	switch cfg.Storage.Driver {
	case "local":
		if cfg.Storage.Dir == "" {
			cfg.Storage.Dir = "uploads"
		}
	case "minio":
		if cfg.Storage.MinIO.Endpoint == "" || cfg.Storage.MinIO.Bucket == "" {
			return Config{}, fmt.Errorf("MINIO_ENDPOINT and MINIO_BUCKET must be provided")
		}
	default:
		return Config{}, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
	if cfg.Storage.MaxFiles <= 0 {
		cfg.Storage.MaxFiles = 10
	}

	if cfg.Mail.Enabled && cfg.Mail.Host == "" {
		return Config{}, fmt.Errorf("missing SMTP_HOST for mail delivery")
	}
	if cfg.Mail.BreakerFailures == 0 {
		cfg.Mail.BreakerFailures = 3
	}

	if cfg.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("missing JWT_SECRET")
	}
	if cfg.Auth.AdminRole == "" {
		cfg.Auth.AdminRole = "admin"
	}

	return cfg, nil
}
