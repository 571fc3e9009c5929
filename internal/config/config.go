package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Logger     LoggerConfig
	Redis      RedisConfig
	NATS       NATSConfig
	Artifacts  ArtifactConfig
	Classifier ClassifierConfig
	Metrics    MetricsConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	RateLimit       float64
	RateBurst       int
}

// Addr is the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogQueries      bool
	AutoMigrate     bool
}

// DSN returns DATABASE_URL when set, otherwise a URL assembled from the
// individual DB_* settings.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

type LoggerConfig struct {
	Level  string
	Format string
}

type RedisConfig struct {
	Enabled  bool
	URL      string
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type NATSConfig struct {
	Enabled       bool
	URL           string
	SubjectPrefix string
}

const (
	ArtifactBackendFS = "fs"
	ArtifactBackendS3 = "s3"
)

type ArtifactConfig struct {
	Backend    string
	Dir        string
	S3Bucket   string
	S3Prefix   string
	S3Region   string
	S3Endpoint string
}

type ClassifierConfig struct {
	Trees      int
	MaxDepth   int
	MinSamples int
	Seed       int64
}

type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	// A missing .env is the normal case in containers.
	_ = godotenv.Load()

	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8000)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("SERVER_RATE_LIMIT", 0)
	v.SetDefault("SERVER_RATE_BURST", 50)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "posnfc")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DB_LOG_QUERIES", false)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")
	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_TTL", "10m")
	v.SetDefault("NATS_ENABLED", false)
	v.SetDefault("NATS_URL", "nats://127.0.0.1:4222")
	v.SetDefault("NATS_SUBJECT_PREFIX", "posnfc")
	v.SetDefault("ARTIFACT_BACKEND", ArtifactBackendFS)
	v.SetDefault("ARTIFACT_DIR", "./artifacts")
	v.SetDefault("ARTIFACT_S3_BUCKET", "")
	v.SetDefault("ARTIFACT_S3_PREFIX", "apdu-models")
	v.SetDefault("ARTIFACT_S3_REGION", "")
	v.SetDefault("ARTIFACT_S3_ENDPOINT", "")
	v.SetDefault("CLASSIFIER_TREES", 100)
	v.SetDefault("CLASSIFIER_MAX_DEPTH", 12)
	v.SetDefault("CLASSIFIER_MIN_SAMPLES", 20)
	v.SetDefault("CLASSIFIER_SEED", 0)
	v.SetDefault("METRICS_ENABLED", true)

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host:            strings.TrimSpace(v.GetString("SERVER_HOST")),
			Port:            v.GetInt("SERVER_PORT"),
			ShutdownTimeout: durationOr(v, "SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			RateLimit:       v.GetFloat64("SERVER_RATE_LIMIT"),
			RateBurst:       v.GetInt("SERVER_RATE_BURST"),
		},
		Database: DatabaseConfig{
			URL:             v.GetString("DATABASE_URL"),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: durationOr(v, "DB_CONN_MAX_LIFETIME", 30*time.Minute),
			LogQueries:      v.GetBool("DB_LOG_QUERIES"),
			AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			URL:      v.GetString("REDIS_URL"),
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTL:      durationOr(v, "REDIS_TTL", 10*time.Minute),
		},
		NATS: NATSConfig{
			Enabled:       v.GetBool("NATS_ENABLED"),
			URL:           v.GetString("NATS_URL"),
			SubjectPrefix: v.GetString("NATS_SUBJECT_PREFIX"),
		},
		Artifacts: ArtifactConfig{
			Backend:    strings.ToLower(v.GetString("ARTIFACT_BACKEND")),
			Dir:        v.GetString("ARTIFACT_DIR"),
			S3Bucket:   v.GetString("ARTIFACT_S3_BUCKET"),
			S3Prefix:   v.GetString("ARTIFACT_S3_PREFIX"),
			S3Region:   v.GetString("ARTIFACT_S3_REGION"),
			S3Endpoint: v.GetString("ARTIFACT_S3_ENDPOINT"),
		},
		Classifier: ClassifierConfig{
			Trees:      v.GetInt("CLASSIFIER_TREES"),
			MaxDepth:   v.GetInt("CLASSIFIER_MAX_DEPTH"),
			MinSamples: v.GetInt("CLASSIFIER_MIN_SAMPLES"),
			Seed:       v.GetInt64("CLASSIFIER_SEED"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if err := ValidateHost(c.Server.Host); err != nil {
		errs = append(errs, err)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT %d out of range 1-65535", c.Server.Port))
	}

	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("SERVER_RATE_LIMIT must not be negative, got %v", c.Server.RateLimit))
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("SERVER_RATE_BURST must be positive when rate limiting, got %d", c.Server.RateBurst))
	}

	switch c.Artifacts.Backend {
	case ArtifactBackendFS:
		if c.Artifacts.Dir == "" {
			errs = append(errs, errors.New("ARTIFACT_DIR is required for the fs backend"))
		}
	case ArtifactBackendS3:
		if c.Artifacts.S3Bucket == "" {
			errs = append(errs, errors.New("ARTIFACT_S3_BUCKET is required for the s3 backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown ARTIFACT_BACKEND %q", c.Artifacts.Backend))
	}

	if c.Classifier.Trees <= 0 {
		errs = append(errs, fmt.Errorf("CLASSIFIER_TREES must be positive, got %d", c.Classifier.Trees))
	}
	if c.Classifier.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("CLASSIFIER_MAX_DEPTH must be positive, got %d", c.Classifier.MaxDepth))
	}

	return errors.Join(errs...)
}

// ValidateHost accepts an IP literal or a DNS name. Dotted all-numeric
// names that do not parse as an IP (for example "0.0.0") are rejected:
// resolvers treat them inconsistently and the server would end up bound
// to an unintended address.
func ValidateHost(host string) error {
	if host == "" {
		return errors.New("SERVER_HOST is required")
	}
	if net.ParseIP(host) != nil {
		return nil
	}

	labels := strings.Split(host, ".")
	allNumeric := true
	for _, label := range labels {
		if label == "" || len(label) > 63 {
			return fmt.Errorf("SERVER_HOST %q is not a valid address", host)
		}
		for _, ch := range label {
			isAlnum := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
			if !isAlnum && ch != '-' {
				return fmt.Errorf("SERVER_HOST %q is not a valid address", host)
			}
		}
		if _, err := strconv.Atoi(label); err != nil {
			allNumeric = false
		}
	}
	if allNumeric {
		return fmt.Errorf("SERVER_HOST %q is not a valid IP address (did you mean 0.0.0.0?)", host)
	}
	return nil
}

func durationOr(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}
