package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Capture archive drivers.
const (
	ArchiveNone = "none"
	ArchiveFile = "file"
	ArchiveS3   = "s3"
)

// Server captures all process level configuration.
type Server struct {
	Addr            string
	Environment     string
	LogLevel        string
	LogFormat       string
	StorageDriver   string
	SeedOnStartup   bool
	ShutdownTimeout time.Duration

	Postgres  PostgresConfig
	Redis     RedisConfig
	Biometric BiometricConfig
	Session   SessionConfig
	OTP       OTPConfig
	Lockout   LockoutConfig
	Admin     AdminConfig
	Archive   ArchiveConfig
	Audit     AuditConfig
	RateLimit RateLimitConfig
}

// PostgresConfig configures the relational store.
type PostgresConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the OTP cache. An empty URL selects the in-memory OTP store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// BiometricConfig configures descriptor extraction and matching.
type BiometricConfig struct {
	ExtractorURL     string
	ExtractorTimeout time.Duration
	Tolerance        float64
	DescriptorLength int
}

// SessionConfig configures tokens issued after face login.
type SessionConfig struct {
	SigningKey string
	Issuer     string
	TTL        time.Duration
}

// OTPConfig configures the demo OTP flow.
type OTPConfig struct {
	DemoCode string
	TTL      time.Duration
}

// LockoutConfig bounds failed face logins per national id.
type LockoutConfig struct {
	Attempts int
	Window   time.Duration
	Duration time.Duration
}

// AdminConfig guards the admin export. TokenHash is a bcrypt hash.
type AdminConfig struct {
	TokenHash string
}

// ArchiveConfig selects where raw captures are kept.
type ArchiveConfig struct {
	Driver   string
	Dir      string
	S3Bucket string
	S3Region string
	S3Prefix string
}

// AuditConfig enables the Kafka audit sink when brokers are set.
type AuditConfig struct {
	KafkaBrokers []string
	KafkaTopic   string
}

// RateLimitConfig sets per-IP request budgets per minute. Zero disables a class.
type RateLimitConfig struct {
	Enabled         bool
	BiometricPerMin int
	OTPPerMin       int
	DefaultPerMin   int
}

// Defaults used when the environment is silent.
const (
	DefaultTolerance        = 0.48
	DefaultDescriptorLength = 128
	DefaultDemoOTP          = "123456"
)

// LoadDotEnv loads a .env file when present. Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	p := &parser{}
	cfg := Server{
		Addr:            p.str("MATDAAN_ADDR", ":5000"),
		Environment:     p.str("ENVIRONMENT", "development"),
		LogLevel:        p.str("LOG_LEVEL", "info"),
		LogFormat:       p.str("LOG_FORMAT", "json"),
		StorageDriver:   p.str("STORAGE_DRIVER", DriverMemory),
		SeedOnStartup:   p.boolean("SEED_ON_STARTUP", true),
		ShutdownTimeout: p.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Postgres: PostgresConfig{
			URL:             p.str("DATABASE_URL", ""),
			MaxOpenConns:    p.integer("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    p.integer("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: p.duration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          p.str("REDIS_URL", ""),
			PoolSize:     p.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: p.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  p.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  p.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: p.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Biometric: BiometricConfig{
			ExtractorURL:     p.str("FACE_EXTRACTOR_URL", "http://127.0.0.1:8500/descriptors"),
			ExtractorTimeout: p.duration("FACE_EXTRACTOR_TIMEOUT", 10*time.Second),
			Tolerance:        p.float("FACE_TOLERANCE", DefaultTolerance),
			DescriptorLength: p.integer("FACE_DESCRIPTOR_LENGTH", DefaultDescriptorLength),
		},
		Session: SessionConfig{
			SigningKey: p.str("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:     p.str("JWT_ISSUER", "e-matdaan"),
			TTL:        p.duration("SESSION_TTL", 30*time.Minute),
		},
		OTP: OTPConfig{
			DemoCode: p.str("DEMO_OTP", DefaultDemoOTP),
			TTL:      p.duration("OTP_TTL", 5*time.Minute),
		},
		Lockout: LockoutConfig{
			Attempts: p.integer("LOCKOUT_ATTEMPTS", 5),
			Window:   p.duration("LOCKOUT_WINDOW", 15*time.Minute),
			Duration: p.duration("LOCKOUT_DURATION", 15*time.Minute),
		},
		Admin: AdminConfig{
			TokenHash: p.str("ADMIN_TOKEN_HASH", ""),
		},
		Archive: ArchiveConfig{
			Driver:   p.str("CAPTURE_ARCHIVE", ArchiveFile),
			Dir:      p.str("CAPTURE_DIR", "captures"),
			S3Bucket: p.str("CAPTURE_S3_BUCKET", ""),
			S3Region: p.str("CAPTURE_S3_REGION", "ap-south-1"),
			S3Prefix: p.str("CAPTURE_S3_PREFIX", "captures/"),
		},
		Audit: AuditConfig{
			KafkaBrokers: p.list("AUDIT_KAFKA_BROKERS"),
			KafkaTopic:   p.str("AUDIT_KAFKA_TOPIC", "matdaan.audit"),
		},
		RateLimit: RateLimitConfig{
			Enabled:         p.boolean("RATE_LIMIT_ENABLED", true),
			BiometricPerMin: p.integer("RATE_LIMIT_BIOMETRIC_PER_MIN", 20),
			OTPPerMin:       p.integer("RATE_LIMIT_OTP_PER_MIN", 10),
			DefaultPerMin:   p.integer("RATE_LIMIT_DEFAULT_PER_MIN", 120),
		},
	}
	if err := errors.Join(p.errs...); err != nil {
		return Server{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (s Server) Validate() error {
	var errs []error
	switch s.StorageDriver {
	case DriverMemory:
	case DriverPostgres:
		if s.Postgres.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORAGE_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", s.StorageDriver))
	}
	if s.Biometric.Tolerance <= 0 {
		errs = append(errs, errors.New("FACE_TOLERANCE must be positive"))
	}
	if s.Biometric.DescriptorLength <= 0 {
		errs = append(errs, errors.New("FACE_DESCRIPTOR_LENGTH must be positive"))
	}
	if s.Lockout.Attempts <= 0 {
		errs = append(errs, errors.New("LOCKOUT_ATTEMPTS must be positive"))
	}
	if s.OTP.TTL <= 0 {
		errs = append(errs, errors.New("OTP_TTL must be positive"))
	}
	switch s.Archive.Driver {
	case ArchiveNone, ArchiveFile:
	case ArchiveS3:
		if s.Archive.S3Bucket == "" {
			errs = append(errs, errors.New("CAPTURE_S3_BUCKET is required when CAPTURE_ARCHIVE=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CAPTURE_ARCHIVE %q", s.Archive.Driver))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the process runs in production.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

type parser struct {
	errs []error
}

func (p *parser) str(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func (p *parser) integer(key string, fallback int) int {
	raw := p.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func (p *parser) float(key string, fallback float64) float64 {
	raw := p.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func (p *parser) boolean(key string, fallback bool) bool {
	raw := p.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := p.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func (p *parser) list(key string) []string {
	raw := p.str(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
