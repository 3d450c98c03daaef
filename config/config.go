package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	AWS      AWSConfig
	Puzzle   PuzzleConfig
	Mail     MailConfig
	SMTP     SMTPConfig
	Mailer   MailerConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT signing and validation settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// AWSConfig holds AWS credentials and the CV bucket.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	Endpoint             string
	CVBucket             string
	PresignExpireMinutes int
}

// PuzzleConfig holds answer validation settings.
type PuzzleConfig struct {
	ValidationSecret  string
	ValidationTimeout time.Duration
}

// MailConfig is how the API reaches the mail service, and what it sends on selection.
type MailConfig struct {
	ServiceURL        string
	APIKey            string
	Timeout           time.Duration
	SelectionFrom     string
	SelectionSubject  string
	SelectionTemplate string
}

// SMTPConfig is used by the delivery worker.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Pass     string
	Timeout  time.Duration
	Insecure bool // plain connection, for local catchers like mailhog
}

// MailerConfig holds mail service HTTP settings.
type MailerConfig struct {
	Port   string
	APIKey string
}

// Origins splits CORSAllowedOrigins into a list.
func (c ServerConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (DATABASE_URL), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	mailerKey := getEnv("MAILER_API_KEY", "")
	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:4200"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "hackatown"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 0)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", ""),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:             getEnv("AWS_S3_ENDPOINT", ""),
			CVBucket:             getEnv("AWS_S3_CV_BUCKET", "hackatown-cvs"),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
		Puzzle: PuzzleConfig{
			ValidationSecret:  getEnv("PUZZLE_HERO_VALIDATION_SECRET", ""),
			ValidationTimeout: getEnvDuration("PUZZLE_VALIDATION_TIMEOUT", 10*time.Second),
		},
		Mail: MailConfig{
			ServiceURL:        strings.TrimRight(getEnv("MAIL_SERVICE_URL", "http://localhost:8081"), "/"),
			APIKey:            mailerKey,
			Timeout:           getEnvDuration("MAIL_SERVICE_TIMEOUT", 10*time.Second),
			SelectionFrom:     getEnv("SELECTION_EMAIL_FROM", "PolyHx <info@polyhx.io>"),
			SelectionSubject:  getEnv("SELECTION_EMAIL_SUBJECT", "Hackatown 2018 - Selection"),
			SelectionTemplate: getEnv("SELECTION_EMAIL_TEMPLATE", "hackatown2018-selection"),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnvInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Pass:     getEnv("SMTP_PASS", ""),
			Timeout:  getEnvDuration("SMTP_TIMEOUT", 15*time.Second),
			Insecure: getEnvBool("SMTP_INSECURE", false),
		},
		Mailer: MailerConfig{
			Port:   getEnv("MAILER_PORT", "8081"),
			APIKey: mailerKey,
		},
	}
	if cfg.Puzzle.ValidationTimeout <= 0 {
		return nil, fmt.Errorf("PUZZLE_VALIDATION_TIMEOUT must be positive")
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("5s") or plain seconds ("5").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
