package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string         `json:"env"`
	Http     HttpConfig     `json:"http"`
	Postgres PostgresConfig `json:"postgres"`
	Redis    RedisConfig    `json:"redis"`
	Auth     AuthConfig     `json:"auth"`
	Mail     MailConfig     `json:"mail"`
	Places   PlacesConfig   `json:"places"`
	Reviews  ReviewsConfig  `json:"reviews"`
}

type HttpConfig struct {
	Port            string        `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	User     string `json:"user"`
	Password string `json:"password,omitempty"`
	SSLMode  string `json:"ssl_mode"`

	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password,omitempty"`
	DB       int    `json:"db"`
}

type AuthConfig struct {
	JWTSecret      string        `json:"jwt_secret,omitempty"`
	SessionTTL     time.Duration `json:"session_ttl"`
	BcryptCost     int           `json:"bcrypt_cost"`
	GoogleClientID string        `json:"google_client_id"`
	ResetTokenTTL  time.Duration `json:"reset_token_ttl"`
}

type MailConfig struct {
	SMTPHost       string `json:"smtp_host"`
	SMTPPort       int    `json:"smtp_port"`
	SMTPUser       string `json:"smtp_user"`
	SMTPPassword   string `json:"smtp_password,omitempty"`
	From           string `json:"from"`
	FrontendOrigin string `json:"frontend_origin"`
	Disabled       bool   `json:"disabled"`
}

type PlacesConfig struct {
	CacheTTL    time.Duration `json:"cache_ttl"`
	VisitWindow time.Duration `json:"visit_window"`
}

type ReviewsConfig struct {
	// SinglePerPlace limits each user to one review per place. The reference
	// behavior allowed repeated reviews, so the default is off.
	SinglePerPlace bool `json:"single_per_place"`
}

func Load() (*Config, error) {

	stdLogger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stdLogger.Warn(".env load warning", slog.Any("error", err))
	}

	cfg := &Config{
		Env: getEnv("ENV", "local"),
		Http: HttpConfig{
			Port:            getEnv("HTTP_PORT", ":8080"),
			ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "pg-local"),
			Port:            getEnvInt("POSTGRES_PORT", 5432),
			Database:        getEnv("POSTGRES_DB", "exquisitos_db"),
			User:            getEnv("POSTGRES_USER", "postgres"),
			Password:        getEnv("POSTGRES_PASSWORD", "postgres"),
			SSLMode:         getEnv("POSTGRES_SSL_MODE", "disable"),
			MaxConns:        20,
			MinConns:        1,
			MaxConnLifetime: 1 * time.Hour,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "redis-local:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", ""),
			SessionTTL:     getEnvDuration("SESSION_TTL", 8*time.Hour),
			BcryptCost:     getEnvInt("BCRYPT_COST", 10),
			GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),
			ResetTokenTTL:  getEnvDuration("RESET_TOKEN_TTL", 1*time.Hour),
		},
		Mail: MailConfig{
			SMTPHost:       getEnv("SMTP_HOST", "smtp.ethereal.email"),
			SMTPPort:       getEnvInt("SMTP_PORT", 587),
			SMTPUser:       getEnv("SMTP_USER", ""),
			SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
			From:           getEnv("MAIL_FROM", "Soporte Exquisitos <no-reply@exquisitos.app>"),
			FrontendOrigin: getEnv("FRONTEND_ORIGIN", "http://localhost:5173"),
			Disabled:       getEnvBool("MAIL_DISABLED", false),
		},
		Places: PlacesConfig{
			CacheTTL:    getEnvDuration("PLACES_CACHE_TTL", 30*time.Second),
			VisitWindow: getEnvDuration("VISIT_WINDOW", 24*time.Hour),
		},
		Reviews: ReviewsConfig{
			SinglePerPlace: getEnvBool("REVIEWS_SINGLE_PER_PLACE", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stdLogger.Info("Config loaded successfully",
		slog.String("env", cfg.Env),
		slog.String("http_port", cfg.Http.Port),
		slog.String("postgres_db", cfg.Postgres.Database),
		slog.String("redis_addr", cfg.Redis.Addr),
		slog.String("frontend_origin", cfg.Mail.FrontendOrigin))

	return cfg, nil
}

func (c *Config) Validate() error {

	if c.Http.Port == "" || c.Http.Port[0] != ':' {
		return errors.New("HTTP_PORT must start with ':' like ':8080'")
	}

	if c.Postgres.Host == "" {
		return errors.New("POSTGRES_HOST required")
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET required")
	}

	if c.Auth.ResetTokenTTL <= 0 {
		return errors.New("RESET_TOKEN_TTL must be positive")
	}

	if !strings.HasPrefix(c.Mail.FrontendOrigin, "http") {
		return errors.New("FRONTEND_ORIGIN must be an absolute origin")
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
