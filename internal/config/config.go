package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env string

	DB    DBConfig
	Redis RedisConfig
	Auth  AuthConfig
	OTP   OTPConfig
	Mail  MailConfig
	Log   LogConfig

	PublicAddr   string
	InternalAddr string
	GatewayAddr  string
	OtelEndpoint string
	CORSOrigins  []string

	// LockBackend selects per-project serialization: "redis" or "local".
	LockBackend string
}

type DBConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	Path     string
}

type RedisConfig struct {
	Addr     string
	Password string
}

type AuthConfig struct {
	SecretKey     string
	TokenTTL      time.Duration
	PasswordCodec string
}

type OTPConfig struct {
	Store    string
	TTL      time.Duration
	Capacity int
}

type MailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPass     string
	From         string
	ResendAPIKey string
}

type LogConfig struct {
	File   string
	Level  string
	Stdout bool
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env: getEnv("SERVICE_ENV", "development"),
		DB: DBConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", "constructedge"),
			Path:     getEnv("DB_PATH", "constructedge.db"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Auth: AuthConfig{
			SecretKey:     os.Getenv("SECRET_KEY"),
			PasswordCodec: getEnv("PASSWORD_CODEC", "plain"),
		},
		OTP: OTPConfig{
			Store: getEnv("OTP_STORE", "redis"),
		},
		Mail: MailConfig{
			SMTPHost:     os.Getenv("SMTP_HOST"),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUser:     os.Getenv("SMTP_USER"),
			SMTPPass:     os.Getenv("SMTP_PASS"),
			From:         getEnv("MAIL_FROM", "no-reply@constructedge.local"),
			ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		},
		Log: LogConfig{
			File:  os.Getenv("LOG_FILE"),
			Level: getEnv("LOG_LEVEL", "info"),
		},
		PublicAddr:   getEnv("PUBLIC_ADDR", ":50054"),
		InternalAddr: getEnv("INTERNAL_ADDR", ":50055"),
		GatewayAddr:  getEnv("GATEWAY_ADDR", ":8080"),
		OtelEndpoint: os.Getenv("OTEL_ENDPOINT"),
		LockBackend:  getEnv("LOCK_BACKEND", "redis"),
		CORSOrigins:  getList("CORS_ORIGINS", []string{"*"}),
	}

	var err error
	if cfg.Auth.TokenTTL, err = getDuration("TOKEN_TTL", time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.OTP.TTL, err = getDuration("OTP_TTL", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.OTP.Capacity, err = getInt("OTP_CAPACITY", 10000); err != nil {
		return Config{}, err
	}
	if cfg.Log.Stdout, err = getBool("LOG_STDOUT", true); err != nil {
		return Config{}, err
	}

	if cfg.Auth.SecretKey == "" {
		if cfg.Env == "production" {
			return Config{}, fmt.Errorf("SECRET_KEY must be set in production")
		}
		cfg.Auth.SecretKey = "dev-secret-key"
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
