package internal

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security" validate:"required"`
	Media         MediaConfig         `mapstructure:"media"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	Source          string        `mapstructure:"source"`
}

// SecurityConfig carries the two RSA key pairs for token signing. Access and
// refresh tokens are signed with independent private keys so one secret can
// rotate without touching the other. Keys are base64-encoded PEM blocks.
type SecurityConfig struct {
	AccessTokenPrivateKey  string `mapstructure:"access_token_private_key" validate:"required"`
	AccessTokenPublicKey   string `mapstructure:"access_token_public_key" validate:"required"`
	RefreshTokenPrivateKey string `mapstructure:"refresh_token_private_key" validate:"required"`
	RefreshTokenPublicKey  string `mapstructure:"refresh_token_public_key" validate:"required"`
	AccessTokenTTL         string `mapstructure:"access_token_ttl" validate:"required"`
	RefreshTokenTTL        string `mapstructure:"refresh_token_ttl" validate:"required"`
	BCryptCost             int    `mapstructure:"bcrypt_cost" validate:"required,min=10,max=15"`
}

type MediaConfig struct {
	APIURL             string        `mapstructure:"api_url"`
	APIKey             string        `mapstructure:"api_key"`
	UploadDir          string        `mapstructure:"upload_dir"`
	FFmpegPath         string        `mapstructure:"ffmpeg_path"`
	FFprobePath        string        `mapstructure:"ffprobe_path"`
	CompressionPercent int           `mapstructure:"compression_percent"`
	UploadTimeout      time.Duration `mapstructure:"upload_timeout"`
	MaxWorkers         int           `mapstructure:"max_workers"`
	JobQueueSize       int           `mapstructure:"job_queue_size"`
	WorkerPoolSize     int           `mapstructure:"worker_pool_size"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// LoadConfigFromEnv builds a Config entirely from environment variables, for
// container deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("HTTP_PORT", 1337),
			BaseURL:           getEnv("BASE_URL", ""),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			IdleTimeout:       60 * time.Second,
			WriteTimeout:      30 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			Source:          getEnv("DB_SOURCE", ""),
		},
		Security: SecurityConfig{
			AccessTokenPrivateKey:  getEnv("ACCESS_TOKEN_PRIVATE_KEY", ""),
			AccessTokenPublicKey:   getEnv("ACCESS_TOKEN_PUBLIC_KEY", ""),
			RefreshTokenPrivateKey: getEnv("REFRESH_TOKEN_PRIVATE_KEY", ""),
			RefreshTokenPublicKey:  getEnv("REFRESH_TOKEN_PUBLIC_KEY", ""),
			AccessTokenTTL:         getEnv("ACCESS_TOKEN_TTL", "600m"),
			RefreshTokenTTL:        getEnv("REFRESH_TOKEN_TTL", "1y"),
			BCryptCost:             getEnvAsInt("BCRYPT_COST", 10),
		},
		Media: MediaConfig{
			APIURL:             getEnv("MEDIA_API_URL", ""),
			APIKey:             getEnv("MEDIA_API_KEY", ""),
			UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
			FFmpegPath:         getEnv("FFMPEG_PATH", "ffmpeg"),
			FFprobePath:        getEnv("FFPROBE_PATH", "ffprobe"),
			CompressionPercent: getEnvAsInt("COMPRESSION_PERCENT", 60),
			UploadTimeout:      30 * time.Second,
			MaxWorkers:         getEnvAsInt("MEDIA_MAX_WORKERS", 4),
			JobQueueSize:       getEnvAsInt("MEDIA_JOB_QUEUE_SIZE", 100),
			WorkerPoolSize:     getEnvAsInt("MEDIA_WORKER_POOL_SIZE", 4),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Media.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("media config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if _, err := ParsePrivateKey(c.AccessTokenPrivateKey); err != nil {
		return fmt.Errorf("invalid access token private key: %w", err)
	}
	if _, err := ParsePublicKey(c.AccessTokenPublicKey); err != nil {
		return fmt.Errorf("invalid access token public key: %w", err)
	}
	if _, err := ParsePrivateKey(c.RefreshTokenPrivateKey); err != nil {
		return fmt.Errorf("invalid refresh token private key: %w", err)
	}
	if _, err := ParsePublicKey(c.RefreshTokenPublicKey); err != nil {
		return fmt.Errorf("invalid refresh token public key: %w", err)
	}
	if _, err := ParseTTL(c.AccessTokenTTL); err != nil {
		return fmt.Errorf("invalid access token ttl: %w", err)
	}
	if _, err := ParseTTL(c.RefreshTokenTTL); err != nil {
		return fmt.Errorf("invalid refresh token ttl: %w", err)
	}
	if c.BCryptCost < 10 || c.BCryptCost > 15 {
		return errors.New("bcrypt_cost must be between 10 and 15")
	}
	return nil
}

func (c *MediaConfig) Validate() error {
	if c.UploadDir == "" {
		return errors.New("upload_dir is required")
	}
	if c.CompressionPercent < 0 || c.CompressionPercent > 100 {
		return errors.New("compression_percent must be between 0 and 100")
	}
	return nil
}

// ----------------- KEYS & TTLS -----------------

// ParsePrivateKey decodes a base64-encoded PEM RSA private key (PKCS#1 or PKCS#8).
func ParsePrivateKey(encoded string) (*rsa.PrivateKey, error) {
	keyData, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	block, _ := pem.Decode(keyData)
	if block == nil {
		return nil, errors.New("failed to parse PEM block")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("not an RSA private key")
	}
	return key, nil
}

// ParsePublicKey decodes a base64-encoded PEM RSA public key (PKIX or PKCS#1).
func ParsePublicKey(encoded string) (*rsa.PublicKey, error) {
	keyData, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode public key: %w", err)
	}
	block, _ := pem.Decode(keyData)
	if block == nil {
		return nil, errors.New("failed to parse PEM block")
	}
	if pub, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return pub, nil
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	rsaPub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("not an RSA public key")
	}
	return rsaPub, nil
}

// ParseTTL parses a token lifetime string. On top of the units understood by
// time.ParseDuration it accepts "d" (days), "w" (weeks) and "y" (years),
// which token TTLs like "600m" and "1y" are configured with.
func ParseTTL(ttl string) (time.Duration, error) {
	s := strings.TrimSpace(ttl)
	if s == "" {
		return 0, errors.New("empty duration")
	}

	unit := s[len(s)-1:]
	var perUnit time.Duration
	switch unit {
	case "d":
		perUnit = 24 * time.Hour
	case "w":
		perUnit = 7 * 24 * time.Hour
	case "y":
		perUnit = 365 * 24 * time.Hour
	default:
		return time.ParseDuration(s)
	}

	n, err := strconv.ParseFloat(s[:len(s)-1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", ttl)
	}
	return time.Duration(n * float64(perUnit)), nil
}
