package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	S3       S3Config       `mapstructure:"s3"`
	LogLevel string         `mapstructure:"log_level"`
}

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// DSN renders the Postgres connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	URL      string `mapstructure:"url"`
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// GeminiConfig configures the recipe generation client. The API key may
// come from GEMINI_API_KEY or, following the deployment's secret-file
// convention, from a file named by GEMINI_API_KEY_FILE.
type GeminiConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	BaseURL        string        `mapstructure:"base_url"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type S3Config struct {
	Bucket  string `mapstructure:"bucket"`
	Region  string `mapstructure:"region"`
	BaseURL string `mapstructure:"base_url"`
}

// Load reads configuration from the environment (and an optional .env
// file) and validates it.
func Load() (*Config, error) {
	// A missing .env is fine; the environment may be fully populated
	// already (containers, CI).
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	bindEnv(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = readSecretFile(os.Getenv("GEMINI_API_KEY_FILE"))
	}
	if cfg.Database.Password == "" {
		cfg.Database.Password = readSecretFile(os.Getenv("DB_PASSWORD_FILE"))
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = readSecretFile(os.Getenv("JWT_SECRET_FILE"))
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "fridgechef")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini.max_retries", 5)
	v.SetDefault("gemini.retry_base_delay", 5*time.Second)
	v.SetDefault("gemini.timeout", 30*time.Second)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("log_level", "info")
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("server.host", "SERVER_HOST")
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.mode", "GIN_MODE")
	v.BindEnv("server.allowed_origins", "ALLOWED_ORIGINS")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.name", "DB_NAME")
	v.BindEnv("database.ssl_mode", "DB_SSL_MODE")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("redis.url", "REDIS_URL")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.token_ttl", "TOKEN_TTL")
	v.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("gemini.model", "GEMINI_MODEL")
	v.BindEnv("gemini.base_url", "GEMINI_BASE_URL")
	v.BindEnv("gemini.max_retries", "GEMINI_MAX_RETRIES")
	v.BindEnv("gemini.retry_base_delay", "GEMINI_RETRY_BASE_DELAY")
	v.BindEnv("gemini.timeout", "GEMINI_TIMEOUT")
	v.BindEnv("s3.bucket", "S3_BUCKET")
	v.BindEnv("s3.region", "S3_REGION")
	v.BindEnv("s3.base_url", "S3_BASE_URL")
	v.BindEnv("log_level", "LOG_LEVEL")
}

func readSecretFile(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func validate(cfg *Config) error {
	if cfg.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if cfg.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET or JWT_SECRET_FILE must be set")
	}
	// The Gemini key is deliberately not required here: the generation
	// client validates it at construction and the rest of the API works
	// without it.
	return nil
}
