package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	ServerPort      string        `yaml:"port"`
	DatabaseType    string        `yaml:"database_type"`
	DatabasePath    string        `yaml:"database_path"`
	DatabaseURL     string        `yaml:"database_url"`
	MigrationsPath  string        `yaml:"migrations_path"`
	SessionDuration time.Duration `yaml:"session_duration"`
	Debug           bool          `yaml:"debug"`

	JWTSecret      string   `yaml:"jwt_secret"`
	CSRFSecret     string   `yaml:"csrf_secret"`
	CookieSecret   string   `yaml:"cookie_secret"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	OAuth OAuthConfig `yaml:"oauth"`
	Email EmailConfig `yaml:"email"`
}

// OAuthConfig holds OAuth client credentials
type OAuthConfig struct {
	RedirectBaseURL      string `yaml:"redirect_base_url"`
	GoogleClientID       string `yaml:"google_client_id"`
	GoogleClientSecret   string `yaml:"google_client_secret"`
	FacebookClientID     string `yaml:"facebook_client_id"`
	FacebookClientSecret string `yaml:"facebook_client_secret"`
}

// EmailConfig holds Amazon SES settings; an empty FromEmail disables sending
type EmailConfig struct {
	AWSRegion  string `yaml:"aws_region"`
	FromEmail  string `yaml:"from_email"`
	FromName   string `yaml:"from_name"`
	AppBaseURL string `yaml:"app_base_url"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		ServerPort:      "8080",
		DatabaseType:    "sqlite",
		DatabasePath:    "./wishlist.db",
		MigrationsPath:  "./migrations",
		SessionDuration: 24 * time.Hour,
		JWTSecret:       "change-me-jwt",
		CSRFSecret:      "change-me-csrf",
		CookieSecret:    "change-me-cookie",
		AllowedOrigins:  []string{"http://localhost:5173"},
		Email: EmailConfig{
			AWSRegion:  "us-east-1",
			FromName:   "Santa's Workshop",
			AppBaseURL: "http://localhost:5173",
		},
	}
}

// Load reads configuration from an optional YAML file named by CONFIG_FILE,
// then applies environment variables on top
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	c.ServerPort = getEnv("PORT", c.ServerPort)
	c.DatabaseType = getEnv("DB_TYPE", c.DatabaseType)
	c.DatabasePath = getEnv("DB_PATH", c.DatabasePath)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.MigrationsPath = getEnv("MIGRATIONS_PATH", c.MigrationsPath)
	c.Debug = getEnvBool("DEBUG", c.Debug)

	if raw := os.Getenv("SESSION_DURATION"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			c.SessionDuration = d
		}
	}

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.CSRFSecret = getEnv("CSRF_SECRET", c.CSRFSecret)
	c.CookieSecret = getEnv("COOKIE_SECRET", c.CookieSecret)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = splitList(origins)
	}

	c.OAuth.RedirectBaseURL = getEnv("OAUTH_REDIRECT_BASE_URL", c.OAuth.RedirectBaseURL)
	c.OAuth.GoogleClientID = getEnv("GOOGLE_CLIENT_ID", c.OAuth.GoogleClientID)
	c.OAuth.GoogleClientSecret = getEnv("GOOGLE_CLIENT_SECRET", c.OAuth.GoogleClientSecret)
	c.OAuth.FacebookClientID = getEnv("FACEBOOK_CLIENT_ID", c.OAuth.FacebookClientID)
	c.OAuth.FacebookClientSecret = getEnv("FACEBOOK_CLIENT_SECRET", c.OAuth.FacebookClientSecret)

	c.Email.AWSRegion = getEnv("AWS_REGION", c.Email.AWSRegion)
	c.Email.FromEmail = getEnv("SES_FROM_EMAIL", c.Email.FromEmail)
	c.Email.FromName = getEnv("SES_FROM_NAME", c.Email.FromName)
	c.Email.AppBaseURL = getEnv("APP_BASE_URL", c.Email.AppBaseURL)
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
