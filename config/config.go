package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Blacklist BlacklistConfig `yaml:"blacklist"`
	Auth      AuthConfig      `yaml:"auth"`
	Logger    LoggerConfig    `yaml:"logger"`
}

type ServerConfig struct {
	Port         string `yaml:"port"`
	Host         string `yaml:"host"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
}

type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         string `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	DBName       string `yaml:"dbname"`
	SSLMode      string `yaml:"sslmode"`
	MaxIdleConns int    `yaml:"maxIdleConns"`
	MaxOpenConns int    `yaml:"maxOpenConns"`
	MaxLifetime  int    `yaml:"maxLifetime"` // in minutes
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

// BlacklistConfig selects the revoked-token store backend. The postgres
// backend relies on a periodic sweep to drop expired entries; the redis
// backend uses key TTLs instead.
type BlacklistConfig struct {
	Backend string `yaml:"backend"` // "postgres" or "redis"
}

type AuthConfig struct {
	JWTSecret       string `yaml:"jwtSecret"`
	AccessTokenTTL  int64  `yaml:"accessTokenTTL"`  // in seconds
	RefreshTokenTTL int64  `yaml:"refreshTokenTTL"` // in seconds
}

type LoggerConfig struct {
	Level      string `yaml:"level"`
	OutputPath string `yaml:"outputPath"`
}

const (
	// Defaults carried over from the first deployment; override per
	// environment via auth.accessTokenTTL / auth.refreshTokenTTL.
	DefaultAccessTokenTTL  = 15 * 60 * 60      // 15 hours
	DefaultRefreshTokenTTL = 24 * 60 * 60 * 60 // 60 days
)

// Load reads the configuration file, applies environment variable
// overrides and validates the result.
func Load(configPath string) (*Config, error) {
	config := &Config{}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Override with environment variables if they exist
	if envPort := os.Getenv("SERVER_PORT"); envPort != "" {
		config.Server.Port = envPort
	}
	if dbHost := os.Getenv("DB_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbPort := os.Getenv("DB_PORT"); dbPort != "" {
		config.Database.Port = dbPort
	}
	if dbUser := os.Getenv("DB_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DB_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DB_NAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		config.Redis.URL = redisURL
	}
	if backend := os.Getenv("BLACKLIST_BACKEND"); backend != "" {
		config.Blacklist.Backend = backend
	}
	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		config.Auth.JWTSecret = jwtSecret
	}
	if accessTTL := os.Getenv("ACCESS_TTL_SECONDS"); accessTTL != "" {
		if v, err := strconv.ParseInt(accessTTL, 10, 64); err == nil {
			config.Auth.AccessTokenTTL = v
		}
	}
	if refreshTTL := os.Getenv("REFRESH_TTL_SECONDS"); refreshTTL != "" {
		if v, err := strconv.ParseInt(refreshTTL, 10, 64); err == nil {
			config.Auth.RefreshTokenTTL = v
		}
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Auth.AccessTokenTTL == 0 {
		c.Auth.AccessTokenTTL = DefaultAccessTokenTTL
	}
	if c.Auth.RefreshTokenTTL == 0 {
		c.Auth.RefreshTokenTTL = DefaultRefreshTokenTTL
	}
	if c.Blacklist.Backend == "" {
		c.Blacklist.Backend = "postgres"
	}
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwtSecret is required (or set JWT_SECRET)")
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return errors.New("database host and dbname are required")
	}
	switch c.Blacklist.Backend {
	case "postgres":
	case "redis":
		if c.Redis.URL == "" {
			return errors.New("redis.url is required when blacklist.backend is redis")
		}
	default:
		return fmt.Errorf("unknown blacklist backend %q", c.Blacklist.Backend)
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return "postgresql://" + c.User + ":" + c.Password + "@" + c.Host + ":" + c.Port + "/" + c.DBName + "?sslmode=" + c.SSLMode
}
