// Package config loads the service configuration from YAML, a .env file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the location of the YAML file.
const EnvConfigPath = "KARIRCONNECT_CONFIG"

// DefaultPath is relative to the repository root, where the service is started.
var DefaultPath = filepath.Join("internal", "company", "config", "config.yaml")

// Config struct for YAML configuration
type Config struct {
	GRPCPort int `yaml:"GRPC_PORT"`
	HTTPPort int `yaml:"HTTP_PORT"`

	DBDriver   string `yaml:"DB_DRIVER"`
	DBHost     string `yaml:"DB_HOST"`
	DBPort     int    `yaml:"DB_PORT"`
	DBUser     string `yaml:"DB_USER"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBName     string `yaml:"DB_NAME"`
	DBSSLMode  string `yaml:"DB_SSLMODE"`
	DBPath     string `yaml:"DB_PATH"`

	KafkaBrokers []string `yaml:"KAFKA_BROKERS"`
	Topic        string   `yaml:"TOPIC"`
	AuditGroup   string   `yaml:"AUDIT_GROUP"`

	JWTSecret string `yaml:"JWT_SECRET"`

	StorageDir       string `yaml:"STORAGE_DIR"`
	CloudinaryURL    string `yaml:"CLOUDINARY_URL"`
	CloudinaryFolder string `yaml:"CLOUDINARY_FOLDER"`

	PerPage int `yaml:"PER_PAGE"`
}

// Load reads the YAML file at path (or DefaultPath / $KARIRCONNECT_CONFIG when
// path is empty), applies environment overrides and fills defaults.
func Load(path string) (*Config, error) {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = DefaultPath
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(file)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv(os.LookupEnv)
	cfg.applyDefaults()
	return cfg, nil
}

// Parse decodes YAML without consulting the environment.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// applyEnv overrides secrets and deployment-specific settings from the
// environment.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str("JWT_SECRET", &c.JWTSecret)
	str("DB_DRIVER", &c.DBDriver)
	str("DB_HOST", &c.DBHost)
	num("DB_PORT", &c.DBPort)
	str("DB_USER", &c.DBUser)
	str("DB_PASSWORD", &c.DBPassword)
	str("DB_NAME", &c.DBName)
	str("DB_PATH", &c.DBPath)
	str("CLOUDINARY_URL", &c.CloudinaryURL)
	str("STORAGE_DIR", &c.StorageDir)
	num("HTTP_PORT", &c.HTTPPort)
	num("GRPC_PORT", &c.GRPCPort)

	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		c.KafkaBrokers = nil
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				c.KafkaBrokers = append(c.KafkaBrokers, b)
			}
		}
	}
}

func (c *Config) applyDefaults() {
	if c.GRPCPort == 0 {
		c.GRPCPort = 50051
	}
	if c.HTTPPort == 0 {
		c.HTTPPort = 8080
	}
	if c.DBDriver == "" {
		c.DBDriver = "postgres"
	}
	if c.DBSSLMode == "" {
		c.DBSSLMode = "disable"
	}
	if c.Topic == "" {
		c.Topic = "company-events"
	}
	if c.AuditGroup == "" {
		c.AuditGroup = "karirconnect-audit"
	}
	if c.StorageDir == "" {
		c.StorageDir = filepath.Join("storage", "app", "public")
	}
	if c.CloudinaryFolder == "" {
		c.CloudinaryFolder = "karirconnect"
	}
	if c.PerPage == 0 {
		c.PerPage = 10
	}
}
