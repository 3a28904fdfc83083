// Package config loads dirstore configuration from YAML with environment
// variable expansion.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Backend types.
const (
	BackendLocal    = "local"
	BackendS3       = "s3"
	BackendMinIO    = "minio"
	BackendPostgres = "postgres"
	BackendMongoDB  = "mongodb"
)

// Validator is implemented by configuration types that can check themselves.
type Validator interface {
	Validate() error
}

// Load reads filename into target, expanding ${VAR} references first.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expandedData := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expandedData), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}

	return nil
}

// LoadOrDefault returns the defaults overlaid with filename. An empty or
// missing filename yields the validated defaults.
func LoadOrDefault(filename string) (*Config, error) {
	cfg := NewDefaultConfig()
	if filename == "" {
		return cfg, cfg.Validate()
	}
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file not found: %s", filename)
	}
	if err := Load(filename, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Storage StorageConfig     `yaml:"storage"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	return c.Storage.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// StorageConfig selects a backend and carries the settings for each kind.
// Only the section matching Backend is validated.
type StorageConfig struct {
	Backend     string         `yaml:"backend"`
	ImpliedDirs bool           `yaml:"implied_dirs"`
	Local       LocalConfig    `yaml:"local"`
	S3          S3Config       `yaml:"s3"`
	MinIO       MinIOConfig    `yaml:"minio"`
	Postgres    PostgresConfig `yaml:"postgres"`
	MongoDB     MongoDBConfig  `yaml:"mongodb"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required,
			validation.In(BackendLocal, BackendS3, BackendMinIO, BackendPostgres, BackendMongoDB)),
	); err != nil {
		return err
	}

	switch c.Backend {
	case BackendLocal:
		return c.Local.Validate()
	case BackendS3:
		return c.S3.Validate()
	case BackendMinIO:
		return c.MinIO.Validate()
	case BackendPostgres:
		return c.Postgres.Validate()
	default:
		return c.MongoDB.Validate()
	}
}

// LocalConfig holds the root directory of the local backend.
type LocalConfig struct {
	Root string `yaml:"root"`
}

// Validate validates the local configuration.
func (c *LocalConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
	)
}

// S3Config holds AWS S3 (or LocalStack) settings.
type S3Config struct {
	Bucket     string `yaml:"bucket"`
	Region     string `yaml:"region"`
	Endpoint   string `yaml:"endpoint"`
	PasswdFile string `yaml:"passwd_file"`
}

// Validate validates the S3 configuration.
func (c *S3Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Bucket, validation.Required),
		validation.Field(&c.Region, validation.Required),
	)
}

// MinIOConfig holds settings for MinIO and other S3-compatible servers.
type MinIOConfig struct {
	Endpoint   string `yaml:"endpoint"`
	Bucket     string `yaml:"bucket"`
	Region     string `yaml:"region"`
	Secure     bool   `yaml:"secure"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	PasswdFile string `yaml:"passwd_file"`
}

// Validate validates the MinIO configuration.
func (c *MinIOConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Endpoint, validation.Required),
		validation.Field(&c.Bucket, validation.Required),
		validation.Field(&c.SecretKey, validation.When(c.AccessKey != "", validation.Required)),
	)
}

// PostgresConfig holds PostgreSQL object table settings.
type PostgresConfig struct {
	DSN    string `yaml:"dsn"`
	Table  string `yaml:"table"`
	Bucket string `yaml:"bucket"`
}

// Validate validates the PostgreSQL configuration.
func (c *PostgresConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DSN, validation.Required),
		validation.Field(&c.Table, validation.Required),
		validation.Field(&c.Bucket, validation.Required),
	)
}

// MongoDBConfig holds MongoDB collection settings.
type MongoDBConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
	Bucket     string `yaml:"bucket"`
}

// Validate validates the MongoDB configuration.
func (c *MongoDBConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URI, validation.Required),
		validation.Field(&c.Database, validation.Required),
		validation.Field(&c.Collection, validation.Required),
		validation.Field(&c.Bucket, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Storage: StorageConfig{
			Backend: BackendLocal,
			Local: LocalConfig{
				Root: "./data",
			},
			S3: S3Config{
				Region: "us-east-1",
			},
			MinIO: MinIOConfig{
				Region: "us-east-1",
			},
			Postgres: PostgresConfig{
				Table:  "objects",
				Bucket: "default",
			},
			MongoDB: MongoDBConfig{
				Database:   "dirstore",
				Collection: "objects",
				Bucket:     "default",
			},
		},
	}
}
