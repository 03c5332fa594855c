// Package config resolves runtime settings from the environment, optionally
// layered over a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	ListenAddr           string `yaml:"listen_addr"`
	DBPath               string `yaml:"db_path"`
	PhotoBackend         string `yaml:"photo_backend"`
	PhotoPath            string `yaml:"photo_local_path"`
	S3Bucket             string `yaml:"s3_bucket"`
	S3Region             string `yaml:"s3_region"`
	S3Endpoint           string `yaml:"s3_endpoint"`
	S3PathStyle          bool   `yaml:"s3_path_style"`
	S3CacheControl       string `yaml:"s3_cache_control"`
	LogLevel             string `yaml:"log_level"`
	LogFile              string `yaml:"log_file"`
	SearchCacheSize      int    `yaml:"search_cache_size"`
	LoaderMaxConcurrency int    `yaml:"loader_max_concurrency"`
}

// DataDir is the default home of the database and local photos.
func DataDir() string {
	xdg.Reload()
	return filepath.Join(xdg.DataHome, "stowaway")
}

func defaults() *Config {
	dir := DataDir()
	return &Config{
		ListenAddr:           ":8080",
		DBPath:               filepath.Join(dir, "stowaway.db"),
		PhotoBackend:         "local",
		PhotoPath:            filepath.Join(dir, "photos"),
		S3Region:             "us-east-1",
		LogLevel:             "info",
		SearchCacheSize:      128,
		LoaderMaxConcurrency: 8,
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// STOWAWAY_CONFIG if set, then environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("STOWAWAY_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.ListenAddr = getEnv("LISTEN_ADDR", cfg.ListenAddr)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.PhotoBackend = getEnv("PHOTO_BACKEND", cfg.PhotoBackend)
	cfg.PhotoPath = getEnv("PHOTO_LOCAL_PATH", cfg.PhotoPath)
	cfg.S3Bucket = getEnv("S3_BUCKET", cfg.S3Bucket)
	cfg.S3Region = getEnv("S3_REGION", cfg.S3Region)
	cfg.S3Endpoint = getEnv("S3_ENDPOINT", cfg.S3Endpoint)
	cfg.S3CacheControl = getEnv("S3_CACHE_CONTROL", cfg.S3CacheControl)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)

	var err error
	if cfg.S3PathStyle, err = getEnvBool("S3_PATH_STYLE", cfg.S3PathStyle); err != nil {
		return nil, err
	}
	if cfg.SearchCacheSize, err = getEnvInt("SEARCH_CACHE_SIZE", cfg.SearchCacheSize); err != nil {
		return nil, err
	}
	if cfg.LoaderMaxConcurrency, err = getEnvInt("LOADER_MAX_CONCURRENCY", cfg.LoaderMaxConcurrency); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.PhotoBackend {
	case "local":
		if c.PhotoPath == "" {
			return fmt.Errorf("%w: PHOTO_LOCAL_PATH is required for the local photo backend", ErrInvalid)
		}
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("%w: S3_BUCKET is required for the s3 photo backend", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown PHOTO_BACKEND %q", ErrInvalid, c.PhotoBackend)
	}
	if c.DBPath == "" {
		return fmt.Errorf("%w: DB_PATH is required", ErrInvalid)
	}
	if c.LoaderMaxConcurrency < 1 {
		return fmt.Errorf("%w: LOADER_MAX_CONCURRENCY must be positive", ErrInvalid)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(val) == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer: %v", ErrInvalid, key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(val) == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(val))
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean: %v", ErrInvalid, key, err)
	}
	return b, nil
}
