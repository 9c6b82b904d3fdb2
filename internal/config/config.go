package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	DefaultChunkSize  = 5 << 20 // 5 MiB
	MinChunkSize      = 1 << 10
	defaultListenAddr = ":8000"
	defaultUploadDir  = "uploads"
	defaultTTLHours   = 24
	defaultSweepEvery = 30
	defaultCatalogDSN = "memory://"
)

type Config struct {
	ListenAddr       string `yaml:"listen_addr" json:"listen_addr"`
	UploadDir        string `yaml:"upload_dir" json:"upload_dir"`
	ChunkSize        int64  `yaml:"chunk_size" json:"chunk_size"`
	MaxFileSize      int64  `yaml:"max_file_size" json:"max_file_size"`
	SessionTTLHours  int    `yaml:"session_ttl_hours" json:"session_ttl_hours"`
	SweepIntervalMin int    `yaml:"sweep_interval_min" json:"sweep_interval_min"`
	CatalogDSN       string `yaml:"catalog_dsn" json:"catalog_dsn"`
}

// Default возвращает конфигурацию со значениями по умолчанию.
func Default() *Config {
	return &Config{
		ListenAddr:       defaultListenAddr,
		UploadDir:        defaultUploadDir,
		ChunkSize:        DefaultChunkSize,
		SessionTTLHours:  defaultTTLHours,
		SweepIntervalMin: defaultSweepEvery,
		CatalogDSN:       defaultCatalogDSN,
	}
}

// Load читает YAML-конфигурацию, применяет ENV-переопределения и возвращает актуальную структуру.
// Отсутствующий файл не является ошибкой: тогда действуют значения по умолчанию и ENV.
func Load(path string) (*Config, error) {
	if path == "" {
		path = getenv("CONFIG_PATH", "./config.yaml")
	}

	c := Default()
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// нет файла — работаем на дефолтах
	default:
		return nil, err
	}

	// ENV override
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		c.UploadDir = v
	}
	if v := os.Getenv("CHUNK_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.ChunkSize = n
		}
	}
	if v := os.Getenv("CATALOG_DSN"); v != "" {
		c.CatalogDSN = v
	}
	if v := os.Getenv("SESSION_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SessionTTLHours = n
		}
	}
	if v := os.Getenv("SWEEP_INTERVAL_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SweepIntervalMin = n
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate проверяет границы значений до старта сервера.
func (c *Config) Validate() error {
	if c.UploadDir == "" {
		return fmt.Errorf("upload_dir is empty")
	}
	if c.ChunkSize < MinChunkSize {
		return fmt.Errorf("chunk_size must be at least %d bytes", MinChunkSize)
	}
	if c.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size must be non-negative")
	}
	if c.SessionTTLHours <= 0 {
		return fmt.Errorf("session_ttl_hours must be positive")
	}
	if c.SweepIntervalMin <= 0 {
		return fmt.Errorf("sweep_interval_min must be positive")
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}

	return def
}
