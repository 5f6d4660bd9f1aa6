package config

import (
	"errors"
	"os"
	"time"

	"github.com/siqueira-ec/equatorial-utils-cli/equatorial"
	"gopkg.in/yaml.v3"
)

type Config struct {
	API    APIConfig    `yaml:"api"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
	Minio  MinioConfig  `yaml:"minio"`
}

type APIConfig struct {
	BaseURL      string `yaml:"base_url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	UserAgent    string `yaml:"user_agent"`
	Timeout      string `yaml:"timeout"`
}

type OutputConfig struct {
	Dir        string `yaml:"dir"`
	FilePrefix string `yaml:"file_prefix"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
	Prefix    string `yaml:"prefix"`
}

// Enabled reports whether saved PDFs should be mirrored to a bucket.
func (m MinioConfig) Enabled() bool {
	return m.Endpoint != "" && m.Bucket != ""
}

// Load reads the YAML file at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.setDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	setFromEnv(&c.Output.Dir, "OUT_DIR")
	setFromEnv(&c.API.BaseURL, "EQUATORIAL_BASE_URL")
	setFromEnv(&c.Log.Level, "LOG_LEVEL")
	setFromEnv(&c.Minio.Endpoint, "MINIO_ENDPOINT")
	setFromEnv(&c.Minio.AccessKey, "MINIO_ACCESS_KEY")
	setFromEnv(&c.Minio.SecretKey, "MINIO_SECRET_KEY")
	setFromEnv(&c.Minio.Bucket, "MINIO_BUCKET")
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) setDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = equatorial.DefaultBaseURL
	}
	if c.API.ClientID == "" {
		c.API.ClientID = equatorial.DefaultClientID
	}
	if c.API.ClientSecret == "" {
		c.API.ClientSecret = equatorial.DefaultClientSecret
	}
	if c.API.UserAgent == "" {
		c.API.UserAgent = equatorial.DefaultUserAgent
	}
	if c.API.Timeout == "" {
		c.API.Timeout = equatorial.DefaultTimeout.String()
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Endpoints builds the immutable route table handed to the API client.
func (c *Config) Endpoints() (equatorial.Endpoints, error) {
	timeout, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return equatorial.Endpoints{}, err
	}
	return equatorial.Endpoints{
		BaseURL:      c.API.BaseURL,
		ClientID:     c.API.ClientID,
		ClientSecret: c.API.ClientSecret,
		UserAgent:    c.API.UserAgent,
		Timeout:      timeout,
	}, nil
}
