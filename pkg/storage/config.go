package storage

import (
	"fmt"
	"os"
	"strconv"

	"github.com/docker/go-units"
)

// Backend selects the blob storage implementation.
type Backend string

// Supported backends.
const (
	BackendFilesystem Backend = "filesystem"
	BackendS3         Backend = "s3"
)

// Config contains blob storage configuration.
type Config struct {
	Backend Backend `toml:"backend"`

	// BasePath is the root directory for filesystem storage.
	// Default: ".data/blobs"
	BasePath         string `toml:"base_path"`
	MaxUploadSize    string `toml:"max_upload_size"`
	maxUploadSizeVal int64

	S3 S3Config `toml:"s3"`
}

// S3Config configures the S3-compatible backend. Objects are materialized
// under CacheDir when a local path is required.
type S3Config struct {
	Endpoint  string `toml:"endpoint"`
	Bucket    string `toml:"bucket"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Region    string `toml:"region"`
	UseSSL    bool   `toml:"use_ssl"`
	CacheDir  string `toml:"cache_dir"`
}

// Env maps environment variable names for storage configuration.
type Env struct {
	Backend       string
	BasePath      string
	MaxUploadSize string
	S3Endpoint    string
	S3Bucket      string
	S3AccessKey   string
	S3SecretKey   string
	S3UseSSL      string
}

// MaxUploadSizeBytes returns the parsed upload ceiling.
func (c *Config) MaxUploadSizeBytes() int64 {
	return c.maxUploadSizeVal
}

// Finalize applies defaults, loads environment overrides, and validates the storage configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if size, err := units.FromHumanSize(overlay.MaxUploadSize); err == nil {
		c.MaxUploadSize = overlay.MaxUploadSize
		c.maxUploadSizeVal = size
	}

	s3 := &overlay.S3
	if s3.Endpoint != "" {
		c.S3.Endpoint = s3.Endpoint
	}
	if s3.Bucket != "" {
		c.S3.Bucket = s3.Bucket
	}
	if s3.AccessKey != "" {
		c.S3.AccessKey = s3.AccessKey
	}
	if s3.SecretKey != "" {
		c.S3.SecretKey = s3.SecretKey
	}
	if s3.Region != "" {
		c.S3.Region = s3.Region
	}
	if s3.UseSSL {
		c.S3.UseSSL = true
	}
	if s3.CacheDir != "" {
		c.S3.CacheDir = s3.CacheDir
	}
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendFilesystem
	}
	if c.BasePath == "" {
		c.BasePath = ".data/blobs"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "50MB"
	}
	if c.S3.Region == "" {
		c.S3.Region = "us-east-1"
	}
	if c.S3.CacheDir == "" {
		c.S3.CacheDir = ".data/cache"
	}
}

func (c *Config) loadEnv(env *Env) {
	lookup := func(name string, set func(string)) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			set(v)
		}
	}

	lookup(env.Backend, func(v string) { c.Backend = Backend(v) })
	lookup(env.BasePath, func(v string) { c.BasePath = v })
	lookup(env.MaxUploadSize, func(v string) { c.MaxUploadSize = v })
	lookup(env.S3Endpoint, func(v string) { c.S3.Endpoint = v })
	lookup(env.S3Bucket, func(v string) { c.S3.Bucket = v })
	lookup(env.S3AccessKey, func(v string) { c.S3.AccessKey = v })
	lookup(env.S3SecretKey, func(v string) { c.S3.SecretKey = v })
	lookup(env.S3UseSSL, func(v string) {
		if b, err := strconv.ParseBool(v); err == nil {
			c.S3.UseSSL = b
		}
	})
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendFilesystem:
		if c.BasePath == "" {
			return fmt.Errorf("base_path required")
		}
	case BackendS3:
		if c.S3.Endpoint == "" {
			return fmt.Errorf("s3.endpoint required")
		}
		if c.S3.Bucket == "" {
			return fmt.Errorf("s3.bucket required")
		}
	default:
		return fmt.Errorf("invalid backend: %s (must be filesystem or s3)", c.Backend)
	}

	size, err := units.FromHumanSize(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	c.maxUploadSizeVal = size

	return nil
}
