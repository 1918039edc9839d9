package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

const (
	DefaultRegion         = "us-east-1"
	DefaultStorageClass   = "DEEP_ARCHIVE"
	DefaultGeocodeURL     = "http://api.openweathermap.org/geo/1.0/reverse"
	DefaultGeocodeTimeout = 10 * time.Second
	DefaultMongoDatabase  = "photo_backup"
	DefaultMongoColl      = "backups"
)

type Config struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	// StorageClass is sent with every upload; empty means the bucket default.
	StorageClass string
	StagingDir   string

	GeocodeAPIKey  string
	GeocodeURL     string
	GeocodeTimeout time.Duration

	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	LogLevel zapcore.Level
}

// LoadDotEnv reads .env files into the process environment. A missing file
// is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Load builds a Config from the environment. Every missing or invalid value
// is reported in the returned error.
func Load() (*Config, error) {
	var errs error

	required := func(name string, aliases ...string) string {
		v := lookup(name, aliases...)
		if v == "" {
			errs = multierr.Append(errs, fmt.Errorf("missing required variable %s", name))
		}
		return v
	}

	cfg := &Config{
		AccessKey:       required("ACCESS_KEY"),
		SecretKey:       required("SECRET_KEY"),
		Bucket:          required("BUCKET", "bucket"),
		GeocodeAPIKey:   required("OPENWEATHER_APIKEY", "openweather_apikey"),
		Region:          withDefault(lookup("AWS_REGION"), DefaultRegion),
		StagingDir:      withDefault(lookup("STAGING_DIR"), filepath.Join(os.TempDir(), "backup")),
		GeocodeURL:      withDefault(lookup("GEOCODE_URL"), DefaultGeocodeURL),
		GeocodeTimeout:  DefaultGeocodeTimeout,
		MongoURI:        lookup("MONGO_URI"),
		MongoDatabase:   withDefault(lookup("MONGO_DATABASE"), DefaultMongoDatabase),
		MongoCollection: withDefault(lookup("MONGO_COLLECTION"), DefaultMongoColl),
		LogLevel:        zapcore.InfoLevel,
	}

	cfg.StorageClass = storageClass(lookup("STORAGE_CLASS"))

	if v := lookup("GEOCODE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("invalid GEOCODE_TIMEOUT %q", v))
		} else {
			cfg.GeocodeTimeout = d
		}
	}

	if v := lookup("LOG_LEVEL"); v != "" {
		lvl, err := zapcore.ParseLevel(v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("invalid LOG_LEVEL: %w", err))
		} else {
			cfg.LogLevel = lvl
		}
	}

	if errs != nil {
		return nil, errs
	}
	return cfg, nil
}

func (c *Config) CatalogEnabled() bool {
	return c.MongoURI != ""
}

func storageClass(v string) string {
	switch strings.ToLower(v) {
	case "":
		return DefaultStorageClass
	case "none", "default":
		return ""
	}
	return strings.ToUpper(v)
}

func lookup(name string, aliases ...string) string {
	for _, n := range append([]string{name}, aliases...) {
		if v := strings.TrimSpace(os.Getenv(n)); v != "" {
			return v
		}
	}
	return ""
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
