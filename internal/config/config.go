package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	MinIO     MinIOConfig
	OCR       OCRConfig
	Download  DownloadConfig
	RateLimit RateLimitConfig
	Keycloak  KeycloakConfig
	JWT       JWTConfig
	LogLevel  string
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StorageConfig selects the durable snapshot backend and the export location.
type StorageConfig struct {
	SnapshotBackend string // "file" or "mongo"
	SnapshotPath    string
	ExportPath      string
	CacheKeyPrefix  string
}

type MongoDBConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// MinIOConfig configures the optional raw image archive.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
}

type OCRConfig struct {
	Languages    []string
	Workers      int
	MaxDimension int
	ZeroMatch    string // "first" or "empty"
	// Variables are tesseract variables set on every recognition,
	// e.g. tessedit_pageseg_mode.
	Variables map[string]string
}

type DownloadConfig struct {
	Timeout  time.Duration
	MaxBytes int64
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

type KeycloakConfig struct {
	URL      string
	Realm    string
	ClientID string
}

type JWTConfig struct {
	Secret string
}

// LoadConfig loads configuration from environment variables and an optional .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8000")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SNAPSHOT_BACKEND", "file")
	v.SetDefault("SNAPSHOT_PATH", "./identity_data.json")
	v.SetDefault("EXPORT_PATH", "./identity_data.csv")
	v.SetDefault("CACHE_KEY_PREFIX", "identity:")
	v.SetDefault("MONGODB_DATABASE", "idextract")
	v.SetDefault("MONGODB_COLLECTION", "records")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MINIO_BUCKET", "idextract")
	v.SetDefault("MINIO_REGION", "us-east-1")
	v.SetDefault("OCR_LANGUAGES", "eng+hin")
	v.SetDefault("OCR_WORKERS", 2)
	v.SetDefault("OCR_MAX_DIMENSION", 2400)
	v.SetDefault("ORIENTATION_ZERO_MATCH", "first")
	v.SetDefault("OCR_VARIABLES", "tessedit_pageseg_mode=6")
	v.SetDefault("DOWNLOAD_TIMEOUT", 20)
	v.SetDefault("DOWNLOAD_MAX_BYTES", 15<<20)
	v.SetDefault("RATE_LIMIT_RPS", 2.0)
	v.SetDefault("RATE_LIMIT_BURST", 5)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)

	ocrVars, err := parseVariables(v.GetString("OCR_VARIABLES"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 5 * time.Minute,
		},
		Storage: StorageConfig{
			SnapshotBackend: strings.ToLower(v.GetString("SNAPSHOT_BACKEND")),
			SnapshotPath:    v.GetString("SNAPSHOT_PATH"),
			ExportPath:      v.GetString("EXPORT_PATH"),
			CacheKeyPrefix:  v.GetString("CACHE_KEY_PREFIX"),
		},
		MongoDB: MongoDBConfig{
			URI:        v.GetString("MONGODB_URI"),
			Database:   v.GetString("MONGODB_DATABASE"),
			Collection: v.GetString("MONGODB_COLLECTION"),
			Timeout:    time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			Region:    v.GetString("MINIO_REGION"),
		},
		OCR: OCRConfig{
			Languages:    splitLanguages(v.GetString("OCR_LANGUAGES")),
			Workers:      v.GetInt("OCR_WORKERS"),
			MaxDimension: v.GetInt("OCR_MAX_DIMENSION"),
			ZeroMatch:    strings.ToLower(v.GetString("ORIENTATION_ZERO_MATCH")),
			Variables:    ocrVars,
		},
		Download: DownloadConfig{
			Timeout:  time.Duration(v.GetInt("DOWNLOAD_TIMEOUT")) * time.Second,
			MaxBytes: v.GetInt64("DOWNLOAD_MAX_BYTES"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Keycloak: KeycloakConfig{
			URL:      v.GetString("KEYCLOAK_URL"),
			Realm:    v.GetString("KEYCLOAK_REALM"),
			ClientID: v.GetString("KEYCLOAK_CLIENT_ID"),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.SnapshotBackend {
	case "file":
		if c.Storage.SnapshotPath == "" {
			return fmt.Errorf("SNAPSHOT_PATH is required for the file snapshot backend")
		}
	case "mongo":
		if c.MongoDB.URI == "" {
			return fmt.Errorf("MONGODB_URI is required for the mongo snapshot backend")
		}
	default:
		return fmt.Errorf("unknown SNAPSHOT_BACKEND %q (want file or mongo)", c.Storage.SnapshotBackend)
	}
	if c.Storage.ExportPath == "" {
		return fmt.Errorf("EXPORT_PATH is required")
	}
	switch c.OCR.ZeroMatch {
	case "first", "empty":
	default:
		return fmt.Errorf("unknown ORIENTATION_ZERO_MATCH %q (want first or empty)", c.OCR.ZeroMatch)
	}
	if len(c.OCR.Languages) == 0 {
		return fmt.Errorf("OCR_LANGUAGES must name at least one language")
	}
	if c.OCR.Workers < 1 {
		c.OCR.Workers = 1
	}
	return nil
}

// Addr returns the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// splitLanguages accepts tesseract style "eng+hin" as well as "eng,hin".
func splitLanguages(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '+' || r == ',' || r == ' ' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// parseVariables reads "name=value" pairs separated by ';'. Values may hold
// commas and spaces, which tesseract whitelists need.
func parseVariables(s string) (map[string]string, error) {
	out := map[string]string{}
	for _, pair := range strings.Split(s, ";") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		k, val, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("OCR_VARIABLES: %q is not name=value", pair)
		}
		out[k] = val
	}
	return out, nil
}
