package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/docker/go-units"
)

// Storage drivers selectable through STORAGE_DRIVER.
const (
	DriverMinIO = "minio"
	DriverS3    = "s3"
	DriverLocal = "local"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	ConnectAttempts    int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Config holds settings for the AWS S3 driver.
// Endpoint is optional and only needed for S3-compatible services.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PathStyle bool
}

// StorageConfig selects the storage backend and its shared limits.
type StorageConfig struct {
	Driver        string
	LocalDir      string
	PublicBaseURL string
	// MaxUploadSize caps decoded document content, not the request body.
	MaxUploadSize int64
	URLTTL        time.Duration
}

// bodyOverhead covers the JSON fields or multipart headers sent next to the content.
const bodyOverhead = 64 * units.KiB

// BodyLimit is the request body cap that admits a MaxUploadSize document
// sent as base64 inside a JSON body.
func (c StorageConfig) BodyLimit() int {
	return int((c.MaxUploadSize+2)/3*4 + bodyOverhead)
}

// RedisConfig configures the signed URL cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppEnv      string
	AppHost     string
	Port        string
	LogTimezone string
	Database    DatabaseConfig
	Storage     StorageConfig
	MinIO       MinIOConfig
	S3          S3Config
	Redis       RedisConfig
}

// LogLocation returns the zone log timestamps are rendered in.
func (c *AppConfig) LogLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.LogTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_TIMEZONE %q: %w", c.LogTimezone, err)
	}
	return loc, nil
}

// IsDevelopment reports whether error details may be exposed to clients.
func (c *AppConfig) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	port := getEnv("PORT", "8080")
	return &AppConfig{
		AppEnv:      getEnv("APP_ENV", "production"),
		AppHost:     getEnv("APP_HOST", "localhost:"+port),
		Port:        port,
		LogTimezone: getEnv("LOG_TIMEZONE", "UTC"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			ConnectAttempts:    getEnvInt("DB_CONNECT_ATTEMPTS", 5),
		},
		Storage: StorageConfig{
			Driver:        getEnv("STORAGE_DRIVER", DriverMinIO),
			LocalDir:      getEnv("STORAGE_LOCAL_DIR", "uploads"),
			PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:"+port),
			MaxUploadSize: getEnvSize("MAX_UPLOAD_SIZE", 50*units.MB),
			URLTTL:        getEnvDuration("SIGNED_URL_TTL", time.Hour),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		S3: S3Config{
			Bucket:    getEnv("S3_BUCKET", ""),
			Region:    getEnv("S3_REGION", "us-east-1"),
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
			PathStyle: getEnvBool("S3_PATH_STYLE", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
	}
}

// Validate checks the settings required by the selected storage driver.
func (c *AppConfig) Validate() error {
	switch c.Storage.Driver {
	case DriverMinIO:
		if c.MinIO.Endpoint == "" || c.MinIO.Bucket == "" {
			return fmt.Errorf("minio driver requires MINIO_ENDPOINT and MINIO_BUCKET")
		}
	case DriverS3:
		if c.S3.Bucket == "" || c.S3.Region == "" {
			return fmt.Errorf("s3 driver requires S3_BUCKET and S3_REGION")
		}
	case DriverLocal:
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("local driver requires STORAGE_LOCAL_DIR")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}
	if c.Storage.URLTTL <= 0 {
		return fmt.Errorf("SIGNED_URL_TTL must be positive")
	}
	if _, err := c.LogLocation(); err != nil {
		return err
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

// getEnvSize accepts human sizes such as "50MB" or "1.5GiB".
func getEnvSize(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		n, err := units.FromHumanSize(v)
		if err == nil {
			return n
		}
	}
	return def
}
