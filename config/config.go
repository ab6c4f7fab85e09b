package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	BodyLimit       string
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

type AuthConfig struct {
	MaxLoginAttempts int
	LockDuration     time.Duration
}

type UploadConfig struct {
	Backend     string
	Dir         string
	URLPrefix   string
	MaxFileSize int64
	MaxFiles    int
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
	PublicURL string
}

type AppConfig struct {
	Environment string
	HTTP        HTTPConfig
	MongoDB     MongoConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Auth        AuthConfig
	Upload      UploadConfig
	Storage     StorageConfig
	CORSOrigins []string
}

func Load() (*AppConfig, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be set")
	}
	switch c.Upload.Backend {
	case "local":
	case "s3":
		if c.Storage.Endpoint == "" || c.Storage.Bucket == "" {
			return errors.New("STORAGE_ENDPOINT and STORAGE_BUCKET are required for the s3 upload backend")
		}
	default:
		return fmt.Errorf("unknown upload backend %q", c.Upload.Backend)
	}
	if c.Upload.MaxFiles < 1 || c.Upload.MaxFileSize < 1 {
		return errors.New("upload limits must be positive")
	}
	if c.Auth.MaxLoginAttempts < 1 {
		return errors.New("AUTH_MAXLOGINATTEMPTS must be positive")
	}
	return nil
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

func (c HTTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 5000)
	v.SetDefault("http.readtimeout", "15s")
	v.SetDefault("http.writetimeout", "30s")
	v.SetDefault("http.shutdowntimeout", "10s")
	v.SetDefault("http.bodylimit", "60M")

	v.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb.database", "real-estate")
	v.SetDefault("mongodb.connecttimeout", "10s")

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cachettl", "5m")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "168h") // 7 days

	v.SetDefault("auth.maxloginattempts", 5)
	v.SetDefault("auth.lockduration", "2h")

	v.SetDefault("upload.backend", "local")
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.urlprefix", "/uploads")
	v.SetDefault("upload.maxfilesize", 5*1024*1024)
	v.SetDefault("upload.maxfiles", 10)

	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.bucket", "property-images")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.publicurl", "")

	v.SetDefault("corsorigins", []string{"*"})
}
