package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/crowdforge/contest-api/internal/logger"
	"github.com/crowdforge/contest-api/internal/validator"
)

type PostgresConfig struct {
	User               string        `validate:"required"`
	Password           string        `validate:"required"`
	Host               string        `validate:"required"`
	Database           string        `validate:"required"`
	MaxIdleConnections int           `validate:"required" mapstructure:"max_idle_connections"`
	MaxOpenConnections int           `validate:"required" mapstructure:"max_open_connections"`
	ConnectionTTL      time.Duration `validate:"required" mapstructure:"connection_ttl"`
	Port               int16         `validate:"required"`
}

type SlogConfig struct {
	Level int `mapstructure:"level"`
}

type GormLogConfig struct {
	Level        int  `mapstructure:"level"`
	TraceQueries bool `mapstructure:"trace_queries"`
}

type LoggingConfig struct {
	Gorm    GormLogConfig `mapstructure:"gorm"`
	App     SlogConfig    `mapstructure:"app"`
	UseOTLP bool          `mapstructure:"use_otlp"`
}

// AuthConfig drives bearer credential decoding. Tokens are HMAC signed
// with Secret and must carry ClientID as their audience.
type AuthConfig struct {
	Secret   string `mapstructure:"secret"    validate:"required"`
	ClientID string `mapstructure:"client_id" validate:"required"`
}

// ThurgoodConfig is the shared credential pair the automated grading
// service presents as query parameters instead of a bearer token.
type ThurgoodConfig struct {
	Username string `mapstructure:"username" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
}

type S3StorageConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	SSLEnabled      bool   `mapstructure:"ssl_enabled"`
}

// StorageConfig selects where submission and document files live.
// Backend is either "local" (Root is the downloads directory) or "s3".
type StorageConfig struct {
	Backend string           `mapstructure:"backend" validate:"required,oneof=local s3"`
	Root    string           `mapstructure:"root"`
	S3      *S3StorageConfig `mapstructure:"s3"`
}

type RateLimitConfig struct {
	RedisHost          string `mapstructure:"redis_host"`
	DownloadsPerMinute int64  `mapstructure:"downloads_per_minute"`
	FailOpen           bool   `mapstructure:"fail_open"`
}

// See contestapi.yaml.example for an example config
type Config struct {
	Postgres             *PostgresConfig  `mapstructure:"postgres"  validate:"required"`
	Logging              *LoggingConfig   `mapstructure:"logging"   validate:"required"`
	Auth                 *AuthConfig      `mapstructure:"auth"      validate:"required"`
	Thurgood             *ThurgoodConfig  `mapstructure:"thurgood"  validate:"required"`
	Storage              *StorageConfig   `mapstructure:"storage"   validate:"required"`
	RateLimit            *RateLimitConfig `mapstructure:"ratelimit"`
	ListenAddress        string           `mapstructure:"listen_address" validate:"required"`
	GracefulShutdownSecs int64            `mapstructure:"graceful_shutdown_secs"`
}

const (
	AppLogLevel                string = "logging.app.level"
	AuthClientID               string = "auth.client_id"
	AuthSecret                 string = "auth.secret"
	DownloadsPerMinute         string = "ratelimit.downloads_per_minute"
	EnvPrefix                  string = "contestapi"
	GormLogLevel               string = "logging.gorm.level"
	GormTraceQueries           string = "logging.gorm.trace_queries"
	GracefulShutdownSecs       string = "graceful_shutdown_secs"
	ListenAddress              string = "listen_address"
	PostgresConnectonTTL       string = "postgres.connection_ttl"
	PostgresDatabase           string = "postgres.database"
	PostgresHost               string = "postgres.host"
	PostgresMaxIdleConnections string = "postgres.max_idle_connections"
	PostgresMaxOpenConnections string = "postgres.max_open_connections"
	PostgresPassword           string = "postgres.password"
	PostgresPort               string = "postgres.port"
	PostgresUser               string = "postgres.user"
	RateLimitFailOpen          string = "ratelimit.fail_open"
	RedisHost                  string = "ratelimit.redis_host"
	S3AccessKeyID              string = "storage.s3.access_key_id"
	S3SecretAccessKey          string = "storage.s3.secret_access_key" // #nosec
	StorageBackend             string = "storage.backend"
	StorageRoot                string = "storage.root"
	ThurgoodPassword           string = "thurgood.password"
	ThurgoodUsername           string = "thurgood.username"
	UseOTLP                    string = "logging.use_otlp"
)

var configReady = false
var config Config

func GetConfig() (*Config, error) {
	if configReady {
		logger.Logger.Debug("returning already-loaded config")
		return &config, nil
	}
	logger.Logger.Info("loading config")

	v := viper.New()

	v.SetConfigName("contestapi")

	v.AddConfigPath("/etc/contestapi/")
	v.AddConfigPath(".")

	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.AutomaticEnv()

	// workaround for https://github.com/spf13/viper/issues/761
	// bind env vars explicitly so they unmarshal into the nested struct
	err := v.BindEnv(PostgresPassword)
	if err != nil {
		return nil, err
	}
	err = v.BindEnv(AuthSecret)
	if err != nil {
		return nil, err
	}
	err = v.BindEnv(ThurgoodPassword)
	if err != nil {
		return nil, err
	}
	err = v.BindEnv(S3AccessKeyID)
	if err != nil {
		return nil, err
	}
	err = v.BindEnv(S3SecretAccessKey)
	if err != nil {
		return nil, err
	}

	v.SetDefault(ListenAddress, "[::]:1323")
	v.SetDefault(PostgresHost, "localhost")
	v.SetDefault(PostgresPort, 5432)
	v.SetDefault(PostgresMaxIdleConnections, 2)
	v.SetDefault(PostgresMaxOpenConnections, 10)
	v.SetDefault(PostgresConnectonTTL, 10*time.Minute)
	v.SetDefault(GormLogLevel, int(slog.LevelDebug))
	v.SetDefault(GormTraceQueries, false)
	v.SetDefault(AppLogLevel, int(slog.LevelDebug))
	v.SetDefault(UseOTLP, false)

	v.SetDefault(StorageBackend, "local")
	v.SetDefault(StorageRoot, "/var/lib/contestapi/downloads")

	v.SetDefault(ThurgoodUsername, "iamthurgood")

	v.SetDefault(RedisHost, "localhost")
	v.SetDefault(DownloadsPerMinute, 0)
	v.SetDefault(RateLimitFailOpen, true)

	v.SetDefault(GracefulShutdownSecs, 30)

	err = v.ReadInConfig()
	if err != nil {
		// ignore config file not found to allow pure env config
		if _, ok := err.(*viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	err = v.Unmarshal(&config)
	if err != nil {
		configReady = false
		return nil, err
	}

	valid := validator.Create()
	err = valid.Validate(&config)
	if err != nil {
		configReady = false
		return nil, err
	}

	configReady = true
	return &config, nil
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s",
		url.QueryEscape(c.Postgres.User),
		url.QueryEscape(c.Postgres.Password),
		c.Postgres.Host, c.Postgres.Port,
		url.QueryEscape(c.Postgres.Database),
	)
}
