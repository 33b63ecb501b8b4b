package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key read from the environment.
const EnvPrefix = "PRESSKIT"

const (
	DefaultDownloadURL = "/uploads/PressKit.zip"
	DefaultSender      = "LOCOTEK <noreply@locotek.ca>"
)

// Server holds the HTTP listener settings.
type Server struct {
	Port         int    `validate:"min=1,max=65535"`
	UploadsDir   string
	MaxBodyBytes int64 `validate:"min=1"`
}

// PressKit holds where the archive is served from.
type PressKit struct {
	DownloadURL string `validate:"required"`
}

// Storage selects the file and Redis backends.
type Storage struct {
	FilePath   string
	RedisURL   string `validate:"omitempty,url"`
	RedisToken string
	RedisKey   string `validate:"required"`
}

// Database holds the optional Postgres backend.
type Database struct {
	URL string
}

// Notify configures the operator alert channels.
type Notify struct {
	ResendAPIKey string
	Sender       string        `validate:"required"`
	Recipient    string        `validate:"omitempty,email"`
	Timeout      time.Duration `validate:"min=0"`
	KafkaBrokers []string      `validate:"dive,hostname_port"`
	KafkaTopic   string        `validate:"required"`
}

// Tracing holds the OTLP collector endpoint. Empty disables export.
type Tracing struct {
	Endpoint string
}

// Log configures the zerolog output.
type Log struct {
	Level  string `validate:"oneof=trace debug info warn error"`
	Format string `validate:"oneof=json console"`
}

// Config is the fully resolved service configuration.
type Config struct {
	Server   Server
	PressKit PressKit
	Storage  Storage
	Database Database
	Notify   Notify
	Tracing  Tracing
	Log      Log
}

// ResendEnabled reports whether operator emails can be sent.
func (c Config) ResendEnabled() bool {
	return c.Notify.ResendAPIKey != "" && c.Notify.Recipient != ""
}

// KafkaEnabled reports whether lead events are published.
func (c Config) KafkaEnabled() bool {
	return len(c.Notify.KafkaBrokers) > 0
}

// aliases maps configuration keys to the legacy environment names that
// are still honoured next to the PRESSKIT_ prefixed ones.
var aliases = map[string][]string{
	"notify.resend.api_key": {"RESEND_API_KEY"},
	"notify.recipient":      {"NOTIFICATION_EMAIL"},
	"storage.redis.url":     {"KV_URL", "REDIS_URL"},
	"storage.redis.token":   {"KV_REST_API_TOKEN"},
	"database.url":          {"DATABASE_URL"},
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.uploads_dir", "public/uploads")
	v.SetDefault("server.max_body_bytes", 64<<10)
	v.SetDefault("presskit.download_url", DefaultDownloadURL)
	v.SetDefault("storage.file.path", "data/emails.json")
	v.SetDefault("storage.redis.key", "presskit:emails")
	v.SetDefault("notify.sender", DefaultSender)
	v.SetDefault("notify.timeout", 10*time.Second)
	v.SetDefault("notify.kafka.topic", "presskit.leads")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// an empty variable overrides, so PRESSKIT_STORAGE_FILE_PATH= disables the file store
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	for key, names := range aliases {
		envs := append([]string{envName(key)}, names...)
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

var validate = validator.New()

// Load reads the configuration from v and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Server: Server{
			Port:         v.GetInt("server.port"),
			UploadsDir:   v.GetString("server.uploads_dir"),
			MaxBodyBytes: v.GetInt64("server.max_body_bytes"),
		},
		PressKit: PressKit{
			DownloadURL: v.GetString("presskit.download_url"),
		},
		Storage: Storage{
			FilePath:   v.GetString("storage.file.path"),
			RedisURL:   v.GetString("storage.redis.url"),
			RedisToken: v.GetString("storage.redis.token"),
			RedisKey:   v.GetString("storage.redis.key"),
		},
		Database: Database{
			URL: v.GetString("database.url"),
		},
		Notify: Notify{
			ResendAPIKey: v.GetString("notify.resend.api_key"),
			Sender:       v.GetString("notify.sender"),
			Recipient:    v.GetString("notify.recipient"),
			Timeout:      v.GetDuration("notify.timeout"),
			KafkaBrokers: splitList(v.GetString("notify.kafka.brokers")),
			KafkaTopic:   v.GetString("notify.kafka.topic"),
		},
		Tracing: Tracing{
			Endpoint: v.GetString("tracing.endpoint"),
		},
		Log: Log{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func splitList(csv string) []string {
	var out []string
	for _, item := range strings.Split(csv, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
