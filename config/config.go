package config

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"devmatch/models"

	"github.com/spf13/viper"
)

type Config struct {
	Server     Server
	AWS        AWS
	Tables     Tables
	S3         S3
	Redis      Redis
	Feed       Feed
	Session    Session
	Client     Client
	LoggerMode LoggerMode
}

type Server struct {
	Port        string
	Environment string
}

type AWS struct {
	Region string
	// Endpoint overrides the service endpoint, e.g. DynamoDB Local.
	Endpoint string
}

type Tables struct {
	Users    string
	Sessions string
	Requests string
	Messages string
}

type S3 struct {
	Bucket        string
	PresignExpiry time.Duration
}

type Redis struct {
	Addr     string
	Password string
}

type Feed struct {
	BatchSize int
}

type Session struct {
	TTL time.Duration
}

type Client struct {
	APIURL   string
	Email    string
	Password string
}

type LoggerMode struct {
	Development bool
	Prod        bool
	Level       string
}

const envPrefix = "DEVMATCH"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.endpoint", "")
	v.SetDefault("tables.users", models.UserProfilesTable)
	v.SetDefault("tables.sessions", models.SessionsTable)
	v.SetDefault("tables.requests", models.RequestsTable)
	v.SetDefault("tables.messages", models.MessagesTable)
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.presignExpiry", 5*time.Minute)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("feed.batchSize", 10)
	v.SetDefault("session.ttl", 7*24*time.Hour)
	v.SetDefault("client.apiUrl", "http://localhost:8080")
	v.SetDefault("client.email", "")
	v.SetDefault("client.password", "")
	v.SetDefault("loggerMode.development", true)
	v.SetDefault("loggerMode.prod", false)
	v.SetDefault("loggerMode.level", "info")
}

// LoadConfig reads config/<filename>.yaml on top of the built-in defaults.
// A missing file is not an error: defaults and DEVMATCH_* environment
// variables are enough to run.
func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()

	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(filename)
	v.SetConfigType("yaml")
	v.AddConfigPath("config")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			slog.Info("config file not found, using defaults", "name", filename)
			return v, nil
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	err := v.Unmarshal(&c)
	if err != nil {
		slog.Error("Unable to unmarshal config", "err", err)
		return nil, err
	}
	return &c, nil
}

// Load is LoadConfig followed by ParseConfig.
func Load(filename string) (*Config, error) {
	v, err := LoadConfig(filename)
	if err != nil {
		return nil, err
	}
	return ParseConfig(v)
}
