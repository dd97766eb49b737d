package main

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`
	Version     string `mapstructure:"VERSION"`
	BaseURL     string `mapstructure:"BASE_URL"`
	SigninPath  string `mapstructure:"SIGNIN_PATH"`
	TLSCertFile string `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile  string `mapstructure:"TLS_KEY_FILE"`

	CacheTTL time.Duration `mapstructure:"CACHE_TTL"`

	DB struct {
		Host         string        `mapstructure:"POSTGRES_HOST"`
		Port         string        `mapstructure:"POSTGRES_PORT"`
		User         string        `mapstructure:"POSTGRES_USER"`
		Password     string        `mapstructure:"POSTGRES_PASSWORD"`
		Name         string        `mapstructure:"POSTGRES_DB"`
		MaxOpenConns int           `mapstructure:"POSTGRES_MAX_OPEN_CONNS"`
		MaxIdleConns int           `mapstructure:"POSTGRES_MAX_IDLE_CONNS"`
		MaxIdleTime  time.Duration `mapstructure:"POSTGRES_MAX_IDLE_TIME"`
	} `mapstructure:",squash"`

	Mail struct {
		Host     string `mapstructure:"MAIL_HOST"`
		Port     int    `mapstructure:"MAIL_PORT"`
		User     string `mapstructure:"MAIL_USER"`
		Password string `mapstructure:"MAIL_PASSWORD"`
		Sender   string `mapstructure:"MAIL_SENDER"`
	} `mapstructure:",squash"`

	RabbitMQ struct {
		Host     string `mapstructure:"RABBITMQ_HOST"`
		Port     string `mapstructure:"RABBITMQ_PORT"`
		User     string `mapstructure:"RABBITMQ_USER"`
		Password string `mapstructure:"RABBITMQ_PASSWORD"`
	} `mapstructure:",squash"`

	Limiter struct {
		RPS     float64 `mapstructure:"LIMITER_RPS"`
		Burst   int     `mapstructure:"LIMITER_BURST"`
		Enabled bool    `mapstructure:"LIMITER_ENABLED"`
	} `mapstructure:",squash"`
}

// Every key needs a default so AutomaticEnv can override it during Unmarshal.
var configDefaults = map[string]any{
	"PORT":                    "4000",
	"ENVIRONMENT":             "development",
	"VERSION":                 "1.0.0",
	"BASE_URL":                "http://localhost:4000",
	"SIGNIN_PATH":             "/v1/users/login",
	"TLS_CERT_FILE":           "",
	"TLS_KEY_FILE":            "",
	"CACHE_TTL":               "5m",
	"POSTGRES_HOST":           "localhost",
	"POSTGRES_PORT":           "5432",
	"POSTGRES_USER":           "postgres",
	"POSTGRES_PASSWORD":       "",
	"POSTGRES_DB":             "postboard",
	"POSTGRES_MAX_OPEN_CONNS": 25,
	"POSTGRES_MAX_IDLE_CONNS": 25,
	"POSTGRES_MAX_IDLE_TIME":  "15m",
	"MAIL_HOST":               "localhost",
	"MAIL_PORT":               25,
	"MAIL_USER":               "",
	"MAIL_PASSWORD":           "",
	"MAIL_SENDER":             "Postboard <no-reply@postboard.local>",
	"RABBITMQ_HOST":           "localhost",
	"RABBITMQ_PORT":           "5672",
	"RABBITMQ_USER":           "guest",
	"RABBITMQ_PASSWORD":       "guest",
	"LIMITER_RPS":             2,
	"LIMITER_BURST":           4,
	"LIMITER_ENABLED":         true,
}

// loadConfig reads the env file at path, if it exists, and lets environment variables
// override any key.
func loadConfig(path string) (*Config, error) {
	v := viper.New()
	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
