package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Transmitter kinds accepted by SMSC_TRANSMITTER.
const (
	TransmitterStdout = "stdout"
	TransmitterNATS   = "nats"
)

// Config holds all configuration for the switching center.
type Config struct {
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// SweepInterval is the period of the redelivery sweep.
	SweepInterval time.Duration `mapstructure:"SMSC_SWEEP_INTERVAL"`
	// ScriptPath points at a command script to execute at startup; empty disables it.
	ScriptPath      string `mapstructure:"SMSC_SCRIPT_PATH"`
	ExitAfterScript bool   `mapstructure:"SMSC_EXIT_AFTER_SCRIPT"`

	Transmitter string `mapstructure:"SMSC_TRANSMITTER"`
	NATSUrl     string `mapstructure:"NATS_URL"`
	NATSSubject string `mapstructure:"SMSC_NATS_SUBJECT"`

	// HTTPPort of the API; 0 disables it.
	HTTPPort int `mapstructure:"HTTP_PORT"`
}

// Load reads config.defaults.yaml from the usual config paths, then applies
// APP_-prefixed environment overrides (APP_LOG_LEVEL, APP_SMSC_SWEEP_INTERVAL, ...).
func Load(configPaths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config.defaults")
	v.SetConfigType("yaml")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.SetEnvPrefix("APP")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SMSC_SWEEP_INTERVAL", 3*time.Second)
	v.SetDefault("SMSC_SCRIPT_PATH", "")
	v.SetDefault("SMSC_EXIT_AFTER_SCRIPT", false)
	v.SetDefault("SMSC_TRANSMITTER", TransmitterStdout)
	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("SMSC_NATS_SUBJECT", "smsc.transmissions")
	v.SetDefault("HTTP_PORT", 0)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Printf("Configuration file ('config.defaults.yaml') not found; using defaults and environment variables.")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if c.SweepInterval <= 0 {
		return errors.New("SMSC_SWEEP_INTERVAL must be positive")
	}
	switch c.Transmitter {
	case TransmitterStdout:
	case TransmitterNATS:
		if c.NATSUrl == "" || c.NATSSubject == "" {
			return errors.New("NATS_URL and SMSC_NATS_SUBJECT are required for the nats transmitter")
		}
	default:
		return errors.New("SMSC_TRANSMITTER must be one of stdout, nats")
	}
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		return errors.New("HTTP_PORT out of range")
	}
	return nil
}
