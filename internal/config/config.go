// Package config loads simulator settings from a YAML file, AQUASIM_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"aquasim/internal/models"
)

// MQTT holds broker connection settings.
type MQTT struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string
	Namespace string
}

// Config is the full simulator configuration.
type Config struct {
	DeviceID    string
	DefaultMode models.FilterMode
	LogLevel    string
	HTTPPort    string

	TickInterval time.Duration // time between sensor readings
	RunDuration  time.Duration // 0 = run until signaled
	SettleDelay  time.Duration // simulated mode switch-over time
	RandomSeed   uint64        // 0 = seed from the clock
	Scenario     bool          // replay the fixed scenario list

	MQTT MQTT
}

// flagBindings maps config keys to the CLI flags that override them.
var flagBindings = map[string]string{
	"device_id":       "device-id",
	"mqtt.broker_url": "broker",
	"tick_interval":   "tick-interval",
	"run_duration":    "run-duration",
	"scenario":        "scenario",
	"log_level":       "log-level",
}

// Load reads the configuration. flags may be nil; only registered flags
// are bound.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("device_id", "test_device_001")
	v.SetDefault("default_mode", string(models.ModeDrinkingWater))
	v.SetDefault("log_level", "info")
	v.SetDefault("http_port", "8080")
	v.SetDefault("tick_interval", 2*time.Second)
	v.SetDefault("run_duration", 10*time.Minute)
	v.SetDefault("settle_delay", 2*time.Second)
	v.SetDefault("random_seed", 0)
	v.SetDefault("scenario", false)
	v.SetDefault("mqtt.broker_url", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.namespace", "aquasmart")

	v.SetEnvPrefix("AQUASIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var explicitPath string
	if flags != nil {
		if f := flags.Lookup("config"); f != nil {
			explicitPath = f.Value.String()
		}
		for key, name := range flagBindings {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
		// A missing default config file is fine; defaults and env apply.
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{
		DeviceID:     v.GetString("device_id"),
		DefaultMode:  models.FilterMode(v.GetString("default_mode")),
		LogLevel:     v.GetString("log_level"),
		HTTPPort:     v.GetString("http_port"),
		TickInterval: v.GetDuration("tick_interval"),
		RunDuration:  v.GetDuration("run_duration"),
		SettleDelay:  v.GetDuration("settle_delay"),
		RandomSeed:   v.GetUint64("random_seed"),
		Scenario:     v.GetBool("scenario"),
		MQTT: MQTT{
			BrokerURL: v.GetString("mqtt.broker_url"),
			ClientID:  v.GetString("mqtt.client_id"),
			Username:  v.GetString("mqtt.username"),
			Password:  v.GetString("mqtt.password"),
			Namespace: v.GetString("mqtt.namespace"),
		},
	}

	if cfg.DeviceID == "" {
		return nil, fmt.Errorf("device_id must not be empty")
	}
	if !cfg.DefaultMode.Valid() {
		return nil, fmt.Errorf("invalid default_mode %q", cfg.DefaultMode)
	}
	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("tick_interval must be positive, got %s", cfg.TickInterval)
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "aquasim_" + cfg.DeviceID
	}
	return cfg, nil
}
