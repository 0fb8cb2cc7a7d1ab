// Package config loads bridge configuration from a YAML file and the
// environment (KITBRIDGE_ prefix).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Config holds application-wide configuration.
type Config struct {
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
	RPC       RPCConfig       `mapstructure:"rpc"`
}

type MQTTConfig struct {
	Brokers        []string      `mapstructure:"brokers"`
	ClientID       string        `mapstructure:"clientID"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	KeepAlive      time.Duration `mapstructure:"keepAlive"`
	ConnectTimeout time.Duration `mapstructure:"connectTimeout"`
}

type DatabaseConfig struct {
	ConnString string `mapstructure:"connString"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"listenAddr"`
}

type GatewayConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"listenAddr"`
	// CertFile and KeyFile enable TLS when both are set. A self-signed
	// pair is generated at these paths when the files do not exist.
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
}

type RateLimitConfig struct {
	// PerSecond is the sustained per-kit message rate; Capacity is the
	// burst size.
	PerSecond float64 `mapstructure:"perSecond"`
	Capacity  int     `mapstructure:"capacity"`
}

type RPCConfig struct {
	// Timeout bounds each server-to-kit RPC call.
	Timeout time.Duration `mapstructure:"timeout"`
}

// Default returns the configuration used when a field is absent from
// both the file and the environment.
func Default() Config {
	return Config{
		MQTT: MQTTConfig{
			Brokers:        []string{"tcp://127.0.0.1:1883"},
			KeepAlive:      30 * time.Second,
			ConnectTimeout: 10 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9100",
		},
		Gateway: GatewayConfig{
			Enabled: true,
			Addr:    ":8080",
		},
		RateLimit: RateLimitConfig{
			PerSecond: 2,
			Capacity:  30,
		},
		RPC: RPCConfig{
			Timeout: 30 * time.Second,
		},
	}
}

// Load reads config from file or environment.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("kitbridge")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config"))
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("KITBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if cfg.Database.ConnString == "" {
		cfg.Database.ConnString = os.Getenv("DATABASE_URL")
	}

	return &cfg, nil
}
