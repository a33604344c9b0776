package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultProgramAddress is the venue program whose logs are relayed.
const DefaultProgramAddress = "MNFSTqtC93rEfYHB6hF82sKdZpUDFWkViLByLd1k1Ms"

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL          string
	CatalogURL      string
	CatalogToken    string
	ProgramAddress  string
	WSAddr          string
	MetricsAddr     string
	PollInterval    time.Duration
	QueryDelay      time.Duration
	StopTimeout     time.Duration
	DedupCap        int
	DeadThreshold   time.Duration
	MonitorInterval time.Duration
	RestartCooldown time.Duration
	MaxRunTime      time.Duration
	LogLevel        string
}

// Load merges config file, environment variables, and flags into Config.
// The RPC URL and catalog token are expected from the environment
// (RELAY_RPC, RELAY_CRON_SECRET) in production deployments.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("catalog-url", "https://player-markets.vercel.app/api")
	v.SetDefault("program", DefaultProgramAddress)
	v.SetDefault("ws-addr", ":1234")
	v.SetDefault("metrics-addr", ":9090")
	v.SetDefault("poll-interval", 10*time.Second)
	v.SetDefault("query-delay", time.Second)
	v.SetDefault("stop-timeout", 30*time.Second)
	v.SetDefault("dedup-cap", 1000)
	v.SetDefault("dead-threshold", 5*time.Minute)
	v.SetDefault("monitor-interval", time.Minute)
	v.SetDefault("restart-cooldown", 5*time.Second)
	v.SetDefault("max-runtime", time.Duration(0))
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:          v.GetString("rpc"),
		CatalogURL:      v.GetString("catalog-url"),
		CatalogToken:    v.GetString("cron-secret"),
		ProgramAddress:  v.GetString("program"),
		WSAddr:          v.GetString("ws-addr"),
		MetricsAddr:     v.GetString("metrics-addr"),
		PollInterval:    v.GetDuration("poll-interval"),
		QueryDelay:      v.GetDuration("query-delay"),
		StopTimeout:     v.GetDuration("stop-timeout"),
		DedupCap:        v.GetInt("dedup-cap"),
		DeadThreshold:   v.GetDuration("dead-threshold"),
		MonitorInterval: v.GetDuration("monitor-interval"),
		RestartCooldown: v.GetDuration("restart-cooldown"),
		MaxRunTime:      v.GetDuration("max-runtime"),
		LogLevel:        v.GetString("log-level"),
	}

	return cfg, nil
}
