package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL      string
	PrivateKey  string
	RequestPath string
	Simulate    bool
	MinerURL    string
	AirdropURL  string
	Out         string
	PGDSN       string
	ReadTimeout time.Duration
	WaitTimeout time.Duration
	LogLevel    string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FOUNDRY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("simulate", true)
	v.SetDefault("miner-url", "https://mine.tokenfoundry.xyz/salt")
	v.SetDefault("airdrop-url", "https://airdrops.tokenfoundry.xyz")
	v.SetDefault("out", "./data/deployments.jsonl")
	v.SetDefault("read-timeout", 30*time.Second)
	v.SetDefault("wait-timeout", 5*time.Minute)
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
		RPCURL:      v.GetString("rpc"),
		PrivateKey:  v.GetString("private-key"),
		RequestPath: v.GetString("request"),
		Simulate:    v.GetBool("simulate"),
		MinerURL:    v.GetString("miner-url"),
		AirdropURL:  v.GetString("airdrop-url"),
		Out:         v.GetString("out"),
		PGDSN:       v.GetString("pg-dsn"),
		ReadTimeout: v.GetDuration("read-timeout"),
		WaitTimeout: v.GetDuration("wait-timeout"),
		LogLevel:    v.GetString("log-level"),
	}

	return cfg, nil
}
