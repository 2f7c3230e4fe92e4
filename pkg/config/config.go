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
	NodeURL       string
	EventsURL     string
	AMMContract   string
	OrderContract string
	WalletAddress string
	PollInterval  time.Duration
	RateLimit     int
	ListenAddr    string
	LogLevel      string
}

// Load merges config file, environment variables, and flags into Config.
// Environment variables use the BEAM_ prefix, e.g. BEAM_NODE_URL.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BEAM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("node-url", "https://mainnet.massa.net/api/v2")
	v.SetDefault("events-url", "wss://mainnet.massa.net/api/v2/ws")
	v.SetDefault("poll-interval", 30*time.Second)
	v.SetDefault("rate-limit", 10)
	v.SetDefault("listen-addr", ":8080")
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
		NodeURL:       v.GetString("node-url"),
		EventsURL:     v.GetString("events-url"),
		AMMContract:   v.GetString("amm-contract"),
		OrderContract: v.GetString("order-contract"),
		WalletAddress: v.GetString("wallet"),
		PollInterval:  v.GetDuration("poll-interval"),
		RateLimit:     v.GetInt("rate-limit"),
		ListenAddr:    v.GetString("listen-addr"),
		LogLevel:      v.GetString("log-level"),
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.NodeURL == "" {
		return fmt.Errorf("node-url is required")
	}
	if c.AMMContract == "" {
		return fmt.Errorf("amm-contract is required")
	}
	if c.OrderContract == "" {
		return fmt.Errorf("order-contract is required")
	}
	if c.WalletAddress == "" {
		return fmt.Errorf("wallet is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll-interval must be positive")
	}
	return nil
}

// Flags returns the standard flag set for the quote service, suitable for
// passing to Load.
func Flags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("massabeam", pflag.ContinueOnError)
	flags.String("node-url", "", "JSON-RPC endpoint of the chain node")
	flags.String("events-url", "", "WebSocket endpoint for contract events")
	flags.String("amm-contract", "", "AMM contract address")
	flags.String("order-contract", "", "order book contract address")
	flags.String("wallet", "", "wallet address to track")
	flags.Duration("poll-interval", 30*time.Second, "order list poll interval")
	flags.Int("rate-limit", 10, "max node requests per second")
	flags.String("listen-addr", ":8080", "HTTP listen address")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	return flags
}
