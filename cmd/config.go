package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/etnz/janitor"
	"github.com/etnz/janitor/jupiter"
	"github.com/etnz/janitor/solana"
)

// EnvConfig is the environment variable holding the default config file.
const EnvConfig = "JANITOR_CONFIG"

// Config is the runtime configuration of every command.
type Config struct {
	RPCURL       string
	JupiterURL   string
	TopTokensURL string

	Sweep        janitor.SweepConfig
	OutputSymbol string // display symbol of the output mint

	// PriorityFee is a fixed compute unit price, zero to estimate it.
	PriorityFee    uint64
	MaxPriorityFee uint64
	FeePercentile  int
}

// DefaultConfig sweeps into USDC using public endpoints.
func DefaultConfig() Config {
	return Config{
		RPCURL:         solana.MainnetEndpoint,
		JupiterURL:     jupiter.DefaultBaseURL,
		TopTokensURL:   jupiter.DefaultTopTokensURL,
		Sweep:          janitor.DefaultSweepConfig(),
		OutputSymbol:   "USD",
		MaxPriorityFee: 1_000_000,
		FeePercentile:  75,
	}
}

// config.toml key mapping.
type fileConfig struct {
	RPCURL         string   `toml:"rpc_url"`
	JupiterURL     string   `toml:"jupiter_url"`
	TopTokensURL   string   `toml:"top_tokens_url"`
	OutputMint     string   `toml:"output_mint"`
	OutputSymbol   string   `toml:"output_symbol"`
	KeepMints      []string `toml:"keep_mints"`
	DustThreshold  uint64   `toml:"dust_threshold"`
	SlippageBps    int      `toml:"slippage_bps"`
	Delay          string   `toml:"delay"`
	PriorityFee    uint64   `toml:"priority_fee"`
	MaxPriorityFee uint64   `toml:"max_priority_fee"`
	FeePercentile  int      `toml:"fee_percentile"`
}

// LoadConfig overlays the file at path on DefaultConfig. An empty path
// returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		var raw fileConfig
		meta, err := toml.DecodeFile(path, &raw)
		if err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
		}

		if meta.IsDefined("rpc_url") {
			cfg.RPCURL = strings.TrimSpace(raw.RPCURL)
		}
		if meta.IsDefined("jupiter_url") {
			cfg.JupiterURL = strings.TrimRight(strings.TrimSpace(raw.JupiterURL), "/")
		}
		if meta.IsDefined("top_tokens_url") {
			cfg.TopTokensURL = strings.TrimSpace(raw.TopTokensURL)
		}
		if meta.IsDefined("output_mint") {
			cfg.Sweep.OutputMint = strings.TrimSpace(raw.OutputMint)
		}
		if meta.IsDefined("output_symbol") {
			cfg.OutputSymbol = strings.TrimSpace(raw.OutputSymbol)
		}
		if meta.IsDefined("keep_mints") {
			cfg.Sweep.Keep = janitor.NewKeepSet()
			for _, m := range raw.KeepMints {
				m = strings.TrimSpace(m)
				if err := janitor.ValidateMint(m); err != nil {
					return Config{}, fmt.Errorf("load config: keep_mints: %w", err)
				}
				cfg.Sweep.Keep[m] = struct{}{}
			}
		}
		if meta.IsDefined("dust_threshold") {
			cfg.Sweep.DustThreshold = raw.DustThreshold
		}
		if meta.IsDefined("slippage_bps") {
			cfg.Sweep.SlippageBps = raw.SlippageBps
		}
		if meta.IsDefined("delay") {
			d, err := time.ParseDuration(strings.TrimSpace(raw.Delay))
			if err != nil {
				return Config{}, fmt.Errorf("load config: delay: %w", err)
			}
			cfg.Sweep.Delay = d
		}
		if meta.IsDefined("priority_fee") {
			cfg.PriorityFee = raw.PriorityFee
		}
		if meta.IsDefined("max_priority_fee") {
			cfg.MaxPriorityFee = raw.MaxPriorityFee
		}
		if meta.IsDefined("fee_percentile") {
			cfg.FeePercentile = raw.FeePercentile
		}
	}

	if err := janitor.ValidateMint(cfg.Sweep.OutputMint); err != nil {
		return Config{}, fmt.Errorf("load config: output_mint: %w", err)
	}
	cfg.Sweep.Keep[cfg.Sweep.OutputMint] = struct{}{}
	if cfg.Sweep.SlippageBps < 0 || cfg.Sweep.SlippageBps > 10_000 {
		return Config{}, fmt.Errorf("load config: slippage_bps %d out of [0, 10000]", cfg.Sweep.SlippageBps)
	}
	if cfg.Sweep.Delay < 0 {
		return Config{}, fmt.Errorf("load config: negative delay %v", cfg.Sweep.Delay)
	}
	if cfg.FeePercentile < 0 || cfg.FeePercentile > 100 {
		return Config{}, fmt.Errorf("load config: fee_percentile %d out of [0, 100]", cfg.FeePercentile)
	}
	return cfg, nil
}
