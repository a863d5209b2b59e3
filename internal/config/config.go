// Package config holds daemon configuration. Chain parameters (derivation
// paths, version bytes, decimals) live in internal/chain; this package only
// selects which chains are enabled and where their endpoints point.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/klingon-exchange/multiwallet/internal/chain"
)

// Config is the top-level daemon configuration.
type Config struct {
	Network string        `yaml:"network"`
	DataDir string        `yaml:"data_dir"`
	Log     LogConfig     `yaml:"log"`
	Chains  []ChainConfig `yaml:"chains"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// ChainConfig enables one chain and optionally overrides its endpoints.
type ChainConfig struct {
	Chain             string   `yaml:"chain"`
	Enabled           bool     `yaml:"enabled"`
	RPCEndpoints      []string `yaml:"rpc_endpoints,omitempty"`
	ExplorerEndpoints []string `yaml:"explorer_endpoints,omitempty"`
}

// Default returns the default configuration: mainnet, every chain enabled,
// registry endpoints.
func Default() *Config {
	chains := make([]ChainConfig, 0, len(chain.All()))
	for _, id := range chain.All() {
		chains = append(chains, ChainConfig{Chain: string(id), Enabled: true})
	}

	return &Config{
		Network: string(chain.Mainnet),
		DataDir: "~/.multiwallet",
		Log:     LogConfig{Level: "info"},
		Chains:  chains,
	}
}

// Load reads a YAML config file. Missing fields fall back to defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks network and chain identifiers.
func (c *Config) Validate() error {
	switch chain.Network(c.Network) {
	case chain.Mainnet, chain.Testnet:
	default:
		return fmt.Errorf("invalid network %q", c.Network)
	}

	for _, cc := range c.Chains {
		if !chain.Identifier(cc.Chain).Valid() {
			return fmt.Errorf("unknown chain %q", cc.Chain)
		}
	}

	return nil
}

// EnabledChains returns the chain configs that are enabled.
func (c *Config) EnabledChains() []ChainConfig {
	var out []ChainConfig
	for _, cc := range c.Chains {
		if cc.Enabled {
			out = append(out, cc)
		}
	}
	return out
}

// NetworkType returns the parsed network.
func (c *Config) NetworkType() chain.Network {
	return chain.Network(c.Network)
}
