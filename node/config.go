package node

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"corundum.dev/node/consensus"
)

type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Storage StorageConfig `yaml:"storage"`
	Metrics MetricsConfig `yaml:"metrics"`
	Network string        `yaml:"network" envconfig:"NETWORK"`
}

type LoggingConfig struct {
	Level string `yaml:"level" envconfig:"LOGGING_LEVEL"`
}

type StorageConfig struct {
	Directory string `yaml:"dir" envconfig:"STORAGE_DIR"`
}

type MetricsConfig struct {
	ListenAddress string `yaml:"address" envconfig:"METRICS_LISTEN_ADDRESS"`
	ListenPort    uint   `yaml:"port"    envconfig:"METRICS_LISTEN_PORT"`
}

var allowedLogLevels = map[string]struct{}{
	"":      {},
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

func DefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			Directory: "./.corundum",
		},
		Metrics: MetricsConfig{
			ListenAddress: "",
			ListenPort:    8081,
		},
		Network: "mainnet",
	}
}

// Load reads the optional YAML config file, applies environment overrides,
// and validates the result.
func Load(configFile string) (*Config, error) {
	cfg := DefaultConfig()
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// We use "dummy" as the app name here to (mostly) prevent picking up env
	// vars that we hadn't explicitly specified in annotations above
	if err := envconfig.Process("dummy", &cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func ValidateConfig(cfg Config) error {
	if _, ok := consensus.NetworkParams(cfg.Network); !ok {
		return fmt.Errorf("unknown network: %s", cfg.Network)
	}
	if strings.TrimSpace(cfg.Storage.Directory) == "" {
		return fmt.Errorf("storage dir is required")
	}
	level := strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	if _, ok := allowedLogLevels[level]; !ok {
		return fmt.Errorf("invalid log level %q", cfg.Logging.Level)
	}
	return nil
}

// Params returns the consensus params selected by the config. Only valid
// after ValidateConfig has passed.
func (c *Config) Params() *consensus.Params {
	params, _ := consensus.NetworkParams(c.Network)
	return params
}
