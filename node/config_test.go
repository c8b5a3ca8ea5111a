package node

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Params() == nil || cfg.Params().Name != "mainnet" {
		t.Fatalf("default params: %+v", cfg.Params())
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := "network: testnet\nlogging:\n  level: debug\nstorage:\n  dir: /tmp/corundum-test\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Network != "testnet" {
		t.Fatalf("network: got %s", cfg.Network)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level: got %s", cfg.Logging.Level)
	}
	if cfg.Storage.Directory != "/tmp/corundum-test" {
		t.Fatalf("storage dir: got %s", cfg.Storage.Directory)
	}
	if !cfg.Params().AllowMinDifficultyBlocks {
		t.Fatalf("testnet params should allow min difficulty")
	}
}

func TestValidateConfig_Rejects(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Network = "nosuchnet"
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("unknown network accepted")
	}

	cfg = DefaultConfig()
	cfg.Storage.Directory = " "
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("blank storage dir accepted")
	}

	cfg = DefaultConfig()
	cfg.Logging.Level = "verbose"
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("bad log level accepted")
	}
}
