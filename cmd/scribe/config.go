package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"BlockScribe/internal/digest"
)

// Config holds the scribe configuration.
type Config struct {
	// LedgerEndpoint is the ledger node base URL. Required.
	LedgerEndpoint string

	// LedgerAddress is the agent's 20-byte hex address. Required.
	LedgerAddress string

	// KeyPath is the path to the hex-encoded ed25519 signing seed.
	// The SCRIBE_SIGNING_KEY environment variable takes precedence.
	KeyPath string

	// Credential is the loaded signing key.
	Credential ed25519.PrivateKey

	// HTTPAddress is the HTTP API listen address.
	HTTPAddress string

	// SandboxRoot is the directory file inputs may be read from.
	// Empty means the process working directory.
	SandboxRoot string

	// StoreEndpoint is the remote bundle gateway base URL. Empty
	// selects the local pebble-backed store.
	StoreEndpoint string

	// DataPath is the local store directory, used when StoreEndpoint
	// is empty.
	DataPath string

	// LedgerRef is the default target ledger name for submissions.
	LedgerRef string
}

// parseFlags parses command-line flags into Config.
func parseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.LedgerEndpoint, "ledger", "", "Ledger node base URL (required)")
	flag.StringVar(&cfg.LedgerAddress, "address", "", "Agent ledger address, 0x-prefixed 20-byte hex (required)")
	flag.StringVar(&cfg.KeyPath, "key", "", "Path to hex-encoded signing seed (or SCRIBE_SIGNING_KEY)")
	flag.StringVar(&cfg.HTTPAddress, "http", ":8390", "HTTP API address")
	flag.StringVar(&cfg.SandboxRoot, "root", "", "Sandbox root for file inputs (default: working directory)")
	flag.StringVar(&cfg.StoreEndpoint, "store", "", "Remote bundle gateway URL (default: local store)")
	flag.StringVar(&cfg.DataPath, "data", "./data", "Local store directory")
	flag.StringVar(&cfg.LedgerRef, "ledger-ref", "main", "Default target ledger name")
	flag.Parse()

	return cfg
}

// validate checks the three required startup values. Absence of any
// is a fatal startup error, not a per-call error.
func (cfg *Config) validate() error {
	if cfg.LedgerEndpoint == "" {
		return fmt.Errorf("ledger endpoint is required (-ledger)")
	}

	if cfg.LedgerAddress == "" {
		return fmt.Errorf("ledger address is required (-address)")
	}

	if err := digest.ValidateAddress(cfg.LedgerAddress, "ledger address"); err != nil {
		return err
	}

	if cfg.KeyPath == "" && os.Getenv("SCRIBE_SIGNING_KEY") == "" {
		return fmt.Errorf("signing credential is required (-key or SCRIBE_SIGNING_KEY)")
	}

	return nil
}

// loadCredential loads the ed25519 signing key from the environment
// or the configured file.
func (cfg *Config) loadCredential() error {
	seedHex := os.Getenv("SCRIBE_SIGNING_KEY")

	if seedHex == "" {
		data, err := os.ReadFile(cfg.KeyPath)
		if err != nil {
			return fmt.Errorf("read signing credential %s:\n%w", cfg.KeyPath, err)
		}
		seedHex = strings.TrimSpace(string(data))
	}

	seedHex = strings.TrimPrefix(seedHex, "0x")

	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return fmt.Errorf("signing credential is not valid hex:\n%w", err)
	}

	if len(seed) != ed25519.SeedSize {
		return fmt.Errorf("signing credential must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	cfg.Credential = ed25519.NewKeyFromSeed(seed)

	return nil
}
