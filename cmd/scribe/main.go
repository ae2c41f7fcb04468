package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"BlockScribe/internal/api"
	"BlockScribe/internal/audit"
	"BlockScribe/internal/bundle"
	"BlockScribe/internal/chain"
	"BlockScribe/internal/ledger"
	"BlockScribe/internal/logger"
	"BlockScribe/internal/store"
	"BlockScribe/internal/tool"
)

func main() {
	logger.Init()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main entry point with error handling.
func run() error {
	cfg := parseFlags()

	if err := cfg.validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}

	if err := cfg.loadCredential(); err != nil {
		return fmt.Errorf("load signing credential:\n%w", err)
	}

	signer, err := ledger.NewSigner(cfg.Credential)
	if err != nil {
		return fmt.Errorf("derive submission key:\n%w", err)
	}

	lc := ledger.NewHTTPClient(cfg.LedgerEndpoint, cfg.LedgerAddress, signer)

	cs, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	files, err := bundle.NewMaterializer(cfg.SandboxRoot)
	if err != nil {
		return fmt.Errorf("create file materializer:\n%w", err)
	}

	submitter := chain.NewSubmitter(lc, cs, files, cfg.LedgerRef)
	dispatcher := tool.NewDispatcher(submitter, audit.NewEngine(lc, cs), lc)

	server := api.New(cfg.HTTPAddress, dispatcher, submitter)
	if err := server.Start(); err != nil {
		return fmt.Errorf("start http server:\n%w", err)
	}

	logger.Info("scribe started",
		"ledger", cfg.LedgerEndpoint,
		"address", cfg.LedgerAddress,
		"http", cfg.HTTPAddress,
		"sandbox", files.Root(),
		"store", storeName(cfg),
	)

	waitForShutdown()

	return server.Stop()
}

// openStore selects the remote gateway or the local pebble store.
func openStore(cfg *Config) (store.Store, func(), error) {
	if cfg.StoreEndpoint != "" {
		return store.NewHTTP(cfg.StoreEndpoint), func() {}, nil
	}

	local, err := store.OpenLocal(cfg.DataPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open local store:\n%w", err)
	}

	return local, func() { local.Close() }, nil
}

// storeName describes the selected store for the startup log.
func storeName(cfg *Config) string {
	if cfg.StoreEndpoint != "" {
		return cfg.StoreEndpoint
	}
	return "local:" + cfg.DataPath
}

// waitForShutdown blocks until SIGINT or SIGTERM.
func waitForShutdown() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	received := <-sig
	logger.Info("shutting down", "signal", received.String())
}
