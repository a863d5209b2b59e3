// Package main provides the multiwalletd daemon - a multi-currency wallet
// service exposing address derivation, balances, and sends for every enabled
// chain behind one manager.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/klingon-exchange/multiwallet/internal/cache"
	"github.com/klingon-exchange/multiwallet/internal/chain"
	"github.com/klingon-exchange/multiwallet/internal/config"
	"github.com/klingon-exchange/multiwallet/internal/service"
	"github.com/klingon-exchange/multiwallet/internal/storage"
	"github.com/klingon-exchange/multiwallet/internal/wallet"
	"github.com/klingon-exchange/multiwallet/pkg/logging"
)

var (
	version = "0.1.0-dev"
	commit  = "unknown"
)

const (
	settingWalletID = "wallet.id"
	settingMnemonic = "wallet.mnemonic"
)

func main() {
	// Parse flags
	var (
		dataDir      = flag.String("data-dir", "~/.multiwallet", "Data directory")
		configFile   = flag.String("config", "", "Config file path (default: <data-dir>/config.yaml)")
		testnet      = flag.Bool("testnet", false, "Run on testnet (separate network and data)")
		mnemonicFile = flag.String("mnemonic-file", "", "Import a BIP39 mnemonic from a file instead of using the stored wallet")
		logLevel     = flag.String("log-level", "", "Log level (debug, info, warn, error), overrides config")
		refresh      = flag.Duration("refresh", 60*time.Second, "Balance refresh interval")
		showVersion  = flag.Bool("version", false, "Show version and exit")
	)
	flag.Parse()

	// Set up logging (initial, may be overridden by config)
	log := logging.New(&logging.Config{
		Level:      "info",
		TimeFormat: time.TimeOnly,
	})
	logging.SetDefault(log)

	if *showVersion {
		log.Infof("multiwalletd %s (commit: %s)", version, commit)
		os.Exit(0)
	}

	// Determine data directory (testnet uses subdirectory)
	effectiveDataDir := *dataDir
	if *testnet {
		effectiveDataDir = filepath.Join(*dataDir, "testnet")
	}

	// Load config file; a missing default config falls back to defaults
	cfg := loadConfig(log, *configFile, effectiveDataDir)
	cfg.DataDir = effectiveDataDir
	if *testnet {
		cfg.Network = string(chain.Testnet)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	// Update logging with config level
	log = logging.New(&logging.Config{
		Level:      cfg.Log.Level,
		TimeFormat: time.TimeOnly,
	})
	logging.SetDefault(log)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage
	store, err := storage.New(&storage.Config{DataDir: cfg.DataDir})
	if err != nil {
		log.Fatal("Failed to initialize storage", "error", err)
	}
	defer store.Close()
	log.Info("Storage initialized", "dir", cfg.DataDir)

	// Resolve the wallet: stored, imported, or freshly generated
	walletID, secret, err := resolveWallet(store, *mnemonicFile)
	if err != nil {
		log.Fatal("Failed to resolve wallet", "error", err)
	}
	log.Info("Wallet loaded", "id", walletID)

	// Shared collaborators survive manager rebuilds: the address cache keeps
	// derived addresses, the Monero wallet cache keeps derived key sets.
	deps := service.Deps{
		Cache:         cache.New(store, log),
		MoneroWallets: service.NewMoneroWalletCache(),
		Log:           log,
		Network:       cfg.NetworkType(),
		WalletID:      walletID,
	}

	factory := service.NewManagerFactory(func() (wallet.Secret, []config.ChainConfig, error) {
		return secret, cfg.EnabledChains(), nil
	}, deps)

	manager, err := factory.Manager()
	if err != nil {
		log.Fatal("Failed to build chain manager", "error", err)
	}

	if err := manager.Initialize(ctx); err != nil {
		log.Warn("Some chain services failed to initialize", "error", err)
	}

	printBanner(log, manager, cfg)
	printAddresses(ctx, log, manager)
	printBalances(ctx, log, manager)

	// Periodic balance refresh
	go func() {
		ticker := time.NewTicker(*refresh)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				printBalances(ctx, log, manager)
			}
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	log.Info("Shutting down...")
	cancel()
	log.Info("Goodbye!")
}

// loadConfig reads the config file when one exists. An explicitly named file
// must load; the default location is optional.
func loadConfig(log *logging.Logger, configFile, dataDir string) *config.Config {
	path := configFile
	explicit := path != ""
	if !explicit {
		path = filepath.Join(expandPath(dataDir), "config.yaml")
	}

	cfg, err := config.Load(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return config.Default()
		}
		log.Fatal("Failed to load config", "path", path, "error", err)
	}

	log.Info("Config loaded", "path", path)
	return cfg
}

// resolveWallet returns the stored wallet, importing or generating one when
// needed. The wallet ID and mnemonic live in the settings table.
func resolveWallet(store *storage.Storage, mnemonicFile string) (string, wallet.Secret, error) {
	if mnemonicFile != "" {
		data, err := os.ReadFile(mnemonicFile)
		if err != nil {
			return "", wallet.Secret{}, err
		}
		mnemonic := string(normalizeMnemonic(data))
		secret := wallet.Secret{Mnemonic: mnemonic}
		if err := secret.Validate(); err != nil {
			return "", wallet.Secret{}, err
		}

		id := uuid.NewString()
		if err := store.SetSetting(settingWalletID, id); err != nil {
			return "", wallet.Secret{}, err
		}
		if err := store.SetSetting(settingMnemonic, mnemonic); err != nil {
			return "", wallet.Secret{}, err
		}
		return id, secret, nil
	}

	id, err := store.GetSetting(settingWalletID)
	if err != nil {
		return "", wallet.Secret{}, err
	}
	mnemonic, err := store.GetSetting(settingMnemonic)
	if err != nil {
		return "", wallet.Secret{}, err
	}
	if id != "" && mnemonic != "" {
		return id, wallet.Secret{Mnemonic: mnemonic}, nil
	}

	// First run: generate a wallet and persist it
	mnemonic, err = wallet.GenerateMnemonic()
	if err != nil {
		return "", wallet.Secret{}, err
	}
	id = uuid.NewString()
	if err := store.SetSetting(settingWalletID, id); err != nil {
		return "", wallet.Secret{}, err
	}
	if err := store.SetSetting(settingMnemonic, mnemonic); err != nil {
		return "", wallet.Secret{}, err
	}
	return id, wallet.Secret{Mnemonic: mnemonic}, nil
}

// normalizeMnemonic collapses whitespace in an imported mnemonic file.
func normalizeMnemonic(data []byte) []byte {
	out := make([]byte, 0, len(data))
	space := true
	for _, b := range data {
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			if !space {
				out = append(out, ' ')
				space = true
			}
			continue
		}
		out = append(out, b)
		space = false
	}
	for len(out) > 0 && out[len(out)-1] == ' ' {
		out = out[:len(out)-1]
	}
	return out
}

// expandPath expands ~ to home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}

func printBanner(log *logging.Logger, m *service.Manager, cfg *config.Config) {
	networkLabel := "mainnet"
	if m.Network() == chain.Testnet {
		networkLabel = "TESTNET"
	}

	log.Info("")
	log.Info("=================================================")
	log.Infof("  Multiwallet Daemon (%s)", networkLabel)
	log.Infof("  Version: %s", version)
	log.Info("=================================================")
	log.Info("")
	for _, svc := range m.Services() {
		log.Infof("  Chain: %-8s (%s)", svc.Chain(), svc.Symbol())
	}
	log.Info("")
	log.Infof("  Data dir: %s", expandPath(cfg.DataDir))
	log.Info("=================================================")
	log.Info("")
}

func printAddresses(ctx context.Context, log *logging.Logger, m *service.Manager) {
	for _, svc := range m.Services() {
		addr, err := svc.Address(ctx, 0)
		if err != nil {
			log.Warn("Address unavailable", "chain", svc.Chain(), "error", err)
		}
		log.Info("Address", "chain", svc.Chain(), "address", service.AddressOrSentinel(addr, err))
	}
}

func printBalances(ctx context.Context, log *logging.Logger, m *service.Manager) {
	for _, svc := range m.Services() {
		balance, err := svc.Balance(ctx)
		if err != nil {
			log.Warn("Balance unavailable", "chain", svc.Chain(), "error", err)
		}
		log.Info("Balance", "chain", svc.Chain(), "symbol", svc.Symbol(), "balance", service.BalanceOrZero(balance, err))
	}
}
