package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/klingon-exchange/multiwallet/internal/cache"
	"github.com/klingon-exchange/multiwallet/internal/chain"
	"github.com/klingon-exchange/multiwallet/internal/config"
	"github.com/klingon-exchange/multiwallet/internal/wallet"
	"github.com/klingon-exchange/multiwallet/pkg/logging"
)

// Deps carries the shared collaborators every service receives. Nothing here
// is global; tests construct their own.
type Deps struct {
	Cache         *cache.AddressCache
	MoneroWallets *MoneroWalletCache
	Log           *logging.Logger
	Network       chain.Network
	WalletID      string
}

func (d *Deps) fillDefaults() {
	if d.Cache == nil {
		d.Cache = cache.New(nil, d.Log)
	}
	if d.MoneroWallets == nil {
		d.MoneroWallets = NewMoneroWalletCache()
	}
	if d.Log == nil {
		d.Log = logging.GetDefault()
	}
	if d.Network == "" {
		d.Network = chain.Mainnet
	}
}

// Manager owns one service per enabled chain. Construction is best effort:
// a chain whose service fails to build is logged and left out, the rest stay
// available.
type Manager struct {
	network  chain.Network
	log      *logging.Logger
	services map[chain.Identifier]ChainService
}

// NewManager builds services for every enabled chain config.
func NewManager(secret wallet.Secret, configs []config.ChainConfig, deps Deps) (*Manager, error) {
	if err := secret.Validate(); err != nil {
		return nil, err
	}
	deps.fillDefaults()

	m := &Manager{
		network:  deps.Network,
		log:      deps.Log.Component("manager"),
		services: make(map[chain.Identifier]ChainService),
	}

	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}
		id := chain.Identifier(cfg.Chain)

		svc, err := buildService(id, secret, cfg, deps)
		if err != nil {
			m.log.Error("chain service unavailable", "chain", id, "err", err)
			continue
		}

		m.services[id] = svc
	}

	return m, nil
}

func buildService(id chain.Identifier, secret wallet.Secret, cfg config.ChainConfig, deps Deps) (ChainService, error) {
	registered, ok := chain.Get(id, deps.Network)
	if !ok {
		return nil, fmt.Errorf("no %s params registered for %s", id, deps.Network)
	}

	// Copy before applying overrides; registry params are shared.
	params := *registered
	if len(cfg.RPCEndpoints) > 0 {
		params.RPCEndpoints = cfg.RPCEndpoints
	}
	if len(cfg.ExplorerEndpoints) > 0 {
		params.ExplorerEndpoints = cfg.ExplorerEndpoints
	}

	switch id {
	case chain.Ethereum, chain.HyperEVM:
		return NewEVMService(&params, secret, deps.Network, deps.WalletID, deps.Cache, deps.Log)
	case chain.Bitcoin:
		return NewBitcoinService(&params, secret, deps.Network, deps.WalletID, deps.Cache, deps.Log)
	case chain.Solana:
		return NewSolanaService(&params, secret, deps.Network, deps.WalletID, deps.Cache, deps.Log)
	case chain.Monero:
		// A spend key only exists when a mnemonic is present; a raw EVM
		// private key yields a watch-only Monero wallet.
		capability := CapabilityViewOnly
		if secret.Mnemonic != "" {
			capability = CapabilityFull
		}
		return NewMoneroService(&params, secret, deps.Network, deps.WalletID, capability, deps.Cache, deps.MoneroWallets, deps.Log)
	case chain.ZCash:
		return NewZCashService(&params, secret, deps.Network, deps.WalletID, deps.Cache, deps.Log)
	}

	return nil, fmt.Errorf("unknown chain %s", id)
}

// Service returns the service for a chain, or a descriptive error when the
// chain is disabled or failed to construct.
func (m *Manager) Service(id chain.Identifier) (ChainService, error) {
	svc, ok := m.services[id]
	if !ok {
		return nil, fmt.Errorf("chain %s is not available", id)
	}
	return svc, nil
}

// Services returns the available services in canonical chain order.
func (m *Manager) Services() []ChainService {
	out := make([]ChainService, 0, len(m.services))
	for _, id := range chain.All() {
		if svc, ok := m.services[id]; ok {
			out = append(out, svc)
		}
	}
	return out
}

// Network returns the manager's network.
func (m *Manager) Network() chain.Network {
	return m.network
}

// Initialize runs Init on every service that needs one, concurrently.
// Individual failures are logged; the first error is returned after all
// finish.
func (m *Manager) Initialize(ctx context.Context) error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, svc := range m.services {
		init, ok := svc.(Initializer)
		if !ok {
			continue
		}

		wg.Add(1)
		go func(id chain.Identifier, init Initializer) {
			defer wg.Done()
			if err := init.Init(ctx); err != nil {
				m.log.Error("service init failed", "chain", id, "err", err)
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(svc.Chain(), init)
	}

	wg.Wait()
	return firstErr
}

// ActiveProvider supplies the currently active secret and chain configs.
type ActiveProvider func() (wallet.Secret, []config.ChainConfig, error)

// ManagerFactory builds managers bound to whatever wallet and config are
// currently active. Callers rebuild on wallet switch; shared caches in Deps
// carry over.
type ManagerFactory struct {
	provider ActiveProvider
	deps     Deps
}

// NewManagerFactory creates a factory.
func NewManagerFactory(provider ActiveProvider, deps Deps) *ManagerFactory {
	deps.fillDefaults()
	return &ManagerFactory{provider: provider, deps: deps}
}

// Manager builds a manager from the currently active secret and configs.
func (f *ManagerFactory) Manager() (*Manager, error) {
	secret, configs, err := f.provider()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve active wallet: %w", err)
	}
	return NewManager(secret, configs, f.deps)
}
