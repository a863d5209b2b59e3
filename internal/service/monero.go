package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/tyler-smith/go-bip39"

	"github.com/klingon-exchange/multiwallet/internal/cache"
	"github.com/klingon-exchange/multiwallet/internal/chain"
	"github.com/klingon-exchange/multiwallet/internal/explorer"
	"github.com/klingon-exchange/multiwallet/internal/wallet"
	"github.com/klingon-exchange/multiwallet/pkg/helpers"
	"github.com/klingon-exchange/multiwallet/pkg/logging"
)

// Capability describes what a Monero wallet can do in this build.
type Capability int

const (
	// CapabilityViewOnly wallets can derive addresses and watch balances.
	CapabilityViewOnly Capability = iota
	// CapabilityFull wallets carry a spend key, but transaction signing is
	// not wired in this build.
	CapabilityFull
)

// MoneroDeriveFunc builds a key set for one (mnemonic, index) pair.
type MoneroDeriveFunc func(mnemonic string, index uint32, network chain.Network) (*wallet.MoneroKeys, error)

// DeriveMoneroWallet is the default MoneroDeriveFunc.
func DeriveMoneroWallet(mnemonic string, index uint32, network chain.Network) (*wallet.MoneroKeys, error) {
	seed := bip39.NewSeed(mnemonic, "")
	return wallet.DeriveMoneroKeys(seed, index, network)
}

// MoneroWalletCache memoizes key derivation per (mnemonic, index, network).
// Derivation is expensive, so at most one derivation runs per key even under
// concurrent callers; the rest block on the same entry.
type MoneroWalletCache struct {
	mu      sync.Mutex
	entries map[string]*moneroEntry
}

type moneroEntry struct {
	once sync.Once
	keys *wallet.MoneroKeys
	err  error
}

// NewMoneroWalletCache creates an empty wallet cache.
func NewMoneroWalletCache() *MoneroWalletCache {
	return &MoneroWalletCache{entries: make(map[string]*moneroEntry)}
}

// Get returns the key set for a (mnemonic, index) pair, deriving it on first
// use.
func (c *MoneroWalletCache) Get(mnemonic string, index uint32, network chain.Network, derive MoneroDeriveFunc) (*wallet.MoneroKeys, error) {
	key := fmt.Sprintf("%s/%d/%s", mnemonic, index, network)

	c.mu.Lock()
	entry, ok := c.entries[key]
	if !ok {
		entry = &moneroEntry{}
		c.entries[key] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		entry.keys, entry.err = derive(mnemonic, index, network)
	})

	return entry.keys, entry.err
}

// Len returns the number of cached wallets.
func (c *MoneroWalletCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// MoneroService derives Monero key sets and watches balances. Sending is
// not available: view-only wallets cannot sign at all, and full wallets have
// no signing backend in this build.
type MoneroService struct {
	params     *chain.Params
	network    chain.Network
	secret     wallet.Secret
	walletID   string
	capability Capability
	cache      *cache.AddressCache
	wallets    *MoneroWalletCache
	log        *logging.Logger
	eps        endpoints
	clients    map[string]*explorer.MoneroClient

	derive MoneroDeriveFunc
}

// NewMoneroService creates the Monero service. The wallet cache is shared
// across service rebuilds so key derivation survives manager reconstruction.
func NewMoneroService(params *chain.Params, secret wallet.Secret, network chain.Network, walletID string, capability Capability, addrCache *cache.AddressCache, wallets *MoneroWalletCache, log *logging.Logger) (*MoneroService, error) {
	if err := secret.Validate(); err != nil {
		return nil, err
	}
	if wallets == nil {
		wallets = NewMoneroWalletCache()
	}

	clients := make(map[string]*explorer.MoneroClient, len(params.RPCEndpoints))
	for _, url := range params.RPCEndpoints {
		clients[url] = explorer.NewMoneroClient(url)
	}

	return &MoneroService{
		params:     params,
		network:    network,
		secret:     secret,
		walletID:   walletID,
		capability: capability,
		cache:      addrCache,
		wallets:    wallets,
		log:        log.Component("XMR"),
		eps:        endpoints{urls: params.RPCEndpoints, log: log.Component("XMR")},
		clients:    clients,
		derive:     DeriveMoneroWallet,
	}, nil
}

func (s *MoneroService) Chain() chain.Identifier { return chain.Monero }
func (s *MoneroService) Symbol() string          { return s.params.Symbol }

func (s *MoneroService) keys(index uint32) (*wallet.MoneroKeys, error) {
	mnemonic, err := s.secret.EffectiveMnemonic()
	if err != nil {
		return nil, err
	}
	return s.wallets.Get(mnemonic, index, s.network, s.derive)
}

// Init derives the index-0 key set. Idempotent; concurrent callers share
// one derivation through the wallet cache.
func (s *MoneroService) Init(ctx context.Context) error {
	_, err := s.keys(0)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDerivation, err)
	}
	return nil
}

// Address returns the standard address for an account index.
func (s *MoneroService) Address(ctx context.Context, index uint32) (string, error) {
	if addr, ok := s.cache.Get(s.walletID, string(chain.Monero), index); ok {
		return addr, nil
	}

	keys, err := s.keys(index)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDerivation, err)
	}

	s.cache.Put(s.walletID, string(chain.Monero), index, keys.Address)
	return keys.Address, nil
}

// ValidateAddress checks alphabet, length, and network lead character.
func (s *MoneroService) ValidateAddress(address string) bool {
	return wallet.ValidateMoneroAddress(address, s.network)
}

// Balance returns the unlocked balance in XMR, formatted to 8 places.
// This requires an endpoint backed by a wallet RPC; against plain chain
// nodes every endpoint fails and the error propagates to the caller, whose
// display layer degrades it to "0.0".
func (s *MoneroService) Balance(ctx context.Context) (string, error) {
	if err := s.Init(ctx); err != nil {
		return "", err
	}

	var atomic uint64
	err := s.eps.do(ctx, "balance", func(ctx context.Context, url string) error {
		amount, err := s.clients[url].Balance(ctx, 0)
		if err != nil {
			return err
		}
		atomic = amount
		return nil
	})
	if err != nil {
		return "", err
	}

	// 12-decimal atomic units, displayed to 8 places
	return helpers.FormatFixed(atomic, s.params.Decimals, 8), nil
}

// Send is unavailable. View-only wallets get a distinguishing error so the
// caller can prompt for the spend key; full wallets fail because no signing
// backend is wired in this build.
func (s *MoneroService) Send(ctx context.Context, to, amount string) (string, error) {
	if s.capability == CapabilityViewOnly {
		return "", fmt.Errorf("%w: spend key not available", ErrViewOnly)
	}
	return "", fmt.Errorf("%w: monero signing unavailable in this build", ErrUnsupported)
}
