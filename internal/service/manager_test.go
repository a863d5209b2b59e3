package service

import (
	"context"
	"strings"
	"testing"

	"github.com/klingon-exchange/multiwallet/internal/chain"
	"github.com/klingon-exchange/multiwallet/internal/config"
	"github.com/klingon-exchange/multiwallet/internal/wallet"
)

func allEnabledConfigs() []config.ChainConfig {
	ids := chain.All()
	configs := make([]config.ChainConfig, 0, len(ids))
	for _, id := range ids {
		configs = append(configs, config.ChainConfig{Chain: string(id), Enabled: true})
	}
	return configs
}

func TestManagerBuildsEnabledChains(t *testing.T) {
	m, err := NewManager(testSecret(), allEnabledConfigs(), testDeps())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	for _, id := range chain.All() {
		svc, err := m.Service(id)
		if err != nil {
			t.Errorf("Service(%s): %v", id, err)
			continue
		}
		if svc.Chain() != id {
			t.Errorf("Service(%s) reports chain %s", id, svc.Chain())
		}
	}
}

func TestManagerDisabledChainUnavailable(t *testing.T) {
	configs := []config.ChainConfig{
		{Chain: string(chain.Ethereum), Enabled: true},
		{Chain: string(chain.Bitcoin), Enabled: false},
	}

	m, err := NewManager(testSecret(), configs, testDeps())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if _, err := m.Service(chain.Ethereum); err != nil {
		t.Errorf("Service(ETH): %v", err)
	}

	_, err = m.Service(chain.Bitcoin)
	if err == nil {
		t.Fatal("disabled chain should not be available")
	}
	if !strings.Contains(err.Error(), "BTC") {
		t.Errorf("error %q does not name the chain", err)
	}
}

func TestManagerPartialAvailability(t *testing.T) {
	// An unknown chain fails to build; the rest must survive.
	configs := append(allEnabledConfigs(), config.ChainConfig{Chain: "DOGE", Enabled: true})

	m, err := NewManager(testSecret(), configs, testDeps())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if got := len(m.Services()); got != len(chain.All()) {
		t.Errorf("services = %d, want %d", got, len(chain.All()))
	}
	if _, err := m.Service("DOGE"); err == nil {
		t.Error("unknown chain should not be available")
	}
}

func TestManagerServicesCanonicalOrder(t *testing.T) {
	// Configs deliberately out of order
	configs := []config.ChainConfig{
		{Chain: string(chain.ZCash), Enabled: true},
		{Chain: string(chain.Bitcoin), Enabled: true},
		{Chain: string(chain.Ethereum), Enabled: true},
	}

	m, err := NewManager(testSecret(), configs, testDeps())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	var got []chain.Identifier
	for _, svc := range m.Services() {
		got = append(got, svc.Chain())
	}

	want := []chain.Identifier{chain.Ethereum, chain.Bitcoin, chain.ZCash}
	if len(got) != len(want) {
		t.Fatalf("services = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("services = %v, want %v", got, want)
		}
	}
}

func TestManagerEndpointOverrides(t *testing.T) {
	override := "http://127.0.0.1:1/esplora"
	configs := []config.ChainConfig{
		{Chain: string(chain.Bitcoin), Enabled: true, ExplorerEndpoints: []string{override}},
	}

	m, err := NewManager(testSecret(), configs, testDeps())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	svc, err := m.Service(chain.Bitcoin)
	if err != nil {
		t.Fatalf("Service(BTC): %v", err)
	}
	btc := svc.(*BitcoinService)
	if len(btc.eps.urls) != 1 || btc.eps.urls[0] != override {
		t.Errorf("explorer endpoints = %v, want [%s]", btc.eps.urls, override)
	}

	// The override must not leak into the shared registry.
	registered, ok := chain.Get(chain.Bitcoin, chain.Mainnet)
	if !ok {
		t.Fatal("BTC params not registered")
	}
	for _, url := range registered.ExplorerEndpoints {
		if url == override {
			t.Fatal("endpoint override mutated the registry params")
		}
	}
}

func TestManagerRejectsInvalidSecret(t *testing.T) {
	if _, err := NewManager(wallet.Secret{}, allEnabledConfigs(), testDeps()); err == nil {
		t.Fatal("empty secret should fail")
	}
	if _, err := NewManager(wallet.Secret{Mnemonic: "one two three"}, allEnabledConfigs(), testDeps()); err == nil {
		t.Fatal("malformed mnemonic should fail")
	}
}

func TestManagerInitialize(t *testing.T) {
	m, err := NewManager(testSecret(), allEnabledConfigs(), testDeps())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	// SOL and XMR derive their keys here; neither touches the network.
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
}

func TestManagerFactory(t *testing.T) {
	deps := testDeps()
	calls := 0
	provider := func() (wallet.Secret, []config.ChainConfig, error) {
		calls++
		return testSecret(), allEnabledConfigs(), nil
	}

	f := NewManagerFactory(provider, deps)

	m1, err := f.Manager()
	if err != nil {
		t.Fatalf("Manager: %v", err)
	}
	m2, err := f.Manager()
	if err != nil {
		t.Fatalf("Manager: %v", err)
	}

	if calls != 2 {
		t.Errorf("provider calls = %d, want 2", calls)
	}
	if m1 == m2 {
		t.Error("factory returned the same manager twice")
	}
	if len(m1.Services()) != len(chain.All()) {
		t.Errorf("services = %d, want %d", len(m1.Services()), len(chain.All()))
	}
}

func TestManagerFactoryProviderError(t *testing.T) {
	f := NewManagerFactory(func() (wallet.Secret, []config.ChainConfig, error) {
		return wallet.Secret{}, nil, context.DeadlineExceeded
	}, testDeps())

	if _, err := f.Manager(); err == nil {
		t.Fatal("provider error should propagate")
	}
}
