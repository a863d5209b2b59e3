package wallet

import (
	"strings"
	"testing"

	"github.com/klingon-exchange/multiwallet/internal/chain"
)

func TestValidateBitcoinAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		network chain.Network
		want    bool
	}{
		{"bech32 mainnet", "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", chain.Mainnet, true},
		{"bech32 on testnet", "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", chain.Testnet, false},
		{"legacy mainnet", "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", chain.Mainnet, true},
		{"p2sh mainnet", "3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy", chain.Mainnet, true},
		{"testnet bech32", "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx", chain.Testnet, true},
		{"testnet bech32 on mainnet", "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx", chain.Mainnet, false},
		{"garbage", "notanaddress", chain.Mainnet, false},
		{"empty", "", chain.Mainnet, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateBitcoinAddress(tt.address, tt.network); got != tt.want {
				t.Errorf("ValidateBitcoinAddress(%q, %s) = %v, want %v", tt.address, tt.network, got, tt.want)
			}
		})
	}
}

func TestPublicKeyToBitcoinAddressNetworks(t *testing.T) {
	w := testWallet(t, chain.Mainnet)
	params, _ := chain.Get(chain.Bitcoin, chain.Mainnet)

	pubKey, err := w.DerivePublicKey(params, 0, 0, 0)
	if err != nil {
		t.Fatalf("DerivePublicKey: %v", err)
	}

	mainAddr, err := PublicKeyToBitcoinAddress(pubKey, chain.Mainnet)
	if err != nil {
		t.Fatalf("mainnet address: %v", err)
	}
	if !strings.HasPrefix(mainAddr, "bc1q") {
		t.Errorf("mainnet address %s does not start with bc1q", mainAddr)
	}

	testAddr, err := PublicKeyToBitcoinAddress(pubKey, chain.Testnet)
	if err != nil {
		t.Fatalf("testnet address: %v", err)
	}
	if !strings.HasPrefix(testAddr, "tb1q") {
		t.Errorf("testnet address %s does not start with tb1q", testAddr)
	}
}
