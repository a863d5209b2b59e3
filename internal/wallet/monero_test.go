package wallet

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/tyler-smith/go-bip39"

	"github.com/klingon-exchange/multiwallet/internal/chain"
)

func moneroTestSeed() []byte {
	return bip39.NewSeed(testMnemonic, "")
}

func TestDeriveMoneroKeys(t *testing.T) {
	keys, err := DeriveMoneroKeys(moneroTestSeed(), 0, chain.Mainnet)
	if err != nil {
		t.Fatalf("DeriveMoneroKeys: %v", err)
	}

	if len(keys.Address) != 95 {
		t.Errorf("address length = %d, want 95", len(keys.Address))
	}
	if keys.Address[0] != '4' {
		t.Errorf("mainnet address starts with %q, want '4'", keys.Address[0])
	}
	if !ValidateMoneroAddress(keys.Address, chain.Mainnet) {
		t.Errorf("derived address fails validation: %s", keys.Address)
	}
	if len(keys.SpendPublic) != 32 || len(keys.ViewPublic) != 32 {
		t.Errorf("public keys must be 32 bytes, got %d/%d", len(keys.SpendPublic), len(keys.ViewPublic))
	}
}

func TestDeriveMoneroKeysStagenet(t *testing.T) {
	keys, err := DeriveMoneroKeys(moneroTestSeed(), 0, chain.Testnet)
	if err != nil {
		t.Fatalf("DeriveMoneroKeys: %v", err)
	}
	if len(keys.Address) != 95 {
		t.Errorf("address length = %d, want 95", len(keys.Address))
	}
	if keys.Address[0] != '5' {
		t.Errorf("stagenet address starts with %q, want '5'", keys.Address[0])
	}
	if !ValidateMoneroAddress(keys.Address, chain.Testnet) {
		t.Errorf("derived address fails validation: %s", keys.Address)
	}
}

func TestDeriveMoneroKeysDeterministic(t *testing.T) {
	seed := moneroTestSeed()

	k1, err := DeriveMoneroKeys(seed, 0, chain.Mainnet)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	k2, err := DeriveMoneroKeys(seed, 0, chain.Mainnet)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if k1.Address != k2.Address {
		t.Error("same seed and index produced different addresses")
	}

	k3, err := DeriveMoneroKeys(seed, 1, chain.Mainnet)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if k3.Address == k1.Address {
		t.Error("distinct indexes produced the same address")
	}
}

func TestMoneroAddressChecksum(t *testing.T) {
	keys, err := DeriveMoneroKeys(moneroTestSeed(), 0, chain.Mainnet)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}

	payload, err := MoneroBase58Decode(keys.Address)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload) != 69 {
		t.Fatalf("payload length = %d, want 69", len(payload))
	}
	if payload[0] != moneroMainnetPrefix {
		t.Errorf("network byte = %#x, want %#x", payload[0], moneroMainnetPrefix)
	}
	if !bytes.Equal(payload[1:33], keys.SpendPublic) {
		t.Error("spend public key mismatch in payload")
	}
	if !bytes.Equal(payload[33:65], keys.ViewPublic) {
		t.Error("view public key mismatch in payload")
	}
	if !bytes.Equal(Keccak256(payload[:65])[:4], payload[65:]) {
		t.Error("checksum mismatch")
	}
}

func TestValidateMoneroAddress(t *testing.T) {
	std := make([]byte, 95)
	for i := range std {
		std[i] = '4'
	}

	tests := []struct {
		name    string
		address string
		network chain.Network
		want    bool
	}{
		{"mainnet standard", string(std), chain.Mainnet, true},
		{"mainnet subaddress", "8" + string(std[1:]), chain.Mainnet, true},
		{"wrong lead", "5" + string(std[1:]), chain.Mainnet, false},
		{"short", string(std[:94]), chain.Mainnet, false},
		{"integrated", string(std) + "44444444444", chain.Mainnet, true},
		{"bad char", string(std[:94]) + "0", chain.Mainnet, false},
		{"stagenet standard", "5" + string(std[1:]), chain.Testnet, true},
		{"stagenet wrong lead", string(std), chain.Testnet, false},
		{"empty", "", chain.Mainnet, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateMoneroAddress(tt.address, tt.network); got != tt.want {
				t.Errorf("ValidateMoneroAddress(%q) = %v, want %v", tt.address, got, tt.want)
			}
		})
	}
}

func TestMoneroBase58RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for size := 1; size <= 16; size++ {
		data := make([]byte, size)
		rng.Read(data)

		decoded, err := MoneroBase58Decode(moneroBase58Encode(data))
		if err != nil {
			t.Fatalf("size %d: decode: %v", size, err)
		}
		if !bytes.Equal(decoded, data) {
			t.Errorf("size %d: round trip mismatch", size)
		}
	}

	// Zero block encodes to all-ones
	if got := moneroBase58Encode(make([]byte, 8)); got != "11111111111" {
		t.Errorf("zero block = %q, want 11 ones", got)
	}
}
