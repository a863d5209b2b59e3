// Package wallet provides HD key derivation and chain-specific address
// cryptography from a single BIP39 seed.
package wallet

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"

	"github.com/klingon-exchange/multiwallet/internal/chain"
)

// HDWallet manages keys derived from a BIP39 seed.
type HDWallet struct {
	masterKey *hdkeychain.ExtendedKey
	seed      []byte
	network   chain.Network

	mu    sync.Mutex
	cache map[string]*hdkeychain.ExtendedKey // path string -> derived key
}

// NewFromMnemonic creates a wallet from a BIP39 mnemonic with an empty
// passphrase.
func NewFromMnemonic(mnemonic string, network chain.Network) (*HDWallet, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("invalid mnemonic")
	}

	seed := bip39.NewSeed(mnemonic, "")
	return NewFromSeed(seed, network)
}

// NewFromSeed creates a wallet from a raw 64-byte seed.
func NewFromSeed(seed []byte, network chain.Network) (*HDWallet, error) {
	// Bitcoin params only affect extended-key serialization, not the
	// derived key material, so they are safe for every secp256k1 chain.
	params := &chaincfg.MainNetParams
	if network == chain.Testnet {
		params = &chaincfg.TestNet3Params
	}

	masterKey, err := hdkeychain.NewMaster(seed, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}

	return &HDWallet{
		masterKey: masterKey,
		seed:      seed,
		network:   network,
		cache:     make(map[string]*hdkeychain.ExtendedKey),
	}, nil
}

// Network returns the wallet's network (mainnet/testnet).
func (w *HDWallet) Network() chain.Network {
	return w.network
}

// Seed returns the raw BIP39 seed. Needed by the ed25519 and Monero
// derivations which do not use the secp256k1 master key.
func (w *HDWallet) Seed() []byte {
	return w.seed
}

// DerivePath derives a key at the given path. Indices with the high bit set
// are hardened.
func (w *HDWallet) DerivePath(path []uint32) (*hdkeychain.ExtendedKey, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	cacheKey := pathString(path)
	if key, ok := w.cache[cacheKey]; ok {
		return key, nil
	}

	key := w.masterKey
	var err error
	for _, index := range path {
		key, err = key.Derive(index)
		if err != nil {
			return nil, fmt.Errorf("failed to derive path %s: %w", cacheKey, err)
		}
	}

	w.cache[cacheKey] = key
	return key, nil
}

// DerivePrivateKey derives the secp256k1 private key for a chain at the
// given account/change/index using the chain's registered path.
func (w *HDWallet) DerivePrivateKey(params *chain.Params, account, change, index uint32) (*btcec.PrivateKey, error) {
	key, err := w.DerivePath(params.DerivationPath(account, change, index))
	if err != nil {
		return nil, err
	}

	privKey, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get private key: %w", err)
	}

	return privKey, nil
}

// DerivePublicKey derives the secp256k1 public key for a chain at the given
// account/change/index.
func (w *HDWallet) DerivePublicKey(params *chain.Params, account, change, index uint32) (*btcec.PublicKey, error) {
	key, err := w.DerivePath(params.DerivationPath(account, change, index))
	if err != nil {
		return nil, err
	}

	pubKey, err := key.ECPubKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get public key: %w", err)
	}

	return pubKey, nil
}

// ClearCache drops all cached derived keys.
func (w *HDWallet) ClearCache() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cache = make(map[string]*hdkeychain.ExtendedKey)
}

func pathString(path []uint32) string {
	var b strings.Builder
	b.WriteString("m")
	for _, index := range path {
		b.WriteString("/")
		if index >= hdkeychain.HardenedKeyStart {
			b.WriteString(strconv.FormatUint(uint64(index-hdkeychain.HardenedKeyStart), 10))
			b.WriteString("'")
		} else {
			b.WriteString(strconv.FormatUint(uint64(index), 10))
		}
	}
	return b.String()
}
