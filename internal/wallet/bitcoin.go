package wallet

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/klingon-exchange/multiwallet/internal/chain"
)

// BitcoinChainParams maps our network to btcd's chaincfg params.
func BitcoinChainParams(network chain.Network) *chaincfg.Params {
	if network == chain.Testnet {
		return &chaincfg.TestNet3Params
	}
	return &chaincfg.MainNetParams
}

// PublicKeyToBitcoinAddress produces the native segwit (P2WPKH) address for a
// compressed public key.
func PublicKeyToBitcoinAddress(pubKey *btcec.PublicKey, network chain.Network) (string, error) {
	hash160 := btcutil.Hash160(pubKey.SerializeCompressed())

	addr, err := btcutil.NewAddressWitnessPubKeyHash(hash160, BitcoinChainParams(network))
	if err != nil {
		return "", fmt.Errorf("failed to create segwit address: %w", err)
	}

	return addr.EncodeAddress(), nil
}

// ValidateBitcoinAddress reports whether an address parses for the given
// network. Legacy, P2SH, and bech32 forms are all accepted; an address for
// the wrong network fails.
func ValidateBitcoinAddress(address string, network chain.Network) bool {
	params := BitcoinChainParams(network)

	addr, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return false
	}

	return addr.IsForNet(params)
}
