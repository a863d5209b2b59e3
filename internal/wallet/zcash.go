// Package wallet - ZCash transparent address codec.
//
// ZCash transparent addresses are Base58Check with a two-byte version prefix
// instead of Bitcoin's single byte, so btcutil's address types cannot decode
// them and the codec is done by hand here.
package wallet

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/mr-tron/base58"

	"github.com/klingon-exchange/multiwallet/internal/chain"
)

// EncodeTransparentAddress encodes a 20-byte hash160 under a two-byte version
// prefix with a double-SHA256 checksum.
func EncodeTransparentAddress(version [2]byte, hash160 []byte) (string, error) {
	if len(hash160) != 20 {
		return "", fmt.Errorf("hash160 must be 20 bytes, got %d", len(hash160))
	}

	payload := make([]byte, 0, 26)
	payload = append(payload, version[:]...)
	payload = append(payload, hash160...)

	checksum := doubleSHA256(payload)[:4]
	payload = append(payload, checksum...)

	return base58.Encode(payload), nil
}

// DecodeTransparentAddress decodes a ZCash transparent address and returns
// its version prefix and 20-byte hash160. The checksum must verify.
func DecodeTransparentAddress(address string) (version [2]byte, hash160 []byte, err error) {
	raw, err := base58.Decode(address)
	if err != nil {
		return version, nil, fmt.Errorf("invalid base58: %w", err)
	}
	if len(raw) != 26 {
		return version, nil, fmt.Errorf("decoded address must be 26 bytes, got %d", len(raw))
	}

	payload, checksum := raw[:22], raw[22:]
	if !bytes.Equal(doubleSHA256(payload)[:4], checksum) {
		return version, nil, fmt.Errorf("checksum mismatch")
	}

	copy(version[:], payload[:2])
	return version, payload[2:], nil
}

// PublicKeyToZCashAddress produces the t-address for a compressed public key
// under the chain's registered P2PKH version bytes.
func PublicKeyToZCashAddress(pubKey *btcec.PublicKey, params *chain.Params) (string, error) {
	hash160 := btcutil.Hash160(pubKey.SerializeCompressed())
	return EncodeTransparentAddress(params.P2PKHVersion, hash160)
}

// ValidateZCashAddress reports whether an address decodes under one of the
// chain's registered transparent version prefixes.
func ValidateZCashAddress(address string, params *chain.Params) bool {
	version, _, err := DecodeTransparentAddress(address)
	if err != nil {
		return false
	}
	return version == params.P2PKHVersion || version == params.P2SHVersion
}

func doubleSHA256(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:]
}
