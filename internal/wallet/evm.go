// Package wallet - EVM (Ethereum/compatible chains) address cryptography.
package wallet

import (
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"golang.org/x/crypto/sha3"
)

// Keccak256 computes the Keccak-256 hash (used by Ethereum and Monero).
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// PublicKeyToEVMAddress converts a secp256k1 public key to an EVM address.
// Address = "0x" + last 20 bytes of Keccak256(uncompressed pubkey without 0x04 prefix)
func PublicKeyToEVMAddress(pubKey *btcec.PublicKey) string {
	pubKeyBytes := pubKey.SerializeUncompressed()

	// Hash without the 0x04 prefix
	hash := Keccak256(pubKeyBytes[1:])

	// Take last 20 bytes
	return ChecksumAddress(hex.EncodeToString(hash[12:]))
}

// ChecksumAddress applies EIP-55 checksum casing to an address.
func ChecksumAddress(addr string) string {
	addr = strings.ToLower(strings.TrimPrefix(addr, "0x"))
	hash := hex.EncodeToString(Keccak256([]byte(addr)))

	var b strings.Builder
	b.WriteString("0x")
	for i, c := range addr {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		} else if hash[i] >= '8' {
			// If the ith digit of the hash is >= 8, uppercase
			b.WriteRune(c - 32)
		} else {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// ValidateEVMAddress reports whether an address is a well-formed EVM address.
// The address must be 0x plus 40 hex characters; when it carries mixed case
// the EIP-55 checksum re-encoding must round-trip exactly.
func ValidateEVMAddress(address string) bool {
	if !strings.HasPrefix(address, "0x") {
		return false
	}
	body := address[2:]
	if len(body) != 40 {
		return false
	}
	if _, err := hex.DecodeString(body); err != nil {
		return false
	}

	// All-lowercase and all-uppercase forms carry no checksum
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}

	return ChecksumAddress(body) == address
}
