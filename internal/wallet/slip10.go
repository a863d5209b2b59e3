// Package wallet - SLIP-0010 ed25519 derivation (used by Solana).
package wallet

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
)

const hardenedOffset = 0x80000000

// DeriveEd25519Seed derives a 32-byte ed25519 keypair seed from a BIP39 seed
// along a SLIP-0010 path. Every index is treated as hardened; ed25519 has no
// non-hardened derivation.
func DeriveEd25519Seed(seed []byte, path []uint32) ([]byte, error) {
	if len(seed) == 0 {
		return nil, fmt.Errorf("empty seed")
	}

	// Master key: HMAC-SHA512 with the fixed SLIP-0010 ed25519 key
	mac := hmac.New(sha512.New, []byte("ed25519 seed"))
	mac.Write(seed)
	sum := mac.Sum(nil)

	key := sum[:32]
	chainCode := sum[32:]

	for _, index := range path {
		if index < hardenedOffset {
			index += hardenedOffset
		}

		var data [37]byte
		data[0] = 0x00
		copy(data[1:33], key)
		binary.BigEndian.PutUint32(data[33:], index)

		mac = hmac.New(sha512.New, chainCode)
		mac.Write(data[:])
		sum = mac.Sum(nil)

		key = sum[:32]
		chainCode = sum[32:]
	}

	out := make([]byte, 32)
	copy(out, key)
	return out, nil
}

// SolanaDerivationPath returns the SLIP-0010 path m/44'/501'/{index}'/0'
// used for Solana account derivation.
func SolanaDerivationPath(index uint32) []uint32 {
	return []uint32{
		44 + hardenedOffset,
		501 + hardenedOffset,
		index + hardenedOffset,
		0 + hardenedOffset,
	}
}
