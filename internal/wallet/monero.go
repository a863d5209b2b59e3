// Package wallet - Monero key derivation and address encoding.
//
// Monero does not use BIP32: a wallet is a pair of ed25519 scalars (spend and
// view) and the public address encodes both public keys with Monero's
// block-based Base58 variant.
package wallet

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"strings"

	"filippo.io/edwards25519"

	"github.com/klingon-exchange/multiwallet/internal/chain"
)

// Monero address network bytes.
const (
	moneroMainnetPrefix  = 0x12 // standard address, leading '4'
	moneroStagenetPrefix = 0x18 // standard address, leading '5'
)

// MoneroKeys is a derived view/spend key set with its standard address.
// Constructing one is expensive relative to the other chains, so callers
// cache results keyed by (mnemonic, index).
type MoneroKeys struct {
	SpendSecret *edwards25519.Scalar
	ViewSecret  *edwards25519.Scalar
	SpendPublic []byte // 32-byte compressed point
	ViewPublic  []byte // 32-byte compressed point
	Address     string
}

// DeriveMoneroKeys derives a Monero key set from a BIP39 seed at the given
// account index. The spend scalar is the reduced Keccak of the seed material
// and the view scalar is the reduced Keccak of the spend scalar, the standard
// deterministic view-key construction.
func DeriveMoneroKeys(seed []byte, index uint32, network chain.Network) (*MoneroKeys, error) {
	if len(seed) == 0 {
		return nil, fmt.Errorf("empty seed")
	}

	var indexBytes [4]byte
	binary.LittleEndian.PutUint32(indexBytes[:], index)

	spendSecret, err := reduceToScalar(Keccak256(seed, indexBytes[:]))
	if err != nil {
		return nil, fmt.Errorf("failed to derive spend key: %w", err)
	}

	viewSecret, err := reduceToScalar(Keccak256(spendSecret.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("failed to derive view key: %w", err)
	}

	spendPublic := new(edwards25519.Point).ScalarBaseMult(spendSecret).Bytes()
	viewPublic := new(edwards25519.Point).ScalarBaseMult(viewSecret).Bytes()

	prefix := byte(moneroMainnetPrefix)
	if network == chain.Testnet {
		prefix = moneroStagenetPrefix
	}

	address := encodeMoneroAddress(prefix, spendPublic, viewPublic)

	return &MoneroKeys{
		SpendSecret: spendSecret,
		ViewSecret:  viewSecret,
		SpendPublic: spendPublic,
		ViewPublic:  viewPublic,
		Address:     address,
	}, nil
}

// reduceToScalar interprets 32 bytes as a little-endian integer reduced
// modulo the ed25519 group order (sc_reduce32).
func reduceToScalar(b []byte) (*edwards25519.Scalar, error) {
	var wide [64]byte
	copy(wide[:], b)
	return new(edwards25519.Scalar).SetUniformBytes(wide[:])
}

// encodeMoneroAddress builds netByte || spendPub || viewPub || keccak4
// and encodes it with Monero Base58.
func encodeMoneroAddress(netByte byte, spendPublic, viewPublic []byte) string {
	payload := make([]byte, 0, 69)
	payload = append(payload, netByte)
	payload = append(payload, spendPublic...)
	payload = append(payload, viewPublic...)

	checksum := Keccak256(payload)[:4]
	payload = append(payload, checksum...)

	return moneroBase58Encode(payload)
}

// ValidateMoneroAddress checks a Monero address by alphabet, length, and
// leading character. Standard and subaddresses are 95 characters, integrated
// addresses 106; the leading character is fixed by the network byte.
func ValidateMoneroAddress(address string, network chain.Network) bool {
	for _, c := range address {
		if !strings.ContainsRune(base58Alphabet, c) {
			return false
		}
	}

	lead := byte(0)
	if len(address) > 0 {
		lead = address[0]
	}

	if network == chain.Testnet {
		// Stagenet: standard '5', subaddress '7', integrated '5'
		switch len(address) {
		case 95:
			return lead == '5' || lead == '7'
		case 106:
			return lead == '5'
		}
		return false
	}

	switch len(address) {
	case 95:
		return lead == '4' || lead == '8'
	case 106:
		return lead == '4'
	}
	return false
}

// Monero Base58: the payload is encoded in 8-byte blocks, each block mapped
// to a fixed 11-character output (shorter for the final partial block). The
// fixed widths make address length deterministic, unlike Bitcoin Base58.

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

const moneroFullBlockSize = 8

// encodedBlockSizes[n] is the encoded width of an n-byte block.
var encodedBlockSizes = [9]int{0, 2, 3, 5, 6, 7, 9, 10, 11}

func moneroBase58Encode(data []byte) string {
	var b strings.Builder
	for off := 0; off < len(data); off += moneroFullBlockSize {
		end := off + moneroFullBlockSize
		if end > len(data) {
			end = len(data)
		}
		b.WriteString(encodeMoneroBlock(data[off:end]))
	}
	return b.String()
}

func encodeMoneroBlock(block []byte) string {
	num := new(big.Int).SetBytes(block)
	radix := big.NewInt(58)
	mod := new(big.Int)

	width := encodedBlockSizes[len(block)]
	out := make([]byte, width)
	for i := range out {
		out[i] = base58Alphabet[0]
	}

	for i := width - 1; num.Sign() > 0 && i >= 0; i-- {
		num.DivMod(num, radix, mod)
		out[i] = base58Alphabet[mod.Int64()]
	}

	return string(out)
}

// MoneroBase58Decode reverses moneroBase58Encode. Exported for the address
// codec tests; validation itself is format-only.
func MoneroBase58Decode(encoded string) ([]byte, error) {
	const fullEncodedBlockSize = 11

	decodedSize := func(width int) (int, bool) {
		for n, w := range encodedBlockSizes {
			if w == width {
				return n, true
			}
		}
		return 0, false
	}

	var out []byte
	for off := 0; off < len(encoded); off += fullEncodedBlockSize {
		end := off + fullEncodedBlockSize
		if end > len(encoded) {
			end = len(encoded)
		}
		block := encoded[off:end]

		size, ok := decodedSize(len(block))
		if !ok {
			return nil, fmt.Errorf("invalid base58 block width %d", len(block))
		}

		num := new(big.Int)
		for _, c := range []byte(block) {
			idx := strings.IndexByte(base58Alphabet, c)
			if idx < 0 {
				return nil, fmt.Errorf("invalid base58 character %q", c)
			}
			num.Mul(num, big.NewInt(58))
			num.Add(num, big.NewInt(int64(idx)))
		}

		raw := num.Bytes()
		if len(raw) > size {
			return nil, fmt.Errorf("base58 block overflow")
		}

		padded := make([]byte, size)
		copy(padded[size-len(raw):], raw)
		out = append(out, padded...)
	}

	return out, nil
}
