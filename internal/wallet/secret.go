package wallet

import (
	"errors"
	"fmt"

	"github.com/tyler-smith/go-bip39"
)

// ErrNoSecret is returned when a Secret carries neither a mnemonic nor a
// raw private key.
var ErrNoSecret = errors.New("wallet secret is empty")

// Secret holds the key material for one wallet. At least one of Mnemonic or
// PrivateKey must be present; whichever is missing is derived from the other
// so every chain family always has usable key material.
//
// A Secret is a transient copy of the caller's key material. It is never
// persisted or logged by this layer.
type Secret struct {
	Mnemonic   string
	PrivateKey []byte // 32-byte raw secp256k1 key, optional
}

// Validate checks the at-least-one invariant and the shape of what is present.
func (s Secret) Validate() error {
	if s.Mnemonic == "" && len(s.PrivateKey) == 0 {
		return ErrNoSecret
	}
	if s.Mnemonic != "" && !bip39.IsMnemonicValid(s.Mnemonic) {
		return fmt.Errorf("invalid mnemonic")
	}
	if len(s.PrivateKey) != 0 && len(s.PrivateKey) != 32 {
		return fmt.Errorf("private key must be 32 bytes, got %d", len(s.PrivateKey))
	}
	return nil
}

// HasPrivateKey reports whether a raw private key was supplied directly.
func (s Secret) HasPrivateKey() bool {
	return len(s.PrivateKey) == 32
}

// EffectiveMnemonic returns the mnemonic to use for HD derivation. When only
// a raw private key was supplied, a deterministic mnemonic is minted from the
// key bytes as BIP39 entropy so non-EVM chains still derive stable addresses.
func (s Secret) EffectiveMnemonic() (string, error) {
	if s.Mnemonic != "" {
		return s.Mnemonic, nil
	}
	if !s.HasPrivateKey() {
		return "", ErrNoSecret
	}
	mnemonic, err := bip39.NewMnemonic(s.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("failed to derive mnemonic from key: %w", err)
	}
	return mnemonic, nil
}

// String implements fmt.Stringer without exposing key material.
func (s Secret) String() string {
	return "wallet.Secret{redacted}"
}

// GenerateMnemonic generates a new 24-word BIP39 mnemonic.
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256) // 256 bits = 24 words
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate mnemonic: %w", err)
	}

	return mnemonic, nil
}

// ValidateMnemonic checks if a mnemonic is valid.
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}
