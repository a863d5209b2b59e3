package wallet

import (
	"crypto/ed25519"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// DeriveSolanaKey derives the Solana keypair for an account index from a
// BIP39 seed along m/44'/501'/{index}'/0'.
func DeriveSolanaKey(seed []byte, index uint32) (solana.PrivateKey, error) {
	keySeed, err := DeriveEd25519Seed(seed, SolanaDerivationPath(index))
	if err != nil {
		return nil, fmt.Errorf("failed to derive solana key: %w", err)
	}

	return solana.PrivateKey(ed25519.NewKeyFromSeed(keySeed)), nil
}

// ValidateSolanaAddress reports whether an address is a well-formed Solana
// public key (Base58, 32 bytes decoded).
func ValidateSolanaAddress(address string) bool {
	_, err := solana.PublicKeyFromBase58(address)
	return err == nil
}
