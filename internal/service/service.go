// Package service implements the per-chain wallet services behind a single
// ChainService interface, plus the manager that owns one service per enabled
// chain.
package service

import (
	"context"
	"errors"

	"github.com/klingon-exchange/multiwallet/internal/chain"
)

// Typed errors for write paths. Read paths degrade through the sentinel
// helpers below instead of surfacing these to display code.
var (
	ErrDerivation          = errors.New("address derivation failed")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrEndpointsExhausted  = errors.New("all endpoints failed")
	ErrUnsupported         = errors.New("operation not supported")
	ErrViewOnly            = errors.New("wallet is view-only")
	ErrNotInitialized      = errors.New("service not initialized")
)

// ChainService is the uniform surface every chain exposes. Implementations
// are safe for concurrent use.
type ChainService interface {
	// Chain returns the routing identifier.
	Chain() chain.Identifier

	// Symbol returns the display symbol (BTC, ETH, ...).
	Symbol() string

	// Address derives (or returns the cached) receive address for an
	// account index.
	Address(ctx context.Context, index uint32) (string, error)

	// ValidateAddress reports whether an address is well formed for this
	// chain and network. Validation never does I/O.
	ValidateAddress(address string) bool

	// Balance returns the confirmed balance of the index-0 address as a
	// decimal string in whole coins.
	Balance(ctx context.Context) (string, error)

	// Send builds, signs, and broadcasts a transfer. amount is a decimal
	// string in whole coins. Returns the transaction id.
	Send(ctx context.Context, to, amount string) (string, error)
}

// Initializer is implemented by services with expensive setup (Solana,
// Monero). Init is idempotent and safe to call concurrently.
type Initializer interface {
	Init(ctx context.Context) error
}

// Display sentinels for read paths. UI code shows these instead of errors.
const (
	AddressSentinel = "Address Error"
	ZeroBalance     = "0.0"
)

// AddressOrSentinel converts an Address result for display.
func AddressOrSentinel(address string, err error) string {
	if err != nil || address == "" {
		return AddressSentinel
	}
	return address
}

// BalanceOrZero converts a Balance result for display.
func BalanceOrZero(balance string, err error) string {
	if err != nil || balance == "" {
		return ZeroBalance
	}
	return balance
}
