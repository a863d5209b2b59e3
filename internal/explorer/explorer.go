// Package explorer provides HTTP block-explorer clients for UTXO chains.
// This package is read-only for private keys - all signing happens in the
// service layer.
package explorer

import "errors"

// Common errors
var (
	ErrAddressNotFound = errors.New("address not found")
	ErrTxNotFound      = errors.New("transaction not found")
	ErrRateLimited     = errors.New("rate limited")
	ErrBroadcastFailed = errors.New("broadcast failed")
)

// UTXO represents an unspent transaction output.
type UTXO struct {
	TxID         string `json:"txid"`
	Vout         uint32 `json:"vout"`
	Amount       uint64 `json:"value"` // in smallest unit (satoshis/zatoshis)
	ScriptPubKey string `json:"scriptpubkey,omitempty"`
	Confirmed    bool   `json:"confirmed"`
	BlockHeight  int64  `json:"block_height,omitempty"`
}

// AddressInfo contains address balance info.
type AddressInfo struct {
	Address   string `json:"address"`
	TxCount   int64  `json:"tx_count"`
	FundedSum uint64 `json:"funded_txo_sum"`
	SpentSum  uint64 `json:"spent_txo_sum"`
	Balance   uint64 `json:"balance"` // confirmed, smallest unit
}
