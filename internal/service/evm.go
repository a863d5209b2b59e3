package service

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/klingon-exchange/multiwallet/internal/cache"
	"github.com/klingon-exchange/multiwallet/internal/chain"
	"github.com/klingon-exchange/multiwallet/internal/wallet"
	"github.com/klingon-exchange/multiwallet/pkg/helpers"
	"github.com/klingon-exchange/multiwallet/pkg/logging"
)

const evmTransferGasLimit = 21000

// EVMService serves Ethereum and EVM-compatible chains (HyperEVM). One
// instance per chain; they differ only in chain ID and endpoints.
type EVMService struct {
	params   *chain.Params
	secret   wallet.Secret
	network  chain.Network
	walletID string
	cache    *cache.AddressCache
	log      *logging.Logger
	eps      endpoints

	// derive is injectable for tests that count derivations.
	derive func(index uint32) (string, error)
}

// NewEVMService creates a service for one EVM chain.
func NewEVMService(params *chain.Params, secret wallet.Secret, network chain.Network, walletID string, addrCache *cache.AddressCache, log *logging.Logger) (*EVMService, error) {
	if err := secret.Validate(); err != nil {
		return nil, err
	}

	s := &EVMService{
		params:   params,
		secret:   secret,
		network:  network,
		walletID: walletID,
		cache:    addrCache,
		log:      log.Component(params.Symbol),
		eps:      endpoints{urls: params.RPCEndpoints, log: log.Component(params.Symbol)},
	}
	s.derive = s.deriveAddress
	return s, nil
}

func (s *EVMService) Chain() chain.Identifier { return s.params.Chain }
func (s *EVMService) Symbol() string          { return s.params.Symbol }

// privateKey returns the signing key. A raw key secret is used directly;
// otherwise the key is derived from the mnemonic at the account index.
func (s *EVMService) privateKey(index uint32) (*ecdsa.PrivateKey, error) {
	if s.secret.HasPrivateKey() {
		return crypto.ToECDSA(s.secret.PrivateKey)
	}

	w, err := wallet.NewFromMnemonic(s.secret.Mnemonic, s.network)
	if err != nil {
		return nil, err
	}

	priv, err := w.DerivePrivateKey(s.params, 0, 0, index)
	if err != nil {
		return nil, err
	}

	return priv.ToECDSA(), nil
}

func (s *EVMService) deriveAddress(index uint32) (string, error) {
	priv, err := s.privateKey(index)
	if err != nil {
		return "", err
	}
	return crypto.PubkeyToAddress(priv.PublicKey).Hex(), nil
}

// Address returns the EVM address for an account index. A raw private key
// secret has a single account, so the index only matters for mnemonics.
func (s *EVMService) Address(ctx context.Context, index uint32) (string, error) {
	if addr, ok := s.cache.Get(s.walletID, string(s.params.Chain), index); ok {
		return addr, nil
	}

	addr, err := s.derive(index)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDerivation, err)
	}

	s.cache.Put(s.walletID, string(s.params.Chain), index, addr)
	return addr, nil
}

// ValidateAddress checks EVM address shape and EIP-55 checksum.
func (s *EVMService) ValidateAddress(address string) bool {
	return wallet.ValidateEVMAddress(address)
}

// Balance returns the index-0 balance in whole coins.
func (s *EVMService) Balance(ctx context.Context) (string, error) {
	addr, err := s.Address(ctx, 0)
	if err != nil {
		return "", err
	}

	var wei *big.Int
	err = s.eps.do(ctx, "balance", func(ctx context.Context, url string) error {
		client, err := ethclient.DialContext(ctx, url)
		if err != nil {
			return err
		}
		defer client.Close()

		wei, err = client.BalanceAt(ctx, common.HexToAddress(addr), nil)
		return err
	})
	if err != nil {
		return "", err
	}

	return helpers.FormatBigAmount(wei, s.params.Decimals), nil
}

// Send signs and broadcasts a plain value transfer.
func (s *EVMService) Send(ctx context.Context, to, amount string) (string, error) {
	if !s.ValidateAddress(to) {
		return "", fmt.Errorf("%w: %s", ErrInvalidAddress, to)
	}

	amountWei, err := helpers.ParseBigAmount(amount, s.params.Decimals)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if amountWei.Sign() <= 0 {
		return "", fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}

	priv, err := s.privateKey(0)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDerivation, err)
	}
	from := crypto.PubkeyToAddress(priv.PublicKey)

	var txHash string
	err = s.eps.do(ctx, "send", func(ctx context.Context, url string) error {
		client, err := ethclient.DialContext(ctx, url)
		if err != nil {
			return err
		}
		defer client.Close()

		balance, err := client.BalanceAt(ctx, from, nil)
		if err != nil {
			return err
		}

		gasPrice, err := client.SuggestGasPrice(ctx)
		if err != nil {
			return err
		}

		// Fail fast before broadcasting a transaction the chain will reject
		cost := new(big.Int).Mul(gasPrice, big.NewInt(evmTransferGasLimit))
		cost.Add(cost, amountWei)
		if balance.Cmp(cost) < 0 {
			return terminal(fmt.Errorf("%w: have %s wei, need %s wei",
				ErrInsufficientBalance, balance, cost))
		}

		nonce, err := client.PendingNonceAt(ctx, from)
		if err != nil {
			return err
		}

		tx := types.NewTransaction(nonce, common.HexToAddress(to), amountWei,
			evmTransferGasLimit, gasPrice, nil)

		chainID := new(big.Int).SetUint64(s.params.ChainID)
		signed, err := types.SignTx(tx, types.NewEIP155Signer(chainID), priv)
		if err != nil {
			return terminal(fmt.Errorf("failed to sign transaction: %w", err))
		}

		if err := client.SendTransaction(ctx, signed); err != nil {
			return err
		}

		txHash = signed.Hash().Hex()
		return nil
	})
	if err != nil {
		return "", err
	}

	s.log.Info("transaction sent", "to", to, "amount", amount, "tx", txHash)
	return txHash, nil
}
