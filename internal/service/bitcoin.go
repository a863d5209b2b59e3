package service

import (
	"context"
	"fmt"

	"github.com/klingon-exchange/multiwallet/internal/cache"
	"github.com/klingon-exchange/multiwallet/internal/chain"
	"github.com/klingon-exchange/multiwallet/internal/explorer"
	"github.com/klingon-exchange/multiwallet/internal/wallet"
	"github.com/klingon-exchange/multiwallet/pkg/helpers"
	"github.com/klingon-exchange/multiwallet/pkg/logging"
)

// BitcoinService derives BIP84 native segwit addresses and reads balances
// through esplora-style explorers. Sending is not implemented for Bitcoin;
// Send always returns a typed error.
type BitcoinService struct {
	params   *chain.Params
	network  chain.Network
	secret   wallet.Secret
	walletID string
	cache    *cache.AddressCache
	log      *logging.Logger
	eps      endpoints
	clients  map[string]*explorer.Client

	derive func(index uint32) (string, error)
}

// NewBitcoinService creates the Bitcoin service.
func NewBitcoinService(params *chain.Params, secret wallet.Secret, network chain.Network, walletID string, addrCache *cache.AddressCache, log *logging.Logger) (*BitcoinService, error) {
	if err := secret.Validate(); err != nil {
		return nil, err
	}

	clients := make(map[string]*explorer.Client, len(params.ExplorerEndpoints))
	for _, url := range params.ExplorerEndpoints {
		clients[url] = explorer.NewClient(url)
	}

	s := &BitcoinService{
		params:   params,
		network:  network,
		secret:   secret,
		walletID: walletID,
		cache:    addrCache,
		log:      log.Component("BTC"),
		eps:      endpoints{urls: params.ExplorerEndpoints, log: log.Component("BTC")},
		clients:  clients,
	}
	s.derive = s.deriveAddress
	return s, nil
}

func (s *BitcoinService) Chain() chain.Identifier { return chain.Bitcoin }
func (s *BitcoinService) Symbol() string          { return s.params.Symbol }

func (s *BitcoinService) deriveAddress(index uint32) (string, error) {
	mnemonic, err := s.secret.EffectiveMnemonic()
	if err != nil {
		return "", err
	}

	w, err := wallet.NewFromMnemonic(mnemonic, s.network)
	if err != nil {
		return "", err
	}

	pubKey, err := w.DerivePublicKey(s.params, 0, 0, index)
	if err != nil {
		return "", err
	}

	return wallet.PublicKeyToBitcoinAddress(pubKey, s.network)
}

// Address returns the P2WPKH address for an account index.
func (s *BitcoinService) Address(ctx context.Context, index uint32) (string, error) {
	if addr, ok := s.cache.Get(s.walletID, string(chain.Bitcoin), index); ok {
		return addr, nil
	}

	addr, err := s.derive(index)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDerivation, err)
	}

	s.cache.Put(s.walletID, string(chain.Bitcoin), index, addr)
	return addr, nil
}

// ValidateAddress accepts legacy, P2SH, and bech32 addresses for this
// network only.
func (s *BitcoinService) ValidateAddress(address string) bool {
	return wallet.ValidateBitcoinAddress(address, s.network)
}

// Balance returns the confirmed index-0 balance in BTC.
func (s *BitcoinService) Balance(ctx context.Context) (string, error) {
	addr, err := s.Address(ctx, 0)
	if err != nil {
		return "", err
	}

	var sats uint64
	err = s.eps.do(ctx, "balance", func(ctx context.Context, url string) error {
		info, err := s.clients[url].AddressInfo(ctx, addr)
		if err != nil {
			return err
		}
		sats = info.Balance
		return nil
	})
	if err != nil {
		return "", err
	}

	return helpers.SatoshisToBTC(sats), nil
}

// Send is not implemented for Bitcoin.
func (s *BitcoinService) Send(ctx context.Context, to, amount string) (string, error) {
	return "", fmt.Errorf("%w: bitcoin send not implemented", ErrUnsupported)
}
