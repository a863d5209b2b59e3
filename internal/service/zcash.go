package service

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/klingon-exchange/multiwallet/internal/cache"
	"github.com/klingon-exchange/multiwallet/internal/chain"
	"github.com/klingon-exchange/multiwallet/internal/explorer"
	"github.com/klingon-exchange/multiwallet/internal/wallet"
	"github.com/klingon-exchange/multiwallet/pkg/helpers"
	"github.com/klingon-exchange/multiwallet/pkg/logging"
)

const (
	// Flat fee for transparent sends, in zatoshis.
	zcashFlatFee = 1000
	// Outputs below this are dust; change under the limit is folded into
	// the fee instead of creating an unspendable output.
	zcashDustLimit = 546
	// Transparent transaction version.
	zcashTxVersion = 4
)

// ZCashService derives transparent t-addresses and builds, signs, and
// broadcasts transparent P2PKH transactions through public explorers.
type ZCashService struct {
	params   *chain.Params
	network  chain.Network
	secret   wallet.Secret
	walletID string
	cache    *cache.AddressCache
	log      *logging.Logger
	eps      endpoints
	clients  map[string]*explorer.ZcashClient

	derive func(index uint32) (string, error)
}

// NewZCashService creates the ZCash service.
func NewZCashService(params *chain.Params, secret wallet.Secret, network chain.Network, walletID string, addrCache *cache.AddressCache, log *logging.Logger) (*ZCashService, error) {
	if err := secret.Validate(); err != nil {
		return nil, err
	}

	clients := make(map[string]*explorer.ZcashClient, len(params.ExplorerEndpoints))
	for _, url := range params.ExplorerEndpoints {
		clients[url] = explorer.NewZcashClient(url)
	}

	s := &ZCashService{
		params:   params,
		network:  network,
		secret:   secret,
		walletID: walletID,
		cache:    addrCache,
		log:      log.Component("ZEC"),
		eps:      endpoints{urls: params.ExplorerEndpoints, log: log.Component("ZEC")},
		clients:  clients,
	}
	s.derive = s.deriveAddress
	return s, nil
}

func (s *ZCashService) Chain() chain.Identifier { return chain.ZCash }
func (s *ZCashService) Symbol() string          { return s.params.Symbol }

func (s *ZCashService) hdWallet() (*wallet.HDWallet, error) {
	mnemonic, err := s.secret.EffectiveMnemonic()
	if err != nil {
		return nil, err
	}
	return wallet.NewFromMnemonic(mnemonic, s.network)
}

func (s *ZCashService) deriveAddress(index uint32) (string, error) {
	w, err := s.hdWallet()
	if err != nil {
		return "", err
	}

	pubKey, err := w.DerivePublicKey(s.params, 0, 0, index)
	if err != nil {
		return "", err
	}

	return wallet.PublicKeyToZCashAddress(pubKey, s.params)
}

// Address returns the t-address for an account index.
func (s *ZCashService) Address(ctx context.Context, index uint32) (string, error) {
	if addr, ok := s.cache.Get(s.walletID, string(chain.ZCash), index); ok {
		return addr, nil
	}

	addr, err := s.derive(index)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDerivation, err)
	}

	s.cache.Put(s.walletID, string(chain.ZCash), index, addr)
	return addr, nil
}

// ValidateAddress accepts transparent addresses (decoded and checksummed)
// and shielded addresses by prefix and length rules; shielded payloads are
// opaque to this layer.
func (s *ZCashService) ValidateAddress(address string) bool {
	if wallet.ValidateZCashAddress(address, s.params) {
		return true
	}
	return s.validShielded(address)
}

func (s *ZCashService) validShielded(address string) bool {
	if s.network == chain.Testnet {
		return strings.HasPrefix(address, "ztestsapling1") && len(address) == 88
	}
	if strings.HasPrefix(address, "zs1") && len(address) == 78 {
		return true
	}
	// Unified addresses vary in length with the receiver set
	return strings.HasPrefix(address, "u1") && len(address) >= 48
}

// Balance returns the confirmed index-0 balance in ZEC.
func (s *ZCashService) Balance(ctx context.Context) (string, error) {
	addr, err := s.Address(ctx, 0)
	if err != nil {
		return "", err
	}

	var zats uint64
	err = s.eps.do(ctx, "balance", func(ctx context.Context, url string) error {
		amount, err := s.clients[url].Balance(ctx, addr)
		if err != nil {
			return err
		}
		zats = amount
		return nil
	})
	if err != nil {
		return "", err
	}

	return helpers.FormatAmount(zats, s.params.Decimals), nil
}

// Send builds a transparent P2PKH transaction: greedy UTXO selection over a
// flat fee, change back to our own address when above the dust limit, every
// input signed SIGHASH_ALL.
func (s *ZCashService) Send(ctx context.Context, to, amount string) (string, error) {
	version, toHash, err := wallet.DecodeTransparentAddress(to)
	if err != nil || (version != s.params.P2PKHVersion && version != s.params.P2SHVersion) {
		return "", fmt.Errorf("%w: %s is not a transparent %s address", ErrInvalidAddress, to, s.network)
	}

	zats, err := helpers.ParseAmount(amount, s.params.Decimals)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if zats == 0 {
		return "", fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}

	w, err := s.hdWallet()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDerivation, err)
	}
	privKey, err := w.DerivePrivateKey(s.params, 0, 0, 0)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDerivation, err)
	}
	ownHash := btcutil.Hash160(privKey.PubKey().SerializeCompressed())

	ownScript, err := p2pkhScript(ownHash)
	if err != nil {
		return "", fmt.Errorf("failed to build own script: %w", err)
	}

	addr, err := s.Address(ctx, 0)
	if err != nil {
		return "", err
	}

	var txid string
	err = s.eps.do(ctx, "send", func(ctx context.Context, url string) error {
		client := s.clients[url]

		utxos, err := client.UTXOs(ctx, addr)
		if err != nil {
			return err
		}

		selected, total, err := selectUTXOs(utxos, zats+zcashFlatFee)
		if err != nil {
			return terminal(err)
		}

		rawTx, err := s.buildTransparentTx(selected, total, zats, toHash, ownScript)
		if err != nil {
			return terminal(err)
		}

		id, err := client.Broadcast(ctx, rawTx)
		if err != nil {
			return err
		}

		txid = id
		return nil
	})
	if err != nil {
		return "", err
	}

	s.log.Info("transaction sent", "to", to, "amount", amount, "tx", txid)
	return txid, nil
}

// selectUTXOs picks confirmed outputs largest-first until target is covered.
func selectUTXOs(utxos []explorer.UTXO, target uint64) ([]explorer.UTXO, uint64, error) {
	confirmed := make([]explorer.UTXO, 0, len(utxos))
	for _, u := range utxos {
		if u.Confirmed {
			confirmed = append(confirmed, u)
		}
	}
	sort.Slice(confirmed, func(i, j int) bool {
		return confirmed[i].Amount > confirmed[j].Amount
	})

	var selected []explorer.UTXO
	var total uint64
	for _, u := range confirmed {
		selected = append(selected, u)
		total += u.Amount
		if total >= target {
			return selected, total, nil
		}
	}

	return nil, 0, fmt.Errorf("%w: have %d zatoshis, need %d", ErrInsufficientBalance, total, target)
}

// buildTransparentTx assembles and signs the transaction, returning raw hex.
func (s *ZCashService) buildTransparentTx(utxos []explorer.UTXO, total, amount uint64, toHash, ownScript []byte) (string, error) {
	tx := wire.NewMsgTx(zcashTxVersion)

	prevScripts := make([][]byte, len(utxos))
	for i, u := range utxos {
		hash, err := chainhash.NewHashFromStr(u.TxID)
		if err != nil {
			return "", fmt.Errorf("invalid utxo txid %s: %w", u.TxID, err)
		}
		tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(hash, u.Vout), nil, nil))

		prevScript := ownScript
		if u.ScriptPubKey != "" {
			decoded, err := hex.DecodeString(u.ScriptPubKey)
			if err == nil {
				prevScript = decoded
			}
		}
		prevScripts[i] = prevScript
	}

	toScript, err := p2pkhScript(toHash)
	if err != nil {
		return "", fmt.Errorf("failed to build recipient script: %w", err)
	}
	tx.AddTxOut(wire.NewTxOut(int64(amount), toScript))

	change := total - amount - zcashFlatFee
	if change > zcashDustLimit {
		tx.AddTxOut(wire.NewTxOut(int64(change), ownScript))
	}

	w, err := s.hdWallet()
	if err != nil {
		return "", err
	}
	privKey, err := w.DerivePrivateKey(s.params, 0, 0, 0)
	if err != nil {
		return "", err
	}

	for i := range tx.TxIn {
		sigScript, err := txscript.SignatureScript(tx, i, prevScripts[i], txscript.SigHashAll, privKey, true)
		if err != nil {
			return "", fmt.Errorf("failed to sign input %d: %w", i, err)
		}
		tx.TxIn[i].SignatureScript = sigScript
	}

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}

	return hex.EncodeToString(buf.Bytes()), nil
}

func p2pkhScript(hash160 []byte) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(hash160).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_CHECKSIG).
		Script()
}
