package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/klingon-exchange/multiwallet/internal/chain"
	"github.com/klingon-exchange/multiwallet/internal/wallet"
)

func newTestZCash(t *testing.T, explorerURL string) *ZCashService {
	t.Helper()
	deps := testDeps()
	params := mustParams(t, chain.ZCash, chain.Mainnet)
	if explorerURL != "" {
		params.ExplorerEndpoints = []string{explorerURL}
	}

	svc, err := NewZCashService(params, testSecret(), chain.Mainnet, deps.WalletID, deps.Cache, deps.Log)
	if err != nil {
		t.Fatalf("NewZCashService: %v", err)
	}
	svc.eps.backoff = time.Millisecond
	return svc
}

func zecTestRecipient(t *testing.T) string {
	t.Helper()
	params := mustParams(t, chain.ZCash, chain.Mainnet)

	hash := make([]byte, 20)
	hash[0] = 0x42
	addr, err := wallet.EncodeTransparentAddress(params.P2PKHVersion, hash)
	if err != nil {
		t.Fatalf("encode recipient: %v", err)
	}
	return addr
}

func TestZCashAddress(t *testing.T) {
	svc := newTestZCash(t, "")

	addr, err := svc.Address(context.Background(), 0)
	if err != nil {
		t.Fatalf("Address: %v", err)
	}
	if !strings.HasPrefix(addr, "t1") {
		t.Errorf("mainnet address %s does not start with t1", addr)
	}
	if !svc.ValidateAddress(addr) {
		t.Errorf("derived address fails validation: %s", addr)
	}
}

func TestZCashValidateShielded(t *testing.T) {
	svc := newTestZCash(t, "")

	sapling := "zs1" + strings.Repeat("q", 75)
	if !svc.ValidateAddress(sapling) {
		t.Error("78-char zs1 address should validate")
	}
	if svc.ValidateAddress("zs1short") {
		t.Error("short zs1 address should not validate")
	}
	unified := "u1" + strings.Repeat("q", 60)
	if !svc.ValidateAddress(unified) {
		t.Error("unified address should validate")
	}
	if svc.ValidateAddress("garbage") {
		t.Error("garbage should not validate")
	}
}

func TestZCashBalance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chain_stats": {"funded_txo_sum": 350000000, "spent_txo_sum": 100000000}}`))
	}))
	defer server.Close()

	svc := newTestZCash(t, server.URL)

	balance, err := svc.Balance(context.Background())
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if balance != "2.5" {
		t.Errorf("balance = %q, want 2.5", balance)
	}
}

func TestZCashSendRejectsBadInputs(t *testing.T) {
	svc := newTestZCash(t, "")
	ctx := context.Background()

	if _, err := svc.Send(ctx, "not-a-taddr", "1"); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("error = %v, want ErrInvalidAddress", err)
	}

	// Shielded addresses pass validation but cannot receive a transparent
	// send from this builder
	sapling := "zs1" + strings.Repeat("q", 75)
	if _, err := svc.Send(ctx, sapling, "1"); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("error = %v, want ErrInvalidAddress for shielded recipient", err)
	}

	to := zecTestRecipient(t)
	if _, err := svc.Send(ctx, to, "abc"); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("error = %v, want ErrInvalidAmount", err)
	}
	if _, err := svc.Send(ctx, to, "0"); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("error = %v, want ErrInvalidAmount for zero", err)
	}
}

func TestZCashSendInsufficientBalance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/utxo") {
			w.Write([]byte(`[{"txid": "` + strings.Repeat("ab", 32) + `", "vout": 0, "value": 5000, "status": {"confirmed": true, "block_height": 2000000}}]`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc := newTestZCash(t, server.URL)

	// 5000 zatoshis available, 0.001 ZEC (100000) + fee needed
	_, err := svc.Send(context.Background(), zecTestRecipient(t), "0.001")
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("error = %v, want ErrInsufficientBalance", err)
	}
}

func TestZCashSendBuildsSignsAndBroadcasts(t *testing.T) {
	var broadcastBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/utxo"):
			w.Write([]byte(`[
				{"txid": "` + strings.Repeat("ab", 32) + `", "vout": 0, "value": 80000, "status": {"confirmed": true, "block_height": 2000000}},
				{"txid": "` + strings.Repeat("cd", 32) + `", "vout": 1, "value": 60000, "status": {"confirmed": true, "block_height": 2000001}},
				{"txid": "` + strings.Repeat("ef", 32) + `", "vout": 0, "value": 70000, "status": {"confirmed": false}}
			]`))
		case r.Method == "POST" && r.URL.Path == "/tx":
			body, _ := io.ReadAll(r.Body)
			broadcastBody = string(body)
			w.Write([]byte("feedc0de"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	svc := newTestZCash(t, server.URL)

	// 0.001 ZEC = 100000 zatoshis; largest-first selection takes the 80000
	// and 60000 outputs, skipping the unconfirmed one
	txid, err := svc.Send(context.Background(), zecTestRecipient(t), "0.001")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if txid != "feedc0de" {
		t.Errorf("txid = %q, want feedc0de", txid)
	}
	if broadcastBody == "" {
		t.Fatal("no transaction was broadcast")
	}

	// 140000 in, 100000 out, 1000 fee, 39000 change: raw tx carries both
	// output values little-endian
	if !strings.Contains(broadcastBody, "a086010000000000") {
		t.Error("recipient output value missing from raw tx")
	}
	if !strings.Contains(broadcastBody, "5898000000000000") {
		t.Error("change output value missing from raw tx")
	}
}

func TestZCashSendChangeBelowDustFolded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/utxo"):
			// 101200 in: 100000 out + 1000 fee leaves 200 change, under dust
			w.Write([]byte(`[{"txid": "` + strings.Repeat("ab", 32) + `", "vout": 0, "value": 101200, "status": {"confirmed": true, "block_height": 2000000}}]`))
		case r.Method == "POST" && r.URL.Path == "/tx":
			w.Write([]byte("feedc0de"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	svc := newTestZCash(t, server.URL)

	txid, err := svc.Send(context.Background(), zecTestRecipient(t), "0.001")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if txid != "feedc0de" {
		t.Errorf("txid = %q, want feedc0de", txid)
	}
}
