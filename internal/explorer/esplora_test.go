package explorer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAddressInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/address/bc1test" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"address": "bc1test",
			"chain_stats": {
				"funded_txo_sum": 150000,
				"spent_txo_sum": 50000,
				"tx_count": 3
			}
		}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	info, err := c.AddressInfo(context.Background(), "bc1test")
	if err != nil {
		t.Fatalf("AddressInfo: %v", err)
	}

	if info.Balance != 100000 {
		t.Errorf("balance = %d, want 100000", info.Balance)
	}
	if info.TxCount != 3 {
		t.Errorf("tx count = %d, want 3", info.TxCount)
	}
}

func TestAddressInfoNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	_, err := c.AddressInfo(context.Background(), "bc1missing")
	if !errors.Is(err, ErrAddressNotFound) {
		t.Errorf("error = %v, want ErrAddressNotFound", err)
	}
}

func TestAddressInfoRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	_, err := c.AddressInfo(context.Background(), "bc1test")
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("error = %v, want ErrRateLimited", err)
	}
}

func TestUTXOs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"txid": "aa11", "vout": 0, "value": 60000, "status": {"confirmed": true, "block_height": 800000}},
			{"txid": "bb22", "vout": 1, "value": 40000, "status": {"confirmed": false}}
		]`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	utxos, err := c.UTXOs(context.Background(), "bc1test")
	if err != nil {
		t.Fatalf("UTXOs: %v", err)
	}

	if len(utxos) != 2 {
		t.Fatalf("got %d utxos, want 2", len(utxos))
	}
	if utxos[0].TxID != "aa11" || utxos[0].Amount != 60000 || !utxos[0].Confirmed {
		t.Errorf("utxo 0 = %+v", utxos[0])
	}
	if utxos[1].Confirmed {
		t.Error("utxo 1 should be unconfirmed")
	}
}

func TestTipHeight(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/blocks/tip/height" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte("812345"))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	height, err := c.TipHeight(context.Background())
	if err != nil {
		t.Fatalf("TipHeight: %v", err)
	}
	if height != 812345 {
		t.Errorf("height = %d, want 812345", height)
	}
}

func TestBroadcast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/tx" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte("deadbeef\n"))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	txid, err := c.Broadcast(context.Background(), "0100abcd")
	if err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	if txid != "deadbeef" {
		t.Errorf("txid = %q, want deadbeef", txid)
	}
}

func TestBroadcastFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("sendrawtransaction RPC error"))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	_, err := c.Broadcast(context.Background(), "0100abcd")
	if !errors.Is(err, ErrBroadcastFailed) {
		t.Errorf("error = %v, want ErrBroadcastFailed", err)
	}
}
