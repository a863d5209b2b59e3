package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func testStorage(t *testing.T) *Storage {
	t.Helper()

	store, err := New(&Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := New(&Config{DataDir: tmpDir})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	// Verify database file was created
	dbPath := filepath.Join(tmpDir, "multiwallet.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}

	if store.DB() == nil {
		t.Error("DB() returned nil")
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()
	expanded := expandPath("~/.test")
	expected := filepath.Join(home, ".test")

	if expanded != expected {
		t.Errorf("expandPath(~/.test) = %s, want %s", expanded, expected)
	}

	if expandPath("/abs/path") != "/abs/path" {
		t.Error("absolute path should pass through unchanged")
	}
}

func TestStorageSchema(t *testing.T) {
	store := testStorage(t)

	for _, table := range []string{"addresses", "settings"} {
		var name string
		err := store.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("%s table not found: %v", table, err)
		}
	}
}

func TestAddressCRUD(t *testing.T) {
	store := testStorage(t)

	rec := &AddressRecord{
		WalletID: "wallet-1",
		Chain:    "BTC",
		Index:    0,
		Address:  "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu",
	}

	if err := store.SaveAddress(rec); err != nil {
		t.Fatalf("SaveAddress: %v", err)
	}

	got, err := store.GetAddress("wallet-1", "BTC", 0)
	if err != nil {
		t.Fatalf("GetAddress: %v", err)
	}
	if got == nil {
		t.Fatal("GetAddress returned nil for saved record")
	}
	if got.Address != rec.Address {
		t.Errorf("address = %s, want %s", got.Address, rec.Address)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at was not set")
	}

	// Missing row returns nil without error
	missing, err := store.GetAddress("wallet-1", "BTC", 99)
	if err != nil {
		t.Fatalf("GetAddress missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for uncached index")
	}

	// Re-save is idempotent
	if err := store.SaveAddress(rec); err != nil {
		t.Fatalf("SaveAddress again: %v", err)
	}
	count, err := store.AddressCount()
	if err != nil {
		t.Fatalf("AddressCount: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestListAddresses(t *testing.T) {
	store := testStorage(t)

	records := []*AddressRecord{
		{WalletID: "wallet-1", Chain: "ETH", Index: 1, Address: "0xbbb"},
		{WalletID: "wallet-1", Chain: "BTC", Index: 0, Address: "bc1abc"},
		{WalletID: "wallet-1", Chain: "ETH", Index: 0, Address: "0xaaa"},
		{WalletID: "wallet-2", Chain: "BTC", Index: 0, Address: "bc1other"},
	}
	for _, rec := range records {
		if err := store.SaveAddress(rec); err != nil {
			t.Fatalf("SaveAddress: %v", err)
		}
	}

	got, err := store.ListAddresses("wallet-1")
	if err != nil {
		t.Fatalf("ListAddresses: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3", len(got))
	}

	// Ordered by chain then index
	wantOrder := []string{"bc1abc", "0xaaa", "0xbbb"}
	for i, want := range wantOrder {
		if got[i].Address != want {
			t.Errorf("record %d = %s, want %s", i, got[i].Address, want)
		}
	}
}

func TestDeleteAddresses(t *testing.T) {
	store := testStorage(t)

	seed := []*AddressRecord{
		{WalletID: "wallet-1", Chain: "BTC", Index: 0, Address: "a"},
		{WalletID: "wallet-1", Chain: "ETH", Index: 0, Address: "b"},
		{WalletID: "wallet-1", Chain: "SOL", Index: 0, Address: "c"},
		{WalletID: "wallet-2", Chain: "BTC", Index: 0, Address: "d"},
	}
	for _, rec := range seed {
		if err := store.SaveAddress(rec); err != nil {
			t.Fatalf("SaveAddress: %v", err)
		}
	}

	// Delete selected chains only
	if err := store.DeleteAddresses("wallet-1", "BTC", "ETH"); err != nil {
		t.Fatalf("DeleteAddresses: %v", err)
	}

	remaining, err := store.ListAddresses("wallet-1")
	if err != nil {
		t.Fatalf("ListAddresses: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Chain != "SOL" {
		t.Errorf("expected only SOL to remain, got %+v", remaining)
	}

	// Other wallets untouched
	other, err := store.ListAddresses("wallet-2")
	if err != nil {
		t.Fatalf("ListAddresses: %v", err)
	}
	if len(other) != 1 {
		t.Errorf("wallet-2 records = %d, want 1", len(other))
	}

	// Delete all chains
	if err := store.DeleteAddresses("wallet-1"); err != nil {
		t.Fatalf("DeleteAddresses all: %v", err)
	}
	remaining, _ = store.ListAddresses("wallet-1")
	if len(remaining) != 0 {
		t.Errorf("expected no records after full delete, got %d", len(remaining))
	}
}

func TestSettings(t *testing.T) {
	store := testStorage(t)

	val, err := store.GetSetting("network")
	if err != nil {
		t.Fatalf("GetSetting unset: %v", err)
	}
	if val != "" {
		t.Errorf("unset setting = %q, want empty", val)
	}

	if err := store.SetSetting("network", "mainnet"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := store.SetSetting("network", "testnet"); err != nil {
		t.Fatalf("SetSetting overwrite: %v", err)
	}

	val, err = store.GetSetting("network")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if val != "testnet" {
		t.Errorf("setting = %q, want testnet", val)
	}
}
