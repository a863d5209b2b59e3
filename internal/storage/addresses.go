package storage

import (
	"database/sql"
	"strings"
	"time"
)

// AddressRecord is one derived address row.
type AddressRecord struct {
	WalletID  string    `json:"wallet_id"`
	Chain     string    `json:"chain"`
	Index     uint32    `json:"address_index"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveAddress inserts or replaces a derived address. Derivation is
// deterministic, so a replace can only ever write the same address back.
func (s *Storage) SaveAddress(rec *AddressRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO addresses (wallet_id, chain, address_index, address, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(wallet_id, chain, address_index) DO UPDATE SET
			address = excluded.address
	`

	_, err := s.db.Exec(query,
		rec.WalletID,
		rec.Chain,
		rec.Index,
		rec.Address,
		createdAt.Unix(),
	)
	return err
}

// GetAddress retrieves one address, or nil when not cached.
func (s *Storage) GetAddress(walletID, chain string, index uint32) (*AddressRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT wallet_id, chain, address_index, address, created_at
		FROM addresses
		WHERE wallet_id = ? AND chain = ? AND address_index = ?
	`

	row := s.db.QueryRow(query, walletID, chain, index)
	return scanAddressRecord(row)
}

// ListAddresses returns all cached addresses for a wallet, ordered by chain
// and index.
func (s *Storage) ListAddresses(walletID string) ([]*AddressRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT wallet_id, chain, address_index, address, created_at
		FROM addresses
		WHERE wallet_id = ?
		ORDER BY chain, address_index
	`

	rows, err := s.db.Query(query, walletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*AddressRecord
	for rows.Next() {
		var rec AddressRecord
		var createdAt int64
		if err := rows.Scan(&rec.WalletID, &rec.Chain, &rec.Index, &rec.Address, &createdAt); err != nil {
			return nil, err
		}
		rec.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, &rec)
	}

	return records, rows.Err()
}

// DeleteAddresses removes cached addresses for a wallet. With no chains
// given every chain is cleared; otherwise only the named chains.
func (s *Storage) DeleteAddresses(walletID string, chains ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(chains) == 0 {
		_, err := s.db.Exec("DELETE FROM addresses WHERE wallet_id = ?", walletID)
		return err
	}

	placeholders := strings.Repeat("?,", len(chains))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]interface{}, 0, len(chains)+1)
	args = append(args, walletID)
	for _, c := range chains {
		args = append(args, c)
	}

	_, err := s.db.Exec(
		"DELETE FROM addresses WHERE wallet_id = ? AND chain IN ("+placeholders+")",
		args...,
	)
	return err
}

// AddressCount returns the number of cached addresses across all wallets.
func (s *Storage) AddressCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM addresses").Scan(&count)
	return count, err
}

func scanAddressRecord(row *sql.Row) (*AddressRecord, error) {
	var rec AddressRecord
	var createdAt int64

	err := row.Scan(&rec.WalletID, &rec.Chain, &rec.Index, &rec.Address, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rec.CreatedAt = time.Unix(createdAt, 0)
	return &rec, nil
}
