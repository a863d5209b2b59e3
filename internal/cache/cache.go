// Package cache provides the address cache: an in-memory map over the
// SQLite address table. Derived addresses are deterministic, so the cache
// never needs invalidation beyond explicit per-wallet clears.
package cache

import (
	"fmt"
	"sync"

	"github.com/klingon-exchange/multiwallet/internal/storage"
	"github.com/klingon-exchange/multiwallet/pkg/logging"
)

// Store is the persistence behind the cache. *storage.Storage satisfies it;
// tests inject fakes.
type Store interface {
	SaveAddress(rec *storage.AddressRecord) error
	GetAddress(walletID, chain string, index uint32) (*storage.AddressRecord, error)
	DeleteAddresses(walletID string, chains ...string) error
}

// AddressCache caches derived addresses in memory and mirrors them to the
// store. Store failures degrade the cache to memory-only: they are logged
// and never surfaced to callers, since the address itself is still valid.
type AddressCache struct {
	store Store
	log   *logging.Logger

	mu  sync.RWMutex
	mem map[string]string
}

// New creates an AddressCache. The store may be nil for a memory-only cache.
func New(store Store, log *logging.Logger) *AddressCache {
	if log == nil {
		log = logging.GetDefault()
	}
	return &AddressCache{
		store: store,
		log:   log.Component("addrcache"),
		mem:   make(map[string]string),
	}
}

func cacheKey(walletID, chain string, index uint32) string {
	return fmt.Sprintf("%s/%s/%d", walletID, chain, index)
}

// Get returns a cached address. Memory is checked first, then the store;
// a store hit is promoted into memory.
func (c *AddressCache) Get(walletID, chain string, index uint32) (string, bool) {
	key := cacheKey(walletID, chain, index)

	c.mu.RLock()
	addr, ok := c.mem[key]
	c.mu.RUnlock()
	if ok {
		return addr, true
	}

	if c.store == nil {
		return "", false
	}

	rec, err := c.store.GetAddress(walletID, chain, index)
	if err != nil {
		c.log.Warn("address store read failed", "wallet", walletID, "chain", chain, "err", err)
		return "", false
	}
	if rec == nil {
		return "", false
	}

	c.mu.Lock()
	c.mem[key] = rec.Address
	c.mu.Unlock()

	return rec.Address, true
}

// Put stores an address in memory and mirrors it to the store.
func (c *AddressCache) Put(walletID, chain string, index uint32, address string) {
	c.mu.Lock()
	c.mem[cacheKey(walletID, chain, index)] = address
	c.mu.Unlock()

	if c.store == nil {
		return
	}

	err := c.store.SaveAddress(&storage.AddressRecord{
		WalletID: walletID,
		Chain:    chain,
		Index:    index,
		Address:  address,
	})
	if err != nil {
		c.log.Warn("address store write failed", "wallet", walletID, "chain", chain, "err", err)
	}
}

// Clear drops cached addresses for a wallet. With no chains given every
// chain is cleared; otherwise only the named chains.
func (c *AddressCache) Clear(walletID string, chains ...string) {
	c.mu.Lock()
	prefix := walletID + "/"
	for key := range c.mem {
		if len(key) < len(prefix) || key[:len(prefix)] != prefix {
			continue
		}
		if len(chains) == 0 {
			delete(c.mem, key)
			continue
		}
		rest := key[len(prefix):]
		for _, chain := range chains {
			chainPrefix := chain + "/"
			if len(rest) >= len(chainPrefix) && rest[:len(chainPrefix)] == chainPrefix {
				delete(c.mem, key)
				break
			}
		}
	}
	c.mu.Unlock()

	if c.store == nil {
		return
	}

	if err := c.store.DeleteAddresses(walletID, chains...); err != nil {
		c.log.Warn("address store delete failed", "wallet", walletID, "err", err)
	}
}

// Len returns the number of in-memory entries.
func (c *AddressCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.mem)
}
