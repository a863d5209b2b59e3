// Package chain defines chain identifiers, network parameters, and derivation
// paths for the supported cryptocurrencies. All chain-specific values are
// hardcoded here - no external configuration needed.
package chain

// Network represents mainnet or testnet.
type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
)

// Identifier is the stable routing key for a supported chain.
// Values are persisted in the address cache and must never be renamed.
type Identifier string

const (
	HyperEVM Identifier = "HYPEREVM"
	Ethereum Identifier = "ETH"
	Bitcoin  Identifier = "BTC"
	Solana   Identifier = "SOL"
	Monero   Identifier = "XMR"
	ZCash    Identifier = "ZEC"
)

// All lists every supported chain identifier.
func All() []Identifier {
	return []Identifier{HyperEVM, Ethereum, Bitcoin, Solana, Monero, ZCash}
}

// Valid reports whether id is one of the supported identifiers.
func (id Identifier) Valid() bool {
	switch id {
	case HyperEVM, Ethereum, Bitcoin, Solana, Monero, ZCash:
		return true
	}
	return false
}

// Family represents the cryptographic family of a chain.
type Family string

const (
	FamilyEVM     Family = "evm"     // secp256k1 + keccak addresses
	FamilyBitcoin Family = "bitcoin" // secp256k1 + bech32/base58check
	FamilySolana  Family = "solana"  // ed25519 + base58
	FamilyMonero  Family = "monero"  // ed25519 dual-key + monero base58
	FamilyZCash   Family = "zcash"   // secp256k1 + two-byte-version base58check
)

// IsEVM reports whether the chain belongs to the EVM family.
func (id Identifier) IsEVM() bool {
	return id == HyperEVM || id == Ethereum
}

// Params contains all parameters for one chain on one network.
type Params struct {
	Chain    Identifier
	Symbol   string // BTC, ETH, SOL, etc.
	Name     string // Bitcoin, Ethereum, etc.
	Family   Family
	Decimals uint8 // 8 for BTC, 18 for ETH, 12 for XMR, etc.

	// BIP44/84 derivation
	CoinType uint32 // 60=ETH, 0=BTC, 501=SOL, 128=XMR, 133=ZEC
	Purpose  uint32 // 44 or 84

	// Bitcoin-family address encoding
	PubKeyHashAddrID byte
	ScriptHashAddrID byte
	Bech32HRP        string

	// ZCash transparent address versions (two bytes, big-endian)
	P2PKHVersion [2]byte
	P2SHVersion  [2]byte

	// EVM params
	ChainID uint64

	// Ordered endpoint lists, primary first. Rebuilt per service construction;
	// never persisted.
	RPCEndpoints      []string
	ExplorerEndpoints []string
}

// DerivationPath returns the full hardened/non-hardened BIP44 path
// m/purpose'/coin'/account'/change/index for this chain.
func (p *Params) DerivationPath(account, change, index uint32) []uint32 {
	return []uint32{
		p.Purpose + 0x80000000,
		p.CoinType + 0x80000000,
		account + 0x80000000,
		change,
		index,
	}
}

// Registry holds chain parameters indexed by identifier and network.
var registry = make(map[Identifier]map[Network]*Params)

// Register adds chain params to the registry.
func Register(id Identifier, network Network, params *Params) {
	if registry[id] == nil {
		registry[id] = make(map[Network]*Params)
	}
	registry[id][network] = params
}

// Get returns chain params for an identifier and network.
func Get(id Identifier, network Network) (*Params, bool) {
	nets, ok := registry[id]
	if !ok {
		return nil, false
	}
	params, ok := nets[network]
	return params, ok
}

// List returns all registered chain identifiers.
func List() []Identifier {
	ids := make([]Identifier, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	return ids
}

// ListByFamily returns all chains of a specific family.
func ListByFamily(family Family) []Identifier {
	var ids []Identifier
	for id, nets := range registry {
		for _, params := range nets {
			if params.Family == family {
				ids = append(ids, id)
				break
			}
		}
	}
	return ids
}
