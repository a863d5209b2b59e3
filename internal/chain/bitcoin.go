package chain

func init() {
	// Bitcoin Mainnet
	Register(Bitcoin, Mainnet, &Params{
		Chain:    Bitcoin,
		Symbol:   "BTC",
		Name:     "Bitcoin",
		Family:   FamilyBitcoin,
		Decimals: 8,

		// BIP84 native SegWit (bc1q...)
		CoinType: 0,
		Purpose:  84,

		PubKeyHashAddrID: 0x00, // 1...
		ScriptHashAddrID: 0x05, // 3...
		Bech32HRP:        "bc",

		ExplorerEndpoints: []string{
			"https://mempool.space/api",
			"https://blockstream.info/api",
		},
	})

	// Bitcoin Testnet (testnet3)
	Register(Bitcoin, Testnet, &Params{
		Chain:    Bitcoin,
		Symbol:   "BTC",
		Name:     "Bitcoin Testnet",
		Family:   FamilyBitcoin,
		Decimals: 8,

		// Testnet uses coin type 1 for all coins
		CoinType: 1,
		Purpose:  84,

		PubKeyHashAddrID: 0x6F, // m or n
		ScriptHashAddrID: 0xC4, // 2...
		Bech32HRP:        "tb",

		ExplorerEndpoints: []string{
			"https://mempool.space/testnet/api",
			"https://blockstream.info/testnet/api",
		},
	})
}
