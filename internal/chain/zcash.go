package chain

func init() {
	// ZCash Mainnet
	Register(ZCash, Mainnet, &Params{
		Chain:    ZCash,
		Symbol:   "ZEC",
		Name:     "ZCash",
		Family:   FamilyZCash,
		Decimals: 8,

		CoinType: 133,
		Purpose:  44,

		// Transparent address versions are two bytes, which is why the
		// generic base58check helpers cannot encode them
		P2PKHVersion: [2]byte{0x1C, 0xB8}, // t1...
		P2SHVersion:  [2]byte{0x1C, 0xBD}, // t3...

		ExplorerEndpoints: []string{
			"https://api.blockchair.com/zcash",
			"https://zcashblockexplorer.com/api",
			"https://mainnet.zcashexplorer.app/api",
		},
	})

	// ZCash Testnet
	Register(ZCash, Testnet, &Params{
		Chain:    ZCash,
		Symbol:   "ZEC",
		Name:     "ZCash Testnet",
		Family:   FamilyZCash,
		Decimals: 8,

		CoinType: 1,
		Purpose:  44,

		P2PKHVersion: [2]byte{0x1D, 0x25}, // tm...
		P2SHVersion:  [2]byte{0x1C, 0xBA}, // t2...

		ExplorerEndpoints: []string{
			"https://testnet.zcashexplorer.app/api",
		},
	})
}
