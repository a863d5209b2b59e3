package chain

func init() {
	// HyperEVM Mainnet
	Register(HyperEVM, Mainnet, &Params{
		Chain:    HyperEVM,
		Symbol:   "HYPE",
		Name:     "HyperEVM",
		Family:   FamilyEVM,
		Decimals: 18,

		// EVM chains share the ETH coin type so one key covers the family
		CoinType: 60,
		Purpose:  44,

		ChainID: 999,
		RPCEndpoints: []string{
			"https://rpc.hyperliquid.xyz/evm",
			"https://hyperliquid.drpc.org",
		},
	})

	// HyperEVM Testnet
	Register(HyperEVM, Testnet, &Params{
		Chain:    HyperEVM,
		Symbol:   "HYPE",
		Name:     "HyperEVM Testnet",
		Family:   FamilyEVM,
		Decimals: 18,

		CoinType: 60,
		Purpose:  44,

		ChainID: 998,
		RPCEndpoints: []string{
			"https://rpc.hyperliquid-testnet.xyz/evm",
		},
	})
}
