package chain

func init() {
	// Ethereum Mainnet
	Register(Ethereum, Mainnet, &Params{
		Chain:    Ethereum,
		Symbol:   "ETH",
		Name:     "Ethereum",
		Family:   FamilyEVM,
		Decimals: 18,

		CoinType: 60,
		Purpose:  44,

		ChainID: 1,
		RPCEndpoints: []string{
			"https://eth.llamarpc.com",
			"https://ethereum-rpc.publicnode.com",
			"https://rpc.ankr.com/eth",
		},
	})

	// Ethereum Sepolia
	Register(Ethereum, Testnet, &Params{
		Chain:    Ethereum,
		Symbol:   "ETH",
		Name:     "Ethereum Sepolia",
		Family:   FamilyEVM,
		Decimals: 18,

		CoinType: 60,
		Purpose:  44,

		ChainID: 11155111,
		RPCEndpoints: []string{
			"https://ethereum-sepolia-rpc.publicnode.com",
			"https://rpc.sepolia.org",
		},
	})
}
