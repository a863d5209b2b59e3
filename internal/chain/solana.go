package chain

func init() {
	// Solana Mainnet
	Register(Solana, Mainnet, &Params{
		Chain:    Solana,
		Symbol:   "SOL",
		Name:     "Solana",
		Family:   FamilySolana,
		Decimals: 9,

		CoinType: 501,
		Purpose:  44,

		RPCEndpoints: []string{
			"https://api.mainnet-beta.solana.com",
			"https://solana-rpc.publicnode.com",
			"https://rpc.ankr.com/solana",
		},
	})

	// Solana Devnet
	Register(Solana, Testnet, &Params{
		Chain:    Solana,
		Symbol:   "SOL",
		Name:     "Solana Devnet",
		Family:   FamilySolana,
		Decimals: 9,

		CoinType: 501,
		Purpose:  44,

		RPCEndpoints: []string{
			"https://api.devnet.solana.com",
		},
	})
}
