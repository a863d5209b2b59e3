package chain

func init() {
	// Monero Mainnet
	Register(Monero, Mainnet, &Params{
		Chain:    Monero,
		Symbol:   "XMR",
		Name:     "Monero",
		Family:   FamilyMonero,
		Decimals: 12,

		// Monero uses its own key derivation, not standard BIP44,
		// but 128 is the registered coin type for path display
		CoinType: 128,
		Purpose:  44,

		RPCEndpoints: []string{
			"https://node.moneroworld.com:18089",
			"https://xmr-node.cakewallet.com:18081",
			"https://node.sethforprivacy.com",
		},
	})

	// Monero Stagenet
	Register(Monero, Testnet, &Params{
		Chain:    Monero,
		Symbol:   "XMR",
		Name:     "Monero Stagenet",
		Family:   FamilyMonero,
		Decimals: 12,

		CoinType: 128,
		Purpose:  44,

		RPCEndpoints: []string{
			"https://node.monerodevs.org:38089",
			"https://stagenet.xmr.ditatompel.com",
		},
	})
}
