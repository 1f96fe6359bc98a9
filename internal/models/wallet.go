package models

// Wallet represents the connected wallet of the single local user.
type Wallet struct {
	// Address is the wallet address reported by the payment gateway.
	Address string `json:"address"`
	// Balances holds the amount per currency.
	Balances Balances `json:"balances"`
}

// Clone returns a deep copy of the wallet, or nil for a nil wallet.
func (w *Wallet) Clone() *Wallet {
	if w == nil {
		return nil
	}
	return &Wallet{Address: w.Address, Balances: w.Balances.Clone()}
}
