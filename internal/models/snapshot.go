package models

// Snapshot is the serializable projection of the ledger persisted across sessions.
// The connection flag is deliberately absent: a restored session stays disconnected
// until the wallet connects again.
type Snapshot struct {
	Wallet           *Wallet         `json:"wallet"`
	Subscriptions    []Subscription  `json:"subscriptions"`
	Transactions     []Transaction   `json:"transactions"`
	UserProfile      *UserProfile    `json:"userProfile"`
	PaymentMethods   []PaymentMethod `json:"paymentMethods"`
	SelectedCurrency Currency        `json:"selectedCurrency"`
}
