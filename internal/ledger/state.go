package ledger

import (
	"github.com/mannapay/mannapay/internal/models"
)

// State is the authoritative in-memory copy of the local session.
// Values handed out by the Store are shared and must be treated as read-only;
// transitions never modify a previous State in place.
type State struct {
	Wallet           *models.Wallet         `json:"wallet"`
	Subscriptions    []models.Subscription  `json:"subscriptions"`
	Transactions     []models.Transaction   `json:"transactions"`
	UserProfile      *models.UserProfile    `json:"userProfile"`
	PaymentMethods   []models.PaymentMethod `json:"paymentMethods"`
	IsConnected      bool                   `json:"isConnected"`
	SelectedCurrency models.Currency        `json:"selectedCurrency"`
}

// InitialState is the state before anything is loaded or connected.
func InitialState() State {
	return State{
		Subscriptions:    []models.Subscription{},
		Transactions:     []models.Transaction{},
		PaymentMethods:   []models.PaymentMethod{},
		SelectedCurrency: models.DefaultCurrency,
	}
}

// Snapshot projects the state onto its persisted form.
func (s State) Snapshot() models.Snapshot {
	snap := models.Snapshot{
		Wallet:           s.Wallet.Clone(),
		Subscriptions:    make([]models.Subscription, len(s.Subscriptions)),
		Transactions:     make([]models.Transaction, len(s.Transactions)),
		PaymentMethods:   make([]models.PaymentMethod, len(s.PaymentMethods)),
		SelectedCurrency: s.SelectedCurrency,
	}
	for i, sub := range s.Subscriptions {
		snap.Subscriptions[i] = sub.Clone()
	}
	copy(snap.Transactions, s.Transactions)
	copy(snap.PaymentMethods, s.PaymentMethods)
	if s.UserProfile != nil {
		p := *s.UserProfile
		snap.UserProfile = &p
	}
	return snap
}

// FindSubscription returns the subscription with the given id.
func (s State) FindSubscription(id string) (models.Subscription, bool) {
	if i := s.subscriptionIndex(id); i >= 0 {
		return s.Subscriptions[i], true
	}
	return models.Subscription{}, false
}

func (s State) subscriptionIndex(id string) int {
	for i := range s.Subscriptions {
		if s.Subscriptions[i].ID == id {
			return i
		}
	}
	return -1
}
