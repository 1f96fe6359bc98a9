package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/mannapay/mannapay/internal/models"
)

// Action is one of the closed set of ledger transitions defined in this package.
type Action interface {
	// Name identifies the action in logs.
	Name() string
	action()
}

// Connect replaces the wallet and marks the session connected.
type Connect struct{ Wallet models.Wallet }

// Disconnect clears the wallet, subscriptions and transactions of the session.
type Disconnect struct{}

// AddSubscription appends a subscription and debits its price from the wallet.
type AddSubscription struct{ Subscription models.Subscription }

// CancelSubscription marks a subscription cancelled and credits the refund.
type CancelSubscription struct{ ID string }

// PauseSubscription marks a subscription paused.
type PauseSubscription struct{ ID string }

// ResumeSubscription marks a subscription active.
type ResumeSubscription struct{ ID string }

// AddTransaction prepends an entry to the transaction log.
type AddTransaction struct{ Transaction models.Transaction }

// UpdateBalance overwrites the wallet balance for one currency.
type UpdateBalance struct {
	Currency models.Currency
	Amount   decimal.Decimal
}

// UpdateUserProfile merges fields into the profile, creating it when absent.
type UpdateUserProfile struct{ Patch models.UserProfilePatch }

// SetCurrency changes the currency selected for display and payment.
type SetCurrency struct{ Currency models.Currency }

// AddPaymentMethod appends a payment method.
type AddPaymentMethod struct{ Method models.PaymentMethod }

// Hydrate merges a persisted snapshot into the state. The connection flag is left alone.
type Hydrate struct{ Snapshot models.Snapshot }

func (Connect) Name() string            { return "CONNECT_WALLET" }
func (Disconnect) Name() string         { return "DISCONNECT_WALLET" }
func (AddSubscription) Name() string    { return "ADD_SUBSCRIPTION" }
func (CancelSubscription) Name() string { return "CANCEL_SUBSCRIPTION" }
func (PauseSubscription) Name() string  { return "PAUSE_SUBSCRIPTION" }
func (ResumeSubscription) Name() string { return "RESUME_SUBSCRIPTION" }
func (AddTransaction) Name() string     { return "ADD_TRANSACTION" }
func (UpdateBalance) Name() string      { return "UPDATE_BALANCE" }
func (UpdateUserProfile) Name() string  { return "UPDATE_USER_PROFILE" }
func (SetCurrency) Name() string        { return "SET_CURRENCY" }
func (AddPaymentMethod) Name() string   { return "ADD_PAYMENT_METHOD" }
func (Hydrate) Name() string            { return "LOAD_SAVED_DATA" }

func (Connect) action()            {}
func (Disconnect) action()         {}
func (AddSubscription) action()    {}
func (CancelSubscription) action() {}
func (PauseSubscription) action()  {}
func (ResumeSubscription) action() {}
func (AddTransaction) action()     {}
func (UpdateBalance) action()      {}
func (UpdateUserProfile) action()  {}
func (SetCurrency) action()        {}
func (AddPaymentMethod) action()   {}
func (Hydrate) action()            {}
