package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/mannapay/mannapay/internal/models"
)

// RefundRate is the share of the price credited back on cancellation.
var RefundRate = decimal.RequireFromString("0.8")

// Refund returns the amount credited when a subscription of the given price is cancelled.
func Refund(price decimal.Decimal) decimal.Decimal {
	return price.Mul(RefundRate)
}

// Reduce applies action to state and returns the new state. It never fails:
// an action that does not apply (unknown id, no wallet) returns state unchanged.
func Reduce(state State, action Action) State {
	next, _ := reduce(state, action)
	return next
}

// reduce reports whether the action changed anything besides returning the next state.
func reduce(state State, action Action) (State, bool) {
	switch a := action.(type) {
	case Connect:
		state.Wallet = a.Wallet.Clone()
		if state.Wallet.Balances == nil {
			state.Wallet.Balances = models.Balances{}
		}
		state.IsConnected = true
		return state, true

	case Disconnect:
		state.Wallet = nil
		state.Subscriptions = []models.Subscription{}
		state.Transactions = []models.Transaction{}
		state.IsConnected = false
		return state, true

	case AddSubscription:
		subs := make([]models.Subscription, len(state.Subscriptions), len(state.Subscriptions)+1)
		copy(subs, state.Subscriptions)
		state.Subscriptions = append(subs, a.Subscription.Clone())
		if state.Wallet == nil {
			return state, true
		}
		sub := a.Subscription
		state.Wallet = adjustBalance(state.Wallet, sub.Currency, sub.Price.Neg())
		return state, true

	case CancelSubscription:
		i := state.subscriptionIndex(a.ID)
		if i < 0 || state.Wallet == nil {
			return state, false
		}
		sub := state.Subscriptions[i]
		state = withStatus(state, i, models.SubscriptionCancelled)
		state.Wallet = adjustBalance(state.Wallet, sub.Currency, Refund(sub.Price))
		return state, true

	case PauseSubscription:
		i := state.subscriptionIndex(a.ID)
		if i < 0 {
			return state, false
		}
		return withStatus(state, i, models.SubscriptionPaused), true

	case ResumeSubscription:
		i := state.subscriptionIndex(a.ID)
		if i < 0 {
			return state, false
		}
		return withStatus(state, i, models.SubscriptionActive), true

	case AddTransaction:
		txs := make([]models.Transaction, 0, len(state.Transactions)+1)
		txs = append(txs, a.Transaction)
		state.Transactions = append(txs, state.Transactions...)
		return state, true

	case UpdateBalance:
		if state.Wallet == nil {
			return state, false
		}
		w := state.Wallet.Clone()
		if w.Balances == nil {
			w.Balances = models.Balances{}
		}
		w.Balances[a.Currency] = a.Amount
		state.Wallet = w
		return state, true

	case UpdateUserProfile:
		var current models.UserProfile
		if state.UserProfile != nil {
			current = *state.UserProfile
		}
		updated := a.Patch.Apply(current)
		state.UserProfile = &updated
		return state, true

	case SetCurrency:
		state.SelectedCurrency = a.Currency
		return state, true

	case AddPaymentMethod:
		methods := make([]models.PaymentMethod, len(state.PaymentMethods), len(state.PaymentMethods)+1)
		copy(methods, state.PaymentMethods)
		state.PaymentMethods = append(methods, a.Method)
		return state, true

	case Hydrate:
		return hydrate(state, a.Snapshot), true
	}
	return state, false
}

func adjustBalance(w *models.Wallet, c models.Currency, delta decimal.Decimal) *models.Wallet {
	out := w.Clone()
	if out.Balances == nil {
		out.Balances = models.Balances{}
	}
	out.Balances[c] = out.Balances.Get(c).Add(delta)
	return out
}

func withStatus(state State, i int, status models.SubscriptionStatus) State {
	subs := make([]models.Subscription, len(state.Subscriptions))
	copy(subs, state.Subscriptions)
	subs[i] = subs[i].Clone()
	subs[i].Status = status
	state.Subscriptions = subs
	return state
}

// hydrate overlays the fields present in snap. Absent (nil) collections and
// an empty currency keep the current values.
func hydrate(state State, snap models.Snapshot) State {
	if snap.Wallet != nil {
		state.Wallet = snap.Wallet.Clone()
	}
	if snap.Subscriptions != nil {
		subs := make([]models.Subscription, len(snap.Subscriptions))
		for i, s := range snap.Subscriptions {
			subs[i] = s.Clone()
		}
		state.Subscriptions = subs
	}
	if snap.Transactions != nil {
		state.Transactions = append([]models.Transaction(nil), snap.Transactions...)
	}
	if snap.UserProfile != nil {
		p := *snap.UserProfile
		state.UserProfile = &p
	}
	if snap.PaymentMethods != nil {
		state.PaymentMethods = append([]models.PaymentMethod(nil), snap.PaymentMethods...)
	}
	if snap.SelectedCurrency != "" {
		state.SelectedCurrency = snap.SelectedCurrency
	}
	return state
}
