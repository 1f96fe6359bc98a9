package mannapay

import (
	"fmt"

	"github.com/mannapay/mannapay/internal/ledger"
	"github.com/mannapay/mannapay/internal/models"
	"github.com/mannapay/mannapay/pkg/validation"
)

// UpdateProfile merges patch into the user profile, creating it on first use.
func (m *MannaPay) UpdateProfile(patch models.UserProfilePatch) (ledger.State, error) {
	state := m.store.State()
	if patch.Email != nil {
		if err := validation.ValidateEmail(*patch.Email); err != nil {
			return state, fmt.Errorf("%w: %v", models.ErrInvalidRequest, err)
		}
	}
	if patch.Preferences != nil && patch.Preferences.DefaultCurrency != "" && !patch.Preferences.DefaultCurrency.Valid() {
		return state, fmt.Errorf("%w: %q", models.ErrUnsupportedCurrency, patch.Preferences.DefaultCurrency)
	}

	now := m.now()
	if state.UserProfile == nil {
		if patch.ID == nil {
			id := m.newID("user")
			patch.ID = &id
		}
		if patch.CreatedAt == nil {
			patch.CreatedAt = &now
		}
	}
	patch.LastActive = &now
	return m.store.Dispatch(ledger.UpdateUserProfile{Patch: patch}), nil
}

// SetCurrency selects the display currency.
func (m *MannaPay) SetCurrency(currency models.Currency) (ledger.State, error) {
	if !currency.Valid() {
		return m.store.State(), fmt.Errorf("%w: %q", models.ErrUnsupportedCurrency, currency)
	}
	return m.store.Dispatch(ledger.SetCurrency{Currency: currency}), nil
}

// AddPaymentMethod registers a funding source. Wallet methods must carry a
// valid Stacks address.
func (m *MannaPay) AddPaymentMethod(method models.PaymentMethod) (ledger.State, error) {
	state := m.store.State()
	switch method.Type {
	case models.PaymentMethodWallet:
		addr, err := validation.ValidateAndNormalizeAddress(method.Address)
		if err != nil {
			return state, fmt.Errorf("%w: %v", models.ErrInvalidRequest, err)
		}
		method.Address = addr
	case models.PaymentMethodCard, models.PaymentMethodBank:
	default:
		return state, fmt.Errorf("%w: unknown payment method type %q", models.ErrInvalidRequest, method.Type)
	}
	if !method.Currency.Valid() {
		return state, fmt.Errorf("%w: %q", models.ErrUnsupportedCurrency, method.Currency)
	}
	if method.Name == "" {
		return state, fmt.Errorf("%w: payment method name is required", models.ErrInvalidRequest)
	}
	if method.ID == "" {
		method.ID = m.newID("pm")
	}
	return m.store.Dispatch(ledger.AddPaymentMethod{Method: method}), nil
}
