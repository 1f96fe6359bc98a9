package mannapay

import (
	"github.com/shopspring/decimal"

	"github.com/mannapay/mannapay/internal/catalog"
	"github.com/mannapay/mannapay/internal/ledger"
	"github.com/mannapay/mannapay/internal/models"
)

// SubscriptionView is a subscription with its display fields.
type SubscriptionView struct {
	models.Subscription
	EffectiveStatus models.SubscriptionStatus `json:"effectiveStatus"`
	Progress        float64                   `json:"progress"`
	TimeRemaining   string                    `json:"timeRemaining"`
}

// Summary aggregates the dashboard totals.
type Summary struct {
	Connected           bool               `json:"connected"`
	Address             string             `json:"address,omitempty"`
	SelectedCurrency    models.Currency    `json:"selectedCurrency"`
	ActiveSubscriptions int                `json:"activeSubscriptions"`
	MonthlySpendUSD     decimal.Decimal    `json:"monthlySpendUsd"`
	PortfolioUSD        decimal.Decimal    `json:"portfolioUsd"`
	Subscriptions       []SubscriptionView `json:"subscriptions"`
}

// Rates returns the current USD rates, preferring the rate provider over the
// static catalog rates.
func (m *MannaPay) Rates() map[models.Currency]decimal.Decimal {
	if m.rates != nil {
		if rates := m.rates.Rates(); len(rates) > 0 {
			return rates
		}
	}
	return m.catalog.Rates()
}

// Platforms returns the catalog, optionally narrowed to one category.
func (m *MannaPay) Platforms(category models.Category) []models.Platform {
	if category == "" {
		return m.catalog.All()
	}
	return m.catalog.ByCategory(category)
}

// Subscriptions returns every subscription with its display fields.
func (m *MannaPay) Subscriptions() []SubscriptionView {
	return m.views(m.store.State())
}

func (m *MannaPay) views(state ledger.State) []SubscriptionView {
	now := m.now()
	out := make([]SubscriptionView, 0, len(state.Subscriptions))
	for _, sub := range state.Subscriptions {
		out = append(out, SubscriptionView{
			Subscription:    sub,
			EffectiveStatus: ledger.EffectiveStatus(now, sub),
			Progress:        ledger.Progress(now, sub.StartDate, sub.EndDate),
			TimeRemaining:   ledger.TimeRemaining(now, sub.EndDate),
		})
	}
	return out
}

// Summary computes the dashboard totals. Monthly spend spreads each active
// subscription's total price over its duration.
func (m *MannaPay) Summary() Summary {
	state := m.store.State()
	rates := m.Rates()
	views := m.views(state)

	s := Summary{
		Connected:        state.IsConnected,
		SelectedCurrency: state.SelectedCurrency,
		MonthlySpendUSD:  decimal.Zero,
		PortfolioUSD:     decimal.Zero,
		Subscriptions:    views,
	}
	for _, v := range views {
		if v.EffectiveStatus != models.SubscriptionActive {
			continue
		}
		s.ActiveSubscriptions++
		months := v.DurationMonths
		if months < 1 {
			months = 1
		}
		monthly := v.Price.Div(decimal.NewFromInt(int64(months)))
		s.MonthlySpendUSD = s.MonthlySpendUSD.Add(catalog.ToUSD(monthly, v.Currency, rates))
	}
	if state.Wallet != nil {
		s.Address = state.Wallet.Address
		for c, amount := range state.Wallet.Balances {
			s.PortfolioUSD = s.PortfolioUSD.Add(catalog.ToUSD(amount, c, rates))
		}
	}
	return s
}
