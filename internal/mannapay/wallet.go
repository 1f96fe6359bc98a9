package mannapay

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mannapay/mannapay/internal/ledger"
	"github.com/mannapay/mannapay/internal/models"
)

// Connect asks the gateway for a wallet, marks the session connected and
// starts the periodic balance refresh.
func (m *MannaPay) Connect(ctx context.Context) (ledger.State, error) {
	w, err := m.gateway.ConnectWallet(ctx)
	if err != nil {
		return m.store.State(), fmt.Errorf("failed to connect wallet: %w", err)
	}
	if w == nil {
		return m.store.State(), models.ErrWalletUnavailable
	}
	state := m.store.Dispatch(ledger.Connect{Wallet: *w})
	m.logger.Infow("wallet connected", "address", w.Address)

	m.startRefresher()
	return state, nil
}

// Disconnect stops the balance refresh and wipes the session.
func (m *MannaPay) Disconnect() ledger.State {
	m.stopRefresher()
	state := m.store.Dispatch(ledger.Disconnect{})
	m.logger.Info("wallet disconnected")
	return state
}

// UpdateBalance overwrites the balance of one currency.
func (m *MannaPay) UpdateBalance(currency models.Currency, amount decimal.Decimal) (ledger.State, error) {
	if !currency.Valid() {
		return m.store.State(), fmt.Errorf("%w: %q", models.ErrUnsupportedCurrency, currency)
	}
	if amount.IsNegative() {
		return m.store.State(), fmt.Errorf("%w: balance must not be negative", models.ErrInvalidRequest)
	}
	if m.store.State().Wallet == nil {
		return m.store.State(), models.ErrWalletNotConnected
	}
	return m.store.Dispatch(ledger.UpdateBalance{Currency: currency, Amount: amount}), nil
}

// RefreshBalances reads the wallet balances from the gateway and overwrites the
// refreshed currencies.
func (m *MannaPay) RefreshBalances(ctx context.Context) (ledger.State, error) {
	state := m.store.State()
	if !state.IsConnected || state.Wallet == nil {
		return state, models.ErrWalletNotConnected
	}
	balances, err := m.gateway.GetBalance(ctx, state.Wallet.Address)
	if err != nil {
		return state, fmt.Errorf("failed to get balance: %w", err)
	}
	for _, c := range m.opts.RefreshCurrencies {
		state = m.store.Dispatch(ledger.UpdateBalance{Currency: c, Amount: balances.Get(c)})
	}
	return state, nil
}

// Network returns the active gateway network.
func (m *MannaPay) Network() models.NetworkConfig {
	return m.gateway.Network()
}

// SwitchNetwork changes the gateway network.
func (m *MannaPay) SwitchNetwork(name models.NetworkName) (models.NetworkConfig, error) {
	if err := m.gateway.SwitchNetwork(name); err != nil {
		return m.gateway.Network(), fmt.Errorf("%w: %v", models.ErrInvalidRequest, err)
	}
	m.logger.Infow("network switched", "network", name)
	return m.gateway.Network(), nil
}

// TransactionStatus asks the gateway about a transaction, bounded by the poll timeout.
func (m *MannaPay) TransactionStatus(ctx context.Context, hash string) models.TxStatus {
	ctx, cancel := context.WithTimeout(ctx, m.opts.StatusPollTimeout)
	defer cancel()
	return m.gateway.GetTransactionStatus(ctx, hash)
}

func (m *MannaPay) startRefresher() {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()
	if m.refresher != nil {
		m.refresher.Stop()
	}
	m.refresher = NewBalanceRefresher(m.opts.BalanceRefreshInterval, func(ctx context.Context) error {
		_, err := m.RefreshBalances(ctx)
		return err
	}, m.logger)
	m.refresher.Start(context.Background())
}

func (m *MannaPay) stopRefresher() {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()
	if m.refresher != nil {
		m.refresher.Stop()
		m.refresher = nil
	}
}
