package mannapay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mannapay/mannapay/internal/ledger"
	"github.com/mannapay/mannapay/internal/models"
	"github.com/mannapay/mannapay/pkg/validation"
)

// SubscribeRequest is the input of the subscribe flow.
type SubscribeRequest struct {
	PlatformID     string          `json:"platformId"`
	Plan           models.PlanType `json:"plan"`
	DurationMonths int             `json:"duration"`
	Currency       models.Currency `json:"currency"`
	Email          string          `json:"email"`
}

// SubscribeResult is what a settled subscribe flow added to the ledger.
type SubscribeResult struct {
	Subscription models.Subscription `json:"subscription"`
	Transaction  models.Transaction  `json:"transaction"`
	ExplorerURL  string              `json:"explorerUrl,omitempty"`
}

// Subscribe pays for a platform plan and, once the payment confirms, records the
// subscription and its transaction. Nothing is recorded when the payment fails.
func (m *MannaPay) Subscribe(ctx context.Context, req SubscribeRequest) (*SubscribeResult, error) {
	m.payMu.Lock()
	defer m.payMu.Unlock()

	state := m.store.State()
	if !state.IsConnected || state.Wallet == nil {
		return nil, models.ErrWalletNotConnected
	}
	if req.DurationMonths < 1 {
		return nil, fmt.Errorf("%w: duration must be at least one month", models.ErrInvalidRequest)
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidRequest, err)
	}
	platform, plan, err := m.catalog.Plan(req.PlatformID, req.Plan)
	if err != nil {
		return nil, err
	}
	currency := req.Currency
	if currency == "" {
		currency = plan.Currency
	}
	if !currency.Valid() || !platform.Supports(currency) {
		return nil, fmt.Errorf("%w: %s does not accept %q", models.ErrUnsupportedCurrency, platform.Name, currency)
	}

	total := plan.Price.Mul(decimal.NewFromInt(int64(req.DurationMonths)))
	if balance := state.Wallet.Balances.Get(currency); balance.LessThan(total) {
		return nil, fmt.Errorf("%w: need %s %s, have %s", models.ErrInsufficientBalance, total, currency, balance)
	}

	m.logger.Infow("sending subscription payment",
		"platform", platform.ID,
		"plan", req.Plan,
		"amount", total.String(),
		"currency", currency)

	payment := m.gateway.SendPayment(ctx, m.opts.MerchantAddress, total, currency)
	if !payment.Success {
		m.logger.Warnw("payment rejected", "platform", platform.ID, "error", payment.Error)
		return nil, fmt.Errorf("%w: %s", models.ErrPaymentFailed, payment.Error)
	}

	status, err := m.waitForConfirmation(ctx, payment.TransactionID)
	if err != nil {
		return nil, err
	}
	if status != models.TxConfirmed {
		m.logger.Warnw("payment did not confirm", "txId", payment.TransactionID, "status", status)
		return nil, fmt.Errorf("%w: %s is %s", models.ErrTransactionFailed, payment.TransactionID, status)
	}

	now := m.now()
	end := models.EndDateFor(now, req.DurationMonths)
	sub := models.Subscription{
		ID:             m.newID("sub"),
		Platform:       platform.Name,
		Plan:           req.Plan,
		DurationMonths: req.DurationMonths,
		StartDate:      now,
		EndDate:        end,
		Price:          total,
		Currency:       currency,
		Status:         models.SubscriptionActive,
		AutoRenew:      platform.AutoRenewalSupported,
		Credentials: &models.Credentials{
			Email:    req.Email,
			Username: strings.SplitN(req.Email, "@", 2)[0],
		},
	}
	if sub.AutoRenew {
		next := end
		sub.NextBillingDate = &next
	}
	tx := models.Transaction{
		ID:          m.newID("tx"),
		Type:        models.TransactionSubscription,
		Platform:    platform.Name,
		Amount:      total,
		Currency:    currency,
		Timestamp:   now,
		Status:      models.TransactionCompleted,
		Hash:        payment.TransactionID,
		Description: fmt.Sprintf("%s %s plan, %d month(s)", platform.Name, req.Plan, req.DurationMonths),
	}

	m.store.Dispatch(ledger.AddSubscription{Subscription: sub})
	m.store.Dispatch(ledger.AddTransaction{Transaction: tx})

	m.logger.Infow("subscription activated", "id", sub.ID, "platform", platform.ID, "txId", payment.TransactionID)
	return &SubscribeResult{Subscription: sub, Transaction: tx, ExplorerURL: payment.ExplorerURL}, nil
}

// waitForConfirmation polls the gateway until the transaction leaves pending or
// the poll timeout passes.
func (m *MannaPay) waitForConfirmation(ctx context.Context, txID string) (models.TxStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, m.opts.StatusPollTimeout)
	defer cancel()

	ticker := time.NewTicker(m.opts.StatusPollInterval)
	defer ticker.Stop()

	for {
		status := m.gateway.GetTransactionStatus(ctx, txID)
		if status != models.TxPending {
			return status, nil
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return models.TxPending, fmt.Errorf("%w: %s still pending", models.ErrTransactionFailed, txID)
			}
			return models.TxPending, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Cancel cancels a subscription and records the 80% refund.
func (m *MannaPay) Cancel(id string) (ledger.State, error) {
	m.transitionMu.Lock()
	defer m.transitionMu.Unlock()

	state := m.store.State()
	if state.Wallet == nil {
		return state, models.ErrWalletNotConnected
	}
	sub, ok := state.FindSubscription(id)
	if !ok {
		return state, fmt.Errorf("%w: %s", models.ErrSubscriptionNotFound, id)
	}
	if m.opts.StrictTransitions &&
		sub.Status != models.SubscriptionActive && sub.Status != models.SubscriptionPaused {
		return state, fmt.Errorf("%w: cannot cancel a %s subscription", models.ErrInvalidTransition, sub.Status)
	}

	refund := ledger.Refund(sub.Price)
	m.store.Dispatch(ledger.CancelSubscription{ID: id})
	state = m.store.Dispatch(ledger.AddTransaction{Transaction: models.Transaction{
		ID:          m.newID("tx"),
		Type:        models.TransactionRefund,
		Platform:    sub.Platform,
		Amount:      refund,
		Currency:    sub.Currency,
		Timestamp:   m.now(),
		Status:      models.TransactionCompleted,
		Description: fmt.Sprintf("Refund for %s %s plan", sub.Platform, sub.Plan),
	}})
	m.logger.Infow("subscription cancelled", "id", id, "refund", refund.String(), "currency", sub.Currency)
	return state, nil
}

// Pause pauses an active subscription.
func (m *MannaPay) Pause(id string) (ledger.State, error) {
	m.transitionMu.Lock()
	defer m.transitionMu.Unlock()

	state := m.store.State()
	sub, ok := state.FindSubscription(id)
	if !ok {
		return state, fmt.Errorf("%w: %s", models.ErrSubscriptionNotFound, id)
	}
	if m.opts.StrictTransitions {
		if sub.Status != models.SubscriptionActive {
			return state, fmt.Errorf("%w: cannot pause a %s subscription", models.ErrInvalidTransition, sub.Status)
		}
		if p, found := m.catalog.FindByName(sub.Platform); found && !p.PauseSupported {
			return state, fmt.Errorf("%w: %s does not support pausing", models.ErrInvalidTransition, sub.Platform)
		}
	}
	return m.store.Dispatch(ledger.PauseSubscription{ID: id}), nil
}

// Resume reactivates a paused subscription.
func (m *MannaPay) Resume(id string) (ledger.State, error) {
	m.transitionMu.Lock()
	defer m.transitionMu.Unlock()

	state := m.store.State()
	sub, ok := state.FindSubscription(id)
	if !ok {
		return state, fmt.Errorf("%w: %s", models.ErrSubscriptionNotFound, id)
	}
	if m.opts.StrictTransitions && sub.Status != models.SubscriptionPaused {
		return state, fmt.Errorf("%w: cannot resume a %s subscription", models.ErrInvalidTransition, sub.Status)
	}
	return m.store.Dispatch(ledger.ResumeSubscription{ID: id}), nil
}
