package blockchain

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mannapay/mannapay/internal/models"
	"github.com/mannapay/mannapay/pkg/logger"
	"github.com/mannapay/mannapay/pkg/validation"
)

const (
	// FallbackAddress is used when no wallet address is configured or derived.
	FallbackAddress = "SP2C2M5XYZ123456789"

	DefaultConfirmationDelay = 2 * time.Second

	// sentRetention is how long a sent payment is remembered for status lookups.
	sentRetention = 24 * time.Hour
)

// MockBalances are the balances reported for every testnet wallet.
func MockBalances() models.Balances {
	return models.Balances{
		models.BTC:  decimal.RequireFromString("0.1"),
		models.ETH:  decimal.RequireFromString("2.5"),
		models.USDT: decimal.NewFromInt(500),
		models.USDC: decimal.NewFromInt(1000),
		models.DAI:  decimal.NewFromInt(250),
	}
}

// TestnetConfig configures the mock gateway.
type TestnetConfig struct {
	Network           models.NetworkName
	WalletAddress     string
	ConfirmationDelay time.Duration
}

// Testnet is a payment gateway with mock settlement: payments always succeed
// and confirm after a fixed delay. No network calls are made.
type Testnet struct {
	logger *logger.Logger

	mu      sync.RWMutex
	network models.NetworkConfig
	address string
	delay   time.Duration
	sent    map[string]time.Time

	now func() time.Time
}

func NewTestnet(cfg TestnetConfig, logger *logger.Logger) (*Testnet, error) {
	if cfg.Network == "" {
		cfg.Network = models.Testnet
	}
	network, err := NetworkConfigFor(cfg.Network)
	if err != nil {
		return nil, err
	}
	if cfg.WalletAddress == "" {
		cfg.WalletAddress = FallbackAddress
	}
	if cfg.ConfirmationDelay < 0 {
		cfg.ConfirmationDelay = 0
	}
	return &Testnet{
		logger:  logger.Named("testnet"),
		network: network,
		address: cfg.WalletAddress,
		delay:   cfg.ConfirmationDelay,
		sent:    make(map[string]time.Time),
		now:     time.Now,
	}, nil
}

func (t *Testnet) ConnectWallet(ctx context.Context) (*models.Wallet, error) {
	t.mu.RLock()
	address := t.address
	t.mu.RUnlock()

	balances, err := t.GetBalance(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrWalletUnavailable, err)
	}
	t.logger.Infow("wallet connected", "address", address)
	return &models.Wallet{Address: address, Balances: balances}, nil
}

func (t *Testnet) GetBalance(ctx context.Context, _ string) (models.Balances, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return MockBalances(), nil
}

func (t *Testnet) SendPayment(ctx context.Context, toAddress string, amount decimal.Decimal, currency models.Currency) models.PaymentResult {
	if err := ctx.Err(); err != nil {
		return models.PaymentResult{Error: err.Error()}
	}
	if err := validation.ValidateAddress(toAddress); err != nil {
		return models.PaymentResult{Error: err.Error()}
	}
	if !amount.IsPositive() {
		return models.PaymentResult{Error: fmt.Sprintf("amount must be positive, got %s", amount)}
	}
	if !currency.Valid() {
		return models.PaymentResult{Error: fmt.Sprintf("unsupported currency %q", currency)}
	}

	txID, err := newTxID()
	if err != nil {
		return models.PaymentResult{Error: fmt.Sprintf("failed to generate transaction id: %v", err)}
	}

	t.mu.Lock()
	now := t.now()
	for id, sentAt := range t.sent {
		if now.Sub(sentAt) > sentRetention {
			delete(t.sent, id)
		}
	}
	t.sent[txID] = now
	network := t.network
	t.mu.Unlock()

	t.logger.Infow("payment sent", "to", toAddress, "amount", amount.String(), "currency", currency, "txId", txID)
	return models.PaymentResult{
		Success:       true,
		TransactionID: txID,
		ExplorerURL:   ExplorerTxURL(network, txID),
	}
}

// GetTransactionStatus reports confirmed once the confirmation delay has passed
// since the payment was sent, waiting for the rest of it if needed. Ids this
// gateway did not send wait the full delay. A malformed id is failed and a
// cancelled wait is still pending.
func (t *Testnet) GetTransactionStatus(ctx context.Context, transactionID string) models.TxStatus {
	if err := validation.ValidateTxID(transactionID); err != nil {
		t.logger.Debugw("status requested for malformed transaction id", "txId", transactionID, "error", err)
		return models.TxFailed
	}

	t.mu.RLock()
	sentAt, ok := t.sent[transactionID]
	t.mu.RUnlock()
	wait := t.delay
	if ok {
		wait -= t.now().Sub(sentAt)
	}
	if wait <= 0 {
		return models.TxConfirmed
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return models.TxConfirmed
	case <-ctx.Done():
		return models.TxPending
	}
}

func (t *Testnet) Network() models.NetworkConfig {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.network
}

func (t *Testnet) SwitchNetwork(name models.NetworkName) error {
	cfg, err := NetworkConfigFor(name)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.network = cfg
	t.mu.Unlock()
	t.logger.Infow("switched network", "network", name)
	return nil
}

// Sent reports whether this gateway sent transactionID within the retention window.
func (t *Testnet) Sent(transactionID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.sent[transactionID]
	return ok
}

// SetWalletAddress changes the address returned by ConnectWallet.
func (t *Testnet) SetWalletAddress(address string) {
	t.mu.Lock()
	t.address = address
	t.mu.Unlock()
}

func newTxID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(buf), nil
}
