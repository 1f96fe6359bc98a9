package blockchain

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mannapay/mannapay/internal/models"
	"github.com/mannapay/mannapay/pkg/logger"
	"github.com/mannapay/mannapay/pkg/validation"
)

func newTestnet(t *testing.T, delay time.Duration) *Testnet {
	t.Helper()
	gw, err := NewTestnet(TestnetConfig{ConfirmationDelay: delay}, logger.NewNop())
	require.NoError(t, err)
	return gw
}

func TestTestnetConnectWallet(t *testing.T) {
	gw := newTestnet(t, 0)

	w, err := gw.ConnectWallet(context.Background())
	require.NoError(t, err)
	assert.Equal(t, FallbackAddress, w.Address)
	assert.True(t, w.Balances.Get(models.USDC).Equal(decimal.NewFromInt(1000)))
	assert.True(t, w.Balances.Get(models.BTC).Equal(decimal.RequireFromString("0.1")))
	assert.Len(t, w.Balances, len(models.Currencies))

	gw.SetWalletAddress("ST2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKQYAC0RQ")
	w, err = gw.ConnectWallet(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ST2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKQYAC0RQ", w.Address)
}

func TestTestnetSendPayment(t *testing.T) {
	gw := newTestnet(t, 0)

	res := gw.SendPayment(context.Background(), FallbackAddress, decimal.RequireFromString("15.99"), models.USDC)
	require.True(t, res.Success, res.Error)
	assert.NoError(t, validation.ValidateTxID(res.TransactionID))
	assert.Equal(t, "https://explorer.stacks.co/txid/"+res.TransactionID+"?chain=testnet", res.ExplorerURL)

	other := gw.SendPayment(context.Background(), FallbackAddress, decimal.RequireFromString("15.99"), models.USDC)
	assert.NotEqual(t, res.TransactionID, other.TransactionID)
}

func TestTestnetSendPaymentRejects(t *testing.T) {
	gw := newTestnet(t, 0)
	ctx := context.Background()

	assert.False(t, gw.SendPayment(ctx, "not-an-address", decimal.NewFromInt(1), models.USDC).Success)
	assert.False(t, gw.SendPayment(ctx, FallbackAddress, decimal.Zero, models.USDC).Success)
	res := gw.SendPayment(ctx, FallbackAddress, decimal.NewFromInt(1), models.Currency("DOGE"))
	assert.False(t, res.Success)
	assert.True(t, strings.Contains(res.Error, "DOGE"))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.False(t, gw.SendPayment(cancelled, FallbackAddress, decimal.NewFromInt(1), models.USDC).Success)
}

func TestTestnetTransactionStatus(t *testing.T) {
	gw := newTestnet(t, 20*time.Millisecond)
	ctx := context.Background()

	res := gw.SendPayment(ctx, FallbackAddress, decimal.NewFromInt(1), models.USDC)
	require.True(t, res.Success)

	started := time.Now()
	assert.Equal(t, models.TxConfirmed, gw.GetTransactionStatus(ctx, res.TransactionID))
	assert.Less(t, time.Since(started), time.Second)

	assert.Equal(t, models.TxFailed, gw.GetTransactionStatus(ctx, "0x123"))
}

func TestTestnetTransactionStatusCancelled(t *testing.T) {
	gw := newTestnet(t, time.Hour)
	res := gw.SendPayment(context.Background(), FallbackAddress, decimal.NewFromInt(1), models.USDC)
	require.True(t, res.Success)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Equal(t, models.TxPending, gw.GetTransactionStatus(ctx, res.TransactionID))
}

func TestTestnetForgetsOldPayments(t *testing.T) {
	gw := newTestnet(t, 0)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	gw.now = func() time.Time { return now }

	first := gw.SendPayment(ctx, FallbackAddress, decimal.NewFromInt(1), models.USDC)
	require.True(t, first.Success)
	assert.True(t, gw.Sent(first.TransactionID))

	now = now.Add(sentRetention + time.Minute)
	second := gw.SendPayment(ctx, FallbackAddress, decimal.NewFromInt(1), models.USDC)
	require.True(t, second.Success)

	assert.False(t, gw.Sent(first.TransactionID))
	assert.True(t, gw.Sent(second.TransactionID))
	gw.mu.RLock()
	assert.Len(t, gw.sent, 1)
	gw.mu.RUnlock()
}

func TestTestnetSwitchNetwork(t *testing.T) {
	gw := newTestnet(t, 0)
	assert.Equal(t, models.Testnet, gw.Network().Network)
	assert.Equal(t, "https://api.testnet.hiro.so", gw.Network().RPCURL)

	require.NoError(t, gw.SwitchNetwork(models.Mainnet))
	assert.Equal(t, "https://api.hiro.so", gw.Network().RPCURL)

	assert.Error(t, gw.SwitchNetwork("devnet"))
	assert.Equal(t, models.Mainnet, gw.Network().Network)
}

func TestNewGateway(t *testing.T) {
	gw, err := NewGateway(GatewayTestnet, TestnetConfig{}, HiroConfig{}, logger.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &Testnet{}, gw)

	gw, err = NewGateway(GatewayHiro, TestnetConfig{Network: models.Mainnet}, HiroConfig{}, logger.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &Hiro{}, gw)
	assert.Equal(t, models.Mainnet, gw.Network().Network)

	_, err = NewGateway("infura", TestnetConfig{}, HiroConfig{}, logger.NewNop())
	assert.Error(t, err)

	_, err = NewGateway(GatewayTestnet, TestnetConfig{Network: "devnet"}, HiroConfig{}, logger.NewNop())
	assert.Error(t, err)
}
