package models

import (
	"context"

	"github.com/shopspring/decimal"
)

// PaymentResult is the outcome of initiating a payment.
type PaymentResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"txId,omitempty"`
	Error         string `json:"error,omitempty"`
	ExplorerURL   string `json:"explorerUrl,omitempty"`
}

// NetworkName selects the chain the gateway talks to.
type NetworkName string

const (
	Testnet NetworkName = "testnet"
	Mainnet NetworkName = "mainnet"
)

// NetworkConfig describes the endpoints of a network.
type NetworkConfig struct {
	Network     NetworkName `json:"network"`
	RPCURL      string      `json:"rpcUrl"`
	ExplorerURL string      `json:"explorerUrl"`
}

// PaymentGateway simulates or performs blockchain payment initiation and settlement polling.
// The ledger never calls it; the orchestration layer does.
type PaymentGateway interface {
	// ConnectWallet returns the wallet to connect. ErrWalletUnavailable means none.
	ConnectWallet(ctx context.Context) (*Wallet, error)
	// GetBalance returns the balances held by address.
	GetBalance(ctx context.Context, address string) (Balances, error)
	// SendPayment initiates a payment. Failure is reported in the result, never as a panic.
	SendPayment(ctx context.Context, toAddress string, amount decimal.Decimal, currency Currency) PaymentResult
	// GetTransactionStatus reports settlement state. Lookup errors read as TxFailed.
	GetTransactionStatus(ctx context.Context, transactionID string) TxStatus
	// Network returns the active network configuration.
	Network() NetworkConfig
	// SwitchNetwork changes the active network.
	SwitchNetwork(network NetworkName) error
}
