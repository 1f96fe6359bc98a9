package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies an entry of the transaction log.
type TransactionType string

const (
	TransactionSubscription TransactionType = "subscription"
	TransactionRefund       TransactionType = "refund"
	TransactionWithdrawal   TransactionType = "withdrawal"
	TransactionDeposit      TransactionType = "deposit"
	TransactionAutoRenewal  TransactionType = "auto_renewal"
)

// TransactionStatus is the recorded outcome of a logged transaction.
type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "completed"
	TransactionPending   TransactionStatus = "pending"
	TransactionFailed    TransactionStatus = "failed"
)

// Transaction is an append-only log entry. Entries are never mutated once logged.
type Transaction struct {
	ID          string            `json:"id"`
	Type        TransactionType   `json:"type"`
	Platform    string            `json:"platform,omitempty"`
	Amount      decimal.Decimal   `json:"amount"`
	Currency    Currency          `json:"currency"`
	Timestamp   time.Time         `json:"timestamp"`
	Status      TransactionStatus `json:"status"`
	Hash        string            `json:"hash,omitempty"`
	Description string            `json:"description,omitempty"`
}

// TxStatus is the settlement state reported by a payment gateway.
type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxConfirmed TxStatus = "confirmed"
	TxFailed    TxStatus = "failed"
)
