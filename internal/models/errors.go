package models

import "errors"

var (
	// ErrWalletNotConnected is returned when an operation needs a connected wallet.
	ErrWalletNotConnected = errors.New("wallet not connected")

	// ErrWalletUnavailable is returned when the gateway cannot provide a wallet.
	ErrWalletUnavailable = errors.New("wallet unavailable")

	// ErrSubscriptionNotFound is returned for an unknown subscription id.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrInvalidTransition is returned when a status change is not allowed from the current status.
	ErrInvalidTransition = errors.New("invalid subscription status transition")

	// ErrInsufficientBalance is returned when the wallet cannot cover a payment.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrUnknownPlatform is returned for a platform id missing from the catalog.
	ErrUnknownPlatform = errors.New("unknown platform")

	// ErrUnknownPlan is returned when the platform does not offer the plan.
	ErrUnknownPlan = errors.New("unknown plan")

	// ErrUnsupportedCurrency is returned for a currency outside the supported set.
	ErrUnsupportedCurrency = errors.New("unsupported currency")

	// ErrPaymentFailed is returned when the gateway rejects a payment.
	ErrPaymentFailed = errors.New("payment failed")

	// ErrTransactionFailed is returned when a sent payment does not confirm.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrInvalidRequest is returned for malformed input such as a non-positive duration.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrSnapshotNotFound is returned by key-value stores for an empty slot.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)
