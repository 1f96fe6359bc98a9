package models

import "fmt"

// NotificationKind names the ledger event a notification reports.
type NotificationKind string

const (
	NotifyWalletConnected       NotificationKind = "wallet_connected"
	NotifyWalletDisconnected    NotificationKind = "wallet_disconnected"
	NotifySubscriptionActivated NotificationKind = "subscription_activated"
	NotifySubscriptionCancelled NotificationKind = "subscription_cancelled"
	NotifySubscriptionPaused    NotificationKind = "subscription_paused"
	NotifySubscriptionResumed   NotificationKind = "subscription_resumed"
)

type NotificationService interface {
	SendNotification(notification *Notification)
}

type Notification struct {
	Kind     NotificationKind `json:"kind"`
	Wallet   string           `json:"wallet,omitempty"`
	Platform string           `json:"platform,omitempty"`
	Amount   string           `json:"amount,omitempty"`
	Currency Currency         `json:"currency,omitempty"`
}

func (n *Notification) String() string {
	switch n.Kind {
	case NotifyWalletConnected:
		return fmt.Sprintf("Wallet %s connected", n.Wallet)
	case NotifyWalletDisconnected:
		return "Wallet disconnected, session cleared"
	case NotifySubscriptionActivated:
		return fmt.Sprintf("Subscription to %s activated: paid %s %s", n.Platform, n.Amount, n.Currency)
	case NotifySubscriptionCancelled:
		return fmt.Sprintf("Subscription to %s cancelled: refunded %s %s", n.Platform, n.Amount, n.Currency)
	case NotifySubscriptionPaused:
		return fmt.Sprintf("Subscription to %s paused", n.Platform)
	case NotifySubscriptionResumed:
		return fmt.Sprintf("Subscription to %s resumed", n.Platform)
	}
	return string(n.Kind)
}
