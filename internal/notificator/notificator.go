package notificator

import (
	"runtime/debug"

	"github.com/mannapay/mannapay/internal/ledger"
	"github.com/mannapay/mannapay/internal/models"
	"github.com/mannapay/mannapay/pkg/logger"
)

// MessageSender delivers a plain text message to one recipient.
type MessageSender interface {
	SendNotification(to, message string) error
}

// Notificator fans a notification out to every configured channel.
type Notificator struct {
	logger *logger.Logger

	TelegramNotificator MessageSender
	TelegramChatID      string
	EmailNotificator    MessageSender
	EmailTo             string
}

func NewNotificator(logger *logger.Logger, telNotif MessageSender, chatID string, emailNotif MessageSender, emailTo string) *Notificator {
	return &Notificator{
		logger:              logger.Named("notificator"),
		TelegramNotificator: telNotif,
		TelegramChatID:      chatID,
		EmailNotificator:    emailNotif,
		EmailTo:             emailTo,
	}
}

// Enabled reports whether at least one channel is configured.
func (n *Notificator) Enabled() bool {
	return (n.TelegramNotificator != nil && n.TelegramChatID != "") ||
		(n.EmailNotificator != nil && n.EmailTo != "")
}

// safeCall runs a function with panic recovery (synchronous, no goroutine spawning)
func (n *Notificator) safeCall(fn func() error, context string) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Errorw("Function panicked",
				"context", context,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	if err := fn(); err != nil {
		n.logger.Errorw("Failed to send notification", "context", context, "error", err)
	}
}

// SendNotification delivers synchronously; callers run it off the dispatch path.
func (n *Notificator) SendNotification(notification *models.Notification) {
	message := notification.String()
	if n.TelegramNotificator != nil && n.TelegramChatID != "" {
		chatID := n.TelegramChatID
		n.safeCall(func() error { return n.TelegramNotificator.SendNotification(chatID, message) }, "telegramNotification")
	}
	if n.EmailNotificator != nil && n.EmailTo != "" {
		email := n.EmailTo
		n.safeCall(func() error { return n.EmailNotificator.SendNotification(email, message) }, "emailNotification")
	}
}

// FromAction builds the notification for a ledger action, or nil when the
// action is not worth notifying. state is the state after the action.
func FromAction(action ledger.Action, state ledger.State) *models.Notification {
	switch a := action.(type) {
	case ledger.Connect:
		return &models.Notification{Kind: models.NotifyWalletConnected, Wallet: a.Wallet.Address}
	case ledger.Disconnect:
		return &models.Notification{Kind: models.NotifyWalletDisconnected}
	case ledger.AddSubscription:
		return subscriptionNotification(models.NotifySubscriptionActivated, a.Subscription, a.Subscription.Price.String(), state)
	case ledger.CancelSubscription:
		sub, ok := state.FindSubscription(a.ID)
		if !ok || sub.Status != models.SubscriptionCancelled {
			return nil
		}
		return subscriptionNotification(models.NotifySubscriptionCancelled, sub, ledger.Refund(sub.Price).String(), state)
	case ledger.PauseSubscription:
		if sub, ok := state.FindSubscription(a.ID); ok {
			return subscriptionNotification(models.NotifySubscriptionPaused, sub, "", state)
		}
	case ledger.ResumeSubscription:
		if sub, ok := state.FindSubscription(a.ID); ok {
			return subscriptionNotification(models.NotifySubscriptionResumed, sub, "", state)
		}
	}
	return nil
}

func subscriptionNotification(kind models.NotificationKind, sub models.Subscription, amount string, state ledger.State) *models.Notification {
	n := &models.Notification{
		Kind:     kind,
		Platform: sub.Platform,
		Amount:   amount,
		Currency: sub.Currency,
	}
	if state.Wallet != nil {
		n.Wallet = state.Wallet.Address
	}
	return n
}
