package models

import "time"

type NotificationPreferences struct {
	Email   bool `json:"email"`
	Push    bool `json:"push"`
	Billing bool `json:"billing"`
}

type Preferences struct {
	DefaultCurrency Currency                `json:"defaultCurrency"`
	AutoRenewal     bool                    `json:"autoRenewal"`
	Notifications   NotificationPreferences `json:"notifications"`
}

// UserProfile describes the local user.
type UserProfile struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	Name        string      `json:"name,omitempty"`
	Avatar      string      `json:"avatar,omitempty"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"createdAt"`
	LastActive  time.Time   `json:"lastActive"`
}

// UserProfilePatch carries the fields of a partial profile update. Nil fields are left untouched.
type UserProfilePatch struct {
	ID          *string      `json:"id,omitempty"`
	Email       *string      `json:"email,omitempty"`
	Name        *string      `json:"name,omitempty"`
	Avatar      *string      `json:"avatar,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
	CreatedAt   *time.Time   `json:"createdAt,omitempty"`
	LastActive  *time.Time   `json:"lastActive,omitempty"`
}

// Apply merges the patch into p. Preferences are replaced as a whole.
func (patch UserProfilePatch) Apply(p UserProfile) UserProfile {
	if patch.ID != nil {
		p.ID = *patch.ID
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Avatar != nil {
		p.Avatar = *patch.Avatar
	}
	if patch.Preferences != nil {
		p.Preferences = *patch.Preferences
	}
	if patch.CreatedAt != nil {
		p.CreatedAt = *patch.CreatedAt
	}
	if patch.LastActive != nil {
		p.LastActive = *patch.LastActive
	}
	return p
}

// PaymentMethodType is the kind of funding source.
type PaymentMethodType string

const (
	PaymentMethodWallet PaymentMethodType = "wallet"
	PaymentMethodCard   PaymentMethodType = "card"
	PaymentMethodBank   PaymentMethodType = "bank"
)

type PaymentMethod struct {
	ID        string            `json:"id"`
	Type      PaymentMethodType `json:"type"`
	Name      string            `json:"name"`
	Currency  Currency          `json:"currency"`
	Address   string            `json:"address,omitempty"`
	Last4     string            `json:"last4,omitempty"`
	IsDefault bool              `json:"isDefault"`
}
