package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlanType is the tier of a platform plan.
type PlanType string

const (
	PlanBasic      PlanType = "Basic"
	PlanStandard   PlanType = "Standard"
	PlanPremium    PlanType = "Premium"
	PlanPro        PlanType = "Pro"
	PlanEnterprise PlanType = "Enterprise"
)

// SubscriptionStatus is the stored lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionPaused    SubscriptionStatus = "paused"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionPending   SubscriptionStatus = "pending"
)

// MonthLength is the fixed month used to compute end dates. It is not calendar accurate.
const MonthLength = 30 * 24 * time.Hour

// Credentials are the platform account details captured during the subscribe flow.
type Credentials struct {
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
}

// Subscription is a paid subscription to a third-party platform.
type Subscription struct {
	ID string `json:"id"`
	// Platform is the display name of the platform.
	Platform string   `json:"platform"`
	Plan     PlanType `json:"plan"`
	// DurationMonths is the number of paid months.
	DurationMonths int       `json:"duration"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	// Price is the total paid for the whole duration.
	Price           decimal.Decimal    `json:"price"`
	Currency        Currency           `json:"currency"`
	Status          SubscriptionStatus `json:"status"`
	AutoRenew       bool               `json:"autoRenew"`
	Credentials     *Credentials       `json:"credentials,omitempty"`
	NextBillingDate *time.Time         `json:"nextBillingDate,omitempty"`
	PausedUntil     *time.Time         `json:"pausedUntil,omitempty"`
}

// EndDateFor returns start plus months fixed-length months.
func EndDateFor(start time.Time, months int) time.Time {
	return start.Add(time.Duration(months) * MonthLength)
}

func (s Subscription) Clone() Subscription {
	if s.Credentials != nil {
		c := *s.Credentials
		s.Credentials = &c
	}
	if s.NextBillingDate != nil {
		t := *s.NextBillingDate
		s.NextBillingDate = &t
	}
	if s.PausedUntil != nil {
		t := *s.PausedUntil
		s.PausedUntil = &t
	}
	return s
}
