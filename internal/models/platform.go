package models

import "github.com/shopspring/decimal"

// Category groups platforms in the catalog.
type Category string

const (
	CategoryStreaming    Category = "streaming"
	CategorySoftware     Category = "software"
	CategoryProductivity Category = "productivity"
	CategoryGaming       Category = "gaming"
	CategoryEducation    Category = "education"
	CategoryNews         Category = "news"
)

// PlanDetails is the monthly price and perks of one plan tier.
type PlanDetails struct {
	Price      decimal.Decimal `json:"price"`
	Currency   Currency        `json:"currency"`
	Features   []string        `json:"features"`
	MaxDevices int             `json:"maxDevices,omitempty"`
	Quality    string          `json:"quality,omitempty"`
}

// Platform is a third-party service that can be subscribed to.
type Platform struct {
	ID                   string                   `json:"id"`
	Name                 string                   `json:"name"`
	Logo                 string                   `json:"logo"`
	Color                string                   `json:"color"`
	Category             Category                 `json:"category"`
	Description          string                   `json:"description"`
	Features             []string                 `json:"features"`
	Plans                map[PlanType]PlanDetails `json:"plans"`
	SupportedCurrencies  []Currency               `json:"supportedCurrencies"`
	AutoRenewalSupported bool                     `json:"autoRenewalSupported"`
	PauseSupported       bool                     `json:"pauseSupported"`
}

// Supports reports whether the platform accepts payment in c.
func (p *Platform) Supports(c Currency) bool {
	for _, s := range p.SupportedCurrencies {
		if s == c {
			return true
		}
	}
	return false
}
