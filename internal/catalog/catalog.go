package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/mannapay/mannapay/internal/models"
)

//go:embed platforms.yaml
var defaultCatalog []byte

type planFile struct {
	Price      string   `yaml:"price"`
	Currency   string   `yaml:"currency"`
	Features   []string `yaml:"features"`
	MaxDevices int      `yaml:"maxDevices"`
	Quality    string   `yaml:"quality"`
}

type platformFile struct {
	ID                   string              `yaml:"id"`
	Name                 string              `yaml:"name"`
	Logo                 string              `yaml:"logo"`
	Color                string              `yaml:"color"`
	Category             string              `yaml:"category"`
	Description          string              `yaml:"description"`
	Features             []string            `yaml:"features"`
	Plans                map[string]planFile `yaml:"plans"`
	SupportedCurrencies  []string            `yaml:"supportedCurrencies"`
	AutoRenewalSupported bool                `yaml:"autoRenewalSupported"`
	PauseSupported       bool                `yaml:"pauseSupported"`
}

type catalogFile struct {
	Rates     map[string]string `yaml:"rates"`
	Platforms []platformFile    `yaml:"platforms"`
}

// Catalog is the read-only list of platforms that can be subscribed to,
// together with the static USD rates used when no live rates are available.
type Catalog struct {
	platforms []models.Platform
	byID      map[string]int
	rates     map[models.Currency]decimal.Decimal
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	c := &Catalog{
		byID:  make(map[string]int, len(file.Platforms)),
		rates: make(map[models.Currency]decimal.Decimal, len(file.Rates)),
	}
	for symbol, raw := range file.Rates {
		cur, err := models.ParseCurrency(symbol)
		if err != nil {
			return nil, err
		}
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid rate for %s: %w", symbol, err)
		}
		c.rates[cur] = rate
	}

	for _, pf := range file.Platforms {
		p, err := pf.platform()
		if err != nil {
			return nil, fmt.Errorf("platform %q: %w", pf.ID, err)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate platform id %q", p.ID)
		}
		c.byID[p.ID] = len(c.platforms)
		c.platforms = append(c.platforms, p)
	}
	return c, nil
}

func (pf platformFile) platform() (models.Platform, error) {
	if pf.ID == "" || pf.Name == "" {
		return models.Platform{}, fmt.Errorf("id and name are required")
	}
	p := models.Platform{
		ID:                   pf.ID,
		Name:                 pf.Name,
		Logo:                 pf.Logo,
		Color:                pf.Color,
		Category:             models.Category(pf.Category),
		Description:          pf.Description,
		Features:             pf.Features,
		Plans:                make(map[models.PlanType]models.PlanDetails, len(pf.Plans)),
		AutoRenewalSupported: pf.AutoRenewalSupported,
		PauseSupported:       pf.PauseSupported,
	}
	for _, symbol := range pf.SupportedCurrencies {
		cur, err := models.ParseCurrency(symbol)
		if err != nil {
			return models.Platform{}, err
		}
		p.SupportedCurrencies = append(p.SupportedCurrencies, cur)
	}
	for name, plan := range pf.Plans {
		price, err := decimal.NewFromString(plan.Price)
		if err != nil {
			return models.Platform{}, fmt.Errorf("plan %s: invalid price: %w", name, err)
		}
		if !price.IsPositive() {
			return models.Platform{}, fmt.Errorf("plan %s: price must be positive", name)
		}
		cur, err := models.ParseCurrency(plan.Currency)
		if err != nil {
			return models.Platform{}, fmt.Errorf("plan %s: %w", name, err)
		}
		p.Plans[models.PlanType(name)] = models.PlanDetails{
			Price:      price,
			Currency:   cur,
			Features:   plan.Features,
			MaxDevices: plan.MaxDevices,
			Quality:    plan.Quality,
		}
	}
	return p, nil
}

// All returns every platform in catalog order.
func (c *Catalog) All() []models.Platform {
	out := make([]models.Platform, len(c.platforms))
	copy(out, c.platforms)
	return out
}

// ByCategory returns the platforms of one category.
func (c *Catalog) ByCategory(category models.Category) []models.Platform {
	var out []models.Platform
	for _, p := range c.platforms {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Get looks a platform up by id.
func (c *Catalog) Get(id string) (models.Platform, error) {
	i, ok := c.byID[id]
	if !ok {
		return models.Platform{}, fmt.Errorf("%w: %q", models.ErrUnknownPlatform, id)
	}
	return c.platforms[i], nil
}

// FindByName looks a platform up by its display name, the value stored on subscriptions.
func (c *Catalog) FindByName(name string) (models.Platform, bool) {
	for _, p := range c.platforms {
		if p.Name == name {
			return p, true
		}
	}
	return models.Platform{}, false
}

// Plan returns the platform and the details of one of its plans.
func (c *Catalog) Plan(platformID string, plan models.PlanType) (models.Platform, models.PlanDetails, error) {
	p, err := c.Get(platformID)
	if err != nil {
		return models.Platform{}, models.PlanDetails{}, err
	}
	details, ok := p.Plans[plan]
	if !ok {
		return models.Platform{}, models.PlanDetails{}, fmt.Errorf("%w: %s has no %q plan", models.ErrUnknownPlan, p.Name, plan)
	}
	return p, details, nil
}

// PlanTypes lists the plans of p ordered by price.
func PlanTypes(p models.Platform) []models.PlanType {
	out := make([]models.PlanType, 0, len(p.Plans))
	for t := range p.Plans {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return p.Plans[out[i]].Price.LessThan(p.Plans[out[j]].Price)
	})
	return out
}

// Rates returns the static USD rate of every currency.
func (c *Catalog) Rates() map[models.Currency]decimal.Decimal {
	out := make(map[models.Currency]decimal.Decimal, len(c.rates))
	for k, v := range c.rates {
		out[k] = v
	}
	return out
}

// ToUSD converts amount using rates. Unknown currencies convert to zero.
func ToUSD(amount decimal.Decimal, currency models.Currency, rates map[models.Currency]decimal.Decimal) decimal.Decimal {
	rate, ok := rates[currency]
	if !ok {
		return decimal.Zero
	}
	return amount.Mul(rate)
}
