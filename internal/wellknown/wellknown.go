package wellknown

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mannapay/mannapay/internal/models"
	"github.com/mannapay/mannapay/pkg/logger"
)

const (
	DefaultRefreshInterval = time.Hour

	initialBackoff = 5 * time.Second
	maxBackoff     = 5 * time.Minute
)

// RatesResponse is the remote rates document: {"rates": {"BTC": 45000, ...}}.
// Rates may be JSON numbers or strings.
type RatesResponse struct {
	Rates     map[string]decimal.Decimal `json:"rates"`
	UpdatedAt string                     `json:"updatedAt,omitempty"`
}

// RateService fetches USD rates from a remote JSON document and keeps them in memory.
// Currencies missing from the document keep their fallback rate.
type RateService struct {
	logger   *logger.Logger
	url      string
	interval time.Duration
	client   *http.Client

	// In-memory cache
	rates      map[models.Currency]decimal.Decimal
	fetchedAt  time.Time
	cacheMutex sync.RWMutex

	// Lifecycle management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRateService creates a rate service seeded with the fallback rates.
// An empty url disables fetching.
func NewRateService(url string, interval time.Duration, fallback map[models.Currency]decimal.Decimal, logger *logger.Logger) *RateService {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	rates := make(map[models.Currency]decimal.Decimal, len(fallback))
	for k, v := range fallback {
		rates[k] = v
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &RateService{
		logger:   logger.Named("rates"),
		url:      url,
		interval: interval,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		rates:  rates,
		ctx:    ctx,
		cancel: cancel,
	}
}

// FetchAndUpdateRates fetches the rates document and merges it into the cache.
func (s *RateService) FetchAndUpdateRates(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("failed to build rates request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var ratesResp RatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&ratesResp); err != nil {
		return fmt.Errorf("failed to decode rates response: %w", err)
	}

	updated := 0
	s.cacheMutex.Lock()
	for symbol, rate := range ratesResp.Rates {
		cur := models.Currency(strings.ToUpper(symbol))
		if !cur.Valid() {
			s.logger.Debugw("skipping unsupported currency", "symbol", symbol)
			continue
		}
		if rate.IsNegative() {
			s.logger.Warnw("skipping negative rate", "symbol", symbol, "rate", rate.String())
			continue
		}
		s.rates[cur] = rate
		updated++
	}
	s.fetchedAt = time.Now()
	s.cacheMutex.Unlock()

	s.logger.Infow("rates updated", "count", updated)
	return nil
}

// Rates returns a copy of the cached rates (thread-safe).
func (s *RateService) Rates() map[models.Currency]decimal.Decimal {
	s.cacheMutex.RLock()
	defer s.cacheMutex.RUnlock()

	out := make(map[models.Currency]decimal.Decimal, len(s.rates))
	for k, v := range s.rates {
		out[k] = v
	}
	return out
}

// FetchedAt returns when the rates were last fetched, zero if never.
func (s *RateService) FetchedAt() time.Time {
	s.cacheMutex.RLock()
	defer s.cacheMutex.RUnlock()
	return s.fetchedAt
}

// StartPeriodicUpdate fetches the rates until the first success, backing off
// between attempts, then refreshes them every interval.
func (s *RateService) StartPeriodicUpdate() {
	if s.url == "" {
		s.logger.Info("No rates URL configured, using static rates")
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		backoff := initialBackoff
		for {
			if err := s.FetchAndUpdateRates(s.ctx); err != nil {
				s.logger.Errorw("Failed to fetch rates on startup, retrying...", "error", err, "retry_in", backoff)

				select {
				case <-time.After(backoff):
					backoff = backoff * 2
					if backoff > maxBackoff {
						backoff = maxBackoff
					}
					continue
				case <-s.ctx.Done():
					s.logger.Info("Rate service stopped during initial fetch")
					return
				}
			}
			break
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.FetchAndUpdateRates(s.ctx); err != nil {
					s.logger.Errorw("Failed to fetch rates during periodic update", "error", err)
				}
			case <-s.ctx.Done():
				s.logger.Info("Rate service periodic update stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the periodic update.
func (s *RateService) Stop() {
	s.cancel()
	s.wg.Wait()
}
