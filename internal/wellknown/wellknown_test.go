package wellknown

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mannapay/mannapay/internal/models"
	"github.com/mannapay/mannapay/pkg/logger"
)

func fallback() map[models.Currency]decimal.Decimal {
	return map[models.Currency]decimal.Decimal{
		models.BTC:  decimal.NewFromInt(45000),
		models.ETH:  decimal.NewFromInt(3000),
		models.USDC: decimal.NewFromInt(1),
	}
}

func TestRatesFallbackWithoutURL(t *testing.T) {
	s := NewRateService("", 0, fallback(), logger.NewNop())
	s.StartPeriodicUpdate()
	defer s.Stop()

	rates := s.Rates()
	assert.True(t, rates[models.BTC].Equal(decimal.NewFromInt(45000)))
	assert.True(t, s.FetchedAt().IsZero())
}

func TestFetchAndUpdateRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rates": {"btc": 61234.5, "ETH": "2999.99", "DOGE": 0.1, "DAI": -1}}`))
	}))
	defer srv.Close()

	s := NewRateService(srv.URL, time.Hour, fallback(), logger.NewNop())
	require.NoError(t, s.FetchAndUpdateRates(context.Background()))

	rates := s.Rates()
	assert.True(t, rates[models.BTC].Equal(decimal.RequireFromString("61234.5")))
	assert.True(t, rates[models.ETH].Equal(decimal.RequireFromString("2999.99")))
	assert.True(t, rates[models.USDC].Equal(decimal.NewFromInt(1)))
	_, ok := rates[models.DAI]
	assert.False(t, ok)
	assert.False(t, s.FetchedAt().IsZero())
}

func TestFetchAndUpdateRatesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewRateService(srv.URL, time.Hour, fallback(), logger.NewNop())
	assert.Error(t, s.FetchAndUpdateRates(context.Background()))
	assert.True(t, s.Rates()[models.BTC].Equal(decimal.NewFromInt(45000)))
}

func TestPeriodicUpdate(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"rates": {"BTC": "50000"}}`))
	}))
	defer srv.Close()

	s := NewRateService(srv.URL, 10*time.Millisecond, fallback(), logger.NewNop())
	s.StartPeriodicUpdate()

	require.Eventually(t, func() bool { return hits.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	s.Stop()
	assert.True(t, s.Rates()[models.BTC].Equal(decimal.NewFromInt(50000)))
}
