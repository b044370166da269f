package marketdata

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/albert-carrasquel/home-flow/internal/investment/models"
)

type mockCryptoQuoter struct {
	price float64
	err   error
	calls int64
}

func (m *mockCryptoQuoter) GetCryptoPrice(_ context.Context, _, _ string) (float64, error) {
	atomic.AddInt64(&m.calls, 1)
	return m.price, m.err
}

type mockStockQuoter struct {
	price float64
	err   error
	calls int64
}

func (m *mockStockQuoter) GetStockPrice(_ context.Context, _ string) (float64, error) {
	atomic.AddInt64(&m.calls, 1)
	return m.price, m.err
}

func TestGetCurrentPrice_CachesResult(t *testing.T) {
	crypto := &mockCryptoQuoter{price: 42000}
	service := NewPriceService(crypto, &mockStockQuoter{}).(*priceService)

	first, err := service.GetCurrentPrice(context.Background(), "btc", "usd", "Crypto")
	assert.NoError(t, err)
	assert.Equal(t, 42000.0, first)

	second, err := service.GetCurrentPrice(context.Background(), "BTC", "USD", "Crypto")
	assert.NoError(t, err)
	assert.Equal(t, 42000.0, second)
	assert.Equal(t, int64(1), crypto.calls, "second lookup must come from cache")
}

func TestGetCurrentPrice_ExpiredEntryRefetches(t *testing.T) {
	crypto := &mockCryptoQuoter{price: 42000}
	service := NewPriceService(crypto, &mockStockQuoter{}).(*priceService)

	current := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	service.cache.now = func() time.Time { return current }

	_, err := service.GetCurrentPrice(context.Background(), "BTC", "USD", "Crypto")
	assert.NoError(t, err)

	current = current.Add(cacheTTL + time.Second)
	_, err = service.GetCurrentPrice(context.Background(), "BTC", "USD", "Crypto")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), crypto.calls)
}

func TestGetCurrentPrice_AssetTypeRouting(t *testing.T) {
	crypto := &mockCryptoQuoter{price: 42000}
	stocks := &mockStockQuoter{price: 180}
	service := NewPriceService(crypto, stocks)

	price, err := service.GetCurrentPrice(context.Background(), "AAPL", "USD", "Stock")
	assert.NoError(t, err)
	assert.Equal(t, 180.0, price)
	assert.Equal(t, int64(0), crypto.calls)

	price, err = service.GetCurrentPrice(context.Background(), "AAPL", "ARS", "Cedear")
	assert.NoError(t, err)
	assert.Equal(t, 180.0, price)

	_, err = service.GetCurrentPrice(context.Background(), "S31O4", "ARS", "Lecap")
	assert.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestGetCurrentPrice_UpstreamFailure(t *testing.T) {
	crypto := &mockCryptoQuoter{err: errors.New("rate limited")}
	service := NewPriceService(crypto, &mockStockQuoter{})

	_, err := service.GetCurrentPrice(context.Background(), "BTC", "USD", "Crypto")
	assert.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestRefreshPrices_WarmsCache(t *testing.T) {
	crypto := &mockCryptoQuoter{price: 42000}
	stocks := &mockStockQuoter{price: 180}
	service := NewPriceService(crypto, stocks).(*priceService)

	service.RefreshPrices(context.Background(), []PriceRequest{
		{Symbol: "BTC", Currency: "USD", AssetType: "Crypto"},
		{Symbol: "AAPL", Currency: "USD", AssetType: "Stock"},
	})

	price, err := service.GetCurrentPrice(context.Background(), "BTC", "USD", "Crypto")
	assert.NoError(t, err)
	assert.Equal(t, 42000.0, price)
	assert.Equal(t, int64(1), crypto.calls, "refresh already fetched this quote")
}

func TestRefreshPrices_PartialFailureDoesNotBlockOthers(t *testing.T) {
	crypto := &mockCryptoQuoter{err: errors.New("down")}
	stocks := &mockStockQuoter{price: 180}
	service := NewPriceService(crypto, stocks).(*priceService)

	service.RefreshPrices(context.Background(), []PriceRequest{
		{Symbol: "BTC", Currency: "USD", AssetType: "Crypto"},
		{Symbol: "AAPL", Currency: "USD", AssetType: "Stock"},
	})

	price, err := service.GetCurrentPrice(context.Background(), "AAPL", "USD", "Stock")
	assert.NoError(t, err)
	assert.Equal(t, 180.0, price)
	assert.Equal(t, int64(1), stocks.calls)
}

func TestRequestsFromTransactions_DeduplicatesAndSkipsUnquotable(t *testing.T) {
	txs := []models.Transaction{
		{Asset: "BTC", Currency: "USD", AssetType: "Crypto"},
		{Asset: "BTC", Currency: "USD", AssetType: "Crypto"},
		{Asset: "AAPL", Currency: "ARS", AssetType: "Cedear"},
		{Asset: "S31O4", Currency: "ARS", AssetType: "Lecap"},
	}

	requests := RequestsFromTransactions(txs)
	assert.Len(t, requests, 2)
	assert.Equal(t, "BTC", requests[0].Symbol)
	assert.Equal(t, "AAPL", requests[1].Symbol)
}
