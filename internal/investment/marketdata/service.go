package marketdata

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/albert-carrasquel/home-flow/internal/investment/models"
)

var ErrPriceUnavailable = errors.New("current price unavailable")

type cryptoQuoter interface {
	GetCryptoPrice(ctx context.Context, symbol, currency string) (float64, error)
}

type stockQuoter interface {
	GetStockPrice(ctx context.Context, symbol string) (float64, error)
}

// PriceRequest identifies one quote to look up.
type PriceRequest struct {
	Symbol    string `json:"symbol"`
	Currency  string `json:"currency"`
	AssetType string `json:"asset_type"`
}

type PriceService interface {
	GetCurrentPrice(ctx context.Context, symbol, currency, assetType string) (float64, error)
	RefreshPrices(ctx context.Context, requests []PriceRequest)
}

type priceService struct {
	cache  *priceCache
	crypto cryptoQuoter
	stocks stockQuoter
}

func NewPriceService(crypto cryptoQuoter, stocks stockQuoter) PriceService {
	return &priceService{
		cache:  newPriceCache(),
		crypto: crypto,
		stocks: stocks,
	}
}

// GetCurrentPrice returns a cached quote when fresh, otherwise asks the
// upstream API for the asset type and caches the result.
func (s *priceService) GetCurrentPrice(ctx context.Context, symbol, currency, assetType string) (float64, error) {
	symbol = strings.ToUpper(symbol)
	currency = strings.ToUpper(currency)

	if price, ok := s.cache.get(symbol, currency, assetType); ok {
		return price, nil
	}

	price, err := s.fetchPrice(ctx, symbol, currency, assetType)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPriceUnavailable, err)
	}

	s.cache.set(symbol, currency, assetType, price)
	return price, nil
}

func (s *priceService) fetchPrice(ctx context.Context, symbol, currency, assetType string) (float64, error) {
	switch assetType {
	case "Crypto":
		return s.crypto.GetCryptoPrice(ctx, symbol, currency)
	case "Stock", "Cedear":
		return s.stocks.GetStockPrice(ctx, symbol)
	default:
		// Lecaps, bills and bonds have no public quote feed.
		return 0, fmt.Errorf("asset type %s has no quote source", assetType)
	}
}

// RefreshPrices warms the cache for a batch of quotes. Individual failures
// are logged and skipped so one dead symbol does not block the rest.
func (s *priceService) RefreshPrices(ctx context.Context, requests []PriceRequest) {
	if len(requests) == 0 {
		log.Println("No prices to be refreshed")
		return
	}

	var wg sync.WaitGroup

	maxGoroutines := 10
	sem := make(chan struct{}, maxGoroutines)

	for _, request := range requests {
		wg.Add(1)
		sem <- struct{}{}
		go func(r PriceRequest) {
			defer wg.Done()
			defer func() { <-sem }()

			symbol := strings.ToUpper(r.Symbol)
			currency := strings.ToUpper(r.Currency)

			price, err := s.fetchPrice(ctx, symbol, currency, r.AssetType)
			if err != nil {
				log.Printf("Error refreshing price for %s (%s): %v", symbol, r.AssetType, err)
				return
			}
			s.cache.set(symbol, currency, r.AssetType, price)
		}(request)
	}

	wg.Wait()
}

// RequestsFromTransactions derives the distinct quotes worth refreshing from
// the transaction history, skipping asset types with no quote source.
func RequestsFromTransactions(txs []models.Transaction) []PriceRequest {
	seen := make(map[string]bool)
	var requests []PriceRequest
	for _, tx := range txs {
		if tx.AssetType != "Crypto" && tx.AssetType != "Stock" && tx.AssetType != "Cedear" {
			continue
		}
		key := cacheKey(tx.Asset, tx.Currency, tx.AssetType)
		if seen[key] {
			continue
		}
		seen[key] = true
		requests = append(requests, PriceRequest{Symbol: tx.Asset, Currency: tx.Currency, AssetType: tx.AssetType})
	}
	return requests
}
