package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type FinancialModelingPrepClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewFMPClient(apiKey string) *FinancialModelingPrepClient {
	return &FinancialModelingPrepClient{
		apiKey:     apiKey,
		baseURL:    "https://financialmodelingprep.com/api/v3",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetStockPrice quotes one stock or Cedear symbol. FMP quotes in the
// exchange's native currency; the caller decides whether that matches the
// requested currency.
func (c *FinancialModelingPrepClient) GetStockPrice(ctx context.Context, symbol string) (float64, error) {
	quoteURL := fmt.Sprintf("%s/quote-short/%s?apikey=%s", c.baseURL, url.PathEscape(symbol), c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, quoteURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("error querying FMP: %s", resp.Status)
	}

	var results []struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("symbol %s not found", symbol)
	}
	return results[0].Price, nil
}
