package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// coinGeckoSymbolMap translates ticker symbols to CoinGecko coin IDs.
var coinGeckoSymbolMap = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"USDT":  "tether",
	"USDC":  "usd-coin",
	"BNB":   "binancecoin",
	"SOL":   "solana",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"TRX":   "tron",
	"MATIC": "matic-network",
	"DOT":   "polkadot",
	"LTC":   "litecoin",
	"SHIB":  "shiba-inu",
	"UNI":   "uniswap",
	"LINK":  "chainlink",
	"AVAX":  "avalanche-2",
	"XLM":   "stellar",
	"ATOM":  "cosmos",
	"FIL":   "filecoin",
}

type CoinGeckoClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewCoinGeckoClient() *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL:    "https://api.coingecko.com/api/v3",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetCryptoPrice quotes one crypto symbol in the given currency. Unknown
// symbols return an error so callers can fall back gracefully.
func (c *CoinGeckoClient) GetCryptoPrice(ctx context.Context, symbol, currency string) (float64, error) {
	coinID, exists := coinGeckoSymbolMap[strings.ToUpper(symbol)]
	if !exists {
		return 0, fmt.Errorf("no CoinGecko mapping for symbol %s", symbol)
	}

	vsCurrency := strings.ToLower(currency)
	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s", c.baseURL, coinID, vsCurrency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("error querying CoinGecko: %s", resp.Status)
	}

	var results map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, err
	}

	price, exists := results[coinID][vsCurrency]
	if !exists {
		return 0, fmt.Errorf("CoinGecko returned no %s price for %s", currency, symbol)
	}
	return price, nil
}
