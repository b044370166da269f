package report

import (
	"time"
)

const (
	OperationBuy  = "buy"
	OperationSell = "sell"
)

// quantityTolerance absorbs floating point residue when lots are split by
// repeating decimals. A lot below this remainder counts as fully consumed.
const quantityTolerance = 1e-4

// Transaction is the engine's input record. Callers are responsible for
// excluding voided transactions, upper-casing asset symbols and resolving the
// effective trade date before building these records.
type Transaction struct {
	OwnerID       string    `json:"owner_id"`
	Asset         string    `json:"asset"`
	Currency      string    `json:"currency"`
	OperationType string    `json:"operation_type"`
	Quantity      float64   `json:"quantity"`
	UnitPrice     float64   `json:"unit_price"`
	Commission    float64   `json:"commission"`
	EffectiveDate time.Time `json:"effective_date"`
}

func (t *Transaction) validate() error {
	if t.OwnerID == "" {
		return NewValidationError("Owner ID is required")
	}
	if t.Asset == "" {
		return NewValidationError("Asset symbol is required")
	}
	if t.Currency == "" {
		return NewValidationError("Currency is required")
	}
	if t.OperationType != OperationBuy && t.OperationType != OperationSell {
		return NewValidationError("Operation type must be 'buy' or 'sell'")
	}
	if t.Quantity <= 0 {
		return NewValidationError("Quantity must be greater than zero")
	}
	if t.UnitPrice <= 0 {
		return NewValidationError("Unit price must be greater than zero")
	}
	if t.Commission < 0 {
		return NewValidationError("Commission must not be negative")
	}
	if t.EffectiveDate.IsZero() {
		return NewValidationError("Effective date is required")
	}
	return nil
}

// MatchedLot is one purchase slice consumed by a sale.
type MatchedLot struct {
	AcquisitionDate time.Time `json:"acquisition_date"`
	Quantity        float64   `json:"quantity"`
	UnitCost        float64   `json:"unit_cost"`
}

// ClosedTrade is one sale's full FIFO resolution.
type ClosedTrade struct {
	OwnerID       string       `json:"owner_id"`
	Asset         string       `json:"asset"`
	Currency      string       `json:"currency"`
	QuantitySold  float64      `json:"quantity_sold"`
	SaleUnitPrice float64      `json:"sale_unit_price"`
	SaleDate      time.Time    `json:"sale_date"`
	MatchedLots   []MatchedLot `json:"matched_lots"`
	CostBasis     float64      `json:"cost_basis"`
	Proceeds      float64      `json:"proceeds"`
	NetPnL        float64      `json:"net_pnl"`
	PnLPct        float64      `json:"pnl_pct"`
}

// AssetSummary aggregates the closed trades of one (owner, asset, currency)
// group. Groups without a single closed trade are not reported here.
type AssetSummary struct {
	OwnerID          string  `json:"owner_id"`
	Asset            string  `json:"asset"`
	Currency         string  `json:"currency"`
	QuantityClosed   float64 `json:"quantity_closed"`
	AverageBuyPrice  float64 `json:"average_buy_price"`
	AverageSellPrice float64 `json:"average_sell_price"`
	TotalInvested    float64 `json:"total_invested"`
	TotalRecovered   float64 `json:"total_recovered"`
	NetPnL           float64 `json:"net_pnl"`
	PnLPct           float64 `json:"pnl_pct"`
}

// OpenLot is the unconsumed remainder of one purchase.
type OpenLot struct {
	AcquisitionDate time.Time `json:"acquisition_date"`
	Quantity        float64   `json:"quantity"`
	UnitCost        float64   `json:"unit_cost"`
	CapitalInvested float64   `json:"capital_invested"`
}

// OpenPosition collapses a group's remaining lot queue.
type OpenPosition struct {
	OwnerID           string    `json:"owner_id"`
	Asset             string    `json:"asset"`
	Currency          string    `json:"currency"`
	QuantityRemaining float64   `json:"quantity_remaining"`
	AverageCost       float64   `json:"average_cost"`
	CapitalInvested   float64   `json:"capital_invested"`
	Lots              []OpenLot `json:"lots"`
}

// GlobalSummary sums realized figures across every group regardless of
// currency. The engine never converts; presentation splits by currency.
type GlobalSummary struct {
	TotalInvested  float64 `json:"total_invested"`
	TotalRecovered float64 `json:"total_recovered"`
	NetPnL         float64 `json:"net_pnl"`
	PnLPct         float64 `json:"pnl_pct"`
}

type Report struct {
	GlobalSummary GlobalSummary  `json:"global_summary"`
	PerAsset      []AssetSummary `json:"per_asset"`
	ClosedTrades  []ClosedTrade  `json:"closed_trades"`
	OpenPositions []OpenPosition `json:"open_positions"`
}

func emptyReport() *Report {
	return &Report{
		PerAsset:      []AssetSummary{},
		ClosedTrades:  []ClosedTrade{},
		OpenPositions: []OpenPosition{},
	}
}
