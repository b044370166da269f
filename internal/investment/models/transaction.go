package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	investmentErrors "github.com/albert-carrasquel/home-flow/internal/investment/errors"
)

const (
	OperationBuy  = "buy"
	OperationSell = "sell"
)

var SupportedCurrencies = []string{"ARS", "USD"}

var SupportedAssetTypes = []string{"Crypto", "Stock", "Cedear", "Lecap", "Bill", "Bond"}

// Transaction is the stored investment operation. Records are append-only:
// corrections happen by voiding, never by deleting, so the trade history that
// feeds the P&L report stays auditable.
type Transaction struct {
	ID             uuid.UUID  `json:"id"`
	UserID         string     `json:"user_id"`
	Asset          string     `json:"asset"`
	AssetName      string     `json:"asset_name,omitempty"`
	AssetType      string     `json:"asset_type,omitempty"`
	Currency       string     `json:"currency"`
	OperationType  string     `json:"operation_type"`
	Quantity       float64    `json:"quantity"`
	UnitPrice      float64    `json:"unit_price"`
	Commission     float64    `json:"commission"`
	OperationTotal float64    `json:"operation_total"`
	EffectiveDate  time.Time  `json:"effective_date"`
	Voided         bool       `json:"voided"`
	VoidedAt       *time.Time `json:"voided_at,omitempty"`
	VoidedBy       *string    `json:"voided_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Normalize upper-cases the asset symbol, canonicalizes the asset type and
// fills the derived operation total, so every downstream consumer sees one
// canonical form.
func (t *Transaction) Normalize() {
	t.Asset = strings.ToUpper(strings.TrimSpace(t.Asset))
	t.Currency = strings.ToUpper(strings.TrimSpace(t.Currency))
	t.AssetType = canonicalAssetType(t.AssetType)
	if t.OperationTotal == 0 {
		t.OperationTotal = t.Quantity * t.UnitPrice
	}
}

// canonicalAssetType maps a case-insensitive match to the supported spelling.
// Quote routing compares asset types exactly, so "crypto" must be stored as
// "Crypto" to ever receive a price.
func canonicalAssetType(value string) string {
	value = strings.TrimSpace(value)
	for _, supported := range SupportedAssetTypes {
		if strings.EqualFold(value, supported) {
			return supported
		}
	}
	return value
}

func (t *Transaction) Validate() error {
	if t.Asset == "" {
		return investmentErrors.NewValidationError("Asset symbol is required")
	}
	if t.OperationType != OperationBuy && t.OperationType != OperationSell {
		return investmentErrors.NewValidationError("Operation type must be 'buy' or 'sell'")
	}
	if !isSupported(t.Currency, SupportedCurrencies) {
		return investmentErrors.NewValidationError("Currency must be one of: " + strings.Join(SupportedCurrencies, ", "))
	}
	if t.AssetType != "" && !isSupported(t.AssetType, SupportedAssetTypes) {
		return investmentErrors.NewValidationError("Unknown asset type: " + t.AssetType)
	}
	if t.Quantity <= 0 {
		return investmentErrors.NewValidationError("Quantity must be greater than zero")
	}
	if t.UnitPrice <= 0 {
		return investmentErrors.NewValidationError("Unit price must be greater than zero")
	}
	if t.Commission < 0 {
		return investmentErrors.NewValidationError("Commission must not be negative")
	}
	return t.validateEffectiveDate()
}

// validateEffectiveDate keeps trade dates inside a sane range: the tracker
// started in 2020 and a date more than a day ahead is a typo, not a trade.
func (t *Transaction) validateEffectiveDate() error {
	if t.EffectiveDate.IsZero() {
		return investmentErrors.NewValidationError("Effective date is required")
	}
	minDate := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	if t.EffectiveDate.Before(minDate) {
		return investmentErrors.NewValidationError("Effective date cannot be before 2020")
	}
	if t.EffectiveDate.After(time.Now().Add(24 * time.Hour)) {
		return investmentErrors.NewValidationError("Effective date cannot be in the future")
	}
	return nil
}

func isSupported(value string, supported []string) bool {
	for _, s := range supported {
		if strings.EqualFold(value, s) {
			return true
		}
	}
	return false
}
