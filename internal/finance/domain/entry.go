package domain

import (
	"database/sql"
	"math"
	"time"

	"github.com/albert-carrasquel/home-flow/internal/finance/errors"
)

const (
	EntryTypeIncome  = "income"
	EntryTypeExpense = "expense"
)

type CashflowEntryRepository interface {
	Save(entry CashflowEntry) error
	SaveWithTransaction(entry CashflowEntry, tx *sql.Tx) error
	BeginTransaction() (*sql.Tx, error)
	FindByUser(userID string) ([]CashflowEntry, error)
	FindByID(entryID string) (*CashflowEntry, error)
	Update(entry CashflowEntry) error
	Void(entryID, voidedBy string) (int64, error)
	VoidWithTransaction(entryID, voidedBy string, tx *sql.Tx) (int64, error)
	GetEntriesInDateRange(userID string, startDate, endDate time.Time) ([]CashflowEntry, error)
	GetEntriesByType(userID, entryType string, startDate, endDate time.Time, limit, page int) ([]CashflowEntry, error)
}

// CashflowEntry is one household income or expense record. Entries are never
// hard-deleted; voiding keeps them in the history but out of every summary.
type CashflowEntry struct {
	ID                   string     `json:"id"`
	UserID               string     `json:"user_id"`
	Amount               float64    `json:"amount"`
	Type                 string     `json:"type"`
	Date                 time.Time  `json:"date"`
	Description          string     `json:"description"`
	PredefinedCategoryID int        `json:"predefined_category_id"`
	UserCategoryID       *int       `json:"user_category_id,omitempty"`
	PaymentMethodID      int        `json:"payment_method_id"`
	PaymentSourceID      *int       `json:"payment_source_id,omitempty"`
	Voided               bool       `json:"voided"`
	VoidedAt             *time.Time `json:"voided_at,omitempty"`
	VoidedBy             *string    `json:"voided_by,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

func IsValidEntryType(entryType string) bool {
	return entryType == EntryTypeIncome || entryType == EntryTypeExpense
}

func (e *CashflowEntry) RoundToTwoDecimalPlaces() {
	e.Amount = math.Round(e.Amount*100) / 100
}

func (e *CashflowEntry) Validate() error {
	if e.Amount <= 0 {
		return errors.NewValidationError("Amount must be greater than zero")
	}
	if !IsValidEntryType(e.Type) {
		return errors.NewValidationError("Type must be 'income' or 'expense'")
	}
	if len(e.Description) > 200 {
		return errors.NewValidationError("Description must be of length less than 200")
	}
	if e.Date.IsZero() {
		return errors.NewValidationError("Date is required")
	}
	return nil
}
