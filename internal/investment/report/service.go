package report

import (
	"context"
	"strings"

	"github.com/albert-carrasquel/home-flow/internal/investment/models"
	transactions "github.com/albert-carrasquel/home-flow/internal/investment/transaction"
)

// TransactionSource supplies the transaction snapshot. The engine itself
// never touches storage; this seam is the whole persistence contract.
type TransactionSource interface {
	GetAllTransactions(ctx context.Context, filter transactions.Filter) ([]models.Transaction, error)
}

type Service interface {
	ComputeReport(ctx context.Context, filter transactions.Filter) (*Report, error)
}

type service struct {
	transactionSource TransactionSource
}

func NewReportService(transactionSource TransactionSource) Service {
	return &service{transactionSource: transactionSource}
}

// ComputeReport recomputes the full report from history on every call. There
// is no cached or incremental state: a voided or corrected record simply
// changes the next computation's input.
func (s *service) ComputeReport(ctx context.Context, filter transactions.Filter) (*Report, error) {
	filter.IncludeVoided = false
	stored, err := s.transactionSource.GetAllTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}
	return Compute(toEngineTransactions(stored))
}

// toEngineTransactions maps storage records to plain engine input, covering
// the caller-side duties: voided records are already filtered by the source,
// symbols are upper-cased here once more in case legacy rows predate
// normalized writes.
func toEngineTransactions(stored []models.Transaction) []Transaction {
	result := make([]Transaction, 0, len(stored))
	for _, t := range stored {
		result = append(result, Transaction{
			OwnerID:       t.UserID,
			Asset:         strings.ToUpper(t.Asset),
			Currency:      strings.ToUpper(t.Currency),
			OperationType: t.OperationType,
			Quantity:      t.Quantity,
			UnitPrice:     t.UnitPrice,
			Commission:    t.Commission,
			EffectiveDate: t.EffectiveDate,
		})
	}
	return result
}
