package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/albert-carrasquel/home-flow/internal/investment/models"
	transactions "github.com/albert-carrasquel/home-flow/internal/investment/transaction"
)

type mockTransactionSource struct {
	transactions []models.Transaction
	lastFilter   transactions.Filter
}

func (m *mockTransactionSource) GetAllTransactions(_ context.Context, filter transactions.Filter) ([]models.Transaction, error) {
	m.lastFilter = filter
	var result []models.Transaction
	for _, t := range m.transactions {
		if t.Voided && !filter.IncludeVoided {
			continue
		}
		if filter.Asset != "" && t.Asset != filter.Asset {
			continue
		}
		result = append(result, t)
	}
	return result, nil
}

func storedTx(owner, asset string, operation string, quantity, price float64, date time.Time) models.Transaction {
	return models.Transaction{
		UserID:        owner,
		Asset:         asset,
		Currency:      "USD",
		OperationType: operation,
		Quantity:      quantity,
		UnitPrice:     price,
		EffectiveDate: date,
	}
}

func TestComputeReport_VoidedNeverReachesEngine(t *testing.T) {
	voided := storedTx("albert", "AAPL", models.OperationSell, 100, 150, day(2))
	voided.Voided = true

	source := &mockTransactionSource{transactions: []models.Transaction{
		storedTx("albert", "AAPL", models.OperationBuy, 10, 100, day(1)),
		voided, // would be an oversell if it were included
	}}
	service := NewReportService(source)

	result, err := service.ComputeReport(context.Background(), transactions.Filter{IncludeVoided: true})
	assert.NoError(t, err)
	assert.False(t, source.lastFilter.IncludeVoided, "report service must force voided exclusion")
	assert.Empty(t, result.ClosedTrades)
	assert.Len(t, result.OpenPositions, 1)
}

func TestComputeReport_LowercaseLegacySymbolsAreNormalized(t *testing.T) {
	source := &mockTransactionSource{transactions: []models.Transaction{
		storedTx("albert", "BTC", models.OperationBuy, 1, 30000, day(1)),
		storedTx("albert", "btc", models.OperationSell, 1, 40000, day(2)),
	}}
	// The legacy lowercase row belongs to the same FIFO sequence.
	service := NewReportService(source)

	result, err := service.ComputeReport(context.Background(), transactions.Filter{})
	assert.NoError(t, err)
	assert.Len(t, result.ClosedTrades, 1)
	assert.Equal(t, "BTC", result.ClosedTrades[0].Asset)
	assert.Empty(t, result.OpenPositions)
}

func TestComputeReport_FilterIsForwarded(t *testing.T) {
	source := &mockTransactionSource{transactions: []models.Transaction{
		storedTx("albert", "AAPL", models.OperationBuy, 10, 100, day(1)),
		storedTx("albert", "BTC", models.OperationBuy, 1, 30000, day(1)),
	}}
	service := NewReportService(source)

	result, err := service.ComputeReport(context.Background(), transactions.Filter{Asset: "BTC"})
	assert.NoError(t, err)
	assert.Equal(t, "BTC", source.lastFilter.Asset)
	assert.Len(t, result.OpenPositions, 1)
	assert.Equal(t, "BTC", result.OpenPositions[0].Asset)
}
