package transactions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	investmentErrors "github.com/albert-carrasquel/home-flow/internal/investment/errors"
	"github.com/albert-carrasquel/home-flow/internal/investment/models"
)

func validTransaction() *models.Transaction {
	return &models.Transaction{
		Asset:         "btc",
		AssetType:     "Crypto",
		Currency:      "usd",
		OperationType: models.OperationBuy,
		Quantity:      0.5,
		UnitPrice:     30000,
		EffectiveDate: time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateTransaction_NormalizesAndStores(t *testing.T) {
	repo := &MockTransactionRepository{}
	service := NewTransactionService(repo)

	transaction := validTransaction()
	err := service.CreateTransaction(context.Background(), "albert", transaction)
	assert.NoError(t, err)

	assert.Len(t, repo.Transactions, 1)
	stored := repo.Transactions[0]
	assert.Equal(t, "BTC", stored.Asset)
	assert.Equal(t, "USD", stored.Currency)
	assert.Equal(t, "albert", stored.UserID)
	assert.InDelta(t, 15000.0, stored.OperationTotal, 1e-9)
	assert.False(t, stored.Voided)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", stored.ID.String())
}

func TestCreateTransaction_RejectsInvalidRecords(t *testing.T) {
	repo := &MockTransactionRepository{}
	service := NewTransactionService(repo)

	cases := []struct {
		name   string
		mutate func(tx *models.Transaction)
	}{
		{"zero quantity", func(tx *models.Transaction) { tx.Quantity = 0 }},
		{"negative price", func(tx *models.Transaction) { tx.UnitPrice = -1 }},
		{"negative commission", func(tx *models.Transaction) { tx.Commission = -0.5 }},
		{"unknown operation", func(tx *models.Transaction) { tx.OperationType = "short" }},
		{"unsupported currency", func(tx *models.Transaction) { tx.Currency = "EUR" }},
		{"date before 2020", func(tx *models.Transaction) {
			tx.EffectiveDate = time.Date(2019, time.December, 31, 0, 0, 0, 0, time.UTC)
		}},
		{"future date", func(tx *models.Transaction) { tx.EffectiveDate = time.Now().Add(72 * time.Hour) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			transaction := validTransaction()
			tc.mutate(transaction)
			err := service.CreateTransaction(context.Background(), "albert", transaction)
			assert.True(t, investmentErrors.IsValidationError(err), "expected validation error, got: %v", err)
		})
	}
	assert.Empty(t, repo.Transactions)
}

func TestCreateTransaction_CanonicalizesAssetType(t *testing.T) {
	repo := &MockTransactionRepository{}
	service := NewTransactionService(repo)

	transaction := validTransaction()
	transaction.AssetType = "crypto"
	assert.NoError(t, service.CreateTransaction(context.Background(), "albert", transaction))

	assert.Equal(t, "Crypto", repo.Transactions[0].AssetType)
}

func TestGetTransaction_OwnerOnly(t *testing.T) {
	repo := &MockTransactionRepository{}
	service := NewTransactionService(repo)

	transaction := validTransaction()
	assert.NoError(t, service.CreateTransaction(context.Background(), "albert", transaction))

	got, err := service.GetTransaction(context.Background(), "albert", transaction.ID)
	assert.NoError(t, err)
	assert.Equal(t, transaction.ID, got.ID)

	_, err = service.GetTransaction(context.Background(), "haydee", transaction.ID)
	assert.ErrorIs(t, err, ErrUnauthorizedAccess)

	_, err = service.GetTransaction(context.Background(), "albert", uuid.New())
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestVoidTransaction(t *testing.T) {
	repo := &MockTransactionRepository{}
	service := NewTransactionService(repo)

	transaction := validTransaction()
	assert.NoError(t, service.CreateTransaction(context.Background(), "albert", transaction))

	err := service.VoidTransaction(context.Background(), transaction.ID, "haydee")
	assert.NoError(t, err)
	assert.True(t, repo.Transactions[0].Voided)
	assert.Equal(t, "haydee", *repo.Transactions[0].VoidedBy)

	// Voiding twice is rejected, not silently absorbed.
	err = service.VoidTransaction(context.Background(), transaction.ID, "haydee")
	assert.ErrorIs(t, err, ErrTransactionAlreadyVoided)
}

func TestVoidTransaction_NotFound(t *testing.T) {
	repo := &MockTransactionRepository{}
	service := NewTransactionService(repo)

	transaction := validTransaction()
	assert.NoError(t, service.CreateTransaction(context.Background(), "albert", transaction))

	err := service.VoidTransaction(context.Background(), uuid.New(), "albert")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestListActive_ExcludesVoided(t *testing.T) {
	repo := &MockTransactionRepository{}
	service := NewTransactionService(repo)

	first := validTransaction()
	second := validTransaction()
	assert.NoError(t, service.CreateTransaction(context.Background(), "albert", first))
	assert.NoError(t, service.CreateTransaction(context.Background(), "albert", second))
	assert.NoError(t, service.VoidTransaction(context.Background(), first.ID, "albert"))

	active, err := service.ListActive(context.Background())
	assert.NoError(t, err)
	assert.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)
}

func TestGetAllTransactions_Filters(t *testing.T) {
	repo := &MockTransactionRepository{}
	service := NewTransactionService(repo)

	btc := validTransaction()
	aapl := validTransaction()
	aapl.Asset = "AAPL"
	aapl.AssetType = "Stock"
	aapl.OperationType = models.OperationSell
	assert.NoError(t, service.CreateTransaction(context.Background(), "albert", btc))
	assert.NoError(t, service.CreateTransaction(context.Background(), "haydee", aapl))

	byAsset, err := service.GetAllTransactions(context.Background(), Filter{Asset: "BTC"})
	assert.NoError(t, err)
	assert.Len(t, byAsset, 1)
	assert.Equal(t, "BTC", byAsset[0].Asset)

	sells, err := service.GetAllTransactions(context.Background(), Filter{OperationType: models.OperationSell})
	assert.NoError(t, err)
	assert.Len(t, sells, 1)
	assert.Equal(t, "AAPL", sells[0].Asset)

	none, err := service.GetAllTransactions(context.Background(), Filter{Asset: "ETH"})
	assert.NoError(t, err)
	assert.Empty(t, none)
}
