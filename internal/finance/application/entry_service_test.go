package application

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/albert-carrasquel/home-flow/internal/finance/domain"
	financeErrors "github.com/albert-carrasquel/home-flow/internal/finance/errors"
	"github.com/albert-carrasquel/home-flow/internal/finance/infrastructure"
)

// Helper function to compare floating-point values
func areEqualRounded(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestGetEntrySummary_MultipleYearsMonthsWeeks(t *testing.T) {
	repo := &infrastructure.MockEntryRepository{
		Entries: []domain.CashflowEntry{
			// 2025
			{Date: time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC), Type: "income", Amount: 100.12},
			{Date: time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), Type: "expense", Amount: 50.55},
			{Date: time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC), Type: "income", Amount: 300.45},
			{Date: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), Type: "income", Amount: 100.12},
			{Date: time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC), Type: "expense", Amount: 75.55},
			{Date: time.Date(2025, time.April, 5, 0, 0, 0, 0, time.UTC), Type: "income", Amount: 200.45},

			// 2024
			{Date: time.Date(2024, time.November, 20, 0, 0, 0, 0, time.UTC), Type: "income", Amount: 150.12},
			{Date: time.Date(2024, time.December, 10, 0, 0, 0, 0, time.UTC), Type: "expense", Amount: 60.55},
			{Date: time.Date(2024, time.December, 25, 0, 0, 0, 0, time.UTC), Type: "income", Amount: 120.45},
			{Date: time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC), Type: "expense", Amount: 45.55},
		},
	}
	categoryService := &MockCategoryService{}
	service := NewCashflowEntryService(repo, categoryService, &PaymentService{})

	startDate, _ := time.Parse("2006-01-02", "2024-01-01")
	endDate, _ := time.Parse("2006-01-02", "2025-12-31")

	summary, err := service.GetEntrySummary("albert", startDate, endDate)
	assert.NoError(t, err)

	year2025 := summary[2025]
	assert.True(t, areEqualRounded(year2025.IncomeTotal, 701.14), fmt.Sprintf("Expected income total for 2025 to be 701.14, got: %v", year2025.IncomeTotal))
	assert.True(t, areEqualRounded(year2025.ExpenseTotal, 126.1), fmt.Sprintf("Expected expense total for 2025 to be 126.10, got: %v", year2025.ExpenseTotal))

	january := year2025.Months["January"]
	assert.True(t, areEqualRounded(january.IncomeTotal, 100.12), fmt.Sprintf("Expected January 2025 income to be 100.12, got: %v", january.IncomeTotal))
	assert.True(t, areEqualRounded(january.ExpenseTotal, 50.55), fmt.Sprintf("Expected January 2025 expense to be 50.55, got: %v", january.ExpenseTotal))

	march := year2025.Months["March"]
	assert.True(t, areEqualRounded(march.IncomeTotal, 400.57), fmt.Sprintf("Expected March 2025 income to be 400.57, got: %v", march.IncomeTotal))
	assert.True(t, areEqualRounded(march.ExpenseTotal, 75.55), fmt.Sprintf("Expected March 2025 expense to be 75.55, got: %v", march.ExpenseTotal))

	april := year2025.Months["April"]
	assert.True(t, areEqualRounded(april.IncomeTotal, 200.45), fmt.Sprintf("Expected April 2025 income to be 200.45, got: %v", april.IncomeTotal))
	assert.True(t, areEqualRounded(april.ExpenseTotal, 0), fmt.Sprintf("Expected April 2025 expense to be 0, got: %v", april.ExpenseTotal))

	year2024 := summary[2024]
	assert.True(t, areEqualRounded(year2024.IncomeTotal, 270.57), fmt.Sprintf("Expected income total for 2024 to be 270.57, got: %v", year2024.IncomeTotal))
	assert.True(t, areEqualRounded(year2024.ExpenseTotal, 106.1), fmt.Sprintf("Expected expense total for 2024 to be 106.10, got: %v", year2024.ExpenseTotal))

	december := year2024.Months["December"]
	assert.True(t, areEqualRounded(december.IncomeTotal, 120.45), fmt.Sprintf("Expected December 2024 income to be 120.45, got: %v", december.IncomeTotal))
	assert.True(t, areEqualRounded(december.ExpenseTotal, 106.1), fmt.Sprintf("Expected December 2024 expense to be 106.10, got: %v", december.ExpenseTotal))
}

func TestGetEntrySummary_VoidedEntriesAreExcluded(t *testing.T) {
	repo := &infrastructure.MockEntryRepository{
		Entries: []domain.CashflowEntry{
			{Date: time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC), Type: "expense", Amount: 500},
			{Date: time.Date(2025, time.May, 12, 0, 0, 0, 0, time.UTC), Type: "expense", Amount: 9999, Voided: true},
		},
	}
	service := NewCashflowEntryService(repo, &MockCategoryService{}, &PaymentService{})

	startDate, _ := time.Parse("2006-01-02", "2025-01-01")
	endDate, _ := time.Parse("2006-01-02", "2025-12-31")

	summary, err := service.GetEntrySummary("albert", startDate, endDate)
	assert.NoError(t, err)
	assert.True(t, areEqualRounded(summary[2025].ExpenseTotal, 500))
}

type allowAllPaymentService struct{}

func (s *allowAllPaymentService) GetAllPaymentMethods() ([]domain.PaymentMethod, error) {
	return []domain.PaymentMethod{}, nil
}

func (s *allowAllPaymentService) GetUserPaymentSources(userID string) ([]domain.PaymentSource, error) {
	return []domain.PaymentSource{}, nil
}

func (s *allowAllPaymentService) DoesPaymentMethodExistByID(methodID int) (bool, error) {
	return true, nil
}

func (s *allowAllPaymentService) DoesUserPaymentSourceExistByID(sourceID int, userID string) (bool, error) {
	return true, nil
}

func TestCreateEntry_RoundsAndStores(t *testing.T) {
	repo := &infrastructure.MockEntryRepository{}
	service := NewCashflowEntryService(repo, &MockCategoryService{}, &allowAllPaymentService{})

	entry := &domain.CashflowEntry{
		UserID:               "albert",
		Amount:               10.999,
		Type:                 "expense",
		Date:                 time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC),
		Description:          "groceries",
		PredefinedCategoryID: 1,
		PaymentMethodID:      1,
	}
	err := service.CreateEntry(entry)
	assert.NoError(t, err)
	assert.Len(t, repo.Entries, 1)
	assert.Equal(t, 11.0, repo.Entries[0].Amount)
	assert.NotEmpty(t, repo.Entries[0].ID)
	assert.False(t, repo.Entries[0].Voided)
}

func TestCreateEntry_RejectsInvalidType(t *testing.T) {
	repo := &infrastructure.MockEntryRepository{}
	service := NewCashflowEntryService(repo, &MockCategoryService{}, &allowAllPaymentService{})

	entry := &domain.CashflowEntry{
		UserID:               "albert",
		Amount:               10,
		Type:                 "transfer",
		Date:                 time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC),
		PredefinedCategoryID: 1,
		PaymentMethodID:      1,
	}
	err := service.CreateEntry(entry)
	assert.True(t, financeErrors.IsValidationError(err))
	assert.Empty(t, repo.Entries)
}

func TestVoidEntry(t *testing.T) {
	repo := &infrastructure.MockEntryRepository{}
	service := NewCashflowEntryService(repo, &MockCategoryService{}, &allowAllPaymentService{})

	entry := &domain.CashflowEntry{
		UserID:               "albert",
		Amount:               10,
		Type:                 "expense",
		Date:                 time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC),
		PredefinedCategoryID: 1,
		PaymentMethodID:      1,
	}
	assert.NoError(t, service.CreateEntry(entry))

	assert.NoError(t, service.VoidEntry(entry.ID, "haydee"))
	assert.True(t, repo.Entries[0].Voided)
	assert.Equal(t, "haydee", *repo.Entries[0].VoidedBy)

	err := service.VoidEntry(entry.ID, "haydee")
	assert.ErrorIs(t, err, financeErrors.ErrEntryAlreadyVoided)

	err = service.VoidEntry("missing-id", "haydee")
	assert.ErrorIs(t, err, financeErrors.ErrEntryNotFound)
}
