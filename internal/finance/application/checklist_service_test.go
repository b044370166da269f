package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/albert-carrasquel/home-flow/internal/finance/domain"
	financeErrors "github.com/albert-carrasquel/home-flow/internal/finance/errors"
	"github.com/albert-carrasquel/home-flow/internal/finance/infrastructure"
)

func checklistFixture() *infrastructure.MockChecklistRepository {
	entryID := "entry-1"
	return &infrastructure.MockChecklistRepository{
		Items: []domain.ChecklistItem{
			{ID: 1, UserID: "albert", Year: 2025, Month: 8, Name: "Rent", Amount: 350000, PredefinedCategoryID: 1, PaymentMethodID: 1},
			{ID: 2, UserID: "albert", Year: 2025, Month: 8, Name: "Electricity", Amount: 42000, PredefinedCategoryID: 2, PaymentMethodID: 1, Registered: true, EntryID: &entryID},
		},
	}
}

func TestGetMonth(t *testing.T) {
	service := NewChecklistService(&infrastructure.MockEntryRepository{}, checklistFixture())

	items, err := service.GetMonth("albert", 2025, 8)
	assert.NoError(t, err)
	assert.Len(t, items, 2)

	empty, err := service.GetMonth("albert", 2025, 9)
	assert.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestAddItem_Validation(t *testing.T) {
	repo := checklistFixture()
	service := NewChecklistService(&infrastructure.MockEntryRepository{}, repo)

	err := service.AddItem(domain.ChecklistItem{UserID: "albert", Year: 2025, Month: 8, Amount: 100})
	assert.True(t, financeErrors.IsValidationError(err))

	err = service.AddItem(domain.ChecklistItem{UserID: "albert", Year: 2025, Month: 13, Name: "Water", Amount: 100})
	assert.True(t, financeErrors.IsValidationError(err))

	err = service.AddItem(domain.ChecklistItem{UserID: "albert", Year: 2025, Month: 8, Name: "Water", Amount: 100, PredefinedCategoryID: 1, PaymentMethodID: 1})
	assert.NoError(t, err)
	assert.Len(t, repo.Items, 3)
}

func TestRegisterItem_AlreadyRegistered(t *testing.T) {
	service := NewChecklistService(&infrastructure.MockEntryRepository{}, checklistFixture())

	err := service.RegisterItem(2, "albert", time.Date(2025, time.August, 5, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, financeErrors.ErrChecklistItemAlreadyRegistered)
}

func TestRegisterItem_NotFound(t *testing.T) {
	service := NewChecklistService(&infrastructure.MockEntryRepository{}, checklistFixture())

	err := service.RegisterItem(99, "albert", time.Date(2025, time.August, 5, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, financeErrors.ErrChecklistItemNotFound)
}

func TestAnnulItem_NotRegistered(t *testing.T) {
	service := NewChecklistService(&infrastructure.MockEntryRepository{}, checklistFixture())

	err := service.AnnulItem(1, "albert")
	assert.ErrorIs(t, err, financeErrors.ErrChecklistItemNotRegistered)
}

func TestAnnulItem_NotFound(t *testing.T) {
	service := NewChecklistService(&infrastructure.MockEntryRepository{}, checklistFixture())

	err := service.AnnulItem(99, "albert")
	assert.ErrorIs(t, err, financeErrors.ErrChecklistItemNotFound)
}
