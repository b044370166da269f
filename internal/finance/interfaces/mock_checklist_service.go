package interfaces

import (
	"time"

	"github.com/albert-carrasquel/home-flow/internal/finance/domain"
	financeErrors "github.com/albert-carrasquel/home-flow/internal/finance/errors"
)

type MockChecklistService struct {
	Items      []domain.ChecklistItem
	Registered []int
	Annulled   []int
}

func (m *MockChecklistService) GetMonth(userID string, year, month int) ([]domain.ChecklistItem, error) {
	return m.Items, nil
}

func (m *MockChecklistService) AddItem(item domain.ChecklistItem) error {
	if item.Name == "" {
		return financeErrors.NewValidationError("Item name is required")
	}
	m.Items = append(m.Items, item)
	return nil
}

func (m *MockChecklistService) RegisterItem(itemID int, userID string, date time.Time) error {
	for _, registered := range m.Registered {
		if registered == itemID {
			return financeErrors.ErrChecklistItemAlreadyRegistered
		}
	}
	found := false
	for _, item := range m.Items {
		if item.ID == itemID {
			found = true
			break
		}
	}
	if !found {
		return financeErrors.ErrChecklistItemNotFound
	}
	m.Registered = append(m.Registered, itemID)
	return nil
}

func (m *MockChecklistService) AnnulItem(itemID int, userID string) error {
	for i, registered := range m.Registered {
		if registered == itemID {
			m.Registered = append(m.Registered[:i], m.Registered[i+1:]...)
			m.Annulled = append(m.Annulled, itemID)
			return nil
		}
	}
	return financeErrors.ErrChecklistItemNotRegistered
}
