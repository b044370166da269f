package infrastructure

import (
	"database/sql"

	"github.com/albert-carrasquel/home-flow/internal/finance/domain"
)

type MockChecklistRepository struct {
	Items []domain.ChecklistItem
}

func (m *MockChecklistRepository) Save(item domain.ChecklistItem) error {
	item.ID = len(m.Items) + 1
	m.Items = append(m.Items, item)
	return nil
}

func (m *MockChecklistRepository) FindByID(itemID int) (*domain.ChecklistItem, error) {
	for i := range m.Items {
		if m.Items[i].ID == itemID {
			return &m.Items[i], nil
		}
	}
	return nil, nil
}

func (m *MockChecklistRepository) FindMonth(userID string, year, month int) ([]domain.ChecklistItem, error) {
	var result []domain.ChecklistItem
	for _, item := range m.Items {
		if item.UserID == userID && item.Year == year && item.Month == month {
			result = append(result, item)
		}
	}
	return result, nil
}

func (m *MockChecklistRepository) MarkRegisteredWithTransaction(itemID int, entryID string, tx *sql.Tx) (int64, error) {
	for i := range m.Items {
		if m.Items[i].ID == itemID && !m.Items[i].Registered {
			m.Items[i].Registered = true
			m.Items[i].EntryID = &entryID
			return 1, nil
		}
	}
	return 0, nil
}

func (m *MockChecklistRepository) UnmarkWithTransaction(itemID int, tx *sql.Tx) (int64, error) {
	for i := range m.Items {
		if m.Items[i].ID == itemID && m.Items[i].Registered {
			m.Items[i].Registered = false
			m.Items[i].EntryID = nil
			return 1, nil
		}
	}
	return 0, nil
}
