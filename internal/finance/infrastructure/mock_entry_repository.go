package infrastructure

import (
	"database/sql"
	"time"

	"github.com/albert-carrasquel/home-flow/internal/finance/domain"
)

type MockEntryRepository struct {
	Entries []domain.CashflowEntry
}

func (m *MockEntryRepository) Save(entry domain.CashflowEntry) error {
	m.Entries = append(m.Entries, entry)
	return nil
}

func (m *MockEntryRepository) SaveWithTransaction(entry domain.CashflowEntry, tx *sql.Tx) error {
	//TODO implement me
	panic("implement me")
}

func (m *MockEntryRepository) BeginTransaction() (*sql.Tx, error) {
	//TODO implement me
	panic("implement me")
}

func (m *MockEntryRepository) FindByUser(userID string) ([]domain.CashflowEntry, error) {
	var result []domain.CashflowEntry
	for _, entry := range m.Entries {
		if entry.UserID == userID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (m *MockEntryRepository) FindByID(entryID string) (*domain.CashflowEntry, error) {
	for i := range m.Entries {
		if m.Entries[i].ID == entryID {
			return &m.Entries[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *MockEntryRepository) Update(entry domain.CashflowEntry) error {
	for i := range m.Entries {
		if m.Entries[i].ID == entry.ID {
			m.Entries[i] = entry
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *MockEntryRepository) Void(entryID, voidedBy string) (int64, error) {
	for i := range m.Entries {
		if m.Entries[i].ID == entryID && !m.Entries[i].Voided {
			now := time.Now()
			m.Entries[i].Voided = true
			m.Entries[i].VoidedAt = &now
			m.Entries[i].VoidedBy = &voidedBy
			return 1, nil
		}
	}
	return 0, nil
}

func (m *MockEntryRepository) VoidWithTransaction(entryID, voidedBy string, tx *sql.Tx) (int64, error) {
	return m.Void(entryID, voidedBy)
}

func (m *MockEntryRepository) GetEntriesInDateRange(userID string, startDate, endDate time.Time) ([]domain.CashflowEntry, error) {
	var filtered []domain.CashflowEntry
	for _, entry := range m.Entries {
		if entry.Date.After(startDate) && entry.Date.Before(endDate) {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}

func (m *MockEntryRepository) GetEntriesByType(userID, entryType string, startDate, endDate time.Time, limit, page int) ([]domain.CashflowEntry, error) {
	var filtered []domain.CashflowEntry
	for _, entry := range m.Entries {
		if entry.UserID == userID && entry.Type == entryType && !entry.Voided {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}
