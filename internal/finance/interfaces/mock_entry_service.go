package interfaces

import (
	"time"

	"github.com/albert-carrasquel/home-flow/internal/finance/application"
	"github.com/albert-carrasquel/home-flow/internal/finance/domain"
	financeErrors "github.com/albert-carrasquel/home-flow/internal/finance/errors"
)

type MockEntryService struct {
	Created []*domain.CashflowEntry
}

var predefinedCategoryMap = map[int]struct{}{
	1: {},
	2: {},
}

func (m *MockEntryService) CreateEntry(entry *domain.CashflowEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	m.Created = append(m.Created, entry)
	return nil
}

func (m *MockEntryService) CreateEntriesBulk(entries []*domain.CashflowEntry, userID string) error {
	var validationErrors = &financeErrors.ValidationErrors{}

	for i, entry := range entries {
		if err := entry.Validate(); err != nil {
			validationErrors.Add(financeErrors.NewIndexedValidationError(i+1, err.Error()))
			continue
		}
		if _, exists := predefinedCategoryMap[entry.PredefinedCategoryID]; !exists {
			validationErrors.Add(financeErrors.NewIndexedValidationError(i+1, financeErrors.ErrInvalidPredefinedCategory.Error()))
			continue
		}
	}

	if len(validationErrors.Errors) > 0 {
		return validationErrors
	}
	m.Created = append(m.Created, entries...)
	return nil
}

func (m *MockEntryService) GetUserEntries(userID, entryType string, startDate, endDate time.Time, limit, page int) ([]domain.CashflowEntry, error) {
	//TODO implement me
	panic("implement me")
}

func (m *MockEntryService) UpdateEntry(entry domain.CashflowEntry) error {
	//TODO implement me
	panic("implement me")
}

func (m *MockEntryService) VoidEntry(entryID, voidedBy string) error {
	//TODO implement me
	panic("implement me")
}

func (m *MockEntryService) GetEntrySummary(userID string, startDate, endDate time.Time) (map[int]application.CashflowSummary, error) {
	return map[int]application.CashflowSummary{}, nil
}
