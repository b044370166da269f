package interfaces

import (
	"errors"

	"github.com/albert-carrasquel/home-flow/internal/finance/domain"
)

type MockCategoryService struct {
	categories []domain.PredefinedCategory
	shouldFail bool
}

func (m *MockCategoryService) GetAllPredefinedCategories(categoryType string) ([]domain.PredefinedCategory, error) {
	if m.shouldFail {
		return nil, errors.New("service error")
	}
	return m.categories, nil
}

func (m *MockCategoryService) GetAllUserCategories(userID string) ([]domain.UserCategory, error) {
	if m.shouldFail {
		return nil, errors.New("service error")
	}
	return []domain.UserCategory{}, nil
}
