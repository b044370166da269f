package application

import "github.com/albert-carrasquel/home-flow/internal/finance/domain"

type MockCategoryService struct{}

func (m *MockCategoryService) GetAllUserCategories(userID string) ([]domain.UserCategory, error) {
	return []domain.UserCategory{}, nil
}

func (m *MockCategoryService) GetAllPredefinedCategories(categoryType string) ([]domain.PredefinedCategory, error) {
	return []domain.PredefinedCategory{}, nil
}

func (m *MockCategoryService) DoesPredefinedCategoryExist(id int) (bool, error) {
	return true, nil
}

func (m *MockCategoryService) DoesUserCategoryExist(id int, userID string) (bool, error) {
	return true, nil
}
