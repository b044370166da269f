package interfaces

import "github.com/albert-carrasquel/home-flow/internal/finance/domain"

type MockPaymentService struct {
	Methods []domain.PaymentMethod
	Sources []domain.PaymentSource
	Err     error
}

func (m *MockPaymentService) GetAllPaymentMethods() ([]domain.PaymentMethod, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Methods, nil
}

func (m *MockPaymentService) GetUserPaymentSources(userID string) ([]domain.PaymentSource, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Sources, nil
}

func NewMockPaymentService(methods []domain.PaymentMethod, err error) *MockPaymentService {
	return &MockPaymentService{Methods: methods, Err: err}
}
