package domain

type PaymentMethod struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type PaymentSource struct {
	ID              int    `json:"id"`
	UserID          string `json:"user_id"`
	PaymentMethodID int    `json:"payment_method_id"`
	Name            string `json:"name"`
}

type PaymentRepository interface {
	GetAllPaymentMethods() ([]PaymentMethod, error)
	GetUserPaymentSources(userID string) ([]PaymentSource, error)
	PaymentMethodExists(methodID int) (bool, error)
	UserPaymentSourceExists(sourceID int, userID string) (bool, error)
}
