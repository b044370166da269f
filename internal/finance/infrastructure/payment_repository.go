package infrastructure

import (
	"database/sql"

	"github.com/albert-carrasquel/home-flow/internal/finance/domain"
)

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) GetAllPaymentMethods() ([]domain.PaymentMethod, error) {
	rows, err := r.db.Query("SELECT id, name FROM payment_methods")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paymentMethods []domain.PaymentMethod
	for rows.Next() {
		var method domain.PaymentMethod
		if err := rows.Scan(&method.ID, &method.Name); err != nil {
			return nil, err
		}
		paymentMethods = append(paymentMethods, method)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return paymentMethods, nil
}

func (r *PaymentRepository) GetUserPaymentSources(userID string) ([]domain.PaymentSource, error) {
	rows, err := r.db.Query("SELECT id, user_id, payment_method_id, name FROM payment_sources WHERE user_id = $1", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []domain.PaymentSource
	for rows.Next() {
		var source domain.PaymentSource
		if err := rows.Scan(&source.ID, &source.UserID, &source.PaymentMethodID, &source.Name); err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return sources, nil
}

func (r *PaymentRepository) PaymentMethodExists(methodID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow("SELECT EXISTS(SELECT 1 FROM payment_methods WHERE id = $1)", methodID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PaymentRepository) UserPaymentSourceExists(sourceID int, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow("SELECT EXISTS(SELECT 1 FROM payment_sources WHERE id = $1 AND user_id = $2)", sourceID, userID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
