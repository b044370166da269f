package transactions

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/albert-carrasquel/home-flow/internal/investment/models"
)

// MockTransactionRepository keeps everything in memory for service tests.
type MockTransactionRepository struct {
	Transactions []models.Transaction
	CreateErr    error
}

func (m *MockTransactionRepository) create(_ context.Context, transaction *models.Transaction) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Transactions = append(m.Transactions, *transaction)
	return nil
}

func (m *MockTransactionRepository) createWithTx(_ context.Context, _ *sql.Tx, transaction *models.Transaction) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Transactions = append(m.Transactions, *transaction)
	return nil
}

func (m *MockTransactionRepository) beginTx(_ context.Context) (*sql.Tx, error) {
	//TODO implement me
	panic("implement me")
}

func (m *MockTransactionRepository) getByID(_ context.Context, transactionID uuid.UUID) (*models.Transaction, error) {
	for i := range m.Transactions {
		if m.Transactions[i].ID == transactionID {
			return &m.Transactions[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *MockTransactionRepository) list(_ context.Context, filter Filter) ([]models.Transaction, error) {
	var filtered []models.Transaction
	for _, transaction := range m.Transactions {
		if transaction.Voided && !filter.IncludeVoided {
			continue
		}
		if filter.Asset != "" && !strings.EqualFold(transaction.Asset, filter.Asset) {
			continue
		}
		if filter.OperationType != "" && transaction.OperationType != filter.OperationType {
			continue
		}
		if filter.Currency != "" && !strings.EqualFold(transaction.Currency, filter.Currency) {
			continue
		}
		filtered = append(filtered, transaction)
	}
	return filtered, nil
}

func (m *MockTransactionRepository) void(_ context.Context, transactionID uuid.UUID, userID string) (int64, error) {
	for i := range m.Transactions {
		if m.Transactions[i].ID == transactionID && !m.Transactions[i].Voided {
			m.Transactions[i].Voided = true
			m.Transactions[i].VoidedBy = &userID
			return 1, nil
		}
	}
	return 0, nil
}
