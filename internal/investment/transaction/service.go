package transactions

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	investmentErrors "github.com/albert-carrasquel/home-flow/internal/investment/errors"
	"github.com/albert-carrasquel/home-flow/internal/investment/models"
)

var (
	ErrTransactionNotFound      = errors.New("investment transaction not found")
	ErrTransactionAlreadyVoided = errors.New("investment transaction was already voided")
	ErrUnauthorizedAccess       = errors.New("transaction belongs to another user")
)

type Service interface {
	CreateTransaction(ctx context.Context, userID string, transaction *models.Transaction) error
	CreateTransactionsBulk(ctx context.Context, userID string, transactions []*models.Transaction) error
	GetTransaction(ctx context.Context, userID string, transactionID uuid.UUID) (*models.Transaction, error)
	GetAllTransactions(ctx context.Context, filter Filter) ([]models.Transaction, error)
	VoidTransaction(ctx context.Context, transactionID uuid.UUID, userID string) error
	ListActive(ctx context.Context) ([]models.Transaction, error)
}

type service struct {
	transactionRepo TransactionRepository
}

func NewTransactionService(repo TransactionRepository) Service {
	return &service{transactionRepo: repo}
}

func (s *service) CreateTransaction(ctx context.Context, userID string, transaction *models.Transaction) error {
	transaction.ID = uuid.New()
	transaction.UserID = userID
	transaction.CreatedAt = time.Now()
	transaction.Voided = false
	transaction.Normalize()

	if err := transaction.Validate(); err != nil {
		return err
	}
	return s.transactionRepo.create(ctx, transaction)
}

// CreateTransactionsBulk stores a batch inside one DB transaction. Every
// record is validated; if any fails, nothing is committed and the caller gets
// the full list of indexed validation errors.
func (s *service) CreateTransactionsBulk(ctx context.Context, userID string, transactions []*models.Transaction) (err error) {
	dbTx, err := s.transactionRepo.beginTx(ctx)
	if err != nil {
		return err
	}

	var validationErrors = &investmentErrors.ValidationErrors{}
	defer func() {
		if p := recover(); p != nil {
			safeRollback(dbTx)
			panic(p)
		} else if err != nil {
			safeRollback(dbTx)
		} else {
			err = dbTx.Commit()
		}
	}()

	for i, transaction := range transactions {
		transaction.ID = uuid.New()
		transaction.UserID = userID
		transaction.CreatedAt = time.Now()
		transaction.Voided = false
		transaction.Normalize()

		if vErr := transaction.Validate(); vErr != nil {
			validationErrors.Add(investmentErrors.NewIndexedValidationError(i+1, vErr.Error()))
			continue
		}
		if err = s.transactionRepo.createWithTx(ctx, dbTx, transaction); err != nil {
			return err
		}
	}

	if len(validationErrors.Errors) > 0 {
		err = validationErrors
	}
	return err
}

func safeRollback(dbTx *sql.Tx) {
	if err := dbTx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		log.Printf("Error during transaction rollback: %v", err)
	}
}

// GetTransaction fetches a single record by ID. Only the owner may read it;
// a lookup by anyone else fails with ErrUnauthorizedAccess.
func (s *service) GetTransaction(ctx context.Context, userID string, transactionID uuid.UUID) (*models.Transaction, error) {
	transaction, err := s.transactionRepo.getByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	if transaction.UserID != userID {
		return nil, ErrUnauthorizedAccess
	}
	return transaction, nil
}

func (s *service) GetAllTransactions(ctx context.Context, filter Filter) ([]models.Transaction, error) {
	transactions, err := s.transactionRepo.list(ctx, filter)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		return []models.Transaction{}, nil
	}
	return transactions, nil
}

// VoidTransaction soft-deletes a record. Voided transactions stay in the
// history but never reach the P&L engine.
func (s *service) VoidTransaction(ctx context.Context, transactionID uuid.UUID, userID string) error {
	affected, err := s.transactionRepo.void(ctx, transactionID, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		existing, err := s.transactionRepo.getByID(ctx, transactionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTransactionNotFound
			}
			return err
		}
		if existing.Voided {
			return ErrTransactionAlreadyVoided
		}
		return ErrTransactionNotFound
	}
	return nil
}

// ListActive returns the non-voided history in deterministic fetch order.
// This is the snapshot the report service hands to the P&L engine.
func (s *service) ListActive(ctx context.Context) ([]models.Transaction, error) {
	return s.GetAllTransactions(ctx, Filter{})
}
