package transactions

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/albert-carrasquel/home-flow/internal/investment/models"
)

// Filter narrows a listing. Empty fields mean "all"; voided records are
// excluded unless IncludeVoided is set.
type Filter struct {
	Asset         string
	OperationType string
	Currency      string
	IncludeVoided bool
}

type TransactionRepository interface {
	create(ctx context.Context, transaction *models.Transaction) error
	createWithTx(ctx context.Context, dbTx *sql.Tx, transaction *models.Transaction) error
	beginTx(ctx context.Context) (*sql.Tx, error)
	getByID(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error)
	list(ctx context.Context, filter Filter) ([]models.Transaction, error)
	void(ctx context.Context, transactionID uuid.UUID, userID string) (int64, error)
}

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// effective_date can be null on rows imported from the legacy tracker; the
// creation timestamp is the documented fallback for those.
const selectColumns = `id, user_id, asset, asset_name, asset_type, currency, operation_type,
	       quantity, unit_price, commission, operation_total,
	       COALESCE(effective_date, created_at) AS effective_date,
	       voided, voided_at, voided_by, created_at`

func (r *transactionRepository) create(ctx context.Context, transaction *models.Transaction) error {
	query := `
        INSERT INTO investment_transactions
            (id, user_id, asset, asset_name, asset_type, currency, operation_type,
             quantity, unit_price, commission, operation_total, effective_date, voided, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    `
	_, err := r.db.ExecContext(ctx, query, transaction.ID, transaction.UserID, transaction.Asset,
		transaction.AssetName, transaction.AssetType, transaction.Currency, transaction.OperationType,
		transaction.Quantity, transaction.UnitPrice, transaction.Commission, transaction.OperationTotal,
		transaction.EffectiveDate, transaction.Voided, transaction.CreatedAt)
	return err
}

func (r *transactionRepository) createWithTx(ctx context.Context, dbTx *sql.Tx, transaction *models.Transaction) error {
	query := `
        INSERT INTO investment_transactions
            (id, user_id, asset, asset_name, asset_type, currency, operation_type,
             quantity, unit_price, commission, operation_total, effective_date, voided, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    `
	_, err := dbTx.ExecContext(ctx, query, transaction.ID, transaction.UserID, transaction.Asset,
		transaction.AssetName, transaction.AssetType, transaction.Currency, transaction.OperationType,
		transaction.Quantity, transaction.UnitPrice, transaction.Commission, transaction.OperationTotal,
		transaction.EffectiveDate, transaction.Voided, transaction.CreatedAt)
	return err
}

func (r *transactionRepository) beginTx(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}

func (r *transactionRepository) getByID(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error) {
	query := `SELECT ` + selectColumns + ` FROM investment_transactions WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, transactionID)

	var t models.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.Asset, &t.AssetName, &t.AssetType, &t.Currency, &t.OperationType,
		&t.Quantity, &t.UnitPrice, &t.Commission, &t.OperationTotal, &t.EffectiveDate,
		&t.Voided, &t.VoidedAt, &t.VoidedBy, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepository) list(ctx context.Context, filter Filter) ([]models.Transaction, error) {
	query := `SELECT ` + selectColumns + ` FROM investment_transactions WHERE 1=1`
	var args []interface{}

	if !filter.IncludeVoided {
		query += ` AND voided = false`
	}
	if filter.Asset != "" {
		args = append(args, filter.Asset)
		query += fmt.Sprintf(" AND asset = $%d", len(args))
	}
	if filter.OperationType != "" {
		args = append(args, filter.OperationType)
		query += fmt.Sprintf(" AND operation_type = $%d", len(args))
	}
	if filter.Currency != "" {
		args = append(args, filter.Currency)
		query += fmt.Sprintf(" AND currency = $%d", len(args))
	}
	// Fetch order is the tie-break for same-date FIFO processing, so it has
	// to be deterministic: creation time, then id.
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query investment transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		err := rows.Scan(&t.ID, &t.UserID, &t.Asset, &t.AssetName, &t.AssetType, &t.Currency, &t.OperationType,
			&t.Quantity, &t.UnitPrice, &t.Commission, &t.OperationTotal, &t.EffectiveDate,
			&t.Voided, &t.VoidedAt, &t.VoidedBy, &t.CreatedAt)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// void flips the voided flag only when it is not already set, so two users
// annulling the same record cannot race each other.
func (r *transactionRepository) void(ctx context.Context, transactionID uuid.UUID, userID string) (int64, error) {
	query := `
        UPDATE investment_transactions
        SET voided = true, voided_at = NOW(), voided_by = $2
        WHERE id = $1 AND voided = false
    `
	result, err := r.db.ExecContext(ctx, query, transactionID, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
