package infrastructure

import (
	"database/sql"
	"time"

	"github.com/albert-carrasquel/home-flow/internal/finance/domain"
)

const entryColumns = `id, user_id, amount, type, date, description, predefined_category_id, user_category_id,
        payment_method_id, payment_source_id, voided, voided_at, voided_by, created_at`

type CashflowEntryRepository struct {
	db *sql.DB
}

func NewCashflowEntryRepository(db *sql.DB) *CashflowEntryRepository {
	return &CashflowEntryRepository{db: db}
}

func (r *CashflowEntryRepository) Save(entry domain.CashflowEntry) error {
	_, err := r.db.Exec(
		`INSERT INTO cashflow_entries
        (id, user_id, amount, type, date, description, predefined_category_id, user_category_id, payment_method_id, payment_source_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		entry.ID, entry.UserID, entry.Amount, entry.Type, entry.Date, entry.Description,
		entry.PredefinedCategoryID, entry.UserCategoryID, entry.PaymentMethodID, entry.PaymentSourceID, entry.CreatedAt,
	)
	return err
}

func (r *CashflowEntryRepository) SaveWithTransaction(entry domain.CashflowEntry, tx *sql.Tx) error {
	_, err := tx.Exec(
		`INSERT INTO cashflow_entries
        (id, user_id, amount, type, date, description, predefined_category_id, user_category_id, payment_method_id, payment_source_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		entry.ID, entry.UserID, entry.Amount, entry.Type, entry.Date, entry.Description,
		entry.PredefinedCategoryID, entry.UserCategoryID, entry.PaymentMethodID, entry.PaymentSourceID, entry.CreatedAt,
	)
	return err
}

func (r *CashflowEntryRepository) BeginTransaction() (*sql.Tx, error) {
	return r.db.Begin()
}

func (r *CashflowEntryRepository) FindByUser(userID string) ([]domain.CashflowEntry, error) {
	rows, err := r.db.Query(
		`SELECT `+entryColumns+` FROM cashflow_entries WHERE user_id = $1 ORDER BY date DESC, created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (r *CashflowEntryRepository) FindByID(entryID string) (*domain.CashflowEntry, error) {
	var entry domain.CashflowEntry
	err := r.db.QueryRow(
		`SELECT `+entryColumns+` FROM cashflow_entries WHERE id = $1`, entryID).Scan(
		&entry.ID, &entry.UserID, &entry.Amount, &entry.Type, &entry.Date, &entry.Description,
		&entry.PredefinedCategoryID, &entry.UserCategoryID, &entry.PaymentMethodID, &entry.PaymentSourceID,
		&entry.Voided, &entry.VoidedAt, &entry.VoidedBy, &entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *CashflowEntryRepository) Update(entry domain.CashflowEntry) error {
	_, err := r.db.Exec(
		`UPDATE cashflow_entries
        SET amount = $2, type = $3, date = $4, description = $5, predefined_category_id = $6,
            user_category_id = $7, payment_method_id = $8, payment_source_id = $9
        WHERE id = $1 AND voided = false`,
		entry.ID, entry.Amount, entry.Type, entry.Date, entry.Description,
		entry.PredefinedCategoryID, entry.UserCategoryID, entry.PaymentMethodID, entry.PaymentSourceID,
	)
	return err
}

func (r *CashflowEntryRepository) Void(entryID, voidedBy string) (int64, error) {
	result, err := r.db.Exec(
		`UPDATE cashflow_entries SET voided = true, voided_at = NOW(), voided_by = $2
        WHERE id = $1 AND voided = false`, entryID, voidedBy)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *CashflowEntryRepository) VoidWithTransaction(entryID, voidedBy string, tx *sql.Tx) (int64, error) {
	result, err := tx.Exec(
		`UPDATE cashflow_entries SET voided = true, voided_at = NOW(), voided_by = $2
        WHERE id = $1 AND voided = false`, entryID, voidedBy)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *CashflowEntryRepository) GetEntriesInDateRange(userID string, startDate, endDate time.Time) ([]domain.CashflowEntry, error) {
	rows, err := r.db.Query(
		`SELECT `+entryColumns+` FROM cashflow_entries
        WHERE user_id = $1 AND date >= $2 AND date <= $3 AND voided = false
        ORDER BY date ASC`, userID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (r *CashflowEntryRepository) GetEntriesByType(userID, entryType string, startDate, endDate time.Time, limit, page int) ([]domain.CashflowEntry, error) {
	offset := (page - 1) * limit
	rows, err := r.db.Query(
		`SELECT `+entryColumns+` FROM cashflow_entries
        WHERE user_id = $1 AND type = $2 AND date >= $3 AND date <= $4 AND voided = false
        ORDER BY date DESC, created_at DESC
        LIMIT $5 OFFSET $6`, userID, entryType, startDate, endDate, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]domain.CashflowEntry, error) {
	var entries []domain.CashflowEntry
	for rows.Next() {
		var entry domain.CashflowEntry
		if err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.Amount, &entry.Type, &entry.Date, &entry.Description,
			&entry.PredefinedCategoryID, &entry.UserCategoryID, &entry.PaymentMethodID, &entry.PaymentSourceID,
			&entry.Voided, &entry.VoidedAt, &entry.VoidedBy, &entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
