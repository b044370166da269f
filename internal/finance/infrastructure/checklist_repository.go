package infrastructure

import (
	"database/sql"
	"errors"

	"github.com/albert-carrasquel/home-flow/internal/finance/domain"
)

type ChecklistRepository struct {
	db *sql.DB
}

func NewChecklistRepository(db *sql.DB) *ChecklistRepository {
	return &ChecklistRepository{db: db}
}

func (r *ChecklistRepository) Save(item domain.ChecklistItem) error {
	_, err := r.db.Exec(
		`INSERT INTO checklist_items
        (user_id, year, month, name, amount, predefined_category_id, payment_method_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		item.UserID, item.Year, item.Month, item.Name, item.Amount, item.PredefinedCategoryID, item.PaymentMethodID,
	)
	return err
}

func (r *ChecklistRepository) FindByID(itemID int) (*domain.ChecklistItem, error) {
	var item domain.ChecklistItem
	err := r.db.QueryRow(
		`SELECT id, user_id, year, month, name, amount, predefined_category_id, payment_method_id, registered, entry_id
        FROM checklist_items WHERE id = $1`, itemID).Scan(
		&item.ID, &item.UserID, &item.Year, &item.Month, &item.Name, &item.Amount,
		&item.PredefinedCategoryID, &item.PaymentMethodID, &item.Registered, &item.EntryID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *ChecklistRepository) FindMonth(userID string, year, month int) ([]domain.ChecklistItem, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, year, month, name, amount, predefined_category_id, payment_method_id, registered, entry_id
        FROM checklist_items WHERE user_id = $1 AND year = $2 AND month = $3 ORDER BY name ASC`, userID, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.ChecklistItem
	for rows.Next() {
		var item domain.ChecklistItem
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Year, &item.Month, &item.Name, &item.Amount,
			&item.PredefinedCategoryID, &item.PaymentMethodID, &item.Registered, &item.EntryID,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkRegisteredWithTransaction links the item to its cashflow entry. The
// registered = false guard makes concurrent registrations lose cleanly.
func (r *ChecklistRepository) MarkRegisteredWithTransaction(itemID int, entryID string, tx *sql.Tx) (int64, error) {
	result, err := tx.Exec(
		`UPDATE checklist_items SET registered = true, entry_id = $2
        WHERE id = $1 AND registered = false`, itemID, entryID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *ChecklistRepository) UnmarkWithTransaction(itemID int, tx *sql.Tx) (int64, error) {
	result, err := tx.Exec(
		`UPDATE checklist_items SET registered = false, entry_id = NULL
        WHERE id = $1 AND registered = true`, itemID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
