package domain

import "database/sql"

// ChecklistItem is one recurring expense on the monthly checklist, e.g. rent
// or an electricity bill. Registering it creates the matching cashflow entry
// and links the two records.
type ChecklistItem struct {
	ID                   int     `json:"id"`
	UserID               string  `json:"user_id"`
	Year                 int     `json:"year"`
	Month                int     `json:"month"`
	Name                 string  `json:"name"`
	Amount               float64 `json:"amount"`
	PredefinedCategoryID int     `json:"predefined_category_id"`
	PaymentMethodID      int     `json:"payment_method_id"`
	Registered           bool    `json:"registered"`
	EntryID              *string `json:"entry_id,omitempty"`
}

type ChecklistRepository interface {
	Save(item ChecklistItem) error
	FindByID(itemID int) (*ChecklistItem, error)
	FindMonth(userID string, year, month int) ([]ChecklistItem, error)
	MarkRegisteredWithTransaction(itemID int, entryID string, tx *sql.Tx) (int64, error)
	UnmarkWithTransaction(itemID int, tx *sql.Tx) (int64, error)
}
