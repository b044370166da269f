package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/albert-carrasquel/home-flow/internal/finance/domain"
	financeErrors "github.com/albert-carrasquel/home-flow/internal/finance/errors"
)

// ChecklistService manages the monthly recurring-expense checklist.
// Registering an item creates the matching cashflow entry and marks the item
// inside one DB transaction, so the two records never drift apart.
type ChecklistService struct {
	entryRepo     domain.CashflowEntryRepository
	checklistRepo domain.ChecklistRepository
}

func NewChecklistService(entryRepo domain.CashflowEntryRepository, checklistRepo domain.ChecklistRepository) *ChecklistService {
	return &ChecklistService{entryRepo: entryRepo, checklistRepo: checklistRepo}
}

func (s *ChecklistService) GetMonth(userID string, year, month int) ([]domain.ChecklistItem, error) {
	items, err := s.checklistRepo.FindMonth(userID, year, month)
	if err != nil {
		return nil, err
	}
	if items == nil {
		return []domain.ChecklistItem{}, nil
	}
	return items, nil
}

func (s *ChecklistService) AddItem(item domain.ChecklistItem) error {
	if item.Name == "" {
		return financeErrors.NewValidationError("Item name is required")
	}
	if item.Amount <= 0 {
		return financeErrors.NewValidationError("Amount must be greater than zero")
	}
	if item.Month < 1 || item.Month > 12 {
		return financeErrors.NewValidationError("Month must be between 1 and 12")
	}
	return s.checklistRepo.Save(item)
}

// RegisterItem creates the expense entry for a checklist item and marks the
// item as registered atomically.
func (s *ChecklistService) RegisterItem(itemID int, userID string, date time.Time) (err error) {
	item, err := s.checklistRepo.FindByID(itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return financeErrors.ErrChecklistItemNotFound
	}
	if item.Registered {
		return financeErrors.ErrChecklistItemAlreadyRegistered
	}

	entry := domain.CashflowEntry{
		ID:                   uuid.NewString(),
		UserID:               userID,
		Amount:               item.Amount,
		Type:                 domain.EntryTypeExpense,
		Date:                 date,
		Description:          item.Name,
		PredefinedCategoryID: item.PredefinedCategoryID,
		PaymentMethodID:      item.PaymentMethodID,
		CreatedAt:            time.Now(),
	}
	entry.RoundToTwoDecimalPlaces()
	if err := entry.Validate(); err != nil {
		return err
	}

	tx, err := s.entryRepo.BeginTransaction()
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			safeRollback(tx)
			panic(p)
		} else if err != nil {
			safeRollback(tx)
		} else {
			err = tx.Commit()
		}
	}()

	if err = s.entryRepo.SaveWithTransaction(entry, tx); err != nil {
		return err
	}

	affected, err := s.checklistRepo.MarkRegisteredWithTransaction(itemID, entry.ID, tx)
	if err != nil {
		return err
	}
	if affected == 0 {
		// concurrent registration won the race
		err = financeErrors.ErrChecklistItemAlreadyRegistered
		return err
	}
	return nil
}

// AnnulItem voids the linked entry and unmarks the item atomically.
func (s *ChecklistService) AnnulItem(itemID int, userID string) (err error) {
	item, err := s.checklistRepo.FindByID(itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return financeErrors.ErrChecklistItemNotFound
	}
	if !item.Registered || item.EntryID == nil {
		return financeErrors.ErrChecklistItemNotRegistered
	}

	tx, err := s.entryRepo.BeginTransaction()
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			safeRollback(tx)
			panic(p)
		} else if err != nil {
			safeRollback(tx)
		} else {
			err = tx.Commit()
		}
	}()

	affected, err := s.entryRepo.VoidWithTransaction(*item.EntryID, userID, tx)
	if err != nil {
		return err
	}
	if affected == 0 {
		err = financeErrors.ErrEntryAlreadyVoided
		return err
	}

	affected, err = s.checklistRepo.UnmarkWithTransaction(itemID, tx)
	if err != nil {
		return err
	}
	if affected == 0 {
		err = financeErrors.ErrChecklistItemNotRegistered
		return err
	}
	return nil
}
