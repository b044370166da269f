package application

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/albert-carrasquel/home-flow/internal/finance/domain"
	financeErrors "github.com/albert-carrasquel/home-flow/internal/finance/errors"
)

type CategoryServiceInterface interface {
	DoesPredefinedCategoryExist(categoryID int) (bool, error)
	DoesUserCategoryExist(categoryID int, userID string) (bool, error)
	GetAllPredefinedCategories(categoryType string) ([]domain.PredefinedCategory, error)
	GetAllUserCategories(userID string) ([]domain.UserCategory, error)
}

type PaymentServiceInterface interface {
	GetAllPaymentMethods() ([]domain.PaymentMethod, error)
	GetUserPaymentSources(userID string) ([]domain.PaymentSource, error)
	DoesPaymentMethodExistByID(methodID int) (bool, error)
	DoesUserPaymentSourceExistByID(sourceID int, userID string) (bool, error)
}

type CashflowEntryService struct {
	repo            domain.CashflowEntryRepository
	categoryService CategoryServiceInterface
	paymentService  PaymentServiceInterface
}

func NewCashflowEntryService(repo domain.CashflowEntryRepository, categoryService CategoryServiceInterface, paymentService PaymentServiceInterface) *CashflowEntryService {
	return &CashflowEntryService{repo: repo, categoryService: categoryService, paymentService: paymentService}
}

type CashflowSummary struct {
	Year         int                     `json:"year"`
	IncomeTotal  float64                 `json:"income_total"`
	ExpenseTotal float64                 `json:"expense_total"`
	Months       map[string]MonthSummary `json:"months"`
}

type MonthSummary struct {
	IncomeTotal  float64       `json:"income_total"`
	ExpenseTotal float64       `json:"expense_total"`
	Weeks        []WeekSummary `json:"weeks"`
}

type WeekSummary struct {
	Week         int     `json:"week"`
	IncomeTotal  float64 `json:"income_total"`
	ExpenseTotal float64 `json:"expense_total"`
}

// GetEntrySummary aggregates the non-voided entries in the range into yearly,
// monthly and ISO-week totals.
func (s *CashflowEntryService) GetEntrySummary(userID string, startDate, endDate time.Time) (map[int]CashflowSummary, error) {
	entries, err := s.repo.GetEntriesInDateRange(userID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	summary := make(map[int]CashflowSummary)

	for _, entry := range entries {
		if entry.Voided {
			continue
		}
		year := entry.Date.Year()
		month := entry.Date.Month().String()
		_, week := entry.Date.ISOWeek()

		if _, exists := summary[year]; !exists {
			summary[year] = CashflowSummary{
				Year:   year,
				Months: make(map[string]MonthSummary),
			}
		}

		yearSummary := summary[year]

		if _, exists := yearSummary.Months[month]; !exists {
			yearSummary.Months[month] = MonthSummary{
				Weeks: []WeekSummary{},
			}
		}

		monthSummary := yearSummary.Months[month]

		if entry.Type == domain.EntryTypeIncome {
			yearSummary.IncomeTotal += entry.Amount
			monthSummary.IncomeTotal += entry.Amount
		} else if entry.Type == domain.EntryTypeExpense {
			yearSummary.ExpenseTotal += entry.Amount
			monthSummary.ExpenseTotal += entry.Amount
		}

		found := false
		for i, weekSummary := range monthSummary.Weeks {
			if weekSummary.Week == week {
				if entry.Type == domain.EntryTypeIncome {
					monthSummary.Weeks[i].IncomeTotal += entry.Amount
				} else if entry.Type == domain.EntryTypeExpense {
					monthSummary.Weeks[i].ExpenseTotal += entry.Amount
				}
				found = true
				break
			}
		}
		if !found {
			weekSummary := WeekSummary{
				Week: week,
			}
			if entry.Type == domain.EntryTypeIncome {
				weekSummary.IncomeTotal = entry.Amount
			} else if entry.Type == domain.EntryTypeExpense {
				weekSummary.ExpenseTotal = entry.Amount
			}
			monthSummary.Weeks = append(monthSummary.Weeks, weekSummary)
		}

		yearSummary.Months[month] = monthSummary
		summary[year] = yearSummary
	}

	return summary, nil
}

func (s *CashflowEntryService) CreateEntry(entry *domain.CashflowEntry) error {
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()
	entry.Voided = false
	entry.RoundToTwoDecimalPlaces()
	if err := entry.Validate(); err != nil {
		return err
	}

	exists, err := s.categoryService.DoesPredefinedCategoryExist(entry.PredefinedCategoryID)
	if err != nil {
		return err
	}
	if !exists {
		return financeErrors.ErrInvalidPredefinedCategory
	}
	if entry.UserCategoryID != nil {
		exists, err = s.categoryService.DoesUserCategoryExist(*entry.UserCategoryID, entry.UserID)
		if err != nil {
			return err
		}
		if !exists {
			return financeErrors.ErrInvalidUserCategory
		}
	}

	exists, err = s.paymentService.DoesPaymentMethodExistByID(entry.PaymentMethodID)
	if err != nil {
		return err
	}
	if !exists {
		return financeErrors.ErrInvalidPaymentMethod
	}
	if entry.PaymentSourceID != nil {
		exists, err = s.paymentService.DoesUserPaymentSourceExistByID(*entry.PaymentSourceID, entry.UserID)
		if err != nil {
			return err
		}
		if !exists {
			return financeErrors.ErrInvalidPaymentSource
		}
	}

	return s.repo.Save(*entry)
}

func (s *CashflowEntryService) CreateEntriesBulk(entries []*domain.CashflowEntry, userID string) error {
	predefinedCategories, err := s.categoryService.GetAllPredefinedCategories("")
	if err != nil {
		return err
	}
	userCategories, err := s.categoryService.GetAllUserCategories(userID)
	if err != nil {
		return err
	}

	predefinedCategoryMap := make(map[int]bool)
	userCategoryMap := make(map[int]bool)
	for _, category := range predefinedCategories {
		predefinedCategoryMap[category.ID] = true
	}
	for _, category := range userCategories {
		userCategoryMap[category.ID] = true
	}

	paymentMethods, err := s.paymentService.GetAllPaymentMethods()
	if err != nil {
		return err
	}
	paymentSources, err := s.paymentService.GetUserPaymentSources(userID)
	if err != nil {
		return err
	}

	paymentMethodsMap := make(map[int]bool)
	paymentSourceMap := make(map[int]bool)
	for _, method := range paymentMethods {
		paymentMethodsMap[method.ID] = true
	}
	for _, source := range paymentSources {
		paymentSourceMap[source.ID] = true
	}

	tx, err := s.repo.BeginTransaction()
	if err != nil {
		return err
	}
	var validationErrors = &financeErrors.ValidationErrors{}
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

	for i, entry := range entries {
		entry.ID = uuid.NewString()
		entry.UserID = userID
		entry.CreatedAt = time.Now()
		entry.Voided = false
		entry.RoundToTwoDecimalPlaces()
		if vErr := entry.Validate(); vErr != nil {
			validationErrors.Add(financeErrors.NewIndexedValidationError(i+1, vErr.Error()))
			continue
		}

		if _, exists := predefinedCategoryMap[entry.PredefinedCategoryID]; !exists {
			validationErrors.Add(financeErrors.NewIndexedValidationError(i+1, financeErrors.ErrInvalidPredefinedCategory.Error()))
			continue
		}
		if entry.UserCategoryID != nil {
			if _, exists := userCategoryMap[*entry.UserCategoryID]; !exists {
				validationErrors.Add(financeErrors.NewIndexedValidationError(i+1, financeErrors.ErrInvalidUserCategory.Error()))
				continue
			}
		}
		if _, exists := paymentMethodsMap[entry.PaymentMethodID]; !exists {
			validationErrors.Add(financeErrors.NewIndexedValidationError(i+1, financeErrors.ErrInvalidPaymentMethod.Error()))
			continue
		}
		if entry.PaymentSourceID != nil {
			if _, exists := paymentSourceMap[*entry.PaymentSourceID]; !exists {
				validationErrors.Add(financeErrors.NewIndexedValidationError(i+1, financeErrors.ErrInvalidPaymentSource.Error()))
				continue
			}
		}
		if err = s.repo.SaveWithTransaction(*entry, tx); err != nil {
			return fmt.Errorf("database error at entry %d: %w", i+1, err)
		}
	}

	if len(validationErrors.Errors) > 0 {
		err = validationErrors
	}
	return err
}

func safeRollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		log.Printf("Error during transaction rollback: %v", err)
	}
}

func (s *CashflowEntryService) GetUserEntries(userID, entryType string, startDate, endDate time.Time, limit, page int) ([]domain.CashflowEntry, error) {
	entries, err := s.repo.GetEntriesByType(userID, entryType, startDate, endDate, limit, page)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		return []domain.CashflowEntry{}, nil
	}
	return entries, nil
}

func (s *CashflowEntryService) UpdateEntry(entry domain.CashflowEntry) error {
	entry.RoundToTwoDecimalPlaces()
	if err := entry.Validate(); err != nil {
		return err
	}
	return s.repo.Update(entry)
}

// VoidEntry soft-deletes a record, preserving it in the history.
func (s *CashflowEntryService) VoidEntry(entryID, voidedBy string) error {
	affected, err := s.repo.Void(entryID, voidedBy)
	if err != nil {
		return err
	}
	if affected == 0 {
		existing, err := s.repo.FindByID(entryID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return financeErrors.ErrEntryNotFound
			}
			return err
		}
		if existing.Voided {
			return financeErrors.ErrEntryAlreadyVoided
		}
		return financeErrors.ErrEntryNotFound
	}
	return nil
}
