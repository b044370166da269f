package interfaces

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/albert-carrasquel/home-flow/internal/finance/application"
	"github.com/albert-carrasquel/home-flow/internal/finance/domain"
	financeErrors "github.com/albert-carrasquel/home-flow/internal/finance/errors"
)

type EntryServiceInterface interface {
	CreateEntry(entry *domain.CashflowEntry) error
	CreateEntriesBulk(entries []*domain.CashflowEntry, userID string) error
	GetUserEntries(userID, entryType string, startDate, endDate time.Time, limit, page int) ([]domain.CashflowEntry, error)
	UpdateEntry(entry domain.CashflowEntry) error
	VoidEntry(entryID, voidedBy string) error
	GetEntrySummary(userID string, startDate, endDate time.Time) (map[int]application.CashflowSummary, error)
}

type CashflowEntryHandler struct {
	service      EntryServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewCashflowEntryHandler(
	service EntryServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *CashflowEntryHandler {
	if service == nil {
		log.Fatal("Service must not be nil")
		return nil
	}
	if respondJSON == nil || respondError == nil {
		log.Fatal("Response functions must not be nil")
		return nil
	}
	return &CashflowEntryHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *CashflowEntryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var entry domain.CashflowEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry.UserID = userID
	if err := h.service.CreateEntry(&entry); err != nil {
		if financeErrors.IsValidationError(err) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Println("Error during entry creation:", err.Error())
		h.respondError(w, http.StatusInternalServerError, "Failed to create entry")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Entry successfully created.",
		"data":    entry,
	})
}

func (h *CashflowEntryHandler) CreateEntriesBulk(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req struct {
		Entries []*domain.CashflowEntry `json:"entries"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Entries) == 0 {
		h.respondError(w, http.StatusBadRequest, "Invalid request body - no entries provided")
		return
	}

	if err := h.service.CreateEntriesBulk(req.Entries, userID); err != nil {
		if financeErrors.IsValidationErrors(err) {
			var validationErrors *financeErrors.ValidationErrors
			errors.As(err, &validationErrors)
			errorMessages := make([]string, len(validationErrors.Errors))
			for i, vErr := range validationErrors.Errors {
				errorMessages[i] = vErr.Error()
			}
			h.respondError(w, http.StatusBadRequest, "Validation errors occurred", errorMessages)
			return
		}
		log.Println("Error during entry creation:", err.Error())
		h.respondError(w, http.StatusInternalServerError, "Failed to create entries")
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Entries successfully created.",
		"data":    req.Entries,
	})
}

func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	startDateStr := r.URL.Query().Get("start_date")
	endDateStr := r.URL.Query().Get("end_date")

	var startDate, endDate time.Time
	var err error

	if startDateStr == "" {
		startDate = time.Date(time.Now().Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	} else {
		startDate, err = time.Parse("2006-01-02", startDateStr)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("Invalid start date format")
		}
	}

	if endDateStr == "" {
		endDate = time.Now()
	} else {
		endDate, err = time.Parse("2006-01-02", endDateStr)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("Invalid end date format")
		}
	}
	return startDate, endDate, nil
}

func (h *CashflowEntryHandler) GetUserEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	entryType := r.URL.Query().Get("type")
	if !domain.IsValidEntryType(entryType) {
		h.respondError(w, http.StatusBadRequest, "Invalid entry type")
		return
	}

	startDate, endDate, err := parseDateRange(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	limitStr := r.URL.Query().Get("limit")
	pageStr := r.URL.Query().Get("page")
	var limit, page int
	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			h.respondError(w, http.StatusBadRequest, "Invalid limit value")
			return
		}
	} else {
		limit = 20
	}

	if pageStr != "" {
		page, err = strconv.Atoi(pageStr)
		if err != nil || page <= 0 {
			h.respondError(w, http.StatusBadRequest, "Invalid page value")
			return
		}
	} else {
		page = 1
	}

	entries, err := h.service.GetUserEntries(userID, entryType, startDate, endDate, limit, page)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve entries")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Entries retrieved successfully.",
		"data":    entries,
	})
}

func (h *CashflowEntryHandler) GetEntrySummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	startDate, endDate, err := parseDateRange(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.service.GetEntrySummary(userID, startDate, endDate)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve entry summary")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Entry summary retrieved successfully.",
		"data":    summary,
	})
}

func (h *CashflowEntryHandler) VoidEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	entryID := r.PathValue("entryID")
	if entryID == "" {
		h.respondError(w, http.StatusBadRequest, "EntryID is required")
		return
	}

	if err := h.service.VoidEntry(entryID, userID); err != nil {
		if errors.Is(err, financeErrors.ErrEntryNotFound) {
			h.respondError(w, http.StatusNotFound, "Entry not found")
			return
		}
		if errors.Is(err, financeErrors.ErrEntryAlreadyVoided) {
			h.respondError(w, http.StatusConflict, "Entry was already voided")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to void entry")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Entry voided successfully.",
	})
}
