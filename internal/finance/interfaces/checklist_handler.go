package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/albert-carrasquel/home-flow/internal/finance/domain"
	financeErrors "github.com/albert-carrasquel/home-flow/internal/finance/errors"
)

type ChecklistServiceInterface interface {
	GetMonth(userID string, year, month int) ([]domain.ChecklistItem, error)
	AddItem(item domain.ChecklistItem) error
	RegisterItem(itemID int, userID string, date time.Time) error
	AnnulItem(itemID int, userID string) error
}

type ChecklistHandler struct {
	service      ChecklistServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewChecklistHandler(
	service ChecklistServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *ChecklistHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &ChecklistHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *ChecklistHandler) GetMonth(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	now := time.Now()
	year := now.Year()
	month := int(now.Month())
	var err error

	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		year, err = strconv.Atoi(yearStr)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid year value")
			return
		}
	}
	if monthStr := r.URL.Query().Get("month"); monthStr != "" {
		month, err = strconv.Atoi(monthStr)
		if err != nil || month < 1 || month > 12 {
			h.respondError(w, http.StatusBadRequest, "Invalid month value")
			return
		}
	}

	items, err := h.service.GetMonth(userID, year, month)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve checklist")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Checklist retrieved successfully.",
		"data":    items,
	})
}

func (h *ChecklistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var item domain.ChecklistItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	item.UserID = userID
	item.Registered = false
	item.EntryID = nil

	if err := h.service.AddItem(item); err != nil {
		if financeErrors.IsValidationError(err) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to add checklist item")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Checklist item added successfully.",
	})
}

func (h *ChecklistHandler) RegisterItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	itemID, err := strconv.Atoi(r.PathValue("itemID"))
	if err != nil {
		h.respondError(w, http.StatusNotFound, "Checklist item not found")
		return
	}

	var req struct {
		Date string `json:"date"`
	}
	date := time.Now()
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Date != "" {
			date, err = time.Parse("2006-01-02", req.Date)
			if err != nil {
				h.respondError(w, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
				return
			}
		}
	}

	if err := h.service.RegisterItem(itemID, userID, date); err != nil {
		if errors.Is(err, financeErrors.ErrChecklistItemNotFound) {
			h.respondError(w, http.StatusNotFound, "Checklist item not found")
			return
		}
		if errors.Is(err, financeErrors.ErrChecklistItemAlreadyRegistered) {
			h.respondError(w, http.StatusConflict, "Checklist item was already registered")
			return
		}
		if financeErrors.IsValidationError(err) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to register checklist item")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Checklist item registered successfully.",
	})
}

func (h *ChecklistHandler) AnnulItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	itemID, err := strconv.Atoi(r.PathValue("itemID"))
	if err != nil {
		h.respondError(w, http.StatusNotFound, "Checklist item not found")
		return
	}

	if err := h.service.AnnulItem(itemID, userID); err != nil {
		if errors.Is(err, financeErrors.ErrChecklistItemNotFound) {
			h.respondError(w, http.StatusNotFound, "Checklist item not found")
			return
		}
		if errors.Is(err, financeErrors.ErrChecklistItemNotRegistered) {
			h.respondError(w, http.StatusConflict, "Checklist item is not registered")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to annul checklist item")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Checklist item annulled successfully.",
	})
}
