package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/albert-carrasquel/home-flow/internal/finance/domain"
)

func authedEntryRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(context.WithValue(req.Context(), "userID", "albert"))
}

func TestCreateEntriesBulk_WithValidationError(t *testing.T) {
	service := &MockEntryService{}
	handler := NewCashflowEntryHandler(service, respondJSON, respondError)

	date := time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC)
	entries := []domain.CashflowEntry{
		{Amount: -10, Description: "Invalid amount", Type: "expense", Date: date, PredefinedCategoryID: 1},
		{Amount: 50, Description: "Invalid category", Type: "income", Date: date, PredefinedCategoryID: 99},
		{Amount: 20, Description: "Without type", Date: date, PredefinedCategoryID: 1},
	}

	body, err := json.Marshal(map[string]interface{}{
		"entries": entries,
	})
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	handler.CreateEntriesBulk(w, authedEntryRequest(http.MethodPost, "/entries/bulk", body))

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	var response map[string][]string
	err = json.NewDecoder(res.Body).Decode(&response)
	assert.NoError(t, err)

	expectedErrors := []string{
		"Validation error at entry 1: Amount must be greater than zero",
		"Validation error at entry 2: Invalid predefined category ID",
		"Validation error at entry 3: Type must be 'income' or 'expense'",
	}
	assert.Equal(t, expectedErrors, response["errors"])
	assert.Empty(t, service.Created)
}

func TestCreateEntriesBulk_InvalidRequestBody(t *testing.T) {
	service := &MockEntryService{}
	handler := NewCashflowEntryHandler(service, respondJSON, respondError)

	w := httptest.NewRecorder()
	handler.CreateEntriesBulk(w, authedEntryRequest(http.MethodPost, "/entries/bulk", []byte("invalid body")))

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	var response map[string]interface{}
	err := json.NewDecoder(res.Body).Decode(&response)
	assert.NoError(t, err)
	assert.Equal(t, "error", response["status"])
	assert.Equal(t, "Invalid request body", response["message"])

	body, err := json.Marshal(map[string]interface{}{
		"wrongKey": []domain.CashflowEntry{{Amount: 100, Type: "income"}},
	})
	assert.NoError(t, err)

	w = httptest.NewRecorder()
	handler.CreateEntriesBulk(w, authedEntryRequest(http.MethodPost, "/entries/bulk", body))

	res = w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	err = json.NewDecoder(res.Body).Decode(&response)
	assert.NoError(t, err)
	assert.Equal(t, "Invalid request body - no entries provided", response["message"])
}

func TestCreateEntry_Success(t *testing.T) {
	service := &MockEntryService{}
	handler := NewCashflowEntryHandler(service, respondJSON, respondError)

	entry := domain.CashflowEntry{
		Amount:               1500.50,
		Type:                 "expense",
		Date:                 time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC),
		Description:          "groceries",
		PredefinedCategoryID: 1,
		PaymentMethodID:      1,
	}
	body, err := json.Marshal(entry)
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	handler.CreateEntry(w, authedEntryRequest(http.MethodPost, "/entries", body))

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Len(t, service.Created, 1)
	assert.Equal(t, "albert", service.Created[0].UserID)
}

func TestCreateEntry_Unauthorized(t *testing.T) {
	service := &MockEntryService{}
	handler := NewCashflowEntryHandler(service, respondJSON, respondError)

	req := httptest.NewRequest(http.MethodPost, "/entries", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	handler.CreateEntry(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)
}

func TestGetUserEntries_InvalidType(t *testing.T) {
	service := &MockEntryService{}
	handler := NewCashflowEntryHandler(service, respondJSON, respondError)

	w := httptest.NewRecorder()
	handler.GetUserEntries(w, authedEntryRequest(http.MethodGet, "/entries?type=transfer", nil))

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}
