package interfaces

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/albert-carrasquel/home-flow/internal/finance/domain"
)

func checklistMux(handler *ChecklistHandler) *http.ServeMux {
	withUser := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			next(w, r.WithContext(context.WithValue(r.Context(), "userID", "albert")))
		}
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /checklist", withUser(handler.GetMonth))
	mux.HandleFunc("POST /checklist/{itemID}/register", withUser(handler.RegisterItem))
	mux.HandleFunc("POST /checklist/{itemID}/annul", withUser(handler.AnnulItem))
	return mux
}

func TestChecklistRegisterAndAnnul(t *testing.T) {
	service := &MockChecklistService{
		Items: []domain.ChecklistItem{
			{ID: 1, UserID: "albert", Year: 2025, Month: 8, Name: "Rent", Amount: 350000},
		},
	}
	mux := checklistMux(NewChecklistHandler(service, respondJSON, respondError))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/checklist/1/register", nil))
	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Equal(t, []int{1}, service.Registered)

	// registering twice conflicts
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/checklist/1/register", nil))
	assert.Equal(t, http.StatusConflict, w.Result().StatusCode)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/checklist/1/annul", nil))
	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Equal(t, []int{1}, service.Annulled)

	// annulling an unregistered item conflicts
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/checklist/1/annul", nil))
	assert.Equal(t, http.StatusConflict, w.Result().StatusCode)
}

func TestChecklistRegister_NotFound(t *testing.T) {
	service := &MockChecklistService{}
	mux := checklistMux(NewChecklistHandler(service, respondJSON, respondError))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/checklist/99/register", nil))
	assert.Equal(t, http.StatusNotFound, w.Result().StatusCode)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/checklist/not-a-number/register", nil))
	assert.Equal(t, http.StatusNotFound, w.Result().StatusCode)
}

func TestChecklistGetMonth(t *testing.T) {
	service := &MockChecklistService{
		Items: []domain.ChecklistItem{
			{ID: 1, UserID: "albert", Year: 2025, Month: 8, Name: "Rent", Amount: 350000},
			{ID: 2, UserID: "albert", Year: 2025, Month: 8, Name: "Electricity", Amount: 42000},
		},
	}
	mux := checklistMux(NewChecklistHandler(service, respondJSON, respondError))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/checklist?year=2025&month=8", nil))
	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Contains(t, w.Body.String(), "Rent")

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/checklist?month=13", nil))
	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}
