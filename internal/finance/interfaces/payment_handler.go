package interfaces

import (
	"net/http"

	"github.com/albert-carrasquel/home-flow/internal/finance/domain"
)

type PaymentServiceInterface interface {
	GetAllPaymentMethods() ([]domain.PaymentMethod, error)
	GetUserPaymentSources(userID string) ([]domain.PaymentSource, error)
}

type PaymentHandler struct {
	service      PaymentServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewPaymentHandler(
	service PaymentServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *PaymentHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &PaymentHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *PaymentHandler) GetPaymentMethods(w http.ResponseWriter, _ *http.Request) {
	methods, err := h.service.GetAllPaymentMethods()
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve payment methods")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Methods retrieved successfully.",
		"methods": methods,
	})
}

func (h *PaymentHandler) GetPaymentSources(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	sources, err := h.service.GetUserPaymentSources(userID)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve payment sources")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Sources retrieved successfully.",
		"sources": sources,
	})
}
