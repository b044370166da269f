package investments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	investmentErrors "github.com/albert-carrasquel/home-flow/internal/investment/errors"
	"github.com/albert-carrasquel/home-flow/internal/investment/marketdata"
	"github.com/albert-carrasquel/home-flow/internal/investment/models"
	"github.com/albert-carrasquel/home-flow/internal/investment/report"
	transactions "github.com/albert-carrasquel/home-flow/internal/investment/transaction"
)

type InvestmentHandler struct {
	transactionService transactions.Service
	reportService      report.Service
	priceService       marketdata.PriceService
	respondJSON        func(w http.ResponseWriter, status int, payload interface{})
	respondError       func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewInvestmentHandler(
	transactionService transactions.Service,
	reportService report.Service,
	priceService marketdata.PriceService,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *InvestmentHandler {
	return &InvestmentHandler{
		transactionService: transactionService,
		reportService:      reportService,
		priceService:       priceService,
		respondJSON:        respondJSON,
		respondError:       respondError,
	}
}

type createTransactionRequest struct {
	Asset          string   `json:"asset"`
	AssetName      string   `json:"asset_name"`
	AssetType      string   `json:"asset_type"`
	Currency       string   `json:"currency"`
	OperationType  string   `json:"operation_type"`
	Quantity       float64  `json:"quantity"`
	UnitPrice      float64  `json:"unit_price"`
	Commission     float64  `json:"commission"`
	OperationTotal *float64 `json:"operation_total,omitempty"`
	EffectiveDate  string   `json:"effective_date"`
}

func (h *InvestmentHandler) getUserIDReq(w http.ResponseWriter, r *http.Request) string {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return ""
	}
	return userID
}

func (req *createTransactionRequest) toModel() (*models.Transaction, error) {
	dateStr := req.EffectiveDate
	if len(dateStr) == 10 {
		dateStr = dateStr + "T00:00:00Z"
	}
	effectiveDate, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return nil, investmentErrors.NewValidationError("invalid effective date format, expected YYYY-MM-DD or RFC3339")
	}

	transaction := &models.Transaction{
		Asset:         req.Asset,
		AssetName:     req.AssetName,
		AssetType:     req.AssetType,
		Currency:      req.Currency,
		OperationType: req.OperationType,
		Quantity:      req.Quantity,
		UnitPrice:     req.UnitPrice,
		Commission:    req.Commission,
		EffectiveDate: effectiveDate,
	}
	if req.OperationTotal != nil {
		transaction.OperationTotal = *req.OperationTotal
	}
	return transaction, nil
}

func (h *InvestmentHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	transaction, err := req.toModel()
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.transactionService.CreateTransaction(r.Context(), userID, transaction); err != nil {
		if investmentErrors.IsValidationError(err) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to create transaction")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "success",
		"data":   transaction,
	})
}

func (h *InvestmentHandler) CreateTransactionsBulk(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}

	var reqs []createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(reqs) == 0 {
		h.respondError(w, http.StatusBadRequest, "At least one transaction is required")
		return
	}

	batch := make([]*models.Transaction, 0, len(reqs))
	for i, req := range reqs {
		transaction, err := req.toModel()
		if err != nil {
			h.respondError(w, http.StatusBadRequest, investmentErrors.NewIndexedValidationError(i+1, err.Error()).Error())
			return
		}
		batch = append(batch, transaction)
	}

	if err := h.transactionService.CreateTransactionsBulk(r.Context(), userID, batch); err != nil {
		var validationErrors *investmentErrors.ValidationErrors
		if errors.As(err, &validationErrors) {
			messages := make([]string, len(validationErrors.Errors))
			for i, vErr := range validationErrors.Errors {
				messages[i] = vErr.Error()
			}
			h.respondError(w, http.StatusBadRequest, "Some transactions failed validation", messages)
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to create transactions")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Transactions successfully created.",
		"data":    batch,
	})
}

func filterFromQuery(r *http.Request) transactions.Filter {
	query := r.URL.Query()
	return transactions.Filter{
		Asset:         query.Get("asset"),
		OperationType: query.Get("operation_type"),
		Currency:      query.Get("currency"),
		IncludeVoided: query.Get("include_voided") == "true",
	}
}

func (h *InvestmentHandler) GetAllTransactions(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}

	transactionList, err := h.transactionService.GetAllTransactions(r.Context(), filterFromQuery(r))
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve transactions")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   transactionList,
	})
}

func (h *InvestmentHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}
	// already parsed and validated by investment_middleware
	transactionID := r.Context().Value("transactionID").(uuid.UUID)

	transaction, err := h.transactionService.GetTransaction(r.Context(), userID, transactionID)
	if err != nil {
		// a record belonging to another user reads as missing, so valid
		// IDs cannot be enumerated
		if errors.Is(err, transactions.ErrTransactionNotFound) || errors.Is(err, transactions.ErrUnauthorizedAccess) {
			h.respondError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve transaction")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   transaction,
	})
}

func (h *InvestmentHandler) VoidTransaction(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}
	// already parsed and validated by investment_middleware
	transactionID := r.Context().Value("transactionID").(uuid.UUID)

	err := h.transactionService.VoidTransaction(r.Context(), transactionID, userID)
	if err != nil {
		if errors.Is(err, transactions.ErrTransactionNotFound) {
			h.respondError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		if errors.Is(err, transactions.ErrTransactionAlreadyVoided) {
			h.respondError(w, http.StatusConflict, "Transaction was already voided")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to void transaction")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transaction voided successfully.",
	})
}

func (h *InvestmentHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}

	result, err := h.reportService.ComputeReport(r.Context(), filterFromQuery(r))
	if err != nil {
		if report.IsOversellError(err) {
			h.respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if report.IsValidationError(err) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to compute report")
		return
	}

	if r.URL.Query().Get("include_market_values") == "true" {
		h.respondJSON(w, http.StatusOK, map[string]interface{}{
			"status": "success",
			"data": map[string]interface{}{
				"global_summary": result.GlobalSummary,
				"per_asset":      result.PerAsset,
				"closed_trades":  result.ClosedTrades,
				"open_positions": h.decorateOpenPositions(r.Context(), result.OpenPositions),
			},
		})
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}

// marketValuedPosition is an open position decorated with a current quote.
// The pricing fields stay nil when no quote source covers the asset.
type marketValuedPosition struct {
	report.OpenPosition
	MarketPrice   *float64 `json:"market_price,omitempty"`
	MarketValue   *float64 `json:"market_value,omitempty"`
	UnrealizedPnL *float64 `json:"unrealized_pnl,omitempty"`
}

// decorateOpenPositions marks positions to market best effort: a missing or
// failing quote leaves the position undecorated instead of failing the report.
func (h *InvestmentHandler) decorateOpenPositions(ctx context.Context, positions []report.OpenPosition) []marketValuedPosition {
	assetTypes := make(map[string]string)
	if active, err := h.transactionService.ListActive(ctx); err == nil {
		for _, tx := range active {
			assetTypes[tx.Asset+"|"+tx.Currency] = tx.AssetType
		}
	}

	decorated := make([]marketValuedPosition, 0, len(positions))
	for _, position := range positions {
		valued := marketValuedPosition{OpenPosition: position}
		assetType := assetTypes[position.Asset+"|"+position.Currency]
		if assetType != "" {
			if price, err := h.priceService.GetCurrentPrice(ctx, position.Asset, position.Currency, assetType); err == nil {
				marketValue := price * position.QuantityRemaining
				unrealized := marketValue - position.CapitalInvested
				valued.MarketPrice = &price
				valued.MarketValue = &marketValue
				valued.UnrealizedPnL = &unrealized
			}
		}
		decorated = append(decorated, valued)
	}
	return decorated
}

func (h *InvestmentHandler) GetCurrentPrice(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}

	query := r.URL.Query()
	symbol := query.Get("symbol")
	currency := query.Get("currency")
	assetType := query.Get("asset_type")
	if symbol == "" || currency == "" || assetType == "" {
		h.respondError(w, http.StatusBadRequest, "Symbol, currency and asset_type are required query parameters")
		return
	}

	price, err := h.priceService.GetCurrentPrice(r.Context(), symbol, currency, assetType)
	if err != nil {
		if errors.Is(err, marketdata.ErrPriceUnavailable) {
			h.respondError(w, http.StatusBadGateway, "Current price unavailable for this asset")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve price")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"symbol":     symbol,
			"currency":   currency,
			"asset_type": assetType,
			"price":      price,
		},
	})
}

// RefreshPrices warms the quote cache for every distinct asset in the active
// history. The cron scheduler does the same on a fixed interval; this endpoint
// exists for on-demand refreshes from the dashboard.
func (h *InvestmentHandler) RefreshPrices(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}

	active, err := h.transactionService.ListActive(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve transactions")
		return
	}

	requests := marketdata.RequestsFromTransactions(active)
	h.priceService.RefreshPrices(r.Context(), requests)

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Prices refreshed successfully.",
		"data": map[string]interface{}{
			"refreshed_quotes": len(requests),
		},
	})
}
