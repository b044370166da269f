package investments

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/albert-carrasquel/home-flow/internal/investment/marketdata"
	"github.com/albert-carrasquel/home-flow/internal/investment/models"
	"github.com/albert-carrasquel/home-flow/internal/investment/report"
	transactions "github.com/albert-carrasquel/home-flow/internal/investment/transaction"
)

func testRespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func testRespondError(w http.ResponseWriter, status int, message string, errs ...[]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]interface{}{"status": "error", "message": message}
	if len(errs) > 0 {
		body["errors"] = errs[0]
	}
	_ = json.NewEncoder(w).Encode(body)
}

type mockReportService struct {
	result *report.Report
	err    error
}

func (m *mockReportService) ComputeReport(_ context.Context, _ transactions.Filter) (*report.Report, error) {
	return m.result, m.err
}

type mockPriceService struct {
	price float64
	err   error
}

func (m *mockPriceService) GetCurrentPrice(_ context.Context, _, _, _ string) (float64, error) {
	return m.price, m.err
}

func (m *mockPriceService) RefreshPrices(_ context.Context, _ []marketdata.PriceRequest) {}

func newTestHandler(repo *transactions.MockTransactionRepository, reportSvc report.Service, priceSvc marketdata.PriceService) *InvestmentHandler {
	return NewInvestmentHandler(
		transactions.NewTransactionService(repo),
		reportSvc,
		priceSvc,
		testRespondJSON,
		testRespondError,
	)
}

func authedRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	return req.WithContext(context.WithValue(req.Context(), "userID", "albert"))
}

func TestCreateTransactionHandler(t *testing.T) {
	repo := &transactions.MockTransactionRepository{}
	handler := newTestHandler(repo, &mockReportService{}, &mockPriceService{})

	payload := []byte(`{
		"asset": "btc",
		"asset_type": "Crypto",
		"currency": "usd",
		"operation_type": "buy",
		"quantity": 0.5,
		"unit_price": 30000,
		"effective_date": "2024-03-10"
	}`)

	recorder := httptest.NewRecorder()
	handler.CreateTransaction(recorder, authedRequest(http.MethodPost, "/api/investments/transactions", payload))

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Len(t, repo.Transactions, 1)
	assert.Equal(t, "BTC", repo.Transactions[0].Asset)
	assert.Equal(t, "albert", repo.Transactions[0].UserID)
}

func TestCreateTransactionHandler_RejectsInvalidDate(t *testing.T) {
	repo := &transactions.MockTransactionRepository{}
	handler := newTestHandler(repo, &mockReportService{}, &mockPriceService{})

	payload := []byte(`{"asset": "BTC", "asset_type": "Crypto", "currency": "USD", "operation_type": "buy", "quantity": 1, "unit_price": 100, "effective_date": "10/03/2024"}`)

	recorder := httptest.NewRecorder()
	handler.CreateTransaction(recorder, authedRequest(http.MethodPost, "/api/investments/transactions", payload))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Empty(t, repo.Transactions)
}

func TestCreateTransactionHandler_Unauthorized(t *testing.T) {
	handler := newTestHandler(&transactions.MockTransactionRepository{}, &mockReportService{}, &mockPriceService{})

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/investments/transactions", bytes.NewReader([]byte(`{}`)))
	handler.CreateTransaction(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestVoidTransactionHandler(t *testing.T) {
	repo := &transactions.MockTransactionRepository{}
	service := transactions.NewTransactionService(repo)
	handler := NewInvestmentHandler(service, &mockReportService{}, &mockPriceService{}, testRespondJSON, testRespondError)

	stored := &models.Transaction{
		Asset:         "BTC",
		AssetType:     "Crypto",
		Currency:      "USD",
		OperationType: models.OperationBuy,
		Quantity:      1,
		UnitPrice:     100,
		EffectiveDate: time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
	}
	assert.NoError(t, service.CreateTransaction(context.Background(), "albert", stored))

	req := authedRequest(http.MethodDelete, "/api/investments/transactions/"+stored.ID.String(), nil)
	req = req.WithContext(context.WithValue(req.Context(), "transactionID", stored.ID))

	recorder := httptest.NewRecorder()
	handler.VoidTransaction(recorder, req)
	assert.Equal(t, http.StatusOK, recorder.Code)

	// second void of the same record conflicts
	recorder = httptest.NewRecorder()
	handler.VoidTransaction(recorder, req)
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestVoidTransactionHandler_NotFound(t *testing.T) {
	handler := newTestHandler(&transactions.MockTransactionRepository{}, &mockReportService{}, &mockPriceService{})

	req := authedRequest(http.MethodDelete, "/api/investments/transactions/missing", nil)
	req = req.WithContext(context.WithValue(req.Context(), "transactionID", uuid.New()))

	recorder := httptest.NewRecorder()
	handler.VoidTransaction(recorder, req)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestGetTransactionHandler_OtherUsersRecordReadsAsMissing(t *testing.T) {
	repo := &transactions.MockTransactionRepository{}
	service := transactions.NewTransactionService(repo)
	handler := NewInvestmentHandler(service, &mockReportService{}, &mockPriceService{}, testRespondJSON, testRespondError)

	stored := &models.Transaction{
		Asset:         "BTC",
		AssetType:     "Crypto",
		Currency:      "USD",
		OperationType: models.OperationBuy,
		Quantity:      1,
		UnitPrice:     100,
		EffectiveDate: time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
	}
	assert.NoError(t, service.CreateTransaction(context.Background(), "haydee", stored))

	// authedRequest authenticates as albert, who does not own the record
	req := authedRequest(http.MethodGet, "/api/investments/transactions/"+stored.ID.String(), nil)
	req = req.WithContext(context.WithValue(req.Context(), "transactionID", stored.ID))

	recorder := httptest.NewRecorder()
	handler.GetTransaction(recorder, req)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	// the owner still reads it fine
	ownerReq := httptest.NewRequest(http.MethodGet, "/api/investments/transactions/"+stored.ID.String(), nil)
	ownerCtx := context.WithValue(ownerReq.Context(), "userID", "haydee")
	ownerReq = ownerReq.WithContext(context.WithValue(ownerCtx, "transactionID", stored.ID))

	recorder = httptest.NewRecorder()
	handler.GetTransaction(recorder, ownerReq)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), stored.ID.String())
}

func TestGetReportHandler_OversellMapsTo422(t *testing.T) {
	oversell := &report.OversellError{
		OwnerID:           "albert",
		Asset:             "BTC",
		Currency:          "USD",
		UnmatchedQuantity: 5,
		SaleDate:          time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
	}
	handler := newTestHandler(&transactions.MockTransactionRepository{}, &mockReportService{err: oversell}, &mockPriceService{})

	recorder := httptest.NewRecorder()
	handler.GetReport(recorder, authedRequest(http.MethodGet, "/api/investments/report", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "BTC")
}

func TestGetReportHandler_Success(t *testing.T) {
	result := &report.Report{
		GlobalSummary: report.GlobalSummary{TotalInvested: 100, TotalRecovered: 150, NetPnL: 50, PnLPct: 50},
	}
	handler := newTestHandler(&transactions.MockTransactionRepository{}, &mockReportService{result: result}, &mockPriceService{})

	recorder := httptest.NewRecorder()
	handler.GetReport(recorder, authedRequest(http.MethodGet, "/api/investments/report?asset=BTC", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "\"net_pnl\":50")
}

func TestGetReportHandler_MarketValues(t *testing.T) {
	result := &report.Report{
		OpenPositions: []report.OpenPosition{
			{OwnerID: "albert", Asset: "BTC", Currency: "USD", QuantityRemaining: 0.5, AverageCost: 30000, CapitalInvested: 15000},
		},
	}
	repo := &transactions.MockTransactionRepository{
		Transactions: []models.Transaction{
			{ID: uuid.New(), UserID: "albert", Asset: "BTC", AssetType: "Crypto", Currency: "USD",
				OperationType: models.OperationBuy, Quantity: 0.5, UnitPrice: 30000,
				EffectiveDate: time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)},
		},
	}
	handler := newTestHandler(repo, &mockReportService{result: result}, &mockPriceService{price: 40000})

	recorder := httptest.NewRecorder()
	handler.GetReport(recorder, authedRequest(http.MethodGet, "/api/investments/report?include_market_values=true", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	// 0.5 BTC at 40000 is worth 20000, 5000 above the invested capital
	assert.Contains(t, recorder.Body.String(), "\"market_value\":20000")
	assert.Contains(t, recorder.Body.String(), "\"unrealized_pnl\":5000")
}

func TestGetReportHandler_MarketValuesSkipUnquotable(t *testing.T) {
	result := &report.Report{
		OpenPositions: []report.OpenPosition{
			{OwnerID: "albert", Asset: "S31O5", Currency: "ARS", QuantityRemaining: 100, AverageCost: 95, CapitalInvested: 9500},
		},
	}
	handler := newTestHandler(&transactions.MockTransactionRepository{}, &mockReportService{result: result}, &mockPriceService{err: marketdata.ErrPriceUnavailable})

	recorder := httptest.NewRecorder()
	handler.GetReport(recorder, authedRequest(http.MethodGet, "/api/investments/report?include_market_values=true", nil))

	// position still reported, just without pricing fields
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "S31O5")
	assert.NotContains(t, recorder.Body.String(), "market_value")
}

func TestGetCurrentPriceHandler(t *testing.T) {
	handler := newTestHandler(&transactions.MockTransactionRepository{}, &mockReportService{}, &mockPriceService{price: 42000})

	recorder := httptest.NewRecorder()
	handler.GetCurrentPrice(recorder, authedRequest(http.MethodGet, "/api/investments/prices/current?symbol=BTC&currency=USD&asset_type=Crypto", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "42000")
}

func TestGetCurrentPriceHandler_MissingParams(t *testing.T) {
	handler := newTestHandler(&transactions.MockTransactionRepository{}, &mockReportService{}, &mockPriceService{})

	recorder := httptest.NewRecorder()
	handler.GetCurrentPrice(recorder, authedRequest(http.MethodGet, "/api/investments/prices/current?symbol=BTC", nil))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestGetCurrentPriceHandler_UpstreamDown(t *testing.T) {
	handler := newTestHandler(&transactions.MockTransactionRepository{}, &mockReportService{}, &mockPriceService{err: marketdata.ErrPriceUnavailable})

	recorder := httptest.NewRecorder()
	handler.GetCurrentPrice(recorder, authedRequest(http.MethodGet, "/api/investments/prices/current?symbol=BTC&currency=USD&asset_type=Crypto", nil))

	assert.Equal(t, http.StatusBadGateway, recorder.Code)
}

func TestValidateInvestmentPathParamsMiddleware(t *testing.T) {
	handler := newTestHandler(&transactions.MockTransactionRepository{}, &mockReportService{}, &mockPriceService{})

	var capturedID uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedID = r.Context().Value("transactionID").(uuid.UUID)
		w.WriteHeader(http.StatusOK)
	})

	mux := http.NewServeMux()
	mux.Handle("DELETE /api/investments/transactions/{transactionID}", handler.ValidateInvestmentPathParamsMiddleware(next, "transactionID"))

	id := uuid.New()
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/api/investments/transactions/"+id.String(), nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, id, capturedID)

	recorder = httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/api/investments/transactions/not-a-uuid", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
