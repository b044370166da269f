package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	database "github.com/albert-carrasquel/home-flow/db"
	"github.com/albert-carrasquel/home-flow/internal/auth"
	emailService "github.com/albert-carrasquel/home-flow/internal/email"
	"github.com/albert-carrasquel/home-flow/internal/finance/application"
	"github.com/albert-carrasquel/home-flow/internal/finance/infrastructure"
	"github.com/albert-carrasquel/home-flow/internal/finance/interfaces"
	investments "github.com/albert-carrasquel/home-flow/internal/investment"
	"github.com/albert-carrasquel/home-flow/internal/investment/marketdata"
	"github.com/albert-carrasquel/home-flow/internal/investment/report"
	transactions "github.com/albert-carrasquel/home-flow/internal/investment/transaction"
	"github.com/albert-carrasquel/home-flow/internal/user"
)

type Response struct {
	Message string `json:"message"`
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("Started %s %s", r.Method, r.URL.Path)

		next.ServeHTTP(w, r)

		log.Printf("Completed %s in %v", r.URL.Path, time.Since(start))
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string, errs ...[]string) {
	response := map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	}
	if len(errs) > 0 {
		response["errors"] = errs[0]
	}
	respondJSON(w, status, response)
}

type Server struct {
	router             *http.ServeMux
	dbService          *database.DBService
	authHandler        *auth.Handler
	userHandler        *user.Handler
	authService        auth.Service
	entryHandler       *interfaces.CashflowEntryHandler
	categoryHandler    *interfaces.CategoryHandler
	paymentHandler     *interfaces.PaymentHandler
	checklistHandler   *interfaces.ChecklistHandler
	investmentsHandler *investments.InvestmentHandler
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(Response{Message: "Path not found"})
}

func checkConfiguration() error {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, continuing with system environment variables")
	}

	if os.Getenv("JWT_SECRET") == "" {
		return errors.New("no JWT_SECRET provided")
	}
	return nil
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.dbService.Health())
}

func (s *Server) RegisterRoutes() {
	// Public routes
	publicRoutes := http.NewServeMux()
	publicRoutes.Handle("POST /api/register", http.HandlerFunc(s.userHandler.HandleRegister))
	publicRoutes.Handle("POST /api/email/verify", http.HandlerFunc(s.userHandler.HandleVerifyEmail))
	publicRoutes.Handle("POST /api/auth/login", http.HandlerFunc(s.authHandler.HandleLogin))
	publicRoutes.Handle("POST /api/auth/logout", http.HandlerFunc(s.authHandler.HandleLogout))
	publicRoutes.Handle("POST /api/auth/2fa/verify", http.HandlerFunc(s.authHandler.HandleVerifyTwoFactor))
	publicRoutes.Handle("POST /api/password-reset/request", http.HandlerFunc(s.authHandler.RequestPasswordResetHandler))
	publicRoutes.Handle("POST /api/password-reset/confirm", http.HandlerFunc(s.authHandler.ResetPasswordHandler))
	publicRoutes.Handle("GET /api/ready", http.HandlerFunc(s.handleReady))
	publicRoutes.Handle("GET /api/health", http.HandlerFunc(s.handleHealth))

	// Protected routes (JWT access token)
	protectedRoutes := http.NewServeMux()
	withAuth := s.authService.JWTAccessTokenMiddleware()

	protectedRoutes.Handle("POST /api/protected/email/change-request", withAuth(http.HandlerFunc(s.userHandler.HandleRequestEmailChange)))
	protectedRoutes.Handle("POST /api/protected/email/change-confirm", withAuth(http.HandlerFunc(s.userHandler.HandleConfirmEmailChange)))
	protectedRoutes.Handle("GET /api/protected/profile", withAuth(http.HandlerFunc(s.userHandler.HandleGetUserProfile)))
	protectedRoutes.Handle("POST /api/protected/change-password", withAuth(http.HandlerFunc(s.userHandler.HandleChangePassword)))

	protectedRoutes.Handle("POST /api/protected/2fa/register", withAuth(http.HandlerFunc(s.authHandler.HandleRegisterTwoFactor)))
	protectedRoutes.Handle("POST /api/protected/2fa/verify-registration", withAuth(http.HandlerFunc(s.authHandler.HandleVerifyTwoFactorCode)))
	protectedRoutes.Handle("POST /api/protected/2fa/request-email-code", withAuth(http.HandlerFunc(s.authHandler.HandleRequestEmail2FACode)))
	protectedRoutes.Handle("DELETE /api/protected/2fa/disable", withAuth(http.HandlerFunc(s.authHandler.HandleDisableTwoFactor)))

	// CASHFLOW API
	protectedRoutes.Handle("GET /api/protected/categories", withAuth(http.HandlerFunc(s.categoryHandler.GetCategories)))
	protectedRoutes.Handle("GET /api/protected/categories/user", withAuth(http.HandlerFunc(s.categoryHandler.GetUserCategories)))
	protectedRoutes.Handle("GET /api/protected/payment-methods", withAuth(http.HandlerFunc(s.paymentHandler.GetPaymentMethods)))
	protectedRoutes.Handle("GET /api/protected/payment-sources", withAuth(http.HandlerFunc(s.paymentHandler.GetPaymentSources)))

	protectedRoutes.Handle("POST /api/protected/entries", withAuth(http.HandlerFunc(s.entryHandler.CreateEntry)))
	protectedRoutes.Handle("POST /api/protected/entries/bulk", withAuth(http.HandlerFunc(s.entryHandler.CreateEntriesBulk)))
	protectedRoutes.Handle("GET /api/protected/entries", withAuth(http.HandlerFunc(s.entryHandler.GetUserEntries)))
	protectedRoutes.Handle("GET /api/protected/entries/summary", withAuth(http.HandlerFunc(s.entryHandler.GetEntrySummary)))
	protectedRoutes.Handle("DELETE /api/protected/entries/{entryID}", withAuth(http.HandlerFunc(s.entryHandler.VoidEntry)))

	protectedRoutes.Handle("GET /api/protected/checklist", withAuth(http.HandlerFunc(s.checklistHandler.GetMonth)))
	protectedRoutes.Handle("POST /api/protected/checklist", withAuth(http.HandlerFunc(s.checklistHandler.AddItem)))
	protectedRoutes.Handle("POST /api/protected/checklist/{itemID}/register", withAuth(http.HandlerFunc(s.checklistHandler.RegisterItem)))
	protectedRoutes.Handle("POST /api/protected/checklist/{itemID}/annul", withAuth(http.HandlerFunc(s.checklistHandler.AnnulItem)))

	// INVESTMENTS API
	protectedRoutes.Handle("POST /api/protected/investments/transactions",
		withAuth(http.HandlerFunc(s.investmentsHandler.CreateTransaction)))

	protectedRoutes.Handle("POST /api/protected/investments/transactions/bulk",
		withAuth(http.HandlerFunc(s.investmentsHandler.CreateTransactionsBulk)))

	protectedRoutes.Handle("GET /api/protected/investments/transactions",
		withAuth(http.HandlerFunc(s.investmentsHandler.GetAllTransactions)))

	protectedRoutes.Handle("GET /api/protected/investments/transactions/{transactionID}",
		withAuth(s.investmentsHandler.ValidateInvestmentPathParamsMiddleware(http.HandlerFunc(s.investmentsHandler.GetTransaction), "transactionID")))

	protectedRoutes.Handle("DELETE /api/protected/investments/transactions/{transactionID}",
		withAuth(s.investmentsHandler.ValidateInvestmentPathParamsMiddleware(http.HandlerFunc(s.investmentsHandler.VoidTransaction), "transactionID")))

	protectedRoutes.Handle("GET /api/protected/investments/report",
		withAuth(http.HandlerFunc(s.investmentsHandler.GetReport)))

	protectedRoutes.Handle("GET /api/protected/investments/prices",
		withAuth(http.HandlerFunc(s.investmentsHandler.GetCurrentPrice)))

	protectedRoutes.Handle("POST /api/protected/investments/prices/refresh",
		withAuth(http.HandlerFunc(s.investmentsHandler.RefreshPrices)))

	// Refresh token routes
	refreshTokenRoutes := http.NewServeMux()
	refreshTokenRoutes.Handle("PUT /api/refresh/token", s.authService.JWTRefreshTokenMiddleware()(http.HandlerFunc(s.authHandler.RefreshAccessToken)))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/api/", publicRoutes)
	mainRouter.Handle("/api/protected/", protectedRoutes)
	mainRouter.Handle("/api/refresh/", refreshTokenRoutes)
	mainRouter.Handle("/", http.HandlerFunc(notFoundHandler))

	s.router = mainRouter
}

func main() {
	if err := checkConfiguration(); err != nil {
		log.Fatalf("Missing configuration, update to start server")
	}

	dbService, err := database.NewDBService()
	if err != nil {
		log.Fatalf("Could not initialize database: %v", err)
	}
	defer dbService.Close()

	authRepo := auth.NewTwoFactorRepository(dbService.DB)
	userRepo := user.NewUserRepository(dbService.DB)

	sessionManager := auth.NewSessionManager()
	sessionManager.StartSessionTokenCleanup(time.Minute)
	jwtManager := auth.NewJWTManager()
	newEmailService := emailService.NewEmailService()
	authenticator := auth.Authenticator{}

	userService := user.NewUserService(userRepo, newEmailService)
	userHandler := user.NewHandler(userService)
	authService := auth.NewAuthService(authRepo, userService, sessionManager, jwtManager, newEmailService, authenticator)
	authHandler := auth.NewHandler(authService)

	categoryRepo := infrastructure.NewCategoryRepository(dbService.DB)
	categoryService := application.NewCategoryService(categoryRepo)
	categoryHandler := interfaces.NewCategoryHandler(categoryService, respondJSON, respondError)

	paymentRepo := infrastructure.NewPaymentRepository(dbService.DB)
	paymentService := application.NewPaymentService(paymentRepo)
	paymentHandler := interfaces.NewPaymentHandler(paymentService, respondJSON, respondError)

	entryRepo := infrastructure.NewCashflowEntryRepository(dbService.DB)
	entryService := application.NewCashflowEntryService(entryRepo, categoryService, paymentService)
	entryHandler := interfaces.NewCashflowEntryHandler(entryService, respondJSON, respondError)

	checklistRepo := infrastructure.NewChecklistRepository(dbService.DB)
	checklistService := application.NewChecklistService(entryRepo, checklistRepo)
	checklistHandler := interfaces.NewChecklistHandler(checklistService, respondJSON, respondError)

	transactionRepo := transactions.NewTransactionRepository(dbService.DB)
	transactionService := transactions.NewTransactionService(transactionRepo)
	reportService := report.NewReportService(transactionService)

	apiKey := os.Getenv("MARKET_DATA_API_KEY")
	priceService := marketdata.NewPriceService(marketdata.NewCoinGeckoClient(), marketdata.NewFMPClient(apiKey))

	investmentsHandler := investments.NewInvestmentHandler(transactionService, reportService, priceService, respondJSON, respondError)

	server := &Server{
		dbService:          dbService,
		authHandler:        authHandler,
		userHandler:        userHandler,
		authService:        authService,
		entryHandler:       entryHandler,
		categoryHandler:    categoryHandler,
		paymentHandler:     paymentHandler,
		checklistHandler:   checklistHandler,
		investmentsHandler: investmentsHandler,
	}
	server.RegisterRoutes()

	if err := StartPriceRefreshScheduler(transactionService, priceService); err != nil {
		log.Fatalf("Scheduler didn't start, stopping the app ...")
	}

	loggedRouter := loggingMiddleware(server.router)
	log.Println("Starting perf on port 6060...")
	go func() {
		log.Println(http.ListenAndServe("localhost:6060", nil))
	}()
	log.Println("Server starting on port 8080...")
	if err := http.ListenAndServe(":8080", loggedRouter); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// StartPriceRefreshScheduler keeps the quote cache warm for every asset that
// still has active transactions, so portfolio views rarely wait on upstream
// providers.
func StartPriceRefreshScheduler(transactionService transactions.Service, priceService marketdata.PriceService) error {
	c := cron.New()
	_, err := c.AddFunc("@every 5m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		active, err := transactionService.ListActive(ctx)
		if err != nil {
			log.Printf("Error listing transactions for price refresh: %v", err)
			return
		}
		requests := marketdata.RequestsFromTransactions(active)
		if len(requests) == 0 {
			return
		}
		priceService.RefreshPrices(ctx, requests)
		log.Printf("Refreshed quotes for %d assets", len(requests))
	})
	if err != nil {
		return err
	}
	c.Start()
	return nil
}
