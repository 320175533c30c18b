package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"attendance.service/internal/api/handler"
	"attendance.service/internal/api/middleware"
	"attendance.service/internal/core/model"
)

// Dependencies are the services and auth primitives the routes are built on.
type Dependencies struct {
	Ledger   handler.Ledger
	Accounts handler.AccountService
	Tokens   middleware.TokenVerifier
	Users    middleware.UserFinder
}

// NewRouter sets up the gorilla/mux router and defines all API routes.
func NewRouter(deps Dependencies) *mux.Router {
	authHandler := handler.AuthHandler{Accounts: deps.Accounts}
	attendanceHandler := handler.AttendanceHandler{Ledger: deps.Ledger}
	dashboardHandler := handler.DashboardHandler{Ledger: deps.Ledger}

	authenticate := middleware.Authenticate(deps.Tokens, deps.Users)
	managerOnly := middleware.RequireRole(model.RoleManager)

	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Service is operational."))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	authRoutes := api.PathPrefix("/auth").Subrouter()
	authRoutes.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	authRoutes.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	authRoutes.Handle("/me", authenticate(http.HandlerFunc(authHandler.Me))).Methods(http.MethodGet)

	attendance := api.PathPrefix("/attendance").Subrouter()
	attendance.Use(authenticate)
	attendance.HandleFunc("/checkin", attendanceHandler.CheckIn).Methods(http.MethodPost)
	attendance.HandleFunc("/checkout", attendanceHandler.CheckOut).Methods(http.MethodPost)
	attendance.HandleFunc("/my-history", attendanceHandler.MyHistory).Methods(http.MethodGet)
	attendance.HandleFunc("/my-summary", attendanceHandler.MySummary).Methods(http.MethodGet)
	attendance.HandleFunc("/today", attendanceHandler.Today).Methods(http.MethodGet)

	manager := attendance.NewRoute().Subrouter()
	manager.Use(managerOnly)
	manager.HandleFunc("/all", attendanceHandler.All).Methods(http.MethodGet)
	manager.HandleFunc("/employee/{id}", attendanceHandler.Employee).Methods(http.MethodGet)
	manager.HandleFunc("/summary", attendanceHandler.Summary).Methods(http.MethodGet)
	manager.HandleFunc("/trend", attendanceHandler.Trend).Methods(http.MethodGet)
	manager.HandleFunc("/export", attendanceHandler.Export).Methods(http.MethodGet)

	dashboard := api.PathPrefix("/dashboard").Subrouter()
	dashboard.Use(authenticate)
	dashboard.HandleFunc("/employee", dashboardHandler.Employee).Methods(http.MethodGet)
	dashboard.Handle("/manager", managerOnly(http.HandlerFunc(dashboardHandler.Manager))).Methods(http.MethodGet)

	return r
}
