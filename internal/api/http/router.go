package http

import (
	"net/http"

	"libcirc-backend/internal/service"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler bundles the services the HTTP surface exposes.
type Handler struct {
	circSvc     service.CirculationService
	catalogSvc  service.CatalogService
	borrowerSvc service.BorrowerService
	reportSvc   service.ReportingService
	noteSvc     service.NotificationService
}

func NewHandler(
	circSvc service.CirculationService,
	catalogSvc service.CatalogService,
	borrowerSvc service.BorrowerService,
	reportSvc service.ReportingService,
	noteSvc service.NotificationService,
) *Handler {
	return &Handler{
		circSvc:     circSvc,
		catalogSvc:  catalogSvc,
		borrowerSvc: borrowerSvc,
		reportSvc:   reportSvc,
		noteSvc:     noteSvc,
	}
}

// RegisterRoutes wires all endpoints onto the router.
func RegisterRoutes(r *mux.Router, h *Handler) {
	api := r.PathPrefix("/api").Subrouter()

	// Circulation engine
	api.HandleFunc("/loans/issue", h.IssueLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans/return", h.ReturnLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans/lost", h.ReportLost).Methods(http.MethodPost)
	api.HandleFunc("/loans/{ref}/renew", h.RenewLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans/{ref}/fine/confirm", h.ConfirmFinePayment).Methods(http.MethodPost)

	// Query views
	api.HandleFunc("/loans/overdue", h.ListOverdueLoans).Methods(http.MethodGet)
	api.HandleFunc("/borrowers/{type}/{id}/loans", h.ListActiveLoans).Methods(http.MethodGet)
	api.HandleFunc("/reports/borrow-counts", h.BorrowCounts).Methods(http.MethodGet)

	// Catalog
	api.HandleFunc("/items", h.AddItem).Methods(http.MethodPost)
	api.HandleFunc("/items", h.ListItems).Methods(http.MethodGet)
	api.HandleFunc("/items/{accession_no}", h.GetItem).Methods(http.MethodGet)
	api.HandleFunc("/items/{accession_no}", h.UpdateItem).Methods(http.MethodPut)

	// Borrower directory
	api.HandleFunc("/borrowers", h.RegisterBorrower).Methods(http.MethodPost)
	api.HandleFunc("/borrowers/{type}", h.ListBorrowers).Methods(http.MethodGet)
	api.HandleFunc("/borrowers/{type}/{id}", h.GetBorrower).Methods(http.MethodGet)
	api.HandleFunc("/borrowers/{type}/{id}", h.UpdateBorrower).Methods(http.MethodPut)

	// Notifications
	api.HandleFunc("/borrowers/{type}/{id}/notifications", h.ListNotifications).Methods(http.MethodGet)
	api.HandleFunc("/borrowers/{type}/{id}/notifications/{note_id}/read", h.MarkNotificationRead).Methods(http.MethodPost)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
}
