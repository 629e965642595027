package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"bikerental-backend/internal/security"
	"bikerental-backend/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the JSON API.
type Handler struct {
	bookings service.BookingService
	bikes    service.BikeService
	notes    service.NotificationService
	reports  service.ReportService
	db       Pinger
}

func NewHandler(bookings service.BookingService, bikes service.BikeService, notes service.NotificationService, reports service.ReportService, db Pinger) *Handler {
	return &Handler{bookings: bookings, bikes: bikes, notes: notes, reports: reports, db: db}
}

// NewRouter wires every route. metrics may be nil.
func NewRouter(h *Handler, auth security.Authenticator, metrics http.Handler) *mux.Router {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware)

	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	if metrics != nil {
		router.Handle("/metrics", metrics).Methods(http.MethodGet)
	}

	public := router.PathPrefix("/api/v1").Subrouter()
	public.HandleFunc("/bikes", h.ListBikes).Methods(http.MethodGet)
	public.HandleFunc("/quotes", h.Quote).Methods(http.MethodPost)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(auth))
	api.HandleFunc("/bookings", h.CreateBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings", h.ListMyBookings).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id:[0-9]+}", h.GetBooking).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id:[0-9]+}/payment/confirm", h.ConfirmPayment).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/bookings/{id:[0-9]+}/pickup", h.StartRide).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id:[0-9]+}/cancel", h.CancelBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id:[0-9]+}/extend", h.ExtendBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id:[0-9]+}/return", h.ReturnBike).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id:[0-9]+}/receipt", h.GetReceipt).Methods(http.MethodGet)
	api.HandleFunc("/notifications", h.ListNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id:[0-9]+}/read", h.MarkNotificationRead).Methods(http.MethodPost)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(RequireAdmin)
	admin.HandleFunc("/bookings/{id:[0-9]+}/settle", h.SettleBooking).Methods(http.MethodPost)
	admin.HandleFunc("/bikes", h.AddBike).Methods(http.MethodPost)
	admin.HandleFunc("/bikes/{id:[0-9]+}/status", h.SetBikeStatus).Methods(http.MethodPut)
	admin.HandleFunc("/reports/settlements", h.SettlementReport).Methods(http.MethodGet)
	admin.HandleFunc("/reports/archive", h.ListArchivedReports).Methods(http.MethodGet)
	admin.HandleFunc("/reports/archive/{name}", h.DownloadArchivedReport).Methods(http.MethodGet)

	return router
}

func caller(r *http.Request) *security.Identity {
	id, _ := security.IdentityFromContext(r.Context())
	return id
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
