package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes mounts the API under /api. Every route except the health
// check goes through authMiddleware.
func RegisterRoutes(router *mux.Router, cim *CIMHandler, health *HealthHandler, authMiddleware mux.MiddlewareFunc) {
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", health.Health).Methods(http.MethodGet)

	protected := api.PathPrefix("/profiles").Subrouter()
	protected.Use(authMiddleware)

	protected.HandleFunc("", cim.AddProfile).Methods(http.MethodPost)
	protected.HandleFunc("/{profileID}", cim.GetProfile).Methods(http.MethodGet)
	protected.HandleFunc("/{profileID}/payment-profiles", cim.CreatePaymentProfile).Methods(http.MethodPost)
	protected.HandleFunc("/{profileID}/payment-profiles/{paymentProfileID}", cim.UpdatePaymentProfile).Methods(http.MethodPut)
	protected.HandleFunc("/{profileID}/payment-profiles/{paymentProfileID}", cim.DeletePaymentProfile).Methods(http.MethodDelete)
	protected.HandleFunc("/{profileID}/payment-profiles/{paymentProfileID}/transactions", cim.ProcessTransaction).Methods(http.MethodPost)
}
