package http

import (
	"net/http"

	"github.com/channelone/dealreg-conflict-service/internal/delivery/http/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(dealHandler *handlers.DealHandler, conflictHandler *handlers.ConflictHandler) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/deals", dealHandler.Submit).Methods(http.MethodPost)
	router.HandleFunc("/deals", dealHandler.List).Methods(http.MethodGet)
	router.HandleFunc("/deals/{id}", dealHandler.Get).Methods(http.MethodGet)
	router.HandleFunc("/deals/{id}/approve", dealHandler.Approve).Methods(http.MethodPost)
	router.HandleFunc("/deals/{id}/reject", dealHandler.Reject).Methods(http.MethodPost)

	router.HandleFunc("/conflicts", conflictHandler.List).Methods(http.MethodGet)
	router.HandleFunc("/conflicts/{id}", conflictHandler.Get).Methods(http.MethodGet)
	router.HandleFunc("/conflicts/{id}/resolve", conflictHandler.Resolve).Methods(http.MethodPost)

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	return router
}
