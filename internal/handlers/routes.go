package handlers

import (
	"github.com/gorilla/mux"
	"tender-notifier/internal/middleware"
)

// Router wires every admin endpoint onto a new mux router.
func (h *Handlers) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware)

	router.HandleFunc("/health", h.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sync", h.RunSync).Methods("POST")

	api.HandleFunc("/keys/{key}/messages", h.GetMessages).Methods("GET")
	api.HandleFunc("/keys/{key}/report", h.CreateReport).Methods("POST")

	api.HandleFunc("/tenders/{id}/attachments", h.GetAttachments).Methods("GET")

	api.HandleFunc("/users/{user}/keys", h.GetUserKeys).Methods("GET")
	api.HandleFunc("/users/{user}/keys", h.AddUserKey).Methods("POST")
	api.HandleFunc("/users/{user}/keys/active", h.GetActiveKey).Methods("GET")
	api.HandleFunc("/users/{user}/keys/active", h.SetActiveKey).Methods("PUT")
	api.HandleFunc("/users/{user}/keys/refresh", h.RefreshKeyNames).Methods("POST")
	api.HandleFunc("/users/{user}/keys/{key}", h.DeleteUserKey).Methods("DELETE")
	api.HandleFunc("/users/{user}/subscriptions", h.GetUserSubscriptions).Methods("GET")
	api.HandleFunc("/users/{user}/subscriptions/{key}", h.Subscribe).Methods("POST")
	api.HandleFunc("/users/{user}/subscriptions/{key}", h.Unsubscribe).Methods("DELETE")

	return router
}
