// Package handlers implements the operator-facing admin HTTP API.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"tender-notifier/internal/common/errors"
	"tender-notifier/internal/common/logging"
	"tender-notifier/internal/storage"
	"tender-notifier/internal/tenders"
)

type Syncer interface {
	CheckNewTenders(ctx context.Context) (*tenders.CycleResult, error)
}

type Exporter interface {
	ExportMessages(ctx context.Context, key string) ([]tenders.Notification, error)
}

type Reporter interface {
	Generate(ctx context.Context, key string) (*tenders.Report, error)
}

type Subscriptions interface {
	Subscribe(ctx context.Context, userID int64, key string) error
	Unsubscribe(ctx context.Context, userID int64, key string) error
	IsSubscribed(ctx context.Context, userID int64, key string) (bool, error)
}

type KeyRegistry interface {
	Add(ctx context.Context, userID int64, input string) (storage.UserKey, error)
	List(ctx context.Context, userID int64) ([]storage.UserKey, error)
	Delete(ctx context.Context, userID int64, key string) error
	Active(ctx context.Context, userID int64) (string, bool, error)
	SetActive(ctx context.Context, userID int64, key string) error
	RefreshNames(ctx context.Context, userID int64) (int, error)
}

// HealthCheck reports the state of one dependency.
type HealthCheck func(ctx context.Context) error

// Services are the domain operations exposed over HTTP.
type Services struct {
	Syncer        Syncer
	Exporter      Exporter
	Reporter      Reporter
	Subscriptions Subscriptions
	Keys          KeyRegistry
	Checks        map[string]HealthCheck
}

type Handlers struct {
	storage  storage.Storage
	services Services
	logger   logging.Logger
}

func New(store storage.Storage, services Services) *Handlers {
	return &Handlers{
		storage:  store,
		services: services,
		logger:   logging.Component("handlers"),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP status codes.
func (h *Handlers) writeError(w http.ResponseWriter, msg string, err error) {
	status := http.StatusInternalServerError
	switch errors.GetType(err) {
	case errors.ErrTypeValidation, errors.ErrTypeMalformed:
		status = http.StatusBadRequest
	case errors.ErrTypeNotFound:
		status = http.StatusNotFound
	case errors.ErrTypeRateLimit, errors.ErrTypeFloodControl:
		status = http.StatusTooManyRequests
	case errors.ErrTypeTransient, errors.ErrTypePermanent:
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, err)
	}
	writeJSON(w, status, map[string]string{
		"error":   msg,
		"details": err.Error(),
	})
}

func userID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["user"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.ValidationError("invalid user id: " + raw)
	}
	return id, nil
}
