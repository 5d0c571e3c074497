package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"tender-notifier/internal/common/errors"
	"tender-notifier/internal/common/validation"
)

type addKeyRequest struct {
	Key string `json:"key" validate:"notblank,max=200"`
}

type activeKeyRequest struct {
	Key string `json:"key" validate:"notblank"`
}

func (h *Handlers) GetUserKeys(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		h.writeError(w, "Invalid request", err)
		return
	}

	keys, err := h.services.Keys.List(r.Context(), user)
	if err != nil {
		h.writeError(w, "Failed to list keys", err)
		return
	}
	writeJSON(w, http.StatusOK, keys)
}

// AddUserKey resolves a key by name or id and saves it for the user.
func (h *Handlers) AddUserKey(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		h.writeError(w, "Invalid request", err)
		return
	}

	var req addKeyRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, "Invalid request", err)
		return
	}

	key, err := h.services.Keys.Add(r.Context(), user, req.Key)
	if err != nil {
		h.writeError(w, "Failed to add key", err)
		return
	}
	writeJSON(w, http.StatusCreated, key)
}

// DeleteUserKey forgets a saved key together with its subscription.
func (h *Handlers) DeleteUserKey(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		h.writeError(w, "Invalid request", err)
		return
	}

	if err := h.services.Keys.Delete(r.Context(), user, mux.Vars(r)["key"]); err != nil {
		h.writeError(w, "Failed to delete key", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetActiveKey returns the key reports and exports default to.
func (h *Handlers) GetActiveKey(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		h.writeError(w, "Invalid request", err)
		return
	}

	key, ok, err := h.services.Keys.Active(r.Context(), user)
	if err != nil {
		h.writeError(w, "Failed to load active key", err)
		return
	}
	if !ok {
		h.writeError(w, "No active key", errors.NotFoundError("active key"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user_id": user, "key": key})
}

func (h *Handlers) SetActiveKey(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		h.writeError(w, "Invalid request", err)
		return
	}

	var req activeKeyRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, "Invalid request", err)
		return
	}
	if err := h.services.Keys.SetActive(r.Context(), user, req.Key); err != nil {
		h.writeError(w, "Failed to set active key", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user_id": user, "key": req.Key})
}

// RefreshKeyNames pulls current key names from the tender API.
func (h *Handlers) RefreshKeyNames(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		h.writeError(w, "Invalid request", err)
		return
	}

	renamed, err := h.services.Keys.RefreshNames(r.Context(), user)
	if err != nil {
		h.writeError(w, "Failed to refresh key names", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user_id": user, "renamed": renamed})
}

func (h *Handlers) GetUserSubscriptions(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		h.writeError(w, "Invalid request", err)
		return
	}

	subs, err := h.storage.ListUserSubscriptions(r.Context(), user)
	if err != nil {
		h.writeError(w, "Failed to list subscriptions", err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

// Subscribe starts notifications for a user's key from the current moment.
func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		h.writeError(w, "Invalid request", err)
		return
	}
	key := mux.Vars(r)["key"]

	already, err := h.services.Subscriptions.IsSubscribed(r.Context(), user, key)
	if err != nil {
		h.writeError(w, "Failed to check subscription", err)
		return
	}
	if already {
		writeJSON(w, http.StatusOK, map[string]interface{}{"user_id": user, "key": key, "subscribed": true})
		return
	}

	if err := h.services.Subscriptions.Subscribe(r.Context(), user, key); err != nil {
		h.writeError(w, "Failed to subscribe", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"user_id": user, "key": key, "subscribed": true})
}

func (h *Handlers) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		h.writeError(w, "Invalid request", err)
		return
	}
	key := mux.Vars(r)["key"]

	if err := h.services.Subscriptions.Unsubscribe(r.Context(), user, key); err != nil {
		h.writeError(w, "Failed to unsubscribe", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.ValidationError("request body must be JSON with a key field")
	}
	return validation.Default().Struct(v)
}
