package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// HealthCheck returns 200 when storage and every registered dependency respond.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	components := map[string]string{}
	healthy := true

	if err := h.storage.Health(ctx); err != nil {
		components["storage"] = err.Error()
		healthy = false
	} else {
		components["storage"] = "healthy"
	}

	names := make([]string, 0, len(h.services.Checks))
	for name := range h.services.Checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := h.services.Checks[name](ctx); err != nil {
			components[name] = err.Error()
			healthy = false
			continue
		}
		components[name] = "healthy"
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status":     status,
		"timestamp":  time.Now().UTC(),
		"components": components,
	})
}
