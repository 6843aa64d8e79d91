// health.go — liveness и readiness probes.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bigkaa/telefile/internal/kvstore"
)

// HealthHandler — обработчик health endpoints.
type HealthHandler struct {
	kv kvstore.Backend
}

// NewHealthHandler создаёт обработчик health endpoints.
func NewHealthHandler(kv kvstore.Backend) *HealthHandler {
	return &HealthHandler{kv: kv}
}

// Live обрабатывает GET /health/live. Процесс жив — 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}

// Ready обрабатывает GET /health/ready.
// Проверяет доступность key-value backend'а пробным чтением:
// ErrNotFound означает, что backend отвечает.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	_, _, err := h.kv.Get(r.Context(), "health.probe")
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "unavailable",
			"reason": err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}
