package handlers

import "net/http"

// ActivityCounter reports how many activities are loaded.
type ActivityCounter interface {
	Len() int
}

// HealthResponse is returned by the health check.
type HealthResponse struct {
	Status     string `json:"status"`
	Activities int    `json:"activities"`
}

// HealthHandler reports the server is up and the registry is loaded.
type HealthHandler struct {
	counter ActivityCounter
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(counter ActivityCounter) *HealthHandler {
	return &HealthHandler{counter: counter}
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n := h.counter.Len()
	if n == 0 {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "empty", Activities: 0})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Activities: n})
}
