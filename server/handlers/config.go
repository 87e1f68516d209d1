package handlers

import (
	"log/slog"
	"net/http"

	"gopkg.in/yaml.v3"
)

// ConfigHandler handles requests for the running configuration.
type ConfigHandler struct {
	configProvider ConfigProvider
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(provider ConfigProvider) *ConfigHandler {
	return &ConfigHandler{
		configProvider: provider,
	}
}

// ServeHTTP implements http.Handler.
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	w.WriteHeader(http.StatusOK)
	if err := yaml.NewEncoder(w).Encode(h.configProvider.Config()); err != nil {
		slog.Error("failed to encode YAML response", "error", err)
	}
}
