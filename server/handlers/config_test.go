package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nomis52/signupd/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type mockConfigProvider struct {
	config *config.Config
}

func (m *mockConfigProvider) Config() *config.Config {
	return m.config
}

func TestConfigHandler(t *testing.T) {
	cfg := &config.Config{
		Listener: config.ListenerConfig{Addr: ":9000", ReadTimeout: 3 * time.Second},
		Report:   config.ReportConfig{Schedule: "0 7 * * 1-5"},
	}
	cfg.SetDefaults()

	handler := NewConfigHandler(&mockConfigProvider{config: cfg})

	req := httptest.NewRequest(http.MethodGet, "/config", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/yaml", w.Header().Get("Content-Type"))

	var resp config.Config
	require.NoError(t, yaml.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, ":9000", resp.Listener.Addr)
	assert.Equal(t, 3*time.Second, resp.Listener.ReadTimeout)
	assert.Equal(t, "0 7 * * 1-5", resp.Report.Schedule)
	assert.Equal(t, "info", resp.Logging.Level)
}
