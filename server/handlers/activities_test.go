package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nomis52/signupd/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivitiesHandler(t *testing.T) {
	handler := NewActivitiesHandler(registry.Default())

	req := httptest.NewRequest(http.MethodGet, "/activities", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	data := decode[map[string]map[string]any](t, w)
	require.Len(t, data, 9)
	assert.Contains(t, data, "Basketball")
	assert.Contains(t, data, "Tennis Club")
	assert.Contains(t, data, "Drama Club")

	for name, activity := range data {
		for _, field := range []string{"description", "schedule", "max_participants", "participants"} {
			assert.Contains(t, activity, field, "%s missing %s", name, field)
		}
		assert.IsType(t, []any{}, activity["participants"], name)
	}
	assert.EqualValues(t, 12, data["Chess Club"]["max_participants"])
}

func TestActivitiesHandler_EmptyRoster(t *testing.T) {
	handler := NewActivitiesHandler(registry.New(map[string]registry.Activity{
		"Robotics": {Description: "Build robots", Schedule: "Saturdays", MaxParticipants: 8},
	}))

	req := httptest.NewRequest(http.MethodGet, "/activities", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.JSONEq(t, `{"Robotics":{"description":"Build robots","schedule":"Saturdays","max_participants":8,"participants":[]}}`, w.Body.String())
}

func TestHandleRoot(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	HandleRoot(w, req)

	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/static/index.html", w.Header().Get("Location"))
}

func TestHandleVersion(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	w := httptest.NewRecorder()
	HandleVersion(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode[map[string]string](t, w)
	assert.Equal(t, "dev", data["version"])
	assert.Contains(t, data, "git_commit")
	assert.Contains(t, data, "build_time")
}
