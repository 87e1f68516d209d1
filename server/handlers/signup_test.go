package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/nomis52/signupd/metrics"
	"github.com/nomis52/signupd/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockObserver struct {
	results []string
}

func (m *mockObserver) ObserveSignup(result string) {
	m.results = append(m.results, result)
}

type failingRegistry struct{}

func (failingRegistry) Signup(name, email string) error {
	return errors.New("disk on fire")
}

func signupRequest(name, email string) *http.Request {
	target := "/activities/" + url.PathEscape(name) + "/signup"
	if email != "" {
		target += "?email=" + url.QueryEscape(email)
	}
	req := httptest.NewRequest(http.MethodPost, target, nil)
	req.SetPathValue("name", name)
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestSignupHandler_Success(t *testing.T) {
	reg := registry.Default()
	observer := &mockObserver{}
	handler := NewSignupHandler(slog.Default(), reg, observer)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, signupRequest("Basketball", "newemail@mergington.edu"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	resp := decode[MessageResponse](t, w)
	assert.Equal(t, "Signed up newemail@mergington.edu for Basketball", resp.Message)
	assert.Equal(t, []string{metrics.SignupAccepted}, observer.results)

	a, err := reg.Get("Basketball")
	require.NoError(t, err)
	assert.Contains(t, a.Participants, "newemail@mergington.edu")
}

func TestSignupHandler_NotFound(t *testing.T) {
	observer := &mockObserver{}
	handler := NewSignupHandler(slog.Default(), registry.Default(), observer)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, signupRequest("Nonexistent Club", "student@mergington.edu"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Activity not found", decode[ErrorResponse](t, w).Detail)
	assert.Equal(t, []string{metrics.SignupNotFound}, observer.results)
}

func TestSignupHandler_Duplicate(t *testing.T) {
	reg := registry.Default()
	observer := &mockObserver{}
	handler := NewSignupHandler(slog.Default(), reg, observer)

	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, signupRequest("Basketball", "duplicate@mergington.edu"))
	require.Equal(t, http.StatusOK, w1.Code)
	count := len(reg.List()["Basketball"].Participants)

	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, signupRequest("Basketball", "duplicate@mergington.edu"))

	assert.Equal(t, http.StatusBadRequest, w2.Code)
	assert.Contains(t, decode[ErrorResponse](t, w2).Detail, "already signed up")
	assert.Len(t, reg.List()["Basketball"].Participants, count)
	assert.Equal(t, []string{metrics.SignupAccepted, metrics.SignupDuplicate}, observer.results)
}

func TestSignupHandler_MissingEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
	}{
		{"absent", ""},
		{"blank", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := registry.Default()
			observer := &mockObserver{}
			handler := NewSignupHandler(slog.Default(), reg, observer)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, signupRequest("Basketball", tt.email))

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Equal(t, "email query parameter is required", decode[ErrorResponse](t, w).Detail)
			assert.Len(t, reg.List()["Basketball"].Participants, 1)
			assert.Equal(t, []string{metrics.SignupInvalid}, observer.results)
		})
	}
}

func TestSignupHandler_UnexpectedError(t *testing.T) {
	handler := NewSignupHandler(slog.Default(), failingRegistry{}, &mockObserver{})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, signupRequest("Basketball", "a@mergington.edu"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "disk on fire", decode[ErrorResponse](t, w).Detail)
}
