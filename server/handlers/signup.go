package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nomis52/signupd/metrics"
	"github.com/nomis52/signupd/registry"
)

const (
	detailNotFound      = "Activity not found"
	detailAlreadySigned = "Student is already signed up"
	detailEmailRequired = "email query parameter is required"
)

// SignupHandler handles POST /activities/{name}/signup?email=...
type SignupHandler struct {
	logger   *slog.Logger
	registry SignupRegistry
	observer SignupObserver
}

// NewSignupHandler creates a new SignupHandler.
func NewSignupHandler(logger *slog.Logger, reg SignupRegistry, observer SignupObserver) *SignupHandler {
	return &SignupHandler{
		logger:   logger,
		registry: reg,
		observer: observer,
	}
}

// ServeHTTP implements http.Handler.
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	email := r.URL.Query().Get("email")

	if strings.TrimSpace(email) == "" {
		h.observer.ObserveSignup(metrics.SignupInvalid)
		writeError(w, http.StatusUnprocessableEntity, detailEmailRequired)
		return
	}

	err := h.registry.Signup(name, email)
	switch {
	case err == nil:
		h.observer.ObserveSignup(metrics.SignupAccepted)
		h.logger.Info("participant signed up", "activity", name, "email", email)
		writeJSON(w, http.StatusOK, MessageResponse{
			Message: fmt.Sprintf("Signed up %s for %s", email, name),
		})
	case errors.Is(err, registry.ErrActivityNotFound):
		h.observer.ObserveSignup(metrics.SignupNotFound)
		h.logger.Debug("signup for unknown activity", "activity", name)
		writeError(w, http.StatusNotFound, detailNotFound)
	case errors.Is(err, registry.ErrAlreadySignedUp):
		h.observer.ObserveSignup(metrics.SignupDuplicate)
		h.logger.Debug("duplicate signup", "activity", name, "email", email)
		writeError(w, http.StatusBadRequest, detailAlreadySigned)
	default:
		h.logger.Error("signup failed", "activity", name, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
