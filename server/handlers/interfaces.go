// Package handlers provides HTTP handlers for the signupd server.
//
// Each handler is in its own file and implements http.Handler.
// Handlers use interfaces to access server dependencies, avoiding
// circular imports.
package handlers

import (
	"github.com/nomis52/signupd/config"
	"github.com/nomis52/signupd/registry"
)

// ActivityLister provides a snapshot of all activities.
type ActivityLister interface {
	List() map[string]registry.Activity
}

// SignupRegistry signs participants up for activities.
type SignupRegistry interface {
	Signup(name, email string) error
}

// SignupObserver records the outcome of each signup attempt.
type SignupObserver interface {
	ObserveSignup(result string)
}

// ConfigProvider provides access to the current configuration.
type ConfigProvider interface {
	Config() *config.Config
}
