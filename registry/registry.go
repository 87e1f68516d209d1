// Package registry holds the in-memory set of extracurricular activities and
// the participants signed up for each one.
//
// A Registry is created once at startup and owned by the server. All access
// goes through its methods, which take a lock, so a single Registry may be
// shared by any number of HTTP handlers.
//
// # Example
//
//	reg := registry.Default()
//	if err := reg.Signup("Chess Club", "ada@mergington.edu"); err != nil {
//	    if errors.Is(err, registry.ErrAlreadySignedUp) {
//	        // already on the roster
//	    }
//	}
//	all := reg.List()
package registry

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	// ErrActivityNotFound is returned when the named activity does not exist.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrAlreadySignedUp is returned when the email is already on the activity's roster.
	ErrAlreadySignedUp = errors.New("student is already signed up")
)

// Activity is a single extracurricular offering.
type Activity struct {
	Description string `json:"description" yaml:"description"`
	Schedule    string `json:"schedule" yaml:"schedule"`
	// MaxParticipants is advisory and never enforced on signup.
	MaxParticipants int `json:"max_participants" yaml:"max_participants"`
	// Participants are in signup order.
	Participants []string `json:"participants" yaml:"participants"`
}

// clone returns a copy that shares no memory with a.
func (a Activity) clone() Activity {
	a.Participants = append(make([]string, 0, len(a.Participants)), a.Participants...)
	return a
}

// Registry maps activity names to activities.
type Registry struct {
	mu         sync.RWMutex
	activities map[string]*Activity
}

// New creates a Registry holding a copy of seed.
func New(seed map[string]Activity) *Registry {
	activities := make(map[string]*Activity, len(seed))
	for name, a := range seed {
		c := a.clone()
		activities[name] = &c
	}
	return &Registry{activities: activities}
}

// Default creates a Registry holding the built-in activities.
func Default() *Registry {
	return New(Seed())
}

// List returns a snapshot of every activity keyed by name.
func (r *Registry) List() map[string]Activity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]Activity, len(r.activities))
	for name, a := range r.activities {
		result[name] = a.clone()
	}
	return result
}

// Get returns a copy of the named activity.
func (r *Registry) Get(name string) (Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.activities[name]
	if !ok {
		return Activity{}, fmt.Errorf("%q: %w", name, ErrActivityNotFound)
	}
	return a.clone(), nil
}

// Names returns all activity names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.activities))
	for name := range r.activities {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of activities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.activities)
}

// Signup appends email to the named activity's participants.
// Returns ErrActivityNotFound if the activity doesn't exist and
// ErrAlreadySignedUp if the email is already on its roster.
func (r *Registry) Signup(name, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[name]
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrActivityNotFound)
	}
	// Check and append under the same lock so racing signups can't both succeed.
	if slices.Contains(a.Participants, email) {
		return fmt.Errorf("%s in %q: %w", email, name, ErrAlreadySignedUp)
	}
	a.Participants = append(a.Participants, email)
	return nil
}
