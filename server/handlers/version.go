package handlers

import (
	"net/http"

	"github.com/nomis52/signupd/buildinfo"
)

// HandleVersion returns the build properties of the running binary.
func HandleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}
