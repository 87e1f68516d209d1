package handlers

import "net/http"

// ActivitiesHandler lists every activity with its roster.
type ActivitiesHandler struct {
	lister ActivityLister
}

// NewActivitiesHandler creates a new ActivitiesHandler.
func NewActivitiesHandler(lister ActivityLister) *ActivitiesHandler {
	return &ActivitiesHandler{
		lister: lister,
	}
}

// ServeHTTP implements http.Handler.
func (h *ActivitiesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.lister.List())
}
