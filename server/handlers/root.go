package handlers

import "net/http"

// IndexPath is where the landing page is served from.
const IndexPath = "/static/index.html"

// HandleRoot redirects to the landing page.
func HandleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, IndexPath, http.StatusTemporaryRedirect)
}
