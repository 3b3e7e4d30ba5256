package handlers

import "net/http"

// ErrorRedirectTarget is the wire contract consumed by the browser-side
// renderer: the literal error marker must survive exactly as written.
const ErrorRedirectTarget = "/?error=true"

// Unauthenticated is the fixed error-page route every rejected login
// attempt lands on. It only bounces to the root with the error marker.
func Unauthenticated(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, ErrorRedirectTarget, http.StatusFound)
}
