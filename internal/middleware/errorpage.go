package middleware

import "net/http"

// ErrorPage is the blanket rule for the 401 status class: whichever
// route produced the 401, the response is rewritten into a redirect to
// errorPath. Downstream handlers keep rejecting with a plain 401 and
// never know about the redirect contract.
func ErrorPage(errorPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(&errorPageWriter{ResponseWriter: w, request: r, errorPath: errorPath}, r)
		})
	}
}

type errorPageWriter struct {
	http.ResponseWriter
	request     *http.Request
	errorPath   string
	wroteHeader bool
	intercepted bool
}

func (w *errorPageWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true

	if status == http.StatusUnauthorized {
		w.intercepted = true
		w.Header().Del("Content-Type")
		w.Header().Del("X-Content-Type-Options")
		http.Redirect(w.ResponseWriter, w.request, w.errorPath, http.StatusFound)
		return
	}

	w.ResponseWriter.WriteHeader(status)
}

func (w *errorPageWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}

	// The original 401 body is dropped along with the status.
	if w.intercepted {
		return len(b), nil
	}

	return w.ResponseWriter.Write(b)
}
