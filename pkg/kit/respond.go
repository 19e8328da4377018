package kit

import (
	"io"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// WriteText writes a plain-text body with the given status.
func WriteText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// WriteError writes a one-line plain-text error. The request id travels in
// a header so the body stays a bare message.
func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if reqID := chimw.GetReqID(r.Context()); reqID != "" {
		w.Header().Set("X-Request-Id", reqID)
	}
	WriteText(w, status, msg+"\n")
}
