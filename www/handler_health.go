package www

import (
	"net/http"
)

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok"))
}

// NewReadyHandler reports ready once the first fetch completed, whatever its outcome.
func NewReadyHandler(source PriceSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		select {
		case <-source.Ready():
			_, _ = w.Write([]byte("ready"))
		default:
			http.Error(w, "waiting for first price fetch", http.StatusServiceUnavailable)
		}
	}
}
