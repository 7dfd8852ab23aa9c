package www

import (
	"log/slog"
	"net/http"
)

// NewRefreshHandler starts a price fetch in the background and answers at once.
func NewRefreshHandler(logger *slog.Logger, refresh func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.Info("price refresh requested", slog.String("requestId", RequestId(r.Context())))
		go refresh()
		w.WriteHeader(http.StatusAccepted)
	}
}
