package www

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/angas/agilewatch/slots"
)

// NewChartHandler serves the Chart.js configuration of today's prices.
func NewChartHandler(logger *slog.Logger, source PriceSource, settings DashboardSettings, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t := now()
		snap := source.Snapshot()
		d := BuildDashboard(snap, slots.Resolve(snap.Series, t), t, settings)
		if !d.Loaded() {
			http.Error(w, d.Message, http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		if err := json.NewEncoder(w).Encode(d.Chart); err != nil {
			logger.Error("handling chart request", slog.Any("error", err))
		}
	}
}
