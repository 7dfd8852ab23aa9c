package www

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/angas/agilewatch/slots"
)

// NewDashboardHandler renders page ("index.html" or the "dashboard.html" fragment)
// from the current repository snapshot.
func NewDashboardHandler(logger *slog.Logger, tm *TemplateManager, source PriceSource, settings DashboardSettings, now func() time.Time, page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t := now()
		snap := source.Snapshot()
		d := BuildDashboard(snap, slots.Resolve(snap.Series, t), t, settings)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if err := tm.ExecuteToWriter(page, d, w); err != nil {
			logger.Error("handling dashboard request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
