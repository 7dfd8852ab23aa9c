package www

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/angas/agilewatch/database"
)

const defaultLogPageSize = 25

// queryInt reads a positive integer query parameter, falling back to def.
func queryInt(u *url.URL, key string, def int) int {
	if v, err := strconv.Atoi(u.Query().Get(key)); err == nil && v > 0 {
		return v
	}
	return def
}

// NewLogHandler serves the log page, or one page of entries when the page query
// parameter is set. db is nil when logging to database is disabled.
func NewLogHandler(logger *slog.Logger, db *database.Database, tm *TemplateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		pageSize := queryInt(r.URL, "pageSize", defaultLogPageSize)
		page := queryInt(r.URL, "page", 0)
		if page < 1 {
			data := struct {
				Enabled  bool
				PageSize int
			}{
				Enabled:  db != nil,
				PageSize: pageSize,
			}
			if err := tm.ExecuteToWriter("log.html", data, w); err != nil {
				logger.Error("handling log request", slog.Any("error", err))
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}

		if db == nil {
			http.Error(w, "logging to database is disabled", http.StatusNotFound)
			return
		}

		e, err := db.GetLogEntries(r.Context(), slog.LevelDebug, page, pageSize)
		if err != nil {
			logger.Error("handling log request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		data := struct {
			NextPage int
			PageSize int
			Entries  []database.LogEntryRow
		}{
			NextPage: page + 1,
			PageSize: pageSize,
			Entries:  e,
		}

		if err := tm.ExecuteToWriter("log_entries.html", data, w); err != nil {
			logger.Error("handling log request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
