package www

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/angas/agilewatch/config"
	"github.com/angas/agilewatch/database"
	"github.com/angas/agilewatch/prices"
	"github.com/angas/agilewatch/slots"
	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PriceSource is the read side of the price repository.
type PriceSource interface {
	Snapshot() prices.Snapshot
	Ready() <-chan struct{}
}

type Server struct {
	logger   *slog.Logger
	config   config.AppConfigApi
	settings DashboardSettings
	source   PriceSource
	db       *database.Database
	hub      *Hub
	tm       *TemplateManager
	now      func() time.Time
	handler  http.Handler
}

//go:embed static
var embeddedStaticDir embed.FS

type ctxKey int

const requestIdKey ctxKey = iota

// RequestId returns the id assigned to the request by the server, if any.
func RequestId(ctx context.Context) string {
	id, _ := ctx.Value(requestIdKey).(string)
	return id
}

// NewServer wires the routes. refresh starts a price fetch, db may be nil.
func NewServer(
	cnfg config.AppConfigApi,
	settings DashboardSettings,
	source PriceSource,
	refresh func(),
	db *database.Database,
) (*Server, error) {
	logger := slog.Default().With("module", "www")
	tm, err := NewTemplateManager(logger, cnfg.WwwDir)
	if err != nil {
		return nil, fmt.Errorf("template manager initialization failed: %w", err)
	}

	s := &Server{
		logger:   logger,
		config:   cnfg,
		settings: settings,
		source:   source,
		db:       db,
		hub:      NewHub(logger.With(slog.String("component", "hub"))),
		tm:       tm,
		now:      time.Now,
	}

	logReqMW := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-Id")
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set("X-Request-Id", id)
			s.logger.Debug("http request",
				slog.String("requestId", id),
				slog.String("method", r.Method),
				slog.String("url", r.URL.String()),
				slog.String("remoteAddr", r.RemoteAddr))
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIdKey, id)))
		})
	}

	compress := handlers.CompressHandler

	r := mux.NewRouter()
	r.Use(metricsMW, logReqMW)

	r.Handle("/", compress(NewDashboardHandler(
		logger.With(slog.String("handler", "index")),
		s.tm, s.source, s.settings, s.clock, "index.html"))).
		Methods(http.MethodGet).Name("index")

	r.Handle("/dashboard", compress(NewDashboardHandler(
		logger.With(slog.String("handler", "dashboard")),
		s.tm, s.source, s.settings, s.clock, "dashboard.html"))).
		Methods(http.MethodGet).Name("dashboard")

	r.Handle("/chart", compress(NewChartHandler(
		logger.With(slog.String("handler", "chart")),
		s.source, s.settings, s.clock))).
		Methods(http.MethodGet).Name("chart")

	r.Handle("/prices/refresh", NewRefreshHandler(
		logger.With(slog.String("handler", "refresh")),
		refresh)).
		Methods(http.MethodPost).Name("refresh")

	r.Handle("/log", compress(NewLogHandler(
		logger.With(slog.String("handler", "log")),
		s.db, s.tm))).
		Methods(http.MethodGet).Name("log")

	r.HandleFunc("/ws", s.hub.ServeWs).Methods(http.MethodGet).Name("ws")
	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet).Name("healthz")
	r.Handle("/readyz", NewReadyHandler(s.source)).Methods(http.MethodGet).Name("readyz")
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet).Name("metrics")

	static, err := staticFilesHandler(cnfg.WwwDir)
	if err != nil {
		return nil, err
	}
	r.PathPrefix("/static/").Handler(compress(http.StripPrefix("/static/", static))).Name("static")

	s.handler = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{logger}), handlers.PrintRecoveryStack(true))(r)

	return s, nil
}

// clock indirection lets tests replace now after the routes are built.
func (s *Server) clock() time.Time {
	return s.now()
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Hub() *Hub {
	return s.hub
}

// PublishDashboard pushes a freshly rendered dashboard fragment to all browsers.
func (s *Server) PublishDashboard(state slots.ResolvedState) {
	t := s.now()
	d := BuildDashboard(s.source.Snapshot(), state, t, s.settings)
	buf, err := s.tm.Execute("dashboard.html", d)
	if err != nil {
		s.logger.Error("template execution failed", slog.Any("error", err))
		return
	}
	s.hub.Publish(Message{Type: MessageTypeDashboard, Html: buf.String()})
}

// Run serves HTTP and the web socket hub until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Address, s.config.Port)
	s.logger.Info("starting server...", slog.String("address", addr))

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.hub.Run(ctx)
	defer s.tm.Close()

	srvErrors := make(chan error, 1)
	go func() {
		srvErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-srvErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown failed", slog.Any("error", err))
		}
		s.logger.Info("server stopped")
		return nil
	}
}

type recoveryLogger struct {
	logger *slog.Logger
}

func (l recoveryLogger) Println(v ...any) {
	l.logger.Error("http handler panic", slog.String("panic", fmt.Sprint(v...)))
}

func staticFilesHandler(extDir *string) (http.Handler, error) {
	if extDir != nil && *extDir != "" {
		staticDir := path.Join(*extDir, "static")
		if _, err := os.Stat(staticDir); err == nil {
			return http.FileServer(http.Dir(staticDir)), nil
		}
	}

	fsys, err := fs.Sub(embeddedStaticDir, "static")
	if err != nil {
		return nil, fmt.Errorf("embedded static files: %w", err)
	}
	return http.FileServer(http.FS(fsys)), nil
}
