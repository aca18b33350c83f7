package api

import (
	"encoding/json"
	"net/http"
	"ozondash/internal/analytics"
	"ozondash/internal/domain"
	"ozondash/internal/ports"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// ViewerHeader identifies the browser tab issuing a request. A newer request
// from the same viewer to the same endpoint supersedes its in-flight
// aggregation. Requests without it are never superseded.
const ViewerHeader = "X-Viewer-ID"

type API struct {
	log       *zap.SugaredLogger
	dashboard ports.DashboardService
	views     ports.ViewRepository
	proxy     http.Handler
	validate  *validator.Validate
	loc       *time.Location
	now       func() time.Time
}

// NewAPI wires the handlers. proxy serves /api/* and may be nil; loc is the
// zone dates in query strings are read in.
func NewAPI(log *zap.SugaredLogger, dashboard ports.DashboardService, views ports.ViewRepository, proxy http.Handler, loc *time.Location) *API {
	if loc == nil {
		loc = time.Local
	}

	validate := validator.New()
	validate.RegisterValidation("scope", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseScope(fl.Field().String())
		return err == nil
	})
	validate.RegisterValidation("civildate", func(fl validator.FieldLevel) bool {
		_, err := analytics.ParseDate(fl.Field().String(), time.UTC)
		return err == nil
	})

	return &API{
		log:       log,
		dashboard: dashboard,
		views:     views,
		proxy:     proxy,
		validate:  validate,
		loc:       loc,
		now:       time.Now,
	}
}

func (api *API) Routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(api.LoggingMiddleware)

	// home endpoint
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		respondWithJSON(w, "OzonDash API")
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/analytics", api.GetAnalytics)
		r.Get("/chart", api.GetChart)
		r.Get("/counts", api.GetCounts)
		r.Get("/devices", api.GetDevices)
	})

	r.Route("/views", func(r chi.Router) {
		r.Post("/", api.CreateView)
		r.Get("/{id}", api.GetView)
		r.Put("/{id}", api.UpdateView)
		r.Delete("/{id}", api.DeleteView)
	})

	// CRUD, export, flush and ingest go to the backend untouched
	if api.proxy != nil {
		r.Handle("/api/*", http.StripPrefix("/api", api.proxy))
	}

	return r
}

func respondWithJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

// sequenceKey scopes supersession to one viewer and one endpoint.
func sequenceKey(r *http.Request, endpoint string) string {
	id := r.Header.Get(ViewerHeader)
	if id == "" {
		return ""
	}
	return id + "/" + endpoint
}

func (api *API) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			api.log.Infow("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytesWritten", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

type wrapResponseWriter struct {
	http.ResponseWriter
	status       int
	bytesWritten int
}

func NewWrapResponseWriter(w http.ResponseWriter, protoMajor int) *wrapResponseWriter {
	// Default the status code to 200
	return &wrapResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (wr *wrapResponseWriter) WriteHeader(code int) {
	wr.status = code
	wr.ResponseWriter.WriteHeader(code)
}

func (wr *wrapResponseWriter) Write(b []byte) (int, error) {
	size, err := wr.ResponseWriter.Write(b)
	wr.bytesWritten += size
	return size, err
}

// Flush lets streamed proxy responses such as CSV exports through.
func (wr *wrapResponseWriter) Flush() {
	if f, ok := wr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (wr *wrapResponseWriter) Status() int {
	return wr.status
}

func (wr *wrapResponseWriter) BytesWritten() int {
	return wr.bytesWritten
}
