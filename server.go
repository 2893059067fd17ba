package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"league_results_importer/internal/importer"
	"league_results_importer/internal/telemetry"
	"league_results_importer/internal/timecodec"
	"league_results_importer/internal/usererr"
)

type server struct {
	service        *importer.Service
	maxUploadBytes int64
	validate       *validator.Validate
}

func newServer(service *importer.Service, maxUploadBytes int64) *server {
	v := validator.New()
	// normalizable to a strict time, or empty
	err := v.RegisterValidation("racetime", func(fl validator.FieldLevel) bool {
		return timecodec.IsValidTimeFormat(timecodec.Normalize(fl.Field().String()))
	})
	if err != nil {
		panic(errors.Wrap(err, "register racetime validation"))
	}
	return &server{service: service, maxUploadBytes: maxUploadBytes, validate: v}
}

func (s *server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.traceRequests, s.limitBody)

	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/results/import", s.handleImport).Methods(http.MethodPost)
	r.HandleFunc("/results/protocol", s.handleProtocolUpload).Methods(http.MethodPost)
	r.HandleFunc("/results/positions", s.handlePositions).Methods(http.MethodPost)
	r.HandleFunc("/times/normalize", s.handleNormalize).Methods(http.MethodPost)
	return r
}

func (s *server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *server) traceRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if tmpl, err := mux.CurrentRoute(r).GetPathTemplate(); err == nil {
			route = tmpl
		}
		ctx, span := telemetry.Start(r.Context(), "http "+r.Method+" "+route,
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
		)
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.status_code", rec.status))
		otelzap.Ctx(ctx).Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps user errors to 422, oversized bodies to 413 and anything
// else to 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := otelzap.Ctx(r.Context())

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
	case usererr.IsExpectedUserError(err):
		logger.Warn("Request rejected", zap.Error(err))
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Hint: errors.FlattenHints(err)})
	default:
		logger.Error("Request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func badRequest(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}
