package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vimaec/nextcloud-notifications/internal/domain"
	"github.com/vimaec/nextcloud-notifications/internal/dto"
	"github.com/vimaec/nextcloud-notifications/internal/observability/metrics"
	"github.com/vimaec/nextcloud-notifications/internal/observability/middleware"
	"github.com/vimaec/nextcloud-notifications/internal/service"
	"github.com/vimaec/nextcloud-notifications/internal/session"
)

type Config struct {
	CORSOrigins        []string
	RateLimitPerMinute int // 0 disables the per-IP limit
}

func NewRouter(svc *service.Service, codec *session.TokenCodec, cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	if cfg.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))
	}
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Post("/devices", registerDevice(svc, codec))
	r.Delete("/devices", removeDevice(svc, codec))

	return r
}

func registerDevice(svc *service.Service, codec *session.TokenCodec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.RequestIDFromContext(r.Context())
		traceID := middleware.TraceIDFromContext(r.Context())

		var req dto.RegisterDeviceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			metrics.DeviceRegistrationsTotal.WithLabelValues("failure").Inc()
			slog.Warn("device registration decode failed", "error", err, "request_id", reqID, "trace_id", traceID)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		res, err := svc.RegisterDevice(r.Context(), sessionFromRequest(r, codec), req)
		if err != nil {
			metrics.DeviceRegistrationsTotal.WithLabelValues("failure").Inc()
			slog.Warn("device registration failed", "error", err, "request_id", reqID, "trace_id", traceID)
			writeError(w, err)
			return
		}

		metrics.DeviceRegistrationsTotal.WithLabelValues("success").Inc()
		slog.Info("device registered", "created", res.Created, "request_id", reqID, "trace_id", traceID)
		status := http.StatusOK
		if res.Created {
			status = http.StatusCreated
		}
		writeJSON(w, status, res.Response)
	}
}

func removeDevice(svc *service.Service, codec *session.TokenCodec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.RequestIDFromContext(r.Context())
		traceID := middleware.TraceIDFromContext(r.Context())

		deleted, err := svc.RemoveDevice(r.Context(), sessionFromRequest(r, codec))
		if err != nil {
			metrics.DeviceRemovalsTotal.WithLabelValues("failure").Inc()
			slog.Warn("device removal failed", "error", err, "request_id", reqID, "trace_id", traceID)
			writeError(w, err)
			return
		}

		metrics.DeviceRemovalsTotal.WithLabelValues("success").Inc()
		slog.Info("device removed", "deleted", deleted, "request_id", reqID, "trace_id", traceID)
		if deleted {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// sessionFromRequest never fails the request itself: a missing or unparseable
// bearer token yields an empty session, which the resolver rejects as
// unauthorized.
func sessionFromRequest(r *http.Request, codec *session.TokenCodec) session.Session {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return session.Session{}
	}
	sess, err := codec.Parse(strings.TrimSpace(raw))
	if err != nil {
		return session.Session{}
	}
	return sess
}

var errorCodes = []struct {
	err  error
	code string
}{
	{domain.ErrInvalidPushTokenHash, "INVALID_PUSHTOKEN_HASH"},
	{domain.ErrInvalidDeviceKey, "INVALID_DEVICE_KEY"},
	{domain.ErrInvalidProxyServer, "INVALID_PROXY_SERVER"},
	{domain.ErrInvalidSessionToken, "INVALID_SESSION_TOKEN"},
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrUnauthorized) {
		writeJSON(w, http.StatusUnauthorized, struct{}{})
		return
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: ec.code})
			return
		}
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
