package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/vimaec/nextcloud-notifications/internal/config"
	"github.com/vimaec/nextcloud-notifications/internal/db"
	"github.com/vimaec/nextcloud-notifications/internal/identity"
	"github.com/vimaec/nextcloud-notifications/internal/observability/logging"
	"github.com/vimaec/nextcloud-notifications/internal/observability/metrics"
	"github.com/vimaec/nextcloud-notifications/internal/observability/middleware"
	"github.com/vimaec/nextcloud-notifications/internal/push"
	"github.com/vimaec/nextcloud-notifications/internal/service"
	"github.com/vimaec/nextcloud-notifications/internal/session"
	"github.com/vimaec/nextcloud-notifications/internal/store"
	httptransport "github.com/vimaec/nextcloud-notifications/internal/transport/http"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger := logging.NewLogger(logging.Config{
		ServiceName: "notifications",
		Environment: cfg.Environment,
		Version:     version,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)

	metrics.MustRegister("notifications")

	gdb, err := db.OpenGorm(db.Config{DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}

	st := store.New(gdb)
	resolver := session.NewResolver(st.Tokens())
	keys := identity.NewProvider(st)
	emitter := push.NewWebPush(push.LogPublisher{})
	svc := service.New(st, resolver, keys, emitter)
	codec := session.NewTokenCodec([]byte(cfg.SessionSigningKey), cfg.SessionIssuer)

	router := httptransport.NewRouter(svc, codec, httptransport.Config{
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	handler := middleware.WithRequestAndTrace(middleware.WithMetrics(router))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("notifications service listening", "addr", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
