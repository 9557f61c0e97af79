// The comptrack API server exposes the compliance dashboard aggregates:
// global counters, the per-agency breakdown, the deadline calendar, and
// the recent-activity feed.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"comptrack/internal/audit"
	"comptrack/internal/compliance/store"
	storepg "comptrack/internal/compliance/store/postgres"
	"comptrack/internal/domain"
	"comptrack/internal/jwttoken"
	"comptrack/internal/platform/config"
	"comptrack/internal/platform/httpserver"
	"comptrack/internal/platform/kafka"
	"comptrack/internal/platform/logger"
	"comptrack/internal/stats"
	statshandler "comptrack/internal/stats/handler"
	statsmetrics "comptrack/internal/stats/metrics"
	authmw "comptrack/pkg/platform/middleware/auth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx := context.Background()

	// Snapshot store: postgres in production, in-memory when no database
	// is configured (local development).
	var snapshots stats.Store
	if cfg.DatabaseURL != "" {
		db, err := storepg.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres connect failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		snapshots = storepg.New(db)
	} else {
		log.Warn("DATABASE_URL not set, serving from empty in-memory store")
		snapshots = store.NewInMemory()
	}

	// Audit pipeline: in-memory feed, mirrored to Kafka when brokers are
	// configured.
	auditOpts := []audit.PublisherOption{audit.WithLogger(log), audit.WithAsyncBuffer(256)}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(kafka.Config{
			Brokers: cfg.KafkaBrokers,
			Topics:  []string{cfg.AuditTopic},
		}, log)
		if err != nil {
			log.Error("kafka connect failed", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		auditOpts = append(auditOpts, audit.WithSink(auditSink{producer, cfg.AuditTopic}))
	}
	auditPub := audit.NewPublisher(audit.NewInMemoryStore(), auditOpts...)
	defer auditPub.Close()

	service := stats.New(snapshots,
		stats.WithLogger(log),
		stats.WithMetrics(statsmetrics.New()),
	)
	dashboard := statshandler.New(service, auditPub, log)

	tokens := jwttoken.NewService(cfg.JWTSigningKey)

	router := chi.NewRouter()
	router.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Route("/api", func(api chi.Router) {
		api.Use(authmw.RequireRoles(tokens, domain.RoleSuperAdmin, domain.RoleSpecialist))
		dashboard.Register(api)
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting comptrack api", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// auditSink adapts the kafka producer to the audit sink interface.
type auditSink struct {
	producer *kafka.Producer
	topic    string
}

func (s auditSink) Publish(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.producer.Publish(ctx, s.topic, string(event.Action), payload)
}
