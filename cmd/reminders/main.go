// The comptrack reminders job sends deadline reminder notifications for
// requirement assignments due 30, 14, 7, and 1 days out. It runs once and
// exits; schedule it daily with cron or the platform's job runner.
package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"comptrack/internal/audit"
	storepg "comptrack/internal/compliance/store/postgres"
	"comptrack/internal/notify"
	"comptrack/internal/notify/kafkaoutbox"
	"comptrack/internal/platform/config"
	"comptrack/internal/platform/kafka"
	"comptrack/internal/platform/logger"
	"comptrack/internal/platform/redis"
	"comptrack/internal/reminder"
	"comptrack/internal/reminder/ledger"
	remindermetrics "comptrack/internal/reminder/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := storepg.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connect failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	assignments := storepg.New(db)

	// Dispatch through the Kafka notification outbox when brokers are
	// configured; otherwise record locally so a dry run still logs what
	// would have been sent.
	var dispatcher notify.Dispatcher
	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = kafka.NewProducer(kafka.Config{
			Brokers: cfg.KafkaBrokers,
			Topics:  []string{cfg.NotifyTopic, cfg.AuditTopic},
		}, log)
		if err != nil {
			log.Error("kafka connect failed", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		dispatcher = kafkaoutbox.New(producer, cfg.NotifyTopic)
	} else {
		log.Warn("KAFKA_BROKERS not set, reminders will not be delivered")
		dispatcher = notify.NewRecorder()
	}

	opts := []reminder.Option{
		reminder.WithLogger(log),
		reminder.WithMetrics(remindermetrics.New()),
	}

	// Sent-ledger keeps re-runs idempotent. Optional: without Redis the
	// job still works but a re-run on the same day sends duplicates.
	rdb, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
		opts = append(opts, reminder.WithLedger(ledger.NewRedis(rdb.Client)))
	} else {
		log.Warn("REDIS_URL not set, running without the sent-ledger")
	}

	auditOpts := []audit.PublisherOption{audit.WithLogger(log)}
	if producer != nil {
		auditOpts = append(auditOpts, audit.WithSink(auditSink{producer, cfg.AuditTopic}))
	}
	auditPub := audit.NewPublisher(audit.NewInMemoryStore(), auditOpts...)
	defer auditPub.Close()
	opts = append(opts, reminder.WithAuditPublisher(auditPub))

	svc := reminder.New(assignments, dispatcher, opts...)

	if err := svc.Run(ctx, time.Now()); err != nil {
		log.Error("reminder run failed", "error", err)
		os.Exit(1)
	}
	log.Info("reminder run complete")
}

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
