// Worker tails the domain event topic and writes each event to the structured log.
// Requires KAFKA_BROKERS; the topic is EVENTS_KAFKA_TOPIC.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"taskhub/internal/config"
	"taskhub/internal/events"
	"taskhub/internal/platform/logger"
)

func main() {
	groupID := flag.String("group", "taskhub-event-log", "Kafka consumer group ID")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	brokers := cfg.KafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS is required")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          cfg.EventsKafkaTopic,
		GroupID:        *groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("worker: consuming", zap.String("topic", cfg.EventsKafkaTopic), zap.String("group", *groupID))

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("worker: stopped")
				return
			}
			log.Warn("worker: kafka read error", zap.Error(err))
			continue
		}
		event, err := events.Decode(msg.Value)
		if err != nil {
			log.Warn("worker: undecodable message", zap.Int64("offset", msg.Offset), zap.Error(err))
			continue
		}
		log.Info("event",
			zap.String("type", event.Type),
			zap.String("event_id", event.ID),
			zap.String("workspace_id", event.WorkspaceID),
			zap.String("actor_id", event.ActorID),
			zap.String("resource_id", event.ResourceID),
			zap.Time("occurred_at", event.OccurredAt),
			zap.Any("data", event.Data),
		)
	}
}
