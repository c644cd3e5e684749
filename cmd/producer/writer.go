package main

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// newWriter builds the transaction-event writer. Messages are keyed by user
// id, so the Hash balancer keeps one account's fills on one partition and the
// consumer sees them in order. Fill volume is low; the short batch timeout
// favors latency over batching.
func newWriter(cfg Config) *kafka.Writer {
	if cfg.EnsureTopic {
		ensureTopic(cfg)
	}
	return kafka.NewWriter(kafka.WriterConfig{
		Brokers:      cfg.Brokers,
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		Dialer:       &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: int(kafka.RequireOne),
	})
}

// ensureTopic creates the topic if missing (best-effort, single partition —
// per-user ordering needs no more for a dev tool).
func ensureTopic(cfg Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers[0])
	if err != nil {
		log.Printf("producer: ensure topic dial: %v", err)
		return
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             cfg.Topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		log.Printf("producer: create topic %s: %v (ok if exists)", cfg.Topic, err)
	}
}
