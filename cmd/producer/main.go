// Dev tool: publishes simulated agent fills to the transactions topic so the
// consumer and dashboard can be exercised without a live trading agent.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/segmentio/kafka-go"
)

type Config struct {
	Brokers     []string      `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"kafka:9092"`
	Topic       string        `env:"KAFKA_TOPIC" envDefault:"transactions"`
	Rate        int           `env:"TXS_PER_SEC" envDefault:"1"`
	TTL         time.Duration `env:"PRODUCER_TTL" envDefault:"2m"`
	StayAlive   bool          `env:"PRODUCER_STAY_ALIVE" envDefault:"false"`
	EnsureTopic bool          `env:"PRODUCER_ENSURE_TOPIC" envDefault:"true"`
}

func main() {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("producer: config: %v", err)
	}
	if len(cfg.Brokers) == 0 {
		log.Fatal("producer: KAFKA_BROKERS is empty")
	}
	if cfg.Rate < 1 || cfg.Rate > 50 {
		cfg.Rate = 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Bounded by default; a forgotten producer should not trade forever.
	if !cfg.StayAlive && cfg.TTL > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.TTL)
		defer cancel()
	}

	w := newWriter(cfg)
	defer func() {
		if err := w.Close(); err != nil {
			log.Printf("producer: writer close: %v", err)
		}
	}()

	log.Printf("producer: brokers=%v topic=%s rate=%d/s ttl=%s",
		cfg.Brokers, cfg.Topic, cfg.Rate, cfg.TTL)

	emit(ctx, cfg.Rate, w)
}

// emit publishes one simulated fill per tick until the context ends.
func emit(ctx context.Context, rate int, w *kafka.Writer) {
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("producer: done (%v)", ctx.Err())
			return
		case <-ticker.C:
			t := genTransaction()
			b, err := json.Marshal(t)
			if err != nil {
				log.Printf("producer: marshal: %v", err)
				continue
			}

			// Keyed by user so one account's fills stay in order.
			msg := kafka.Message{Key: []byte(t.UserID), Value: b, Time: t.Date}
			if err := w.WriteMessages(ctx, msg); err != nil {
				log.Printf("producer: write: %v", err)
				continue
			}
			log.Printf("producer: %s %s %s x%v @%v for %s",
				t.ID, t.Type, t.StockSymbol, t.Shares, t.PricePerShare, t.UserID)
		}
	}
}
