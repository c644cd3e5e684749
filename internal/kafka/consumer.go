package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/example/portfolio-dashboard/internal/domain"
	"github.com/example/portfolio-dashboard/internal/models"
)

// Applier folds one transaction into the store.
type Applier interface {
	ApplyTransaction(ctx context.Context, t models.Transaction) error
}

// Consumer ingests transaction events (mostly agent-initiated trades) from a
// Kafka topic and applies them to holdings and bank balances.
type Consumer struct {
	Reader *kafka.Reader
	Svc    Applier
	Logger *zap.Logger
}

func NewConsumer(brokers, topic, groupID string, svc Applier, logger *zap.Logger) *Consumer {
	return &Consumer{
		Reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  []string{brokers},
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1e3,
			MaxBytes: 1e6,
			MaxWait:  500 * time.Millisecond,
		}),
		Svc:    svc,
		Logger: logger,
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	defer c.Reader.Close()
	for {
		m, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			return err
		}
		if err := c.process(ctx, m.Value); err != nil {
			c.Logger.Error("apply transaction", zap.Error(err))
		}
	}
}

// process decodes and normalizes one event. Malformed events are logged and
// skipped, never returned as errors: one bad message must not stop ingestion.
func (c *Consumer) process(ctx context.Context, raw []byte) error {
	var t models.Transaction
	if err := json.Unmarshal(raw, &t); err != nil {
		c.Logger.Warn("bad message", zap.Error(err))
		return nil
	}
	if t.UserID == "" || t.StockSymbol == "" || t.Shares <= 0 || t.PricePerShare < 0 {
		c.Logger.Warn("incomplete transaction event", zap.String("id", t.ID))
		return nil
	}
	if _, ok := domain.ParseTransactionType(t.Type); !ok {
		c.Logger.Warn("unknown transaction type",
			zap.String("id", t.ID), zap.String("type", t.Type))
		return nil
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Date.IsZero() {
		t.Date = time.Now().UTC()
	}
	if _, ok := domain.ParseInitiator(t.Initiator); !ok {
		// This channel carries the trading agent's fills.
		t.Initiator = domain.InitiatorAgent.String()
	}
	t.StockSymbol = strings.ToUpper(strings.TrimSpace(t.StockSymbol))

	if err := c.Svc.ApplyTransaction(ctx, t); err != nil {
		return err
	}
	c.Logger.Debug("transaction applied",
		zap.String("id", t.ID), zap.String("userid", t.UserID))
	return nil
}
