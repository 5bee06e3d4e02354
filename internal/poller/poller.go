package poller

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// CartClearer empties the cart of a profile.
type CartClearer interface {
	Clear(ctx context.Context, profileID string) error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// ClearCartEvent asks for the cart of ProfileID to be emptied, for example
// after an order was completed by another system.
type ClearCartEvent struct {
	ProfileID string `json:"profile_id"`
}

// Poller consumes ClearCartEvent messages and clears the matching carts.
type Poller struct {
	carts  CartClearer
	reader messageReader
	logger *zap.Logger
}

func NewPoller(carts CartClearer, logger *zap.Logger, topic, groupID string, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return newPoller(carts, reader, logger)
}

func newPoller(carts CartClearer, reader messageReader, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{carts: carts, reader: reader, logger: logger}
}

// Run blocks until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		p.getMessageAndClearCart(ctx)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.logger.Error("error closing reader", zap.Error(err))
	}
}

func (p *Poller) getMessageAndClearCart(ctx context.Context) {
	m, err := p.reader.ReadMessage(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			p.logger.Error("error reading message", zap.Error(err))
		}
		return
	}

	var event ClearCartEvent
	if errUnmarshal := json.Unmarshal(m.Value, &event); errUnmarshal != nil {
		p.logger.Warn("error parsing message", zap.Int64("offset", m.Offset), zap.Error(errUnmarshal))
		return
	}
	if event.ProfileID == "" {
		p.logger.Warn("missing profile_id", zap.Int64("offset", m.Offset))
		return
	}

	if errClear := p.carts.Clear(ctx, event.ProfileID); errClear != nil {
		p.logger.Warn("failed to clear cart", zap.String("profile_id", event.ProfileID), zap.Error(errClear))
		return
	}
	p.logger.Info("cart cleared from event", zap.String("profile_id", event.ProfileID))
}
