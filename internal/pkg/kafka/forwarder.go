package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/nekogravitycat/room-booking-backend/internal/event"
)

const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"

	defaultWriteTimeout = 5 * time.Second
)

var (
	ErrNoBrokers  = errors.New("at least one broker is required")
	ErrEmptyTopic = errors.New("topic cannot be empty")
)

// MessageWriter is the subset of *kafka.Writer the forwarder uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter builds a writer that hashes on the message key, so all events
// of one entity land on the same partition in order.
func NewWriter(brokers []string, topic string, logger *slog.Logger) (*kafka.Writer, error) {
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if topic == "" {
		return nil, ErrEmptyTopic
	}

	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		MaxAttempts:  3,
		BatchTimeout: 50 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			logger.Error(fmt.Sprintf(msg, args...), "component", "kafka_writer")
		}),
	}, nil
}

// Forwarder copies change events from a bus subscription to Kafka.
type Forwarder struct {
	writer       MessageWriter
	logger       *slog.Logger
	writeTimeout time.Duration

	forwarded atomic.Uint64
	failed    atomic.Uint64
}

func NewForwarder(writer MessageWriter, logger *slog.Logger) *Forwarder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Forwarder{
		writer:       writer,
		logger:       logger.With("component", "kafka_forwarder"),
		writeTimeout: defaultWriteTimeout,
	}
}

// Run forwards events until ctx is done or the subscription is closed.
// A failed write is logged and skipped; events are refresh hints, and
// a consumer that misses one resynchronizes on the next.
func (f *Forwarder) Run(ctx context.Context, sub *event.Subscription) error {
	f.logger.Info("kafka forwarder started", "subscription_id", sub.ID)
	defer f.logger.Info("kafka forwarder stopped",
		"forwarded", f.forwarded.Load(),
		"failed", f.failed.Load(),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-sub.C:
			if !ok {
				return nil
			}
			if err := f.forward(ctx, e); err != nil {
				f.failed.Add(1)
				f.logger.ErrorContext(ctx, "failed to forward event",
					"event_id", e.ID,
					"event_type", e.Type(),
					"error", err,
				)
				continue
			}
			f.forwarded.Add(1)
		}
	}
}

func (f *Forwarder) forward(ctx context.Context, e event.Event) error {
	msg, err := Encode(e)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, f.writeTimeout)
	defer cancel()

	if err := f.writer.WriteMessages(writeCtx, msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Forwarded reports how many events were written successfully.
func (f *Forwarder) Forwarded() uint64 {
	return f.forwarded.Load()
}

// Failed reports how many events could not be written.
func (f *Forwarder) Failed() uint64 {
	return f.failed.Load()
}

func (f *Forwarder) Close() error {
	return f.writer.Close()
}

// Encode renders e as a Kafka message keyed by "<entity>:<id>".
func Encode(e event.Event) (kafka.Message, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(string(e.Entity) + ":" + strconv.FormatInt(e.EntityID, 10)),
		Value: value,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(e.ID)},
			{Key: HeaderEventType, Value: []byte(e.Type())},
		},
	}, nil
}
