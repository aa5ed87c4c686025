// Package outbox delivers roster events to Kafka off the request path.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"example.com/signup/internal/events"
)

// ErrQueueFull is returned by Publish when the dispatcher cannot accept more events.
var ErrQueueFull = errors.New("outbox queue is full")

const (
	defaultBatchSize    = 25
	defaultWriteTimeout = 5 * time.Second
)

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

// NoopPublisher discards events. It is used when no brokers are configured.
type NoopPublisher struct{}

// Publish performs no action.
func (NoopPublisher) Publish(context.Context, events.RosterChanged) error { return nil }

// Dispatcher buffers roster events in memory and writes them to Kafka in batches.
type Dispatcher struct {
	producer         messageWriter
	topic            string
	queue            chan events.RosterChanged
	batchSize        int
	writeTimeout     time.Duration
	logger           *zap.Logger
	shutdownComplete chan struct{}
}

// NewDispatcher constructs a Dispatcher with room for bufferSize pending events.
func NewDispatcher(producer messageWriter, topic string, bufferSize int, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		producer:         producer,
		topic:            topic,
		queue:            make(chan events.RosterChanged, bufferSize),
		batchSize:        defaultBatchSize,
		writeTimeout:     defaultWriteTimeout,
		logger:           logger,
		shutdownComplete: make(chan struct{}),
	}
}

// Publish enqueues the event without blocking.
func (d *Dispatcher) Publish(ctx context.Context, event events.RosterChanged) error {
	select {
	case d.queue <- event:
		return nil
	default:
		droppedCounter.Inc()
		return ErrQueueFull
	}
}

// Start runs the delivery loop until ctx is cancelled, then flushes whatever
// is still queued. It should be called in a goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	defer close(d.shutdownComplete)

	for {
		select {
		case <-ctx.Done():
			d.drain()
			return
		case event := <-d.queue:
			d.deliver(ctx, d.collect(event))
		}
	}
}

// Wait waits until dispatcher stops.
func (d *Dispatcher) Wait() {
	<-d.shutdownComplete
}

// collect gathers up to batchSize events that are already queued.
func (d *Dispatcher) collect(first events.RosterChanged) []events.RosterChanged {
	batch := []events.RosterChanged{first}
	for len(batch) < d.batchSize {
		select {
		case event := <-d.queue:
			batch = append(batch, event)
		default:
			return batch
		}
	}
	return batch
}

func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.queue:
			d.deliver(context.Background(), d.collect(event))
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, batch []events.RosterChanged) {
	start := time.Now()
	defer func() { batchDuration.Observe(time.Since(start).Seconds()) }()

	messages := make([]kafka.Message, 0, len(batch))
	for _, event := range batch {
		msg, err := encode(event)
		if err != nil {
			failedCounter.Inc()
			d.logger.Error("outbox: encode failure", zap.String("event_id", event.EventID), zap.Error(err))
			continue
		}
		messages = append(messages, msg)
	}
	if len(messages) == 0 {
		return
	}

	// Writes ignore ctx cancellation; only writeTimeout bounds them.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.writeTimeout)
	defer cancel()

	if err := d.producer.WriteMessages(writeCtx, d.topic, messages...); err != nil {
		failedCounter.Add(float64(len(messages)))
		d.logger.Error("outbox: delivery failure",
			zap.String("topic", d.topic),
			zap.Int("messages", len(messages)),
			zap.Error(err),
		)
		return
	}
	deliveredCounter.Add(float64(len(messages)))
}

func encode(event events.RosterChanged) (kafka.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal roster event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.Activity),
		Value: payload,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(events.EventTypeRosterChanged)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	}, nil
}
