package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/intranet-tools/hr-knowledge-base/pkg/kafka"
)

// Publisher is the event sink the collector writes to. Satisfied by
// kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

type routedEvent struct {
	event kafka.Event
	sink  Publisher
}

// Collector buffers events and publishes them asynchronously so the hot
// paths (search, ingest) never block on the broker. When the buffer is full
// events are dropped, not queued.
type Collector struct {
	searches Publisher
	ingests  Publisher
	events   chan routedEvent
	logger   *slog.Logger
}

// NewCollector creates a Collector over the two event topics. Either
// publisher may be nil, in which case its events are discarded.
func NewCollector(searches, ingests Publisher) *Collector {
	return &Collector{
		searches: searches,
		ingests:  ingests,
		events:   make(chan routedEvent, 256),
		logger:   slog.Default().With("component", "analytics"),
	}
}

// RecordSearch enqueues a search event without blocking.
func (c *Collector) RecordSearch(query string, results int, outcome string) {
	if c == nil || c.searches == nil {
		return
	}
	c.enqueue(routedEvent{
		sink: c.searches,
		event: kafka.Event{
			Key: "search",
			Value: SearchEvent{
				Query:     query,
				Results:   results,
				Outcome:   outcome,
				Timestamp: time.Now().UTC(),
			},
		},
	})
}

// RecordIngest enqueues a document lifecycle event without blocking.
func (c *Collector) RecordIngest(event IngestEvent) {
	if c == nil || c.ingests == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	c.enqueue(routedEvent{
		sink:  c.ingests,
		event: kafka.Event{Key: event.DocumentID, Value: event},
	})
}

func (c *Collector) enqueue(e routedEvent) {
	select {
	case c.events <- e:
	default:
		c.logger.Warn("event buffer full, dropping event", "key", e.event.Key)
	}
}

// Run drains the buffer until ctx is cancelled. Publish failures are logged
// and the event is dropped; analytics is best-effort.
func (c *Collector) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("collector stopping", "reason", ctx.Err())
			return
		case e := <-c.events:
			pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := e.sink.Publish(pubCtx, e.event); err != nil {
				c.logger.Warn("event publish failed", "key", e.event.Key, "error", err)
			}
			cancel()
		}
	}
}
