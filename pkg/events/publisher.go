package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/centerfuze/organization-service/pkg/observability"
)

// Publisher delivers domain events. Implementations must never return an
// error to the caller: a failed publish is logged and dropped, because the
// store write it announces has already succeeded.
type Publisher interface {
	Publish(ctx context.Context, eventType string, data map[string]any, metadata map[string]any)
}

// Event is the wire envelope for a published domain event.
type Event struct {
	EventType string         `json:"event_type"`
	Service   string         `json:"service"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// BusConn is the subset of *nats.Conn the publisher needs.
type BusConn interface {
	Publish(subject string, data []byte) error
}

var _ BusConn = (*nats.Conn)(nil)

// NATSPublisher publishes events to NATS under a namespaced subject.
type NATSPublisher struct {
	conn    BusConn
	service string
	prefix  string
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewNATSPublisher creates a publisher that emits events on
// "<prefix>.<event_type>" subjects.
func NewNATSPublisher(conn BusConn, service, prefix string, logger *observability.Logger, metrics *observability.Metrics) *NATSPublisher {
	return &NATSPublisher{
		conn:    conn,
		service: service,
		prefix:  prefix,
		logger:  logger,
		metrics: metrics,
	}
}

// Publish wraps data in the event envelope and delivers it to the bus.
// Failures are logged and swallowed.
func (p *NATSPublisher) Publish(ctx context.Context, eventType string, data map[string]any, metadata map[string]any) {
	event := Event{
		EventType: eventType,
		Service:   p.service,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Data:      data,
		Metadata:  metadata,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).WithField("event_type", eventType).Error("Failed to serialize event")
		p.observe(eventType, "error")
		return
	}

	if err := p.conn.Publish(p.prefix+"."+eventType, payload); err != nil {
		p.logger.WithError(err).WithField("event_type", eventType).Error("Failed to publish event")
		p.observe(eventType, "error")
		return
	}

	p.logger.WithField("event_type", eventType).Debug("Published event")
	p.observe(eventType, "success")
}

func (p *NATSPublisher) observe(eventType, status string) {
	if p.metrics != nil {
		p.metrics.EventsPublishedTotal.WithLabelValues(eventType, status).Inc()
	}
}
