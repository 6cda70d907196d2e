package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centerfuze/organization-service/pkg/observability"
)

// fakeBusConn captures published messages.
type fakeBusConn struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakeBusConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func newTestPublisher(conn BusConn) *NATSPublisher {
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	return NewNATSPublisher(conn, "organization-service", "centerfuze", logger, nil)
}

func TestPublish_EnvelopeAndSubject(t *testing.T) {
	conn := &fakeBusConn{}
	pub := newTestPublisher(conn)

	pub.Publish(context.Background(), "organization.created", map[string]any{
		"org_id": "org_abc12345",
		"name":   "acme",
	}, map[string]any{"request_id": "req-1"})

	require.Len(t, conn.subjects, 1)
	assert.Equal(t, "centerfuze.organization.created", conn.subjects[0])

	var event Event
	require.NoError(t, json.Unmarshal(conn.payloads[0], &event))
	assert.Equal(t, "organization.created", event.EventType)
	assert.Equal(t, "organization-service", event.Service)
	assert.Equal(t, "org_abc12345", event.Data["org_id"])
	assert.Equal(t, "req-1", event.Metadata["request_id"])

	ts, err := time.Parse(time.RFC3339Nano, event.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), ts, time.Minute)
}

func TestPublish_OmitsEmptyMetadata(t *testing.T) {
	conn := &fakeBusConn{}
	pub := newTestPublisher(conn)

	pub.Publish(context.Background(), "organization.deleted", map[string]any{"org_id": "org_abc12345"}, nil)

	require.Len(t, conn.payloads, 1)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(conn.payloads[0], &raw))
	_, hasMetadata := raw["metadata"]
	assert.False(t, hasMetadata)
}

func TestPublish_BusFailureSwallowed(t *testing.T) {
	conn := &fakeBusConn{err: errors.New("connection closed")}
	pub := newTestPublisher(conn)

	// Must not panic or surface the error.
	pub.Publish(context.Background(), "organization.created", map[string]any{"org_id": "org_abc12345"}, nil)
	assert.Empty(t, conn.subjects)
}

func TestPublish_MarshalFailureSwallowed(t *testing.T) {
	conn := &fakeBusConn{}
	pub := newTestPublisher(conn)

	// Channels cannot be serialized to JSON.
	pub.Publish(context.Background(), "organization.created", map[string]any{"bad": make(chan int)}, nil)
	assert.Empty(t, conn.subjects)
}
