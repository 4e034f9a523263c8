package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Brodino96/TasteTracker/pkg/logger"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func header(msg kafka.Message, key string) string {
	return NewHeaderCarrier(&msg.Headers).Get(key)
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "tastetracker.review.submitted", Topic("review", "submitted"))
	assert.Equal(t, "tastetracker.restaurant.updated", Topic("restaurant", "updated"))
}

func TestNewEvent_CopiesContextIDs(t *testing.T) {
	ctx := logger.WithCorrelationID(context.Background(), "corr-1")
	ctx = logger.WithUserID(ctx, "user-1")

	e, err := NewEvent(ctx, "review.submitted", "dish-1", "dish", "tastetracker", map[string]int{"rating": 8})
	require.NoError(t, err)

	assert.NotEmpty(t, e.EventID)
	assert.Equal(t, 1, e.Version)
	assert.Equal(t, "corr-1", e.CorrelationID)
	assert.Equal(t, "user-1", e.Metadata["user_id"])
	assert.WithinDuration(t, time.Now().UTC(), e.Timestamp, 2*time.Second)

	var payload map[string]int
	require.NoError(t, e.UnmarshalData(&payload))
	assert.Equal(t, 8, payload["rating"])
}

func TestNewEvent_NoContextIDs(t *testing.T) {
	e, err := NewEvent(context.Background(), "dish.created", "dish-1", "dish", "tastetracker", nil)
	require.NoError(t, err)
	assert.Empty(t, e.CorrelationID)
	assert.Nil(t, e.Metadata)
}

func TestNewEvent_UnserializablePayload(t *testing.T) {
	_, err := NewEvent(context.Background(), "x", "1", "x", "s", make(chan int))
	assert.Error(t, err)
}

func TestUnmarshalEvent(t *testing.T) {
	e, err := NewEvent(context.Background(), "restaurant.created", "r1", "restaurant", "tastetracker", map[string]string{"name": "Da Mario"})
	require.NoError(t, err)
	b, err := e.Marshal()
	require.NoError(t, err)

	got, err := UnmarshalEvent(b)
	require.NoError(t, err)
	assert.Equal(t, e.EventID, got.EventID)
	assert.JSONEq(t, string(e.Data), string(got.Data))

	_, err = UnmarshalEvent([]byte("{"))
	assert.Error(t, err)
}

func TestProducer_Publish(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	prevTP := otel.GetTracerProvider()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	otel.SetTracerProvider(sdktrace.NewTracerProvider())
	t.Cleanup(func() {
		otel.SetTextMapPropagator(prev)
		otel.SetTracerProvider(prevTP)
	})

	w := &fakeWriter{}
	metrics := NewProducerMetrics(prometheus.NewRegistry())
	p := NewProducerWithWriter(w, nil, metrics, quietLogger())

	ctx := logger.WithCorrelationID(context.Background(), "corr-9")
	e, err := NewEvent(ctx, "review.submitted", "dish-7", "dish", "tastetracker", map[string]int{"rating": 9})
	require.NoError(t, err)

	require.NoError(t, p.Publish(ctx, Topic("review", "submitted"), e))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "tastetracker.review.submitted", msg.Topic)
	assert.Equal(t, "dish-7", string(msg.Key))
	assert.Equal(t, "review.submitted", header(msg, "event_type"))
	assert.Equal(t, "corr-9", header(msg, "correlation_id"))
	assert.NotEmpty(t, header(msg, "traceparent"))

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Published.WithLabelValues("tastetracker.review.submitted")))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.Errors.WithLabelValues("tastetracker.review.submitted")))
}

func TestProducer_PublishError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	metrics := NewProducerMetrics(prometheus.NewRegistry())
	p := NewProducerWithWriter(w, nil, metrics, quietLogger())

	e, err := NewEvent(context.Background(), "dish.created", "d1", "dish", "tastetracker", nil)
	require.NoError(t, err)

	err = p.Publish(context.Background(), "tastetracker.dish.created", e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Errors.WithLabelValues("tastetracker.dish.created")))
}

func TestProducer_NilMetrics(t *testing.T) {
	p := NewProducerWithWriter(&fakeWriter{}, nil, nil, quietLogger())
	e, _ := NewEvent(context.Background(), "dish.created", "d1", "dish", "tastetracker", nil)
	assert.NoError(t, p.Publish(context.Background(), "t", e))
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, NewProducerWithWriter(w, nil, nil, quietLogger()).Close())
	assert.True(t, w.closed)
}

func TestHeaderCarrier(t *testing.T) {
	headers := []kafka.Header{{Key: "a", Value: []byte("1")}}
	c := NewHeaderCarrier(&headers)

	assert.Equal(t, "1", c.Get("a"))
	assert.Empty(t, c.Get("missing"))

	c.Set("a", "2")
	c.Set("b", "3")
	assert.Equal(t, "2", c.Get("a"))
	assert.ElementsMatch(t, []string{"a", "b"}, c.Keys())
	assert.Len(t, headers, 2)
}

func TestPingBrokers(t *testing.T) {
	assert.Error(t, PingBrokers(context.Background(), nil))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err = PingBrokers(ctx, []string{addr})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all brokers unreachable")
}

func TestDefaultProducerConfig(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"kafka:9092"})
	assert.Equal(t, []string{"kafka:9092"}, cfg.Brokers)
	assert.False(t, cfg.Async)
	assert.Equal(t, 100, cfg.BatchSize)
}
