package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent_Envelope(t *testing.T) {
	type orderData struct {
		OrderID string `json:"order_id"`
		Total   int64  `json:"total"`
	}

	data := orderData{OrderID: "42", Total: 4999}
	event, err := NewEvent("sweetshop.order.status_changed", "42", "order", "sweetshop", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "sweetshop.order.status_changed", event.EventType)
	assert.Equal(t, "42", event.AggregateID)
	assert.Equal(t, "order", event.AggregateType)
	assert.Equal(t, "sweetshop", event.Source)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)

	var got orderData
	require.NoError(t, json.Unmarshal(event.Data, &got))
	assert.Equal(t, data, got)
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	first, err := NewEvent("a", "1", "x", "svc", nil)
	require.NoError(t, err)
	second, err := NewEvent("a", "1", "x", "svc", nil)
	require.NoError(t, err)

	assert.NotEqual(t, first.EventID, second.EventID)
}

func TestNewEvent_UnserializableData(t *testing.T) {
	_, err := NewEvent("a", "1", "x", "svc", make(chan int))
	require.Error(t, err)
}

func TestEvent_WithCorrelationID_Chains(t *testing.T) {
	event, err := NewEvent("a", "1", "x", "svc", nil)
	require.NoError(t, err)

	got := event.WithCorrelationID("corr-7")
	assert.Same(t, event, got)
	assert.Equal(t, "corr-7", event.CorrelationID)
}

func TestEvent_Marshal_OmitsEmptyCorrelationID(t *testing.T) {
	event, err := NewEvent("a", "1", "x", "svc", nil)
	require.NoError(t, err)

	raw, err := event.Marshal()
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "correlation_id")
}

func TestMessage_KeyAndHeaders(t *testing.T) {
	event, err := NewEvent("sweetshop.category.created", "17", "category", "sweetshop", map[string]string{"name": "Cakes"})
	require.NoError(t, err)
	event.WithCorrelationID("corr-17")

	msg, err := message("sweetshop.category.created", event)
	require.NoError(t, err)

	assert.Equal(t, "sweetshop.category.created", msg.Topic)
	assert.Equal(t, []byte("17"), msg.Key)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "sweetshop.category.created", headers["event_type"])
	assert.Equal(t, "sweetshop", headers["source"])
	assert.Equal(t, "corr-17", headers["correlation_id"])

	var restored Event
	require.NoError(t, json.Unmarshal(msg.Value, &restored))
	assert.Equal(t, event.EventID, restored.EventID)
}

func TestMessage_NoCorrelationHeaderWhenUnset(t *testing.T) {
	event, err := NewEvent("sweetshop.category.created", "17", "category", "sweetshop", nil)
	require.NoError(t, err)

	msg, err := message("sweetshop.category.created", event)
	require.NoError(t, err)

	for _, h := range msg.Headers {
		assert.NotEqual(t, "correlation_id", h.Key)
	}
}

func TestDefaultProducerConfig(t *testing.T) {
	brokers := []string{"broker1:9092", "broker2:9092"}
	cfg := DefaultProducerConfig(brokers)

	assert.Equal(t, brokers, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 10*time.Millisecond, cfg.BatchTimeout)
	assert.False(t, cfg.Async)
}

func TestNewProducer_CloseWithoutBroker(t *testing.T) {
	// The writer connects lazily, so construction and shutdown work with
	// no broker listening.
	p := NewProducer(DefaultProducerConfig([]string{"localhost:19092"}), nil)
	require.NotNil(t, p)
	assert.Equal(t, []string{"localhost:19092"}, p.brokers)
	assert.NoError(t, p.Close())
}

func TestPing_NoBrokersConfigured(t *testing.T) {
	p := &Producer{}
	err := p.Ping(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}

func TestTopic_Format(t *testing.T) {
	assert.Equal(t, "sweetshop", TopicPrefix)

	tests := []struct {
		domain string
		action string
		want   string
	}{
		{"category", "created", "sweetshop.category.created"},
		{"category", "status_changed", "sweetshop.category.status_changed"},
		{"product", "updated", "sweetshop.product.updated"},
		{"order", "status_changed", "sweetshop.order.status_changed"},
	}

	for _, tt := range tests {
		t.Run(tt.domain+"."+tt.action, func(t *testing.T) {
			assert.Equal(t, tt.want, Topic(tt.domain, tt.action))
		})
	}
}
