package kafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopic(t *testing.T) {
	assert.Equal(t, "ecommerce.product.updated", Topic("product", "updated"))
}

func TestUnmarshalEvent(t *testing.T) {
	e, err := UnmarshalEvent([]byte(`{
		"event_id": "e1",
		"event_type": "product.deleted",
		"aggregate_id": "42",
		"data": {"slug": "runner"}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "product.deleted", e.EventType)
	assert.Equal(t, "42", e.AggregateID)

	var payload struct {
		Slug string `json:"slug"`
	}
	require.NoError(t, e.UnmarshalData(&payload))
	assert.Equal(t, "runner", payload.Slug)
}

func TestUnmarshalEvent_Malformed(t *testing.T) {
	for _, raw := range []string{`nope`, `{}`, `{"event_type":""}`, `[]`} {
		_, err := UnmarshalEvent([]byte(raw))
		assert.ErrorIs(t, err, ErrMalformedEvent, raw)
	}
}

func TestEvent_UnmarshalDataEmpty(t *testing.T) {
	e := &Event{EventType: "x"}
	var v map[string]any
	assert.ErrorIs(t, e.UnmarshalData(&v), ErrMalformedEvent)
}

func TestHeaderCarrier(t *testing.T) {
	headers := []kafka.Header{{Key: "existing", Value: []byte("v1")}}
	c := headerCarrier{headers: &headers}

	assert.Equal(t, "v1", c.Get("existing"))
	assert.Empty(t, c.Get("missing"))

	c.Set("existing", "v2")
	c.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")

	assert.Equal(t, "v2", c.Get("existing"))
	assert.ElementsMatch(t, []string{"existing", "traceparent"}, c.Keys())
	assert.Len(t, headers, 2)
}
