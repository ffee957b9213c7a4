package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serializerTestEvent struct {
	shared.BaseDomainEvent
	Data    string `json:"data"`
	Counter int    `json:"counter"`
}

func newSerializerTestEvent() *serializerTestEvent {
	return &serializerTestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SerializerTestEvent", "TestAggregate", uuid.New(), uuid.New()),
		Data:            "test data",
		Counter:         42,
	}
}

func TestEventSerializer_Register(t *testing.T) {
	serializer := NewEventSerializer()
	serializer.Register("Event1", &serializerTestEvent{})
	serializer.Register("Event2", &serializerTestEvent{})

	assert.True(t, serializer.IsRegistered("Event1"))
	assert.False(t, serializer.IsRegistered("UnknownEvent"))
	assert.ElementsMatch(t, []string{"Event1", "Event2"}, serializer.RegisteredTypes())
}

func TestEventSerializer_SerializeWritesEnvelope(t *testing.T) {
	serializer := NewEventSerializer()
	event := newSerializerTestEvent()

	data, err := serializer.Serialize(event)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, event.EventID(), env.EventID)
	assert.Equal(t, "SerializerTestEvent", env.EventType)
	assert.Equal(t, event.TenantID(), env.TenantID)
	assert.Equal(t, event.AggregateID(), env.AggregateID)
	assert.Contains(t, string(env.Payload), `"counter":42`)
}

func TestEventSerializer_RoundTrip(t *testing.T) {
	serializer := NewEventSerializer()
	serializer.Register("SerializerTestEvent", &serializerTestEvent{})

	original := &serializerTestEvent{
		BaseDomainEvent: shared.BaseDomainEvent{
			ID:            uuid.New(),
			Type:          "SerializerTestEvent",
			Timestamp:     time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
			AggID:         uuid.New(),
			AggType:       "TestAggregate",
			TenantIDValue: uuid.New(),
		},
		Data:    "important data",
		Counter: 99,
	}

	data, err := serializer.Serialize(original)
	require.NoError(t, err)
	decoded, err := serializer.Deserialize(data)
	require.NoError(t, err)

	event, ok := decoded.(*serializerTestEvent)
	require.True(t, ok)
	assert.Equal(t, original.EventID(), event.EventID())
	assert.Equal(t, original.AggregateID(), event.AggregateID())
	assert.Equal(t, original.TenantID(), event.TenantID())
	assert.True(t, original.OccurredAt().Equal(event.OccurredAt()))
	assert.Equal(t, original.Data, event.Data)
	assert.Equal(t, original.Counter, event.Counter)
}

func TestEventSerializer_VoucherEvent(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	tenantID := uuid.New()
	v := &treasury.Voucher{
		Number: "RV-000001",
		SafeID: uuid.New(),
		Amount: decimal.RequireFromString("1250.50"),
		Date:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Source: treasury.SourceInstallment,
	}
	v.ID = uuid.New()
	v.TenantID = tenantID

	data, err := serializer.Serialize(treasury.NewVoucherPostedEvent(v, treasury.VoucherTypeReceipt))
	require.NoError(t, err)

	decoded, err := serializer.Deserialize(data)
	require.NoError(t, err)
	e, ok := decoded.(*treasury.VoucherEvent)
	require.True(t, ok)
	assert.Equal(t, "RV-000001", e.Number)
	assert.Equal(t, tenantID, e.TenantID())
	assert.True(t, e.Amount.Equal(decimal.RequireFromString("1250.50")))
	assert.Equal(t, treasury.SourceInstallment, e.Source)
}

func TestEventSerializer_DeserializeErrors(t *testing.T) {
	serializer := NewEventSerializer()
	serializer.Register("SerializerTestEvent", &serializerTestEvent{})

	_, err := serializer.Deserialize([]byte(`{"event_type":"UnknownEvent","payload":{}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event type")

	_, err = serializer.Deserialize([]byte(`invalid json`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal envelope")

	_, err = serializer.Deserialize([]byte(`{"event_type":"SerializerTestEvent","payload":"oops"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payload")
}
