package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string, tenantID uuid.UUID) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Contract", uuid.New(), tenantID),
		Data:            "payload",
	}
}

type testHandler struct {
	types []string
	err   error
	panic bool

	mu      sync.Mutex
	handled []shared.DomainEvent
}

func (h *testHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, event)
	h.mu.Unlock()
	if h.panic {
		panic("boom")
	}
	return h.err
}

func (h *testHandler) EventTypes() []string { return h.types }

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

func TestInMemoryEventBus_Routing(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	contracts := &testHandler{types: []string{"ContractCreated"}}
	vouchers := &testHandler{}
	everything := &testHandler{}

	bus.Subscribe(contracts)
	bus.Subscribe(vouchers, "VoucherPosted", "VoucherCancelled")
	bus.Subscribe(everything)

	tenant := uuid.New()
	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("ContractCreated", tenant),
		newTestEvent("VoucherPosted", tenant),
		newTestEvent("VoucherCancelled", tenant),
		newTestEvent("SettlementExecuted", tenant),
	))

	assert.Equal(t, 1, contracts.count())
	assert.Equal(t, 2, vouchers.count())
	assert.Equal(t, 4, everything.count())
}

func TestInMemoryEventBus_FailingHandlersDoNotStopOthers(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := &testHandler{types: []string{"VoucherPosted"}, err: errors.New("db down")}
	panicking := &testHandler{types: []string{"VoucherPosted"}, panic: true}
	healthy := &testHandler{types: []string{"VoucherPosted"}}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("VoucherPosted", uuid.New()))
	require.NoError(t, err)

	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, 1, logs.FilterMessage("handler failed to process event").Len())
	assert.Equal(t, 1, logs.FilterMessage("handler panicked").Len())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &testHandler{types: []string{"ContractCreated", "ScheduleRegenerated"}}
	bus.Subscribe(handler)

	ctx := context.Background()
	_ = bus.Publish(ctx, newTestEvent("ContractCreated", uuid.New()))
	bus.Unsubscribe(handler)
	_ = bus.Publish(ctx, newTestEvent("ContractCreated", uuid.New()), newTestEvent("ScheduleRegenerated", uuid.New()))

	assert.Equal(t, 1, handler.count())
	assert.Empty(t, bus.handlersFor("ScheduleRegenerated"))
}

func TestInMemoryEventBus_Forward(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })

	forwarder := &recordingPublisher{}
	broken := &recordingPublisher{err: errors.New("broker down")}
	bus.Forward(broken)
	bus.Forward(forwarder)

	event := newTestEvent("InstallmentPaymentApplied", uuid.New())
	require.NoError(t, bus.Publish(context.Background(), event))

	require.Len(t, forwarder.events, 1)
	assert.Same(t, event, forwarder.events[0])
	assert.Len(t, broken.events, 1)
}
