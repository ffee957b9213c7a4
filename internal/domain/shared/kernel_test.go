package shared

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_MatchesByCode(t *testing.T) {
	err := fmt.Errorf("load safe: %w", NewNotFoundError("Safe"))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, IsDomainError(err, "NOT_FOUND"))
	assert.False(t, IsDomainError(err, "HAS_DEPENDENTS"))
	assert.Equal(t, "load safe: Safe not found", err.Error())

	dep := NewHasDependentsError("customer", "contracts")
	assert.NotErrorIs(t, dep, ErrNotFound)
	assert.Equal(t, "Cannot delete customer: it still has contracts", dep.Error())
}

func TestFilter_Offset(t *testing.T) {
	tests := []struct {
		filter Filter
		want   int
	}{
		{Filter{}, 0},
		{Filter{Page: 1, PageSize: 20}, 0},
		{Filter{Page: 3, PageSize: 20}, 40},
		{Filter{Page: 3}, 0},
		{Filter{Page: -2, PageSize: 10}, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.filter.Offset(), "%+v", tt.filter)
	}
}

type voucherStub struct {
	TenantAggregateRoot
}

func TestTenantAggregateRoot_Events(t *testing.T) {
	tenant := uuid.New()
	first := &voucherStub{NewTenantAggregateRoot(tenant)}
	second := &voucherStub{NewTenantAggregateRoot(tenant)}
	assert.Equal(t, 1, first.Version)
	assert.Nil(t, first.CreatedBy)

	first.SetCreatedBy(uuid.Nil)
	assert.Nil(t, first.CreatedBy)
	user := uuid.New()
	first.SetCreatedBy(user)
	require.NotNil(t, first.CreatedBy)
	assert.Equal(t, user, *first.CreatedBy)

	posted := NewBaseDomainEvent("VoucherPosted", "ReceiptVoucher", first.ID, tenant)
	moved := NewBaseDomainEvent("SafeBalanceChanged", "Safe", second.ID, tenant)
	first.AddDomainEvent(&posted)
	second.AddDomainEvent(&moved)

	events := DrainEvents(first, nil, second)
	require.Len(t, events, 2)
	assert.Equal(t, "VoucherPosted", events[0].EventType())
	assert.Equal(t, first.ID, events[0].AggregateID())
	assert.Equal(t, tenant, events[1].TenantID())
	assert.Empty(t, first.GetDomainEvents())
	assert.Empty(t, DrainEvents(first, second))
}
