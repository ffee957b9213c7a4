package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/realestate/internal/domain/settlement"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/erp/realestate/internal/domain/treasury"
	"github.com/erp/realestate/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMetrics(t *testing.T, stock telemetry.StockMetricsProvider) (*telemetry.BusinessMetrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Registerer:    reg,
		Logger:        zap.NewNop(),
		StockProvider: stock,
	})
	require.NoError(t, err)
	return bm, reg
}

func TestNewBusinessMetrics_NilRegisterer(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{})
	assert.Nil(t, bm)
	assert.ErrorIs(t, err, telemetry.ErrRegistererNil)
}

func TestNewBusinessMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{Registerer: reg})
	require.NoError(t, err)
	_, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{Registerer: reg})
	assert.Error(t, err)
}

func TestBusinessMetrics_HandleVoucherEvents(t *testing.T) {
	bm, reg := newMetrics(t, nil)
	tenantID := uuid.New()

	rv, err := treasury.NewReceiptVoucher(tenantID, "RV-000001", treasury.ReceiptInput{
		VoucherInput: treasury.VoucherInput{
			Date:   time.Now(),
			Amount: valueobject.MustMoney("1500.50"),
			SafeID: uuid.New(),
			Source: treasury.SourceInstallment,
		},
	})
	require.NoError(t, err)
	for _, e := range rv.GetDomainEvents() {
		require.NoError(t, bm.Handle(context.Background(), e))
	}
	require.NoError(t, rv.CancelReceipt("typo", time.Now()))
	for _, e := range rv.GetDomainEvents()[1:] {
		require.NoError(t, bm.Handle(context.Background(), e))
	}

	count, err := testutil.GatherAndCount(reg, "estate_vouchers_posted_total", "estate_vouchers_cancelled_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "estate_voucher_amount_total" {
			assert.InDelta(t, 1500.50, f.GetMetric()[0].GetCounter().GetValue(), 0.001)
		}
	}
}

func TestBusinessMetrics_HandleSettlementExecuted(t *testing.T) {
	bm, reg := newMetrics(t, nil)
	s, err := settlement.NewSettlement(uuid.New(), "ST-000001",
		settlement.Scope{PartnersGroupID: uuid.New()},
		settlement.Transfer{FromPartnerID: uuid.New(), ToPartnerID: uuid.New(), Amount: valueobject.MustMoney("250")},
		time.Now(), "")
	require.NoError(t, err)
	require.NoError(t, s.Complete(uuid.New(), uuid.New(), time.Now()))

	for _, e := range s.GetDomainEvents() {
		require.NoError(t, bm.Handle(context.Background(), e))
	}
	count, err := testutil.GatherAndCount(reg, "estate_settlements_executed_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Contains(t, bm.EventTypes(), settlement.EventTypeSettlementExecuted)
}

type stubTenants struct {
	ids []uuid.UUID
	err error
}

func (s stubTenants) ActiveTenantIDs(context.Context) ([]uuid.UUID, error) {
	return s.ids, s.err
}

type stubStock struct{ count int64 }

func (s stubStock) LowStockCount(context.Context, uuid.UUID) (int64, error) {
	return s.count, nil
}

func TestBusinessMetrics_PeriodicCollection(t *testing.T) {
	bm, reg := newMetrics(t, stubStock{count: 3})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bm.StartPeriodicCollection(ctx, stubTenants{ids: []uuid.UUID{uuid.New()}}, time.Hour)
	assert.Eventually(t, func() bool {
		n, err := testutil.GatherAndCount(reg, "estate_inventory_low_stock_items")
		return err == nil && n == 1
	}, time.Second, 10*time.Millisecond)

	bm.Stop()
	bm.Stop()
}

func TestBusinessMetrics_CollectionTenantError(t *testing.T) {
	bm, reg := newMetrics(t, stubStock{count: 1})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bm.StartPeriodicCollection(ctx, stubTenants{err: errors.New("db down")}, time.Hour)
	time.Sleep(50 * time.Millisecond)
	bm.Stop()

	n, err := testutil.GatherAndCount(reg, "estate_inventory_low_stock_items")
	require.NoError(t, err)
	assert.Zero(t, n)
}
