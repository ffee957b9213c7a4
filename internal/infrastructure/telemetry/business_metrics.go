package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/erp/realestate/internal/domain/contract"
	"github.com/erp/realestate/internal/domain/settlement"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MetricsNamespace prefixes every business metric
const MetricsNamespace = "estate"

// BusinessMetrics exposes Prometheus counters for the money flows of the
// system. It subscribes to the event bus so services never call it directly.
type BusinessMetrics struct {
	logger *zap.Logger

	vouchersPosted    *prometheus.CounterVec
	voucherAmount     *prometheus.CounterVec
	vouchersCancelled *prometheus.CounterVec
	paymentsApplied   *prometheus.CounterVec
	paymentAmount     *prometheus.CounterVec
	settlements       *prometheus.CounterVec
	settlementAmount  *prometheus.CounterVec
	lowStockItems     *prometheus.GaugeVec

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	stockProvider StockMetricsProvider
}

// StockMetricsProvider reports inventory health for the periodic gauge collection
type StockMetricsProvider interface {
	LowStockCount(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// TenantProvider provides tenant IDs for periodic metrics collection.
type TenantProvider interface {
	ActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Registerer    prometheus.Registerer
	Logger        *zap.Logger
	StockProvider StockMetricsProvider
}

// ErrRegistererNil is returned when no Prometheus registerer is configured.
var ErrRegistererNil = errors.New("NewBusinessMetrics: registerer cannot be nil")

// NewBusinessMetrics creates and registers the business metrics.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Registerer == nil {
		return nil, ErrRegistererNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      name,
			Help:      help,
		}, labels)
	}

	bm := &BusinessMetrics{
		logger:            logger,
		vouchersPosted:    counter("vouchers_posted_total", "Vouchers posted by type and source", "tenant_id", "type", "source"),
		voucherAmount:     counter("voucher_amount_total", "Posted voucher amounts by type", "tenant_id", "type"),
		vouchersCancelled: counter("vouchers_cancelled_total", "Vouchers cancelled by type", "tenant_id", "type"),
		paymentsApplied:   counter("installment_payments_total", "Payments applied to installment schedules", "tenant_id"),
		paymentAmount:     counter("installment_payment_amount_total", "Amounts applied to installments", "tenant_id"),
		settlements:       counter("settlements_executed_total", "Executed partner settlements", "tenant_id"),
		settlementAmount:  counter("settlement_amount_total", "Amounts moved by executed settlements", "tenant_id"),
		lowStockItems: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "inventory_low_stock_items",
			Help:      "Items at or below their minimum stock",
		}, []string{"tenant_id"}),
		stopChan:      make(chan struct{}),
		stockProvider: cfg.StockProvider,
	}

	collectors := []prometheus.Collector{
		bm.vouchersPosted, bm.voucherAmount, bm.vouchersCancelled,
		bm.paymentsApplied, bm.paymentAmount,
		bm.settlements, bm.settlementAmount,
		bm.lowStockItems,
	}
	for _, c := range collectors {
		if err := cfg.Registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return bm, nil
}

// EventTypes implements shared.EventHandler
func (bm *BusinessMetrics) EventTypes() []string {
	return []string{
		treasury.EventTypeVoucherPosted,
		treasury.EventTypeVoucherCancelled,
		contract.EventTypePaymentApplied,
		settlement.EventTypeSettlementExecuted,
	}
}

// Handle implements shared.EventHandler
func (bm *BusinessMetrics) Handle(_ context.Context, event shared.DomainEvent) error {
	tenant := event.TenantID().String()
	switch e := event.(type) {
	case *treasury.VoucherEvent:
		if e.EventType() == treasury.EventTypeVoucherCancelled {
			bm.vouchersCancelled.WithLabelValues(tenant, string(e.VoucherType)).Inc()
			return nil
		}
		bm.vouchersPosted.WithLabelValues(tenant, string(e.VoucherType), string(e.Source)).Inc()
		bm.voucherAmount.WithLabelValues(tenant, string(e.VoucherType)).Add(amount(e.Amount))
	case *contract.PaymentAppliedEvent:
		bm.paymentsApplied.WithLabelValues(tenant).Inc()
		bm.paymentAmount.WithLabelValues(tenant).Add(amount(e.Amount))
	case *settlement.ExecutedEvent:
		bm.settlements.WithLabelValues(tenant).Inc()
		bm.settlementAmount.WithLabelValues(tenant).Add(amount(e.Amount))
	}
	return nil
}

// Counters only move forward.
func amount(d decimal.Decimal) float64 {
	if d.IsNegative() {
		return 0
	}
	return d.InexactFloat64()
}

// RecordLowStockCount sets the low stock gauge of a tenant.
func (bm *BusinessMetrics) RecordLowStockCount(tenantID uuid.UUID, count int64) {
	bm.lowStockItems.WithLabelValues(tenantID.String()).Set(float64(count))
}

// StartPeriodicCollection refreshes the gauges every interval (default 5 minutes).
// It is non-blocking; use Stop to end it.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, tenants TenantProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go bm.runPeriodicCollection(ctx, tenants, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, tenants TenantProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collect(ctx, tenants)
	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			bm.collect(ctx, tenants)
		}
	}
}

func (bm *BusinessMetrics) collect(ctx context.Context, tenants TenantProvider) {
	if bm.stockProvider == nil {
		return
	}
	ids, err := tenants.ActiveTenantIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to get tenant IDs for metrics collection", zap.Error(err))
		return
	}
	for _, id := range ids {
		count, err := bm.stockProvider.LowStockCount(ctx, id)
		if err != nil {
			bm.logger.Warn("Failed to get low stock count for tenant",
				zap.String("tenant_id", id.String()),
				zap.Error(err),
			)
			continue
		}
		bm.RecordLowStockCount(id, count)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)
