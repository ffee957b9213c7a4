package sales_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/erp/realestate/internal/application/sales"
	"github.com/erp/realestate/internal/domain/contract"
	"github.com/erp/realestate/internal/domain/party"
	"github.com/erp/realestate/internal/domain/realty"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/erp/realestate/internal/infrastructure/persistence"
	"github.com/erp/realestate/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type contractFixture struct {
	tenantID  uuid.UUID
	customer  *party.Customer
	unit      *realty.Unit
	units     *persistence.GormUnitRepository
	service   *sales.ContractService
	publisher *recordingPublisher
}

func setupContracts(t *testing.T) *contractFixture {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "sales.db") + "?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	ctx := context.Background()
	f := &contractFixture{
		tenantID:  uuid.New(),
		units:     persistence.NewGormUnitRepository(db),
		publisher: &recordingPublisher{},
	}
	customers := persistence.NewGormCustomerRepository(db)
	f.customer, err = party.NewCustomer(f.tenantID, "CUS-1", party.CustomerDetails{Name: "Mona"})
	require.NoError(t, err)
	require.NoError(t, customers.Save(ctx, f.customer))

	f.unit, err = realty.NewUnit(f.tenantID, "A-101", realty.UnitDetails{
		Name:       "Apartment 101",
		UnitType:   realty.UnitResidential,
		PriceTotal: valueobject.MustMoney("300000"),
		Group:      realty.GroupResidential,
	})
	require.NoError(t, err)
	require.NoError(t, f.units.Save(ctx, f.unit))

	contracts := persistence.NewGormContractRepository(db)
	f.service = sales.NewContractService(
		persistence.NewGormTransactionScope(db),
		contracts,
		persistence.NewGormInstallmentPaymentRepository(db),
		customers,
		zaptest.NewLogger(t),
	)
	f.service.SetEventPublisher(f.publisher)
	return f
}

func (f *contractFixture) request(code string) sales.CreateContractRequest {
	return sales.CreateContractRequest{
		Code:              code,
		CustomerID:        f.customer.ID,
		UnitID:            f.unit.ID,
		DownPayment:       decimal.NewFromInt(60000),
		InstallmentsCount: 6,
		ScheduleType:      "monthly",
		StartDate:         "2024-01-15",
	}
}

func codeOf(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func TestContractService_CreateSellsUnit(t *testing.T) {
	f := setupContracts(t)
	ctx := context.Background()

	resp, err := f.service.Create(ctx, f.tenantID, f.request("C-1"))
	require.NoError(t, err)

	// Unit value falls back to the unit's price
	assert.Equal(t, "300000.00", resp.UnitValue.String())
	require.Len(t, resp.Installments, 6)
	for _, inst := range resp.Installments {
		assert.Equal(t, "40000.00", inst.Amount.String())
	}
	assert.Equal(t, []string{contract.EventTypeContractCreated}, f.publisher.types())

	unit, err := f.units.FindByIDForTenant(ctx, f.tenantID, f.unit.ID)
	require.NoError(t, err)
	assert.True(t, unit.IsSold)

	t.Run("unit cannot be sold twice", func(t *testing.T) {
		_, err := f.service.Create(ctx, f.tenantID, f.request("C-2"))
		assert.Equal(t, "UNIT_ALREADY_SOLD", codeOf(err))
	})

	t.Run("code must be unique", func(t *testing.T) {
		_, err := f.service.Create(ctx, f.tenantID, f.request("C-1"))
		assert.Equal(t, "ALREADY_EXISTS", codeOf(err))
	})

	t.Run("customer must exist in tenant", func(t *testing.T) {
		req := f.request("C-3")
		req.CustomerID = uuid.New()
		_, err := f.service.Create(ctx, f.tenantID, req)
		assert.Equal(t, "NOT_FOUND", codeOf(err))
	})
}

func TestContractService_DeleteReleasesUnit(t *testing.T) {
	f := setupContracts(t)
	ctx := context.Background()

	resp, err := f.service.Create(ctx, f.tenantID, f.request("C-1"))
	require.NoError(t, err)
	require.NoError(t, f.service.Delete(ctx, f.tenantID, resp.ID))

	unit, err := f.units.FindByIDForTenant(ctx, f.tenantID, f.unit.ID)
	require.NoError(t, err)
	assert.False(t, unit.IsSold)

	_, err = f.service.GetByID(ctx, f.tenantID, resp.ID)
	assert.Equal(t, "NOT_FOUND", codeOf(err))

	// The released unit can be sold again
	_, err = f.service.Create(ctx, f.tenantID, f.request("C-2"))
	assert.NoError(t, err)
}

func TestContractService_RefreshStatusesPersistsLate(t *testing.T) {
	f := setupContracts(t)
	ctx := context.Background()

	resp, err := f.service.Create(ctx, f.tenantID, f.request("C-1"))
	require.NoError(t, err)

	changed, err := f.service.RefreshStatuses(ctx, f.tenantID)
	require.NoError(t, err)
	assert.Equal(t, 6, changed)

	late := contract.InstallmentLate
	rows, err := f.service.Installments(ctx, f.tenantID, contract.InstallmentFilter{ContractID: &resp.ID, Status: &late})
	require.NoError(t, err)
	assert.Len(t, rows, 6)

	changed, err = f.service.RefreshStatuses(ctx, f.tenantID)
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func TestContractService_LateFeesAndSummary(t *testing.T) {
	f := setupContracts(t)
	ctx := context.Background()
	f.service.SetLateFeePercent(decimal.NewFromInt(2))

	resp, err := f.service.Create(ctx, f.tenantID, f.request("C-1"))
	require.NoError(t, err)

	fees, err := f.service.LateFees(ctx, f.tenantID, resp.ID, nil)
	require.NoError(t, err)
	assert.True(t, fees.Percent.Equal(decimal.NewFromInt(2)))
	assert.Len(t, fees.Lines, 6)
	assert.True(t, fees.Total.IsPositive())

	zero := decimal.Zero
	fees, err = f.service.LateFees(ctx, f.tenantID, resp.ID, &zero)
	require.NoError(t, err)
	assert.True(t, fees.Total.IsZero())

	negative := decimal.NewFromInt(-1)
	_, err = f.service.LateFees(ctx, f.tenantID, resp.ID, &negative)
	assert.Equal(t, "INVALID_PERCENT", codeOf(err))

	summary, err := f.service.Summary(ctx, f.tenantID, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "240000.00", summary.InstallmentsTotal.String())
	assert.Equal(t, 6, summary.LateCount)
	assert.Zero(t, summary.PaidCount)
}

func TestContractService_RescheduleRebuildsUnpaidRows(t *testing.T) {
	f := setupContracts(t)
	ctx := context.Background()

	resp, err := f.service.Create(ctx, f.tenantID, f.request("C-1"))
	require.NoError(t, err)

	rescheduled, err := f.service.Reschedule(ctx, f.tenantID, resp.ID)
	require.NoError(t, err)
	require.Len(t, rescheduled.Installments, 6)
	assert.True(t, resp.Installments[0].DueDate.Equal(rescheduled.Installments[0].DueDate))
	assert.Contains(t, f.publisher.types(), contract.EventTypeScheduleRegenerated)
}

func TestContractService_ConcurrentSalesOfOneUnit(t *testing.T) {
	f := setupContracts(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, code := range []string{"C-A", "C-B"} {
		wg.Go(func() {
			_, errs[i] = f.service.Create(ctx, f.tenantID, f.request(code))
		})
	}
	wg.Wait()

	var sold, refused int
	for _, err := range errs {
		switch {
		case err == nil:
			sold++
		case codeOf(err) == "UNIT_ALREADY_SOLD":
			refused++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, sold)
	assert.Equal(t, 1, refused)
}
