package settlement_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	appsettlement "github.com/erp/realestate/internal/application/settlement"
	apptreasury "github.com/erp/realestate/internal/application/treasury"
	"github.com/erp/realestate/internal/domain/equity"
	"github.com/erp/realestate/internal/domain/settlement"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/erp/realestate/internal/domain/treasury"
	"github.com/erp/realestate/internal/infrastructure/persistence"
	"github.com/erp/realestate/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type settlementFixture struct {
	tenantID    uuid.UUID
	partnerA    uuid.UUID
	partnerB    uuid.UUID
	walletA     *treasury.Safe
	walletB     *treasury.Safe
	group       *equity.PartnersGroup
	safes       *persistence.GormSafeRepository
	vouchers    *apptreasury.VoucherService
	treasury    *apptreasury.TreasuryService
	settlements *appsettlement.SettlementService
}

func setupSettlementFixture(t *testing.T) *settlementFixture {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "settlement.db") + "?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	ctx := context.Background()
	f := &settlementFixture{
		tenantID: uuid.New(),
		partnerA: uuid.New(),
		partnerB: uuid.New(),
		safes:    persistence.NewGormSafeRepository(db),
	}

	f.walletA, err = treasury.NewSafe(f.tenantID, "Wallet A", &f.partnerA, "")
	require.NoError(t, err)
	require.NoError(t, f.safes.Save(ctx, f.walletA))
	f.walletB, err = treasury.NewSafe(f.tenantID, "Wallet B", &f.partnerB, "")
	require.NoError(t, err)
	require.NoError(t, f.safes.Save(ctx, f.walletB))

	groups := persistence.NewGormPartnersGroupRepository(db)
	f.group, err = equity.NewPartnersGroup(f.tenantID, "Tower B", "")
	require.NoError(t, err)
	require.NoError(t, f.group.SetMembers([]equity.Member{
		{PartnerID: f.partnerA, Percent: decimal.NewFromInt(60)},
		{PartnerID: f.partnerB, Percent: decimal.NewFromInt(40)},
	}))
	require.NoError(t, f.group.Finalize(time.Now()))
	require.NoError(t, groups.Save(ctx, f.group))

	scope := persistence.NewGormTransactionScope(db)
	receipts := persistence.NewGormReceiptVoucherRepository(db)
	payments := persistence.NewGormPaymentVoucherRepository(db)
	f.vouchers = apptreasury.NewVoucherService(scope, receipts, payments, nil)
	f.treasury = apptreasury.NewTreasuryService(scope, f.safes, receipts, payments, nil)
	f.settlements = appsettlement.NewSettlementService(scope, persistence.NewGormSettlementRepository(db), groups, payments, nil)
	return f
}

func (f *settlementFixture) fund(t *testing.T, safeID uuid.UUID, amount int64) {
	t.Helper()
	_, err := f.vouchers.RecordReceipt(context.Background(), f.tenantID, apptreasury.RecordReceiptRequest{
		SafeID:      safeID,
		Amount:      decimal.NewFromInt(amount),
		Description: "capital",
	})
	require.NoError(t, err)
}

func (f *settlementFixture) spend(t *testing.T, safeID uuid.UUID, amount int64) {
	t.Helper()
	_, err := f.vouchers.RecordPayment(context.Background(), f.tenantID, apptreasury.RecordPaymentRequest{
		SafeID:      safeID,
		Amount:      decimal.NewFromInt(amount),
		ExpenseHead: "materials",
	})
	require.NoError(t, err)
}

func (f *settlementFixture) balance(t *testing.T, safeID uuid.UUID) valueobject.Money {
	t.Helper()
	b, err := f.treasury.Balance(context.Background(), f.tenantID, safeID, treasury.AllTime)
	require.NoError(t, err)
	return b.Net()
}

func TestSettlementFlow_ComputeCreateExecute(t *testing.T) {
	f := setupSettlementFixture(t)
	ctx := context.Background()

	f.fund(t, f.walletA.ID, 20000)
	f.fund(t, f.walletB.ID, 5000)
	f.spend(t, f.walletA.ID, 10000)

	preview, err := f.settlements.Compute(ctx, f.tenantID, appsettlement.ComputeRequest{PartnersGroupID: f.group.ID})
	require.NoError(t, err)
	assert.True(t, preview.Total.Equal(valueobject.MustMoney("10000")))
	require.Len(t, preview.Transfers, 1)
	assert.Equal(t, f.partnerB, preview.Transfers[0].FromPartnerID)
	assert.Equal(t, f.partnerA, preview.Transfers[0].ToPartnerID)
	assert.True(t, preview.Transfers[0].Amount.Equal(valueobject.MustMoney("4000")))

	run, err := f.settlements.Create(ctx, f.tenantID, appsettlement.ComputeRequest{PartnersGroupID: f.group.ID})
	require.NoError(t, err)
	require.Len(t, run.Settlements, 1)
	pending := run.Settlements[0]
	assert.Equal(t, "ST-000001", pending.Number)
	assert.Equal(t, settlement.StatusPending, pending.Status)

	executed, err := f.settlements.Execute(ctx, f.tenantID, pending.ID, appsettlement.ExecuteRequest{})
	require.NoError(t, err)
	assert.Equal(t, settlement.StatusCompleted, executed.Settlement.Status)
	assert.NotNil(t, executed.Settlement.PaymentVoucherID)
	assert.NotNil(t, executed.Settlement.ReceiptVoucherID)

	assert.True(t, f.balance(t, f.walletB.ID).Equal(valueobject.MustMoney("1000")))
	assert.True(t, f.balance(t, f.walletA.ID).Equal(valueobject.MustMoney("14000")))

	_, err = f.settlements.Execute(ctx, f.tenantID, pending.ID, appsettlement.ExecuteRequest{})
	assert.True(t, shared.IsDomainError(err, "INVALID_STATE"))

	_, err = f.vouchers.CancelPayment(ctx, f.tenantID, *executed.Settlement.PaymentVoucherID, apptreasury.CancelVoucherRequest{Reason: "undo"})
	assert.True(t, shared.IsDomainError(err, "VOUCHER_LOCKED"))
}

func TestSettlementFlow_DebtorWalletMustCover(t *testing.T) {
	f := setupSettlementFixture(t)
	ctx := context.Background()

	f.fund(t, f.walletA.ID, 10000)
	f.spend(t, f.walletA.ID, 10000)

	run, err := f.settlements.Create(ctx, f.tenantID, appsettlement.ComputeRequest{PartnersGroupID: f.group.ID})
	require.NoError(t, err)
	require.Len(t, run.Settlements, 1)

	_, err = f.settlements.Execute(ctx, f.tenantID, run.Settlements[0].ID, appsettlement.ExecuteRequest{})
	assert.True(t, shared.IsDomainError(err, "INSUFFICIENT_BALANCE"))

	stored, err := f.settlements.GetByID(ctx, f.tenantID, run.Settlements[0].ID)
	require.NoError(t, err)
	assert.Equal(t, settlement.StatusPending, stored.Status)
}

func TestSettlementFlow_NothingToSettle(t *testing.T) {
	f := setupSettlementFixture(t)

	_, err := f.settlements.Create(context.Background(), f.tenantID, appsettlement.ComputeRequest{PartnersGroupID: f.group.ID})
	assert.True(t, shared.IsDomainError(err, "NOTHING_TO_SETTLE"))
}
