package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/realestate/internal/domain/contract"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContract(t *testing.T, tenantID uuid.UUID, code string, count int) *contract.Contract {
	t.Helper()
	c, err := contract.NewContract(tenantID, contract.Terms{
		Code:              code,
		CustomerID:        uuid.New(),
		UnitID:            uuid.New(),
		UnitValue:         valueobject.MustMoney("300000"),
		DownPayment:       valueobject.MustMoney("60000"),
		InstallmentsCount: count,
		ScheduleType:      contract.ScheduleMonthly,
		StartDate:         time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return c
}

func TestGormContractRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormContractRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	c := newTestContract(t, tenantID, "C-001", 6)
	require.NoError(t, repo.Save(ctx, c))

	t.Run("loads installments in seq_no order", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, tenantID, c.ID)
		require.NoError(t, err)
		require.Len(t, found.Installments, 6)
		for i, inst := range found.Installments {
			assert.Equal(t, i+1, inst.SeqNo)
			assert.True(t, inst.Amount.Equal(decimal.NewFromInt(40000)), "installment %d amount %s", i+1, inst.Amount)
		}
	})

	t.Run("locking read returns the same contract", func(t *testing.T) {
		found, err := repo.FindByIDForUpdate(ctx, tenantID, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "C-001", found.Code)
		assert.Len(t, found.Installments, 6)
	})

	t.Run("finds owner of an installment", func(t *testing.T) {
		found, err := repo.FindByInstallmentID(ctx, tenantID, c.Installments[2].ID)
		require.NoError(t, err)
		assert.Equal(t, c.ID, found.ID)
	})

	t.Run("other tenant sees nothing", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, uuid.New(), c.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("code and unit checks", func(t *testing.T) {
		exists, err := repo.ExistsByCode(ctx, tenantID, "C-001")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsForUnit(ctx, tenantID, c.UnitID)
		require.NoError(t, err)
		assert.True(t, exists)

		count, err := repo.CountByCustomer(ctx, tenantID, c.CustomerID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestGormContractRepository_OneContractPerUnit(t *testing.T) {
	repo := NewGormContractRepository(setupTestDB(t))
	ctx := context.Background()
	tenantID := uuid.New()

	first := newTestContract(t, tenantID, "C-010", 6)
	require.NoError(t, repo.Save(ctx, first))

	terms := first.Terms()
	terms.Code = "C-011"
	second, err := contract.NewContract(tenantID, terms)
	require.NoError(t, err)

	err = repo.Save(ctx, second)
	assert.True(t, shared.IsDomainError(err, "UNIT_ALREADY_SOLD"), "got %v", err)

	n, err := repo.CountForTenant(ctx, tenantID, contract.ContractFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// re-saving the owner of the unit still works
	require.NoError(t, repo.Save(ctx, first))
}

func TestGormContractRepository_SaveReplacesSchedule(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormContractRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	c := newTestContract(t, tenantID, "C-002", 6)
	require.NoError(t, repo.Save(ctx, c))

	terms := c.Terms()
	terms.InstallmentsCount = 3
	require.NoError(t, c.UpdateTerms(terms))
	require.NoError(t, repo.Save(ctx, c))

	found, err := repo.FindByIDForTenant(ctx, tenantID, c.ID)
	require.NoError(t, err)
	require.Len(t, found.Installments, 3)
	assert.True(t, found.Installments[0].Amount.Equal(decimal.NewFromInt(80000)))

	all, err := repo.FindInstallments(ctx, tenantID, contract.InstallmentFilter{ContractID: &c.ID})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGormContractRepository_SaveInstallmentsAndUnpaidFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormContractRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	c := newTestContract(t, tenantID, "C-003", 6)
	require.NoError(t, repo.Save(ctx, c))

	today := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	allocations, err := c.PayFIFO(valueobject.MustMoney("50000"), today)
	require.NoError(t, err)
	require.Len(t, allocations, 2)

	changed := make([]*contract.Installment, 0, len(allocations))
	for _, a := range allocations {
		changed = append(changed, c.Installment(a.InstallmentID))
	}
	require.NoError(t, repo.SaveInstallments(ctx, changed))

	unpaid, err := repo.FindInstallments(ctx, tenantID, contract.InstallmentFilter{ContractID: &c.ID, UnpaidOnly: true})
	require.NoError(t, err)
	assert.Len(t, unpaid, 5)
	assert.Equal(t, 2, unpaid[0].SeqNo)
	assert.True(t, unpaid[0].PaidAmount.Equal(decimal.NewFromInt(10000)))
}

func TestGormContractRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormContractRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	c := newTestContract(t, tenantID, "C-004", 2)
	require.NoError(t, repo.Save(ctx, c))
	require.NoError(t, repo.Delete(ctx, tenantID, c.ID))

	installments, err := repo.FindInstallments(ctx, tenantID, contract.InstallmentFilter{ContractID: &c.ID})
	require.NoError(t, err)
	assert.Empty(t, installments)

	assert.ErrorIs(t, repo.Delete(ctx, tenantID, c.ID), shared.ErrNotFound)
}

func TestGormInstallmentPaymentRepository_ActiveByVoucher(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInstallmentPaymentRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	voucherID := uuid.New()
	contractID := uuid.New()
	paidOn := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	payments := []contract.InstallmentPayment{
		{BaseEntity: shared.NewBaseEntity(), TenantID: tenantID, ContractID: contractID, InstallmentID: uuid.New(),
			ReceiptVoucherID: voucherID, Amount: decimal.NewFromInt(40000), Method: contract.PaymentMethodCash, PaidOn: paidOn},
		{BaseEntity: shared.NewBaseEntity(), TenantID: tenantID, ContractID: contractID, InstallmentID: uuid.New(),
			ReceiptVoucherID: voucherID, Amount: decimal.NewFromInt(10000), Method: contract.PaymentMethodCash, PaidOn: paidOn},
	}
	require.NoError(t, repo.SaveBatch(ctx, payments))

	reversedAt := paidOn.Add(24 * time.Hour)
	payments[1].ReversedAt = &reversedAt
	require.NoError(t, repo.Save(ctx, &payments[1]))

	active, err := repo.FindActiveByVoucher(ctx, tenantID, voucherID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, payments[0].ID, active[0].ID)

	all, err := repo.FindByContract(ctx, tenantID, contractID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
