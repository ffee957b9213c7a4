package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/realestate/internal/domain/settlement"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormSettlementRepository_SumCompleted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSettlementRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	groupID := uuid.New()
	debtor, creditor := uuid.New(), uuid.New()
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	scope := settlement.Scope{PartnersGroupID: groupID}

	done, err := settlement.NewSettlement(tenantID, "ST-000001", scope,
		settlement.Transfer{FromPartnerID: debtor, ToPartnerID: creditor, Amount: valueobject.MustMoney("1500")}, date, "")
	require.NoError(t, err)
	require.NoError(t, done.Complete(uuid.New(), uuid.New(), date))

	pending, err := settlement.NewSettlement(tenantID, "ST-000002", scope,
		settlement.Transfer{FromPartnerID: debtor, ToPartnerID: creditor, Amount: valueobject.MustMoney("700")}, date, "")
	require.NoError(t, err)

	require.NoError(t, repo.SaveBatch(ctx, []*settlement.Settlement{done, pending}))

	paid, err := repo.SumCompleted(ctx, tenantID, debtor, false, nil)
	require.NoError(t, err)
	assert.True(t, paid.Equal(valueobject.MustMoney("1500")))

	received, err := repo.SumCompleted(ctx, tenantID, creditor, true, &groupID)
	require.NoError(t, err)
	assert.True(t, received.Equal(valueobject.MustMoney("1500")))

	none, err := repo.SumCompleted(ctx, tenantID, creditor, false, nil)
	require.NoError(t, err)
	assert.True(t, none.IsZero())

	t.Run("filters by partner and status", func(t *testing.T) {
		status := settlement.StatusPending
		list, err := repo.FindAllForTenant(ctx, tenantID, settlement.Filter{PartnerID: &creditor, Status: &status})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "ST-000002", list[0].Number)
	})

	t.Run("locking read", func(t *testing.T) {
		found, err := repo.FindByIDForUpdate(ctx, tenantID, pending.ID)
		require.NoError(t, err)
		assert.Equal(t, settlement.StatusPending, found.Status)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, tenantID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormSettlementRepository_Runs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSettlementRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	groupID := uuid.New()
	from, to := uuid.New(), uuid.New()

	result := settlement.Result{
		Total: valueobject.MustMoney("1000"),
		Positions: []settlement.Position{
			{PartnerID: from, Actual: valueobject.MustMoney("200"), Expected: valueobject.MustMoney("500"), Difference: valueobject.MustMoney("-300")},
			{PartnerID: to, Actual: valueobject.MustMoney("800"), Expected: valueobject.MustMoney("500"), Difference: valueobject.MustMoney("300")},
		},
		Transfers: []settlement.Transfer{{FromPartnerID: from, ToPartnerID: to, Amount: valueobject.MustMoney("300")}},
	}
	run := settlement.NewRun(tenantID, settlement.Scope{PartnersGroupID: groupID}, result, "")
	require.NoError(t, repo.SaveRun(ctx, run))

	found, err := repo.FindRunByID(ctx, tenantID, run.ID)
	require.NoError(t, err)
	require.Len(t, found.Details, 1)
	assert.Equal(t, from, found.Details[0].FromPartnerID)
	assert.True(t, found.Details[0].Amount.Equal(valueobject.MustMoney("300")))
	assert.Len(t, found.PreBalances, 2)

	runs, err := repo.FindRuns(ctx, tenantID, &groupID, shared.Filter{})
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	runs, err = repo.FindRuns(ctx, tenantID, nil, shared.Filter{})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
