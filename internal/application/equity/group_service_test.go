package equity_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	appequity "github.com/erp/realestate/internal/application/equity"
	"github.com/erp/realestate/internal/domain/equity"
	"github.com/erp/realestate/internal/domain/shared"
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

type equityServices struct {
	partners *appequity.PartnerService
	groups   *appequity.GroupService
}

func setupEquity(t *testing.T) equityServices {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "equity.db") + "?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	log := zaptest.NewLogger(t)
	partnerRepo := persistence.NewGormPartnerRepository(db)
	groupRepo := persistence.NewGormPartnersGroupRepository(db)
	return equityServices{
		partners: appequity.NewPartnerService(
			persistence.NewGormTransactionScope(db),
			partnerRepo,
			groupRepo,
			persistence.NewGormSafeRepository(db),
			persistence.NewGormReceiptVoucherRepository(db),
			persistence.NewGormPaymentVoucherRepository(db),
			log,
		),
		groups: appequity.NewGroupService(
			groupRepo,
			partnerRepo,
			persistence.NewGormContractRepository(db),
			persistence.NewGormSettlementRepository(db),
			log,
		),
	}
}

func errCode(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func createPartner(t *testing.T, svc *appequity.PartnerService, tenantID uuid.UUID, code string, wallet bool) *appequity.PartnerResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), tenantID, appequity.CreatePartnerRequest{
		Code:         code,
		Name:         "Partner " + code,
		SharePercent: decimal.NewFromInt(50),
		CreateWallet: wallet,
	})
	require.NoError(t, err)
	return resp
}

func TestGroupService_FinalizeAndReopen(t *testing.T) {
	svc := setupEquity(t)
	ctx := context.Background()
	tenantID := uuid.New()

	a := createPartner(t, svc.partners, tenantID, "P-A", true)
	b := createPartner(t, svc.partners, tenantID, "P-B", false)
	require.NotNil(t, a.WalletID)
	assert.Nil(t, b.WalletID)

	group, err := svc.groups.Create(ctx, tenantID, appequity.CreateGroupRequest{
		Name: "Tower A",
		Members: []appequity.MemberRequest{
			{PartnerID: a.ID, Percent: decimal.NewFromInt(60)},
			{PartnerID: b.ID, Percent: decimal.NewFromInt(30)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, equity.GroupDraft, group.Status)
	require.Len(t, group.Members, 2)
	assert.Equal(t, "Partner P-A", group.Members[0].Name)

	_, err = svc.groups.Finalize(ctx, tenantID, group.ID)
	assert.Equal(t, "INVALID_PERCENT_SUM", errCode(err))

	_, err = svc.groups.Update(ctx, tenantID, group.ID, appequity.UpdateGroupRequest{
		Name: "Tower A",
		Members: []appequity.MemberRequest{
			{PartnerID: a.ID, Percent: decimal.NewFromInt(60)},
			{PartnerID: b.ID, Percent: decimal.NewFromInt(40)},
		},
	})
	require.NoError(t, err)

	finalized, err := svc.groups.Finalize(ctx, tenantID, group.ID)
	require.NoError(t, err)
	assert.Equal(t, equity.GroupFinalized, finalized.Status)
	assert.True(t, finalized.TotalPercent.Equal(decimal.NewFromInt(100)))
	assert.NotNil(t, finalized.FinalizedAt)

	t.Run("finalized members are locked", func(t *testing.T) {
		_, err := svc.groups.Update(ctx, tenantID, group.ID, appequity.UpdateGroupRequest{
			Name:    "Tower A",
			Members: []appequity.MemberRequest{{PartnerID: a.ID, Percent: decimal.NewFromInt(100)}},
		})
		assert.Equal(t, "GROUP_FINALIZED", errCode(err))
	})

	t.Run("reopen returns to draft", func(t *testing.T) {
		reopened, err := svc.groups.Reopen(ctx, tenantID, group.ID)
		require.NoError(t, err)
		assert.Equal(t, equity.GroupDraft, reopened.Status)
		assert.Len(t, reopened.Members, 2)

		_, err = svc.groups.Reopen(ctx, tenantID, group.ID)
		assert.Equal(t, "INVALID_STATE", errCode(err))
	})
}

func TestGroupService_MembersMustBeKnownPartners(t *testing.T) {
	svc := setupEquity(t)
	ctx := context.Background()
	tenantID := uuid.New()
	a := createPartner(t, svc.partners, tenantID, "P-A", false)

	tests := []struct {
		name    string
		members []appequity.MemberRequest
		code    string
	}{
		{"unknown partner", []appequity.MemberRequest{{PartnerID: uuid.New(), Percent: decimal.NewFromInt(100)}}, "NOT_FOUND"},
		{"duplicate member", []appequity.MemberRequest{
			{PartnerID: a.ID, Percent: decimal.NewFromInt(50)},
			{PartnerID: a.ID, Percent: decimal.NewFromInt(50)},
		}, "DUPLICATE_MEMBER"},
		{"zero percent", []appequity.MemberRequest{{PartnerID: a.ID, Percent: decimal.Zero}}, "INVALID_PERCENT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.groups.Create(ctx, tenantID, appequity.CreateGroupRequest{Name: "G", Members: tt.members})
			assert.Equal(t, tt.code, errCode(err))
		})
	}

	t.Run("partner of another tenant", func(t *testing.T) {
		_, err := svc.groups.Create(ctx, uuid.New(), appequity.CreateGroupRequest{
			Name:    "G",
			Members: []appequity.MemberRequest{{PartnerID: a.ID, Percent: decimal.NewFromInt(100)}},
		})
		assert.Equal(t, "NOT_FOUND", errCode(err))
	})
}

func TestPartnerService_DeleteBlockedByGroup(t *testing.T) {
	svc := setupEquity(t)
	ctx := context.Background()
	tenantID := uuid.New()

	a := createPartner(t, svc.partners, tenantID, "P-A", true)
	group, err := svc.groups.Create(ctx, tenantID, appequity.CreateGroupRequest{
		Name:     "Solo",
		Members:  []appequity.MemberRequest{{PartnerID: a.ID, Percent: decimal.NewFromInt(100)}},
		Finalize: true,
	})
	require.NoError(t, err)
	assert.Equal(t, equity.GroupFinalized, group.Status)

	err = svc.partners.Delete(ctx, tenantID, a.ID)
	assert.Equal(t, "HAS_DEPENDENTS", errCode(err))

	require.NoError(t, svc.groups.Delete(ctx, tenantID, group.ID))
	require.NoError(t, svc.partners.Delete(ctx, tenantID, a.ID))

	_, err = svc.partners.GetByID(ctx, tenantID, a.ID)
	assert.Equal(t, "NOT_FOUND", errCode(err))
}
