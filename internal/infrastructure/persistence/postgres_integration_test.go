//go:build integration

package persistence_test

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	treasuryapp "github.com/erp/realestate/internal/application/treasury"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/treasury"
	"github.com/erp/realestate/internal/infrastructure/migration"
	"github.com/erp/realestate/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// startPostgres runs a throwaway PostgreSQL container with the SQL migrations applied
func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("realestate_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(20)
	t.Cleanup(func() { _ = sqlDB.Close() })

	migrationsPath, err := filepath.Abs(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	migrator, err := migration.New(sqlDB, migrationsPath, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, migrator.Up())

	return db
}

func newVoucherService(t *testing.T, db *gorm.DB) *treasuryapp.VoucherService {
	t.Helper()
	return treasuryapp.NewVoucherService(
		persistence.NewGormTransactionScope(db),
		persistence.NewGormReceiptVoucherRepository(db),
		persistence.NewGormPaymentVoucherRepository(db),
		zaptest.NewLogger(t),
	)
}

func newGeneralSafe(t *testing.T, db *gorm.DB, tenantID uuid.UUID) *treasury.Safe {
	t.Helper()
	safe, err := treasury.NewSafe(tenantID, "Main safe", nil, "")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormSafeRepository(db).Save(context.Background(), safe))
	return safe
}

func TestPostgres_ConcurrentReceiptsGetGaplessNumbers(t *testing.T) {
	db := startPostgres(t)
	svc := newVoucherService(t, db)
	tenantID := uuid.New()
	safe := newGeneralSafe(t, db, tenantID)

	const writers = 20
	numbers := make([]string, writers)
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := svc.RecordReceipt(context.Background(), tenantID, treasuryapp.RecordReceiptRequest{
				SafeID: safe.ID,
				Amount: decimal.NewFromInt(10),
				Date:   "2024-03-01",
			})
			if assert.NoError(t, err) {
				numbers[i] = resp.Number
			}
		}(i)
	}
	wg.Wait()

	sort.Strings(numbers)
	for i, n := range numbers {
		assert.Equal(t, treasury.FormatVoucherNumber(treasury.VoucherTypeReceipt, int64(i+1)), n)
	}

	// A second tenant starts its own sequence
	other := uuid.New()
	otherSafe := newGeneralSafe(t, db, other)
	resp, err := svc.RecordReceipt(context.Background(), other, treasuryapp.RecordReceiptRequest{
		SafeID: otherSafe.ID,
		Amount: decimal.NewFromInt(1),
		Date:   "2024-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, treasury.FormatVoucherNumber(treasury.VoucherTypeReceipt, 1), resp.Number)
}

func TestPostgres_ConcurrentPaymentsNeverOverdrawSafe(t *testing.T) {
	db := startPostgres(t)
	svc := newVoucherService(t, db)
	tenantID := uuid.New()
	safe := newGeneralSafe(t, db, tenantID)
	ctx := context.Background()

	_, err := svc.RecordReceipt(ctx, tenantID, treasuryapp.RecordReceiptRequest{
		SafeID: safe.ID,
		Amount: decimal.NewFromInt(1000),
		Date:   "2024-03-01",
	})
	require.NoError(t, err)

	const writers = 10
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		succeeded    int
		insufficient int
	)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordPayment(ctx, tenantID, treasuryapp.RecordPaymentRequest{
				SafeID:      safe.ID,
				Amount:      decimal.NewFromInt(150),
				Date:        "2024-03-02",
				ExpenseHead: "materials",
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			var domainErr *shared.DomainError
			if assert.True(t, errors.As(err, &domainErr), "unexpected error: %v", err) {
				assert.Equal(t, "INSUFFICIENT_BALANCE", domainErr.Code)
				insufficient++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 6, succeeded)
	assert.Equal(t, 4, insufficient)

	balance, err := treasuryapp.NewBalanceCalculator(
		persistence.NewGormReceiptVoucherRepository(db),
		persistence.NewGormPaymentVoucherRepository(db),
	).Balance(ctx, tenantID, safe.ID, treasury.AllTime)
	require.NoError(t, err)
	assert.Equal(t, "100.00", balance.Net().String())
}
