package project

import (
	"testing"
	"time"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProject(t *testing.T) {
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	t.Run("defaults", func(t *testing.T) {
		p, err := NewProject(uuid.New(), "PRJ-1", Details{Name: "Tower", StartDate: start, Budget: valueobject.MustMoney("1000")})
		require.NoError(t, err)
		assert.Equal(t, TypeBuild, p.Type)
		assert.Equal(t, StatusOngoing, p.Status)
	})

	t.Run("end before start", func(t *testing.T) {
		end := start.AddDate(0, 0, -1)
		_, err := NewProject(uuid.New(), "PRJ-1", Details{Name: "Tower", StartDate: start, EndDate: &end})
		assert.True(t, shared.IsDomainError(err, "INVALID_END_DATE"))
	})

	t.Run("negative budget", func(t *testing.T) {
		_, err := NewProject(uuid.New(), "PRJ-1", Details{Name: "Tower", StartDate: start, Budget: valueobject.MustMoney("-1")})
		assert.True(t, shared.IsDomainError(err, "INVALID_BUDGET"))
	})
}

func TestProject_Summarize(t *testing.T) {
	p, err := NewProject(uuid.New(), "PRJ-1", Details{
		Name:      "Tower",
		StartDate: time.Now(),
		Budget:    valueobject.MustMoney("10000"),
	})
	require.NoError(t, err)

	s := p.Summarize(valueobject.MustMoney("7000"), valueobject.MustMoney("1500"))
	assert.Equal(t, "8500.00", s.TotalExpenses.String())
	assert.Equal(t, "1500.00", s.Remaining.String())
	assert.Equal(t, "85", s.UsedPercent.String())
	assert.False(t, s.IsOverBudget)

	s = p.Summarize(valueobject.MustMoney("9000"), valueobject.MustMoney("1000.01"))
	assert.True(t, s.IsOverBudget)
	assert.Equal(t, "-0.01", s.Remaining.String())

	zero, err := NewProject(uuid.New(), "PRJ-2", Details{Name: "Fix", StartDate: time.Now()})
	require.NoError(t, err)
	assert.True(t, zero.Summarize(valueobject.MustMoney("5"), valueobject.Zero()).UsedPercent.IsZero())
}
