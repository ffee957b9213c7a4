package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		n     int
		want  time.Time
	}{
		{"plain month", date(2024, 1, 15), 1, date(2024, 2, 15)},
		{"clamps to leap february", date(2024, 1, 31), 1, date(2024, 2, 29)},
		{"clamps to february", date(2023, 1, 31), 1, date(2023, 2, 28)},
		{"quarter", date(2024, 11, 30), 3, date(2025, 2, 28)},
		{"year", date(2024, 2, 29), 12, date(2025, 2, 28)},
		{"zero", date(2024, 5, 31), 0, date(2024, 5, 31)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddMonths(tt.start, tt.n))
		})
	}
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	got := DateOf(time.Date(2024, 3, 10, 23, 30, 0, 0, loc))
	assert.Equal(t, date(2024, 3, 10), got)
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 31, DaysBetween(date(2024, 1, 1), date(2024, 2, 1)))
	assert.Equal(t, -1, DaysBetween(date(2024, 1, 2), date(2024, 1, 1)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, date(2024, 6, 1), d)

	_, err = ParseDate("01/06/2024")
	require.Error(t, err)
	assert.True(t, IsDomainError(err, "INVALID_DATE"))
}
