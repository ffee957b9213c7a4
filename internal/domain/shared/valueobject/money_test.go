package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoneyFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyFromString("123.45")
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("123.45")))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number")
		assert.Error(t, err)
	})
}

func TestRound(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.005", "0.01"},
		{"0.004", "0"},
		{"2.675", "2.68"},
		{"14285.714285", "14285.71"},
		{"-0.005", "-0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Round(decimal.RequireFromString(tt.in))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	a := MustMoney("100.10")
	b := MustMoney("0.20")

	assert.Equal(t, "100.30", a.Add(b).String())
	assert.Equal(t, "99.90", a.Sub(b).String())
	assert.Equal(t, "-100.10", a.Negate().String())
	assert.Equal(t, "0.20", a.Min(b).String())
	assert.True(t, a.GreaterThan(b))
	assert.True(t, b.LessThanOrEqual(a))
	assert.Equal(t, "100.30", Sum(a, b).String())
	assert.True(t, Sum().IsZero())
}

func TestMoney_DivideEvenly(t *testing.T) {
	t.Run("rounds half up", func(t *testing.T) {
		m, err := MustMoney("100000").DivideEvenly(7)
		require.NoError(t, err)
		assert.Equal(t, "14285.71", m.String())
	})

	t.Run("one third", func(t *testing.T) {
		m, err := MustMoney("100").DivideEvenly(3)
		require.NoError(t, err)
		assert.Equal(t, "33.33", m.String())
	})

	t.Run("rejects zero count", func(t *testing.T) {
		_, err := MustMoney("100").DivideEvenly(0)
		assert.Error(t, err)
	})
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(MustMoney("1500.5"))
	require.NoError(t, err)
	assert.JSONEq(t, `"1500.50"`, string(data))

	var m Money
	require.NoError(t, json.Unmarshal([]byte(`"0.10"`), &m))
	assert.Equal(t, "0.10", m.String())
	require.NoError(t, json.Unmarshal([]byte(`12.3`), &m))
	assert.Equal(t, "12.30", m.String())
}

func TestMoney_ScanValue(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("42.10"))
	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, "42.10", v)
}

func TestPercentage(t *testing.T) {
	t.Run("rejects out of range", func(t *testing.T) {
		_, err := NewPercentage(decimal.NewFromInt(101))
		assert.Error(t, err)
		_, err = NewPercentage(decimal.NewFromInt(-1))
		assert.Error(t, err)
	})

	t.Run("share rounds half up", func(t *testing.T) {
		p := MustPercentage("33.33")
		assert.Equal(t, "33.33", p.Of(MustMoney("100")).String())
		assert.Equal(t, "0.17", MustPercentage("33.5").Of(MustMoney("0.50")).String())
	})

	t.Run("percent of", func(t *testing.T) {
		assert.True(t, PercentOf(MustMoney("1"), MustMoney("3")).Equal(decimal.RequireFromString("33.33")))
		assert.True(t, PercentOf(MustMoney("1"), Zero()).IsZero())
	})
}
