package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits every stored amount carries
const MoneyScale int32 = 2

var hundred = decimal.NewFromInt(100)

// Money is a value object representing a monetary amount.
// The system is single-currency so Money carries no currency code.
// It is immutable - all operations return new Money instances.
type Money struct {
	amount decimal.Decimal
}

// NewMoney creates Money from a decimal amount
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// NewMoneyFromInt creates Money from a whole amount
func NewMoneyFromInt(amount int64) Money {
	return Money{amount: decimal.NewFromInt(amount)}
}

// NewMoneyFromString creates Money from its decimal string form
func NewMoneyFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return Money{amount: d}, nil
}

// MustMoney parses an amount and panics on error. Intended for constants and tests.
func MustMoney(amount string) Money {
	m, err := NewMoneyFromString(amount)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero amount
func Zero() Money {
	return Money{amount: decimal.Zero}
}

// Round rounds a decimal half-up (away from zero on ties) to two places
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Rounded returns the amount rounded half-up to two places
func (m Money) Rounded() Money {
	return Money{amount: Round(m.amount)}
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Add returns the sum of both amounts
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Sub returns the difference of both amounts
func (m Money) Sub(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

// Mul returns the amount multiplied by factor, unrounded
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor)}
}

// DivideEvenly returns amount/n rounded half-up to two places
func (m Money) DivideEvenly(n int) (Money, error) {
	if n <= 0 {
		return Money{}, errors.New("cannot divide by a non-positive count")
	}
	return Money{amount: Round(m.amount.DivRound(decimal.NewFromInt(int64(n)), 16))}, nil
}

// Negate returns the amount with the sign reversed
func (m Money) Negate() Money {
	return Money{amount: m.amount.Neg()}
}

// Equal compares two amounts numerically
func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

// GreaterThan returns true if m > other
func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

// GreaterThanOrEqual returns true if m >= other
func (m Money) GreaterThanOrEqual(other Money) bool {
	return m.amount.GreaterThanOrEqual(other.amount)
}

// LessThan returns true if m < other
func (m Money) LessThan(other Money) bool {
	return m.amount.LessThan(other.amount)
}

// LessThanOrEqual returns true if m <= other
func (m Money) LessThanOrEqual(other Money) bool {
	return m.amount.LessThanOrEqual(other.amount)
}

// Min returns the smaller of two amounts
func (m Money) Min(other Money) Money {
	if m.LessThan(other) {
		return m
	}
	return other
}

// String returns the amount with two fixed decimals
func (m Money) String() string {
	return m.amount.StringFixed(MoneyScale)
}

// MarshalJSON renders the amount as an exact decimal string
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts a decimal string or a bare JSON number
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid money value: %w", err)
	}
	m.amount = d
	return nil
}

// Value implements driver.Valuer
func (m Money) Value() (driver.Value, error) {
	return m.amount.StringFixed(MoneyScale), nil
}

// Scan implements sql.Scanner
func (m *Money) Scan(value interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	m.amount = d
	return nil
}

// Sum adds a list of amounts
func Sum(amounts ...Money) Money {
	total := Zero()
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Percentage is a share expressed on a 0..100 scale with two decimals
type Percentage struct {
	value decimal.Decimal
}

// NewPercentage validates a percentage in [0, 100]
func NewPercentage(value decimal.Decimal) (Percentage, error) {
	if value.IsNegative() || value.GreaterThan(hundred) {
		return Percentage{}, fmt.Errorf("percentage %s out of range [0, 100]", value.String())
	}
	return Percentage{value: value}, nil
}

// MustPercentage builds a Percentage from a string and panics on error
func MustPercentage(value string) Percentage {
	p, err := NewPercentage(decimal.RequireFromString(value))
	if err != nil {
		panic(err)
	}
	return p
}

// Value returns the percentage on the 0..100 scale
func (p Percentage) Value() decimal.Decimal {
	return p.value
}

// Of returns amount * p / 100 rounded half-up to two places
func (p Percentage) Of(amount Money) Money {
	return Money{amount: Round(amount.amount.Mul(p.value).Div(hundred))}
}

// String returns the percentage with two decimals
func (p Percentage) String() string {
	return p.value.StringFixed(2)
}

// PercentOf returns part/whole*100 rounded to two places, zero when whole is zero
func PercentOf(part, whole Money) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return Round(part.amount.Mul(hundred).DivRound(whole.amount, 16))
}
