package contract

import (
	"time"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
)

// ScheduleType is the spacing between consecutive installments
type ScheduleType string

const (
	ScheduleMonthly   ScheduleType = "monthly"
	ScheduleQuarterly ScheduleType = "quarterly"
	ScheduleYearly    ScheduleType = "yearly"
)

// IsValid checks if the schedule type is known
func (s ScheduleType) IsValid() bool {
	switch s {
	case ScheduleMonthly, ScheduleQuarterly, ScheduleYearly:
		return true
	}
	return false
}

// String returns the string representation of ScheduleType
func (s ScheduleType) String() string {
	return string(s)
}

// Months returns the number of calendar months in one period
func (s ScheduleType) Months() int {
	switch s {
	case ScheduleQuarterly:
		return 3
	case ScheduleYearly:
		return 12
	default:
		return 1
	}
}

// DueDate returns the due date of the n-th period (0-based) counted from start.
// Dates are always derived from start so month-end clamping does not drift.
func (s ScheduleType) DueDate(start time.Time, n int) time.Time {
	return shared.AddMonths(start, n*s.Months())
}

// ScheduleLine is one generated installment before it is attached to a contract
type ScheduleLine struct {
	SeqNo   int
	DueDate time.Time
	Amount  valueobject.Money
}

// GenerateSchedule splits remaining into count installments.
//
// Every line but the last carries round_half_up(remaining/count, 2); the last
// line absorbs the rounding residue so the lines always sum to remaining.
// seqOffset is added to the 1-based sequence numbers.
func GenerateSchedule(remaining valueobject.Money, count int, start time.Time, scheduleType ScheduleType, seqOffset int) ([]ScheduleLine, error) {
	if count <= 0 {
		if remaining.IsZero() {
			return nil, nil
		}
		return nil, shared.NewDomainError("INVALID_INSTALLMENTS_COUNT", "Installments count must be at least 1 when a balance remains")
	}
	if remaining.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Remaining amount cannot be negative")
	}
	if !scheduleType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SCHEDULE_TYPE", "Schedule type must be monthly, quarterly or yearly")
	}

	base, err := remaining.DivideEvenly(count)
	if err != nil {
		return nil, err
	}

	start = shared.DateOf(start)
	lines := make([]ScheduleLine, count)
	allocated := valueobject.Zero()
	for i := 0; i < count; i++ {
		amount := base
		if i == count-1 {
			amount = remaining.Sub(allocated)
			if amount.IsNegative() {
				return nil, shared.NewDomainError("INVALID_INSTALLMENTS_COUNT", "Too many installments for the remaining amount")
			}
		}
		allocated = allocated.Add(amount)
		lines[i] = ScheduleLine{
			SeqNo:   seqOffset + i + 1,
			DueDate: scheduleType.DueDate(start, i),
			Amount:  amount,
		}
	}
	return lines, nil
}
