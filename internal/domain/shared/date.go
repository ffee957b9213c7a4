package shared

import "time"

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// DateOf truncates t to midnight UTC of its calendar day.
// All business dates (due dates, voucher dates) are stored in this form.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date
func Today() time.Time {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD string into a calendar date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, NewDomainErrorf("INVALID_DATE", "Invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// AddMonths adds n calendar months to a date. A day that does not exist in
// the target month is clamped to that month's last day (Jan 31 + 1 = Feb 28).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b (b - a)
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}
