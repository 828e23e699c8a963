package billing

import (
	"fmt"
	"regexp"
	"time"
)

// billingMonthPattern matches the canonical "YYYY-MM" month key
var billingMonthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// BillingMonth is a calendar month used as the billing period key.
// All period arithmetic is done in UTC.
type BillingMonth struct {
	year  int
	month time.Month
}

// ParseBillingMonth parses a "YYYY-MM" string into a BillingMonth
func ParseBillingMonth(s string) (BillingMonth, error) {
	if !billingMonthPattern.MatchString(s) {
		return BillingMonth{}, ErrInvalidMonth
	}
	t, err := time.ParseInLocation("2006-01", s, time.UTC)
	if err != nil {
		return BillingMonth{}, ErrInvalidMonth
	}
	return BillingMonth{year: t.Year(), month: t.Month()}, nil
}

// BillingMonthOf returns the billing month containing the given instant
func BillingMonthOf(t time.Time) BillingMonth {
	u := t.UTC()
	return BillingMonth{year: u.Year(), month: u.Month()}
}

// String returns the canonical "YYYY-MM" key
func (m BillingMonth) String() string {
	return fmt.Sprintf("%04d-%02d", m.year, int(m.month))
}

// PeriodStart returns midnight UTC on the first day of the month
func (m BillingMonth) PeriodStart() time.Time {
	return time.Date(m.year, m.month, 1, 0, 0, 0, 0, time.UTC)
}

// PeriodEnd returns the last instant of the month (23:59:59.999)
func (m BillingMonth) PeriodEnd() time.Time {
	return m.PeriodStart().AddDate(0, 1, 0).Add(-time.Millisecond)
}

// Days returns the number of calendar days in the month
func (m BillingMonth) Days() int {
	return m.PeriodStart().AddDate(0, 1, -1).Day()
}

// Contains reports whether the instant falls within the month
func (m BillingMonth) Contains(t time.Time) bool {
	u := t.UTC()
	return u.Year() == m.year && u.Month() == m.month
}

// Previous returns the preceding billing month
func (m BillingMonth) Previous() BillingMonth {
	t := m.PeriodStart().AddDate(0, -1, 0)
	return BillingMonth{year: t.Year(), month: t.Month()}
}

// Next returns the following billing month
func (m BillingMonth) Next() BillingMonth {
	t := m.PeriodStart().AddDate(0, 1, 0)
	return BillingMonth{year: t.Year(), month: t.Month()}
}

// Before reports whether m precedes other
func (m BillingMonth) Before(other BillingMonth) bool {
	if m.year != other.year {
		return m.year < other.year
	}
	return m.month < other.month
}
