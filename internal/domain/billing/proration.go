package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProrationResult is the outcome of prorating the flat service fee for a
// parent's first (partial) billing month.
type ProrationResult struct {
	IsProrated       bool            `json:"is_prorated"`
	ProratedDays     int             `json:"prorated_days"`
	TotalDaysInMonth int             `json:"total_days_in_month"`
	Amount           decimal.Decimal `json:"amount"`
}

// Prorate computes the day-weighted service fee for a target month.
//
// Only the flat service fee is ever prorated; the per-head charge is a
// full-month figure regardless of when the parent was created. If the
// parent's creation date falls outside the target month the full rate
// applies. The creation day itself is billable, and the result is rounded
// to the nearest whole currency unit.
func Prorate(fullServiceRate decimal.Decimal, accountCreatedAt time.Time, targetMonth BillingMonth) ProrationResult {
	totalDays := targetMonth.Days()
	result := ProrationResult{
		IsProrated:       false,
		ProratedDays:     totalDays,
		TotalDaysInMonth: totalDays,
		Amount:           fullServiceRate,
	}

	if !targetMonth.Contains(accountCreatedAt) {
		return result
	}

	remainingDays := totalDays - accountCreatedAt.UTC().Day() + 1
	if remainingDays >= totalDays {
		// Created on day 1: a full month, no proration
		return result
	}

	prorated := fullServiceRate.
		Div(decimal.NewFromInt(int64(totalDays))).
		Mul(decimal.NewFromInt(int64(remainingDays))).
		Round(0)
	if prorated.IsNegative() {
		prorated = decimal.Zero
	}

	return ProrationResult{
		IsProrated:       true,
		ProratedDays:     remainingDays,
		TotalDaysInMonth: totalDays,
		Amount:           prorated,
	}
}
