package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crvcrv26/repo-sub002/internal/domain/billing"
	"github.com/crvcrv26/repo-sub002/internal/domain/directory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newRecalcFixture(dir *MockAccountDirectory, rateRepo *MockRateEntryRepository) *RecalculationService {
	census := NewCensusService(billing.NewCensusCounter(dir), nil, 0, newTestLogger())
	return NewRecalculationService(rateRepo, census, dir, newTestLogger())
}

// A rate change after generation must be reflected on every read while
// the stored row keeps its generation-time snapshot semantics.
func TestRecalculationService_RateChangeShowsOnRead(t *testing.T) {
	dir := new(MockAccountDirectory)
	rateRepo := new(MockRateEntryRepository)
	service := newRecalcFixture(dir, rateRepo)

	ctx := context.Background()
	parent := newParentAccount(directory.RoleAdmin, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	oldRate := newActiveRate(t, billing.TierAdmin, 100, 3000)
	obligation := newTestObligation(t, billing.TierAdmin, parent, "2025-01",
		directory.CensusResult{ActiveCount: 5}, oldRate)
	assert.True(t, decimal.NewFromInt(500).Equal(obligation.UserAmount))

	newRate := newActiveRate(t, billing.TierAdmin, 200, 3000)
	dir.On("Get", ctx, parent.ID).Return(&parent, nil)
	rateRepo.On("FindActiveByTier", ctx, billing.TierAdmin).Return(newRate, nil)
	dir.On("CountBillable", ctx, mock.AnythingOfType("directory.CensusQuery")).
		Return(directory.CensusResult{ActiveCount: 5}, nil)

	result := service.Recalculate(ctx, obligation)

	assert.Equal(t, int64(5), result.UserCount)
	assert.True(t, decimal.NewFromInt(200).Equal(result.PerUserRate))
	assert.True(t, decimal.NewFromInt(1000).Equal(result.UserAmount))
	assert.True(t, decimal.NewFromInt(4000).Equal(result.TotalAmount))
}

// The census stays bound to the obligation's period: the query handed to
// the directory carries the month's boundaries, not today's.
func TestRecalculationService_CensusBoundToPeriod(t *testing.T) {
	dir := new(MockAccountDirectory)
	rateRepo := new(MockRateEntryRepository)
	service := newRecalcFixture(dir, rateRepo)

	ctx := context.Background()
	parent := newParentAccount(directory.RoleAdmin, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	rate := newActiveRate(t, billing.TierAdmin, 100, 3000)
	obligation := newTestObligation(t, billing.TierAdmin, parent, "2025-01",
		directory.CensusResult{ActiveCount: 5}, rate)

	dir.On("Get", ctx, parent.ID).Return(&parent, nil)
	rateRepo.On("FindActiveByTier", ctx, billing.TierAdmin).Return(rate, nil)
	dir.On("CountBillable", ctx, mock.MatchedBy(func(q directory.CensusQuery) bool {
		return q.PeriodStart.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) &&
			q.PeriodEnd.Year() == 2025 && q.PeriodEnd.Month() == time.January
	})).Return(directory.CensusResult{ActiveCount: 5}, nil)

	service.Recalculate(ctx, obligation)
	dir.AssertExpectations(t)
}

// Payment facts survive recalculation untouched.
func TestRecalculationService_PaymentFactsPreserved(t *testing.T) {
	dir := new(MockAccountDirectory)
	rateRepo := new(MockRateEntryRepository)
	service := newRecalcFixture(dir, rateRepo)

	ctx := context.Background()
	parent := newParentAccount(directory.RoleAdmin, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	rate := newActiveRate(t, billing.TierAdmin, 100, 3000)
	obligation := newTestObligation(t, billing.TierAdmin, parent, "2025-01",
		directory.CensusResult{ActiveCount: 5}, rate)
	paidDate := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, obligation.MarkPaid(decimal.NewFromInt(3500), paidDate, "txn-1"))

	newRate := newActiveRate(t, billing.TierAdmin, 200, 3000)
	dir.On("Get", ctx, parent.ID).Return(&parent, nil)
	rateRepo.On("FindActiveByTier", ctx, billing.TierAdmin).Return(newRate, nil)
	dir.On("CountBillable", ctx, mock.AnythingOfType("directory.CensusQuery")).
		Return(directory.CensusResult{ActiveCount: 5}, nil)

	result := service.Recalculate(ctx, obligation)

	assert.Equal(t, billing.ObligationStatusPaid, result.Status)
	assert.True(t, decimal.NewFromInt(3500).Equal(*result.PaidAmount))
	assert.Equal(t, paidDate, *result.PaidDate)
	assert.True(t, decimal.NewFromInt(4000).Equal(result.TotalAmount))
}

func TestRecalculationService_DeletedParentFlagsRow(t *testing.T) {
	dir := new(MockAccountDirectory)
	rateRepo := new(MockRateEntryRepository)
	service := newRecalcFixture(dir, rateRepo)

	ctx := context.Background()
	parent := newParentAccount(directory.RoleAdmin, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	rate := newActiveRate(t, billing.TierAdmin, 100, 3000)
	obligation := newTestObligation(t, billing.TierAdmin, parent, "2025-01",
		directory.CensusResult{ActiveCount: 5}, rate)

	deleted := parent
	deleted.IsDeleted = true
	dir.On("Get", ctx, parent.ID).Return(&deleted, nil)

	result := service.Recalculate(ctx, obligation)

	assert.True(t, result.ParentDeleted)
	assert.True(t, decimal.NewFromInt(500).Equal(result.UserAmount))
	rateRepo.AssertNotCalled(t, "FindActiveByTier")
}

func TestRecalculationService_LookupFailureReturnsSnapshot(t *testing.T) {
	dir := new(MockAccountDirectory)
	rateRepo := new(MockRateEntryRepository)
	service := newRecalcFixture(dir, rateRepo)

	ctx := context.Background()
	parent := newParentAccount(directory.RoleAdmin, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	rate := newActiveRate(t, billing.TierAdmin, 100, 3000)
	obligation := newTestObligation(t, billing.TierAdmin, parent, "2025-01",
		directory.CensusResult{ActiveCount: 5}, rate)

	dir.On("Get", ctx, parent.ID).Return(&parent, nil)
	rateRepo.On("FindActiveByTier", ctx, billing.TierAdmin).Return(nil, errors.New("connection refused"))

	result := service.Recalculate(ctx, obligation)

	assert.False(t, result.ParentDeleted)
	assert.True(t, decimal.NewFromInt(500).Equal(result.UserAmount))
	assert.True(t, decimal.NewFromInt(3500).Equal(result.TotalAmount))
}

func TestRecalculationService_CensusFailureReturnsSnapshot(t *testing.T) {
	dir := new(MockAccountDirectory)
	rateRepo := new(MockRateEntryRepository)
	service := newRecalcFixture(dir, rateRepo)

	ctx := context.Background()
	parent := newParentAccount(directory.RoleAdmin, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	rate := newActiveRate(t, billing.TierAdmin, 100, 3000)
	obligation := newTestObligation(t, billing.TierAdmin, parent, "2025-01",
		directory.CensusResult{ActiveCount: 5}, rate)

	dir.On("Get", ctx, parent.ID).Return(&parent, nil)
	rateRepo.On("FindActiveByTier", ctx, billing.TierAdmin).Return(rate, nil)
	dir.On("CountBillable", ctx, mock.AnythingOfType("directory.CensusQuery")).
		Return(directory.CensusResult{}, errors.New("directory timeout"))

	result := service.Recalculate(ctx, obligation)

	assert.True(t, decimal.NewFromInt(500).Equal(result.UserAmount))
}
