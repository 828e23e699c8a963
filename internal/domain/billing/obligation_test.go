package billing

import (
	"testing"
	"time"

	"github.com/crvcrv26/repo-sub002/internal/domain/directory"
	"github.com/crvcrv26/repo-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRateEntry(t *testing.T, tier Tier, perUser, service int64) *RateEntry {
	t.Helper()
	entry, err := NewRateEntry(tier,
		valueobject.NewMoneyINRFromInt(perUser),
		valueobject.NewMoneyINRFromInt(service),
		"", uuid.New())
	require.NoError(t, err)
	return entry
}

func testParent(name string, createdAt time.Time) directory.Account {
	return directory.Account{
		ID:        uuid.New(),
		Name:      name,
		Role:      directory.RoleAdmin,
		CreatedAt: createdAt,
	}
}

func TestNewPaymentObligation(t *testing.T) {
	month := mustMonth(t, "2024-03")
	rate := testRateEntry(t, TierAdmin, 100, 3000)
	parent := testParent("North Zone Admin", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))
	census := directory.CensusResult{ActiveCount: 9, DeletedInMonthCount: 1}
	proration := Prorate(rate.ServiceRate, parent.CreatedAt, month)

	obligation, err := NewPaymentObligation(TierAdmin, parent, month, census, rate, proration)
	require.NoError(t, err)

	assert.Equal(t, TierAdmin, obligation.Tier)
	assert.Equal(t, parent.ID, obligation.ParentID)
	assert.Equal(t, "2024-03", obligation.Month)
	assert.Equal(t, int64(10), obligation.UserCount)
	assert.Equal(t, int64(1), obligation.DeletedUserCount)
	assert.True(t, obligation.UserAmount.Equal(decimal.NewFromInt(1000)))
	assert.False(t, obligation.IsProrated)
	assert.True(t, obligation.ProratedServiceRate.Equal(decimal.NewFromInt(3000)))
	assert.True(t, obligation.TotalAmount.Equal(decimal.NewFromInt(4000)))
	assert.Equal(t, ObligationStatusPending, obligation.Status)
	assert.Equal(t, month.PeriodEnd(), obligation.DueDate)
	assert.True(t, obligation.IsActive)
	assert.Nil(t, obligation.PaidAmount)
}

func TestNewPaymentObligation_PerHeadRateNeverProrated(t *testing.T) {
	// Parent created mid-month: the service fee is prorated, the per-head
	// charge is not.
	month := mustMonth(t, "2024-04")
	rate := testRateEntry(t, TierAdmin, 100, 3000)
	parent := testParent("Late Joiner", time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC))
	census := directory.CensusResult{ActiveCount: 5}
	proration := Prorate(rate.ServiceRate, parent.CreatedAt, month)

	obligation, err := NewPaymentObligation(TierAdmin, parent, month, census, rate, proration)
	require.NoError(t, err)

	assert.True(t, obligation.IsProrated)
	assert.Equal(t, 11, obligation.ProratedDays)
	assert.True(t, obligation.ProratedServiceRate.Equal(decimal.NewFromInt(1100)))
	assert.True(t, obligation.UserAmount.Equal(decimal.NewFromInt(500)), "per-head charge must be count*rate exactly")
	assert.True(t, obligation.TotalAmount.Equal(decimal.NewFromInt(1600)))
}

func TestNewPaymentObligation_Validation(t *testing.T) {
	month := mustMonth(t, "2024-03")
	rate := testRateEntry(t, TierAdmin, 100, 3000)
	parent := testParent("Admin", time.Now().UTC())
	census := directory.CensusResult{}
	proration := Prorate(rate.ServiceRate, parent.CreatedAt, month)

	t.Run("missing rate", func(t *testing.T) {
		_, err := NewPaymentObligation(TierAdmin, parent, month, census, nil, proration)
		assert.ErrorIs(t, err, ErrNoActiveRate)
	})

	t.Run("rate tier mismatch", func(t *testing.T) {
		wrongTier := testRateEntry(t, TierSuperAdmin, 100, 3000)
		_, err := NewPaymentObligation(TierAdmin, parent, month, census, wrongTier, proration)
		assert.Error(t, err)
	})

	t.Run("missing parent", func(t *testing.T) {
		_, err := NewPaymentObligation(TierAdmin, directory.Account{}, month, census, rate, proration)
		assert.Error(t, err)
	})
}

func TestPaymentObligation_MarkPaid(t *testing.T) {
	month := mustMonth(t, "2024-03")
	rate := testRateEntry(t, TierAdmin, 100, 3000)
	parent := testParent("Admin", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	obligation, err := NewPaymentObligation(TierAdmin, parent, month,
		directory.CensusResult{ActiveCount: 5}, rate, Prorate(rate.ServiceRate, parent.CreatedAt, month))
	require.NoError(t, err)

	paidDate := time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC)
	err = obligation.MarkPaid(decimal.NewFromInt(3500), paidDate, "proofs/abc123.png")
	require.NoError(t, err)

	assert.Equal(t, ObligationStatusPaid, obligation.Status)
	require.NotNil(t, obligation.PaidAmount)
	assert.True(t, obligation.PaidAmount.Equal(decimal.NewFromInt(3500)))
	require.NotNil(t, obligation.PaidDate)
	assert.Equal(t, paidDate, *obligation.PaidDate)
	require.NotNil(t, obligation.ProofRef)
	assert.Equal(t, "proofs/abc123.png", *obligation.ProofRef)

	// Double payment is rejected
	err = obligation.MarkPaid(decimal.NewFromInt(3500), paidDate, "")
	assert.Error(t, err)
}

func TestPaymentObligation_EffectiveStatus(t *testing.T) {
	month := mustMonth(t, "2024-03")
	rate := testRateEntry(t, TierAdmin, 100, 3000)
	parent := testParent("Admin", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	obligation, err := NewPaymentObligation(TierAdmin, parent, month,
		directory.CensusResult{ActiveCount: 5}, rate, Prorate(rate.ServiceRate, parent.CreatedAt, month))
	require.NoError(t, err)

	beforeDue := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	afterDue := time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, ObligationStatusPending, obligation.EffectiveStatus(beforeDue))
	assert.Equal(t, ObligationStatusOverdue, obligation.EffectiveStatus(afterDue))
	assert.True(t, obligation.IsOverdueAt(afterDue))

	// Stored status is untouched by the read-path view
	assert.Equal(t, ObligationStatusPending, obligation.Status)

	// Paid obligations never read as overdue
	require.NoError(t, obligation.MarkPaid(decimal.NewFromInt(3500), afterDue, ""))
	assert.Equal(t, ObligationStatusPaid, obligation.EffectiveStatus(afterDue))
}

func TestPaymentObligation_Overlay(t *testing.T) {
	month := mustMonth(t, "2024-01")
	rate := testRateEntry(t, TierAdmin, 100, 3000)
	parent := testParent("Admin", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	obligation, err := NewPaymentObligation(TierAdmin, parent, month,
		directory.CensusResult{ActiveCount: 5}, rate, Prorate(rate.ServiceRate, parent.CreatedAt, month))
	require.NoError(t, err)
	require.True(t, obligation.TotalAmount.Equal(decimal.NewFromInt(3500)))

	// Rate doubled after generation; census for January is still 5
	newRate := testRateEntry(t, TierAdmin, 200, 3000)
	obligation.MarkPaid(decimal.NewFromInt(3500), time.Now(), "")
	paidAmount := *obligation.PaidAmount

	obligation.Overlay(directory.CensusResult{ActiveCount: 5}, newRate,
		Prorate(newRate.ServiceRate, parent.CreatedAt, month))

	assert.Equal(t, int64(5), obligation.UserCount)
	assert.True(t, obligation.PerUserRate.Equal(decimal.NewFromInt(200)))
	assert.True(t, obligation.UserAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, obligation.TotalAmount.Equal(decimal.NewFromInt(4000)))
	// Payment facts stay authoritative
	assert.Equal(t, ObligationStatusPaid, obligation.Status)
	assert.True(t, obligation.PaidAmount.Equal(paidAmount))
}

func TestPaymentObligation_Deactivate(t *testing.T) {
	month := mustMonth(t, "2024-03")
	rate := testRateEntry(t, TierAdmin, 100, 3000)
	parent := testParent("Admin", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	obligation, err := NewPaymentObligation(TierAdmin, parent, month,
		directory.CensusResult{}, rate, Prorate(rate.ServiceRate, parent.CreatedAt, month))
	require.NoError(t, err)

	obligation.Deactivate()
	assert.False(t, obligation.IsActive)
}
