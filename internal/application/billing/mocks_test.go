package billing

import (
	"context"
	"testing"
	"time"

	"github.com/crvcrv26/repo-sub002/internal/domain/billing"
	"github.com/crvcrv26/repo-sub002/internal/domain/directory"
	"github.com/crvcrv26/repo-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockRateEntryRepository is a mock implementation of RateEntryRepository
type MockRateEntryRepository struct {
	mock.Mock
}

func (m *MockRateEntryRepository) Activate(ctx context.Context, entry *billing.RateEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockRateEntryRepository) FindActiveByTier(ctx context.Context, tier billing.Tier) (*billing.RateEntry, error) {
	args := m.Called(ctx, tier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.RateEntry), args.Error(1)
}

func (m *MockRateEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.RateEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.RateEntry), args.Error(1)
}

func (m *MockRateEntryRepository) FindByTier(ctx context.Context, tier billing.Tier) ([]billing.RateEntry, error) {
	args := m.Called(ctx, tier)
	return args.Get(0).([]billing.RateEntry), args.Error(1)
}

// MockPaymentObligationRepository is a mock implementation of PaymentObligationRepository
type MockPaymentObligationRepository struct {
	mock.Mock
}

func (m *MockPaymentObligationRepository) CreateIfAbsent(ctx context.Context, obligation *billing.PaymentObligation) (bool, error) {
	args := m.Called(ctx, obligation)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentObligationRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.PaymentObligation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PaymentObligation), args.Error(1)
}

func (m *MockPaymentObligationRepository) FindByKey(ctx context.Context, tier billing.Tier, parentID uuid.UUID, month string) (*billing.PaymentObligation, error) {
	args := m.Called(ctx, tier, parentID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PaymentObligation), args.Error(1)
}

func (m *MockPaymentObligationRepository) FindAll(ctx context.Context, filter billing.ObligationFilter) ([]billing.PaymentObligation, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.PaymentObligation), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentObligationRepository) Update(ctx context.Context, obligation *billing.PaymentObligation) error {
	args := m.Called(ctx, obligation)
	return args.Error(0)
}

// MockPaymentProofRepository is a mock implementation of PaymentProofRepository
type MockPaymentProofRepository struct {
	mock.Mock
}

func (m *MockPaymentProofRepository) Save(ctx context.Context, proof *billing.PaymentProof) error {
	args := m.Called(ctx, proof)
	return args.Error(0)
}

func (m *MockPaymentProofRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.PaymentProof, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PaymentProof), args.Error(1)
}

func (m *MockPaymentProofRepository) FindByPaymentID(ctx context.Context, paymentID uuid.UUID) (*billing.PaymentProof, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PaymentProof), args.Error(1)
}

func (m *MockPaymentProofRepository) SaveReview(ctx context.Context, proof *billing.PaymentProof, obligation *billing.PaymentObligation) error {
	args := m.Called(ctx, proof, obligation)
	return args.Error(0)
}

// MockAccountDirectory is a mock implementation of AccountDirectory
type MockAccountDirectory struct {
	mock.Mock
}

func (m *MockAccountDirectory) Get(ctx context.Context, id uuid.UUID) (*directory.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directory.Account), args.Error(1)
}

func (m *MockAccountDirectory) ListParents(ctx context.Context, role directory.Role) ([]directory.Account, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]directory.Account), args.Error(1)
}

func (m *MockAccountDirectory) CountBillable(ctx context.Context, q directory.CensusQuery) (directory.CensusResult, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(directory.CensusResult), args.Error(1)
}

// Test helpers

func newTestLogger() *zap.Logger {
	return zap.NewNop()
}

func newActiveRate(t *testing.T, tier billing.Tier, perUser, service int64) *billing.RateEntry {
	t.Helper()
	entry, err := billing.NewRateEntry(
		tier,
		valueobject.NewMoneyINRFromInt(perUser),
		valueobject.NewMoneyINRFromInt(service),
		"",
		uuid.New(),
	)
	require.NoError(t, err)
	return entry
}

func newParentAccount(role directory.Role, createdAt time.Time) directory.Account {
	return directory.Account{
		ID:        uuid.New(),
		Name:      "Parent " + uuid.NewString()[:8],
		Role:      role,
		CreatedAt: createdAt,
	}
}

func monthOf(t *testing.T, s string) billing.BillingMonth {
	t.Helper()
	m, err := billing.ParseBillingMonth(s)
	require.NoError(t, err)
	return m
}

func newTestObligation(t *testing.T, tier billing.Tier, parent directory.Account, monthStr string, census directory.CensusResult, rate *billing.RateEntry) *billing.PaymentObligation {
	t.Helper()
	month := monthOf(t, monthStr)
	proration := billing.Prorate(rate.ServiceRate, parent.CreatedAt, month)
	obligation, err := billing.NewPaymentObligation(tier, parent, month, census, rate, proration)
	require.NoError(t, err)
	return obligation
}
