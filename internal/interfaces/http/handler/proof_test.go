package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appbilling "github.com/crvcrv26/repo-sub002/internal/application/billing"
	"github.com/crvcrv26/repo-sub002/internal/domain/billing"
	"github.com/crvcrv26/repo-sub002/internal/domain/directory"
	"github.com/crvcrv26/repo-sub002/internal/domain/shared/valueobject"
)

type mockProofRepo struct {
	mock.Mock
}

func (m *mockProofRepo) Save(ctx context.Context, proof *billing.PaymentProof) error {
	args := m.Called(ctx, proof)
	return args.Error(0)
}

func (m *mockProofRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.PaymentProof, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PaymentProof), args.Error(1)
}

func (m *mockProofRepo) FindByPaymentID(ctx context.Context, paymentID uuid.UUID) (*billing.PaymentProof, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PaymentProof), args.Error(1)
}

func (m *mockProofRepo) SaveReview(ctx context.Context, proof *billing.PaymentProof, obligation *billing.PaymentObligation) error {
	args := m.Called(ctx, proof, obligation)
	return args.Error(0)
}

type mockObligationRepo struct {
	mock.Mock
}

func (m *mockObligationRepo) CreateIfAbsent(ctx context.Context, obligation *billing.PaymentObligation) (bool, error) {
	args := m.Called(ctx, obligation)
	return args.Bool(0), args.Error(1)
}

func (m *mockObligationRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.PaymentObligation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PaymentObligation), args.Error(1)
}

func (m *mockObligationRepo) FindByKey(ctx context.Context, tier billing.Tier, parentID uuid.UUID, month string) (*billing.PaymentObligation, error) {
	args := m.Called(ctx, tier, parentID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PaymentObligation), args.Error(1)
}

func (m *mockObligationRepo) FindAll(ctx context.Context, filter billing.ObligationFilter) ([]billing.PaymentObligation, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]billing.PaymentObligation), args.Get(1).(int64), args.Error(2)
}

func (m *mockObligationRepo) Update(ctx context.Context, obligation *billing.PaymentObligation) error {
	args := m.Called(ctx, obligation)
	return args.Error(0)
}

type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) Get(ctx context.Context, id uuid.UUID) (*directory.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directory.Account), args.Error(1)
}

func (m *mockDirectory) ListParents(ctx context.Context, role directory.Role) ([]directory.Account, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]directory.Account), args.Error(1)
}

func (m *mockDirectory) CountBillable(ctx context.Context, q directory.CensusQuery) (directory.CensusResult, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(directory.CensusResult), args.Error(1)
}

// buildTestObligation builds a July 2025 ADMIN obligation for the parent.
func buildTestObligation(t *testing.T, parentID uuid.UUID) *billing.PaymentObligation {
	t.Helper()

	month, err := billing.ParseBillingMonth("2025-07")
	require.NoError(t, err)

	parent := directory.Account{
		ID:        parentID,
		Name:      "Test Recovery Agency",
		Role:      directory.RoleAdmin,
		CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	rate, err := billing.NewRateEntry(
		billing.TierAdmin,
		valueobject.NewMoneyINRFromInt(100),
		valueobject.NewMoneyINRFromInt(3000),
		"",
		uuid.New(),
	)
	require.NoError(t, err)

	census := directory.CensusResult{ActiveCount: 5}
	proration := billing.Prorate(rate.ServiceRate, parent.CreatedAt, month)

	obligation, err := billing.NewPaymentObligation(billing.TierAdmin, parent, month, census, rate, proration)
	require.NoError(t, err)
	return obligation
}

func newProofTestRouter(
	proofRepo billing.PaymentProofRepository,
	obligationRepo billing.PaymentObligationRepository,
	dir directory.AccountDirectory,
	accountID uuid.UUID,
	role directory.Role,
) *gin.Engine {
	svc := appbilling.NewProofService(proofRepo, obligationRepo, dir, zap.NewNop())
	h := NewProofHandler(svc)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		setJWTContext(c, accountID, role)
		c.Next()
	})
	router.POST("/obligations/:id/proof", h.Submit)
	router.GET("/obligations/:id/proof", h.GetForObligation)
	router.PUT("/proofs/:id/review", h.Review)
	router.GET("/proofs/:id", h.Get)
	return router
}

func submitProofBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"proof_type":   "TRANSACTION_NUMBER",
		"payload":      "UTR-202507-558812",
		"amount":       3500,
		"payment_date": "2025-07-04",
	})
	require.NoError(t, err)
	return body
}

func TestProofHandlerSubmit(t *testing.T) {
	t.Run("creates proof for the paying parent", func(t *testing.T) {
		parentID := uuid.New()
		obligation := buildTestObligation(t, parentID)

		proofRepo := new(mockProofRepo)
		obligationRepo := new(mockObligationRepo)
		dir := new(mockDirectory)

		obligationRepo.On("FindByID", mock.Anything, obligation.ID).Return(obligation, nil)
		proofRepo.On("FindByPaymentID", mock.Anything, obligation.ID).Return(nil, nil)
		proofRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.PaymentProof")).Return(nil)

		router := newProofTestRouter(proofRepo, obligationRepo, dir, parentID, directory.RoleAdmin)

		req := httptest.NewRequest("POST", "/obligations/"+obligation.ID.String()+"/proof", bytes.NewReader(submitProofBody(t)))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		proofRepo.AssertExpectations(t)
	})

	t.Run("rejects submission by another account", func(t *testing.T) {
		obligation := buildTestObligation(t, uuid.New())

		proofRepo := new(mockProofRepo)
		obligationRepo := new(mockObligationRepo)
		dir := new(mockDirectory)

		obligationRepo.On("FindByID", mock.Anything, obligation.ID).Return(obligation, nil)

		router := newProofTestRouter(proofRepo, obligationRepo, dir, uuid.New(), directory.RoleAdmin)

		req := httptest.NewRequest("POST", "/obligations/"+obligation.ID.String()+"/proof", bytes.NewReader(submitProofBody(t)))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "FORBIDDEN")
	})

	t.Run("pending proof blocks resubmission with 409", func(t *testing.T) {
		parentID := uuid.New()
		obligation := buildTestObligation(t, parentID)

		existing, err := billing.NewPaymentProof(
			obligation.ID, parentID, billing.ProofTypeTransactionNumber,
			"UTR-OLD", decimal.NewFromInt(3500),
			time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)

		proofRepo := new(mockProofRepo)
		obligationRepo := new(mockObligationRepo)
		dir := new(mockDirectory)

		obligationRepo.On("FindByID", mock.Anything, obligation.ID).Return(obligation, nil)
		proofRepo.On("FindByPaymentID", mock.Anything, obligation.ID).Return(existing, nil)

		router := newProofTestRouter(proofRepo, obligationRepo, dir, parentID, directory.RoleAdmin)

		req := httptest.NewRequest("POST", "/obligations/"+obligation.ID.String()+"/proof", bytes.NewReader(submitProofBody(t)))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "ALREADY_EXISTS")
	})

	t.Run("unknown obligation yields 404", func(t *testing.T) {
		proofRepo := new(mockProofRepo)
		obligationRepo := new(mockObligationRepo)
		dir := new(mockDirectory)

		missingID := uuid.New()
		obligationRepo.On("FindByID", mock.Anything, missingID).Return(nil, nil)

		router := newProofTestRouter(proofRepo, obligationRepo, dir, uuid.New(), directory.RoleAdmin)

		req := httptest.NewRequest("POST", "/obligations/"+missingID.String()+"/proof", bytes.NewReader(submitProofBody(t)))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestProofHandlerReview(t *testing.T) {
	reviewBody := func(decision string) []byte {
		body, _ := json.Marshal(map[string]any{
			"decision":    decision,
			"admin_notes": "checked against statement",
		})
		return body
	}

	t.Run("approval marks obligation paid", func(t *testing.T) {
		parentID := uuid.New()
		reviewerID := uuid.New()
		obligation := buildTestObligation(t, parentID)

		proof, err := billing.NewPaymentProof(
			obligation.ID, parentID, billing.ProofTypeTransactionNumber,
			"UTR-202507-558812", decimal.NewFromInt(3500),
			time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)

		proofRepo := new(mockProofRepo)
		obligationRepo := new(mockObligationRepo)
		dir := new(mockDirectory)

		proofRepo.On("FindByID", mock.Anything, proof.ID).Return(proof, nil)
		obligationRepo.On("FindByID", mock.Anything, obligation.ID).Return(obligation, nil)
		dir.On("Get", mock.Anything, reviewerID).Return(&directory.Account{
			ID:   reviewerID,
			Role: directory.RoleSuperAdmin,
		}, nil)
		dir.On("Get", mock.Anything, parentID).Return(&directory.Account{
			ID:       parentID,
			Role:     directory.RoleAdmin,
			ParentID: &reviewerID,
		}, nil)
		proofRepo.On("SaveReview", mock.Anything, proof, obligation).Return(nil)

		router := newProofTestRouter(proofRepo, obligationRepo, dir, reviewerID, directory.RoleSuperAdmin)

		req := httptest.NewRequest("PUT", "/proofs/"+proof.ID.String()+"/review", bytes.NewReader(reviewBody("APPROVED")))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, billing.ProofStatusApproved, proof.Status)
		assert.Equal(t, billing.ObligationStatusPaid, obligation.Status)
		proofRepo.AssertExpectations(t)
	})

	t.Run("reviewer outside the chain is forbidden", func(t *testing.T) {
		parentID := uuid.New()
		reviewerID := uuid.New()
		otherSupervisor := uuid.New()
		obligation := buildTestObligation(t, parentID)

		proof, err := billing.NewPaymentProof(
			obligation.ID, parentID, billing.ProofTypeTransactionNumber,
			"UTR-202507-558812", decimal.NewFromInt(3500),
			time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)

		proofRepo := new(mockProofRepo)
		obligationRepo := new(mockObligationRepo)
		dir := new(mockDirectory)

		proofRepo.On("FindByID", mock.Anything, proof.ID).Return(proof, nil)
		obligationRepo.On("FindByID", mock.Anything, obligation.ID).Return(obligation, nil)
		dir.On("Get", mock.Anything, reviewerID).Return(&directory.Account{
			ID:   reviewerID,
			Role: directory.RoleSuperAdmin,
		}, nil)
		dir.On("Get", mock.Anything, parentID).Return(&directory.Account{
			ID:       parentID,
			Role:     directory.RoleAdmin,
			ParentID: &otherSupervisor,
		}, nil)

		router := newProofTestRouter(proofRepo, obligationRepo, dir, reviewerID, directory.RoleSuperAdmin)

		req := httptest.NewRequest("PUT", "/proofs/"+proof.ID.String()+"/review", bytes.NewReader(reviewBody("REJECTED")))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("second review yields 409", func(t *testing.T) {
		parentID := uuid.New()
		reviewerID := uuid.New()
		obligation := buildTestObligation(t, parentID)

		proof, err := billing.NewPaymentProof(
			obligation.ID, parentID, billing.ProofTypeTransactionNumber,
			"UTR-202507-558812", decimal.NewFromInt(3500),
			time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)
		require.NoError(t, proof.Reject(reviewerID, "blurry evidence"))

		proofRepo := new(mockProofRepo)
		obligationRepo := new(mockObligationRepo)
		dir := new(mockDirectory)

		proofRepo.On("FindByID", mock.Anything, proof.ID).Return(proof, nil)
		obligationRepo.On("FindByID", mock.Anything, obligation.ID).Return(obligation, nil)
		dir.On("Get", mock.Anything, reviewerID).Return(&directory.Account{
			ID:   reviewerID,
			Role: directory.RoleSuperAdmin,
		}, nil)
		dir.On("Get", mock.Anything, parentID).Return(&directory.Account{
			ID:       parentID,
			Role:     directory.RoleAdmin,
			ParentID: &reviewerID,
		}, nil)

		router := newProofTestRouter(proofRepo, obligationRepo, dir, reviewerID, directory.RoleSuperAdmin)

		req := httptest.NewRequest("PUT", "/proofs/"+proof.ID.String()+"/review", bytes.NewReader(reviewBody("APPROVED")))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "ALREADY_REVIEWED")
	})
}

func TestProofHandlerGetForObligation(t *testing.T) {
	t.Run("missing proof yields 404", func(t *testing.T) {
		proofRepo := new(mockProofRepo)
		obligationRepo := new(mockObligationRepo)
		dir := new(mockDirectory)

		paymentID := uuid.New()
		proofRepo.On("FindByPaymentID", mock.Anything, paymentID).Return(nil, nil)

		router := newProofTestRouter(proofRepo, obligationRepo, dir, uuid.New(), directory.RoleAdmin)

		req := httptest.NewRequest("GET", "/obligations/"+paymentID.String()+"/proof", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
