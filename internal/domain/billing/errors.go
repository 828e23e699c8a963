package billing

import "github.com/crvcrv26/repo-sub002/internal/domain/shared"

// Billing-specific domain errors. Codes are stable and map 1:1 to HTTP
// statuses at the interface layer.
var (
	// ErrNoActiveRate means generation was attempted for a tier with no
	// active rate entry
	ErrNoActiveRate = shared.NewDomainError("NO_ACTIVE_RATE", "No active rate configured for this tier")

	// ErrInvalidMonth means the billing month key is malformed or out of range
	ErrInvalidMonth = shared.NewDomainError("INVALID_MONTH", "Billing month must be in YYYY-MM format")

	// ErrInvalidTier means the tier name is unknown
	ErrInvalidTier = shared.NewDomainError("INVALID_TIER", "Unknown billing tier")

	// ErrAlreadyApproved means a proof submission hit a payment that
	// already has an approved proof
	ErrAlreadyApproved = shared.NewDomainError("ALREADY_APPROVED", "Payment already has an approved proof")

	// ErrAlreadyReviewed means a review was attempted on a proof that is
	// no longer pending
	ErrAlreadyReviewed = shared.NewDomainError("ALREADY_REVIEWED", "Proof has already been reviewed")

	// ErrMissingRequiredField means a proof submission lacked the payload
	// its proof type requires
	ErrMissingRequiredField = shared.NewDomainError("MISSING_REQUIRED_FIELD", "Proof payload is required for this proof type")
)
