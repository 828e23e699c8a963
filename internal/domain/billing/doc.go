// Package billing provides the domain model for the monthly billing and
// proration engine of the repossession SaaS backend.
//
// The engine bills each parent account once per calendar month for the
// subordinate accounts it maintained during that month. Three structurally
// parallel tiers (Admin, SuperAdmin, SuperSuperAdmin) share one generic
// engine parameterized by Tier.
//
// Key Aggregates:
//   - RateEntry: Versioned per-tier rate configuration; one active entry
//     per tier at a time
//   - PaymentObligation: The idempotent monthly ledger row, keyed by
//     {tier, parent, month}
//   - PaymentProof: Proof-of-payment evidence with a pending/approved/
//     rejected review state machine
//
// Domain Services:
//   - CensusCounter: Counts billable subordinates for a parent and month,
//     including accounts deleted mid-month
//   - Prorate: Day-weights the flat service fee for a parent's first
//     partial month
//
// The billing domain reads accounts through the directory port; account
// lifecycle management lives outside this bounded context.
package billing
