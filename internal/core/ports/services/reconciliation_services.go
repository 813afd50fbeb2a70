package services

import (
	"context"

	"github.com/openedu/school_ledger_app/internal/dto"
)

// ReconciliationSvcFacade is the repair utility: scheduled integrity checks
// and the idempotent operator command that rebuilds all derived balances
// from the journal store. It replaces per-incident fix-it scripts.
type ReconciliationSvcFacade interface {
	// CheckIntegrity compares every materialized balance (account and
	// student) against a fresh recompute and reports drift. Drift is
	// surfaced, never silently corrected.
	CheckIntegrity(ctx context.Context) (*dto.IntegrityReport, error)

	// RepairAll truncates and rebuilds the account balance table from the
	// journal lines and recalculates every student balance from the
	// sub-ledger log. Safe to run repeatedly.
	RepairAll(ctx context.Context) (*dto.RepairResult, error)
}
